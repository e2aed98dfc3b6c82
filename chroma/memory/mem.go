package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chroma/chroma/addr"
)

// Model is the hardware being emulated.
type Model uint8

const (
	ModelDMG Model = iota
	ModelCGB
)

func (m Model) String() string {
	if m == ModelCGB {
		return "CGB"
	}
	return "DMG"
}

const (
	// DMGBootSize is the size of the original Game Boy boot ROM.
	DMGBootSize = 0x100
	// CGBBootSize is the size of the Game Boy Color boot ROM, mapped at
	// 0x0000-0x00FF and 0x0200-0x08FF around the cartridge header.
	CGBBootSize = 0x900
)

// ErrInvalidBootImage is returned when a boot ROM has neither known size.
var ErrInvalidBootImage = errors.New("boot image must be 256 (DMG) or 2304 (CGB) bytes")

// ModelForBoot picks the hardware model matching a boot ROM image.
func ModelForBoot(boot []byte) (Model, error) {
	switch len(boot) {
	case DMGBootSize:
		return ModelDMG, nil
	case CGBBootSize:
		return ModelCGB, nil
	default:
		return ModelDMG, fmt.Errorf("%w: got %d bytes", ErrInvalidBootImage, len(boot))
	}
}

// Audio is the sound unit reached through 0xFF10-0xFF3F.
type Audio interface {
	WriteRegister(address uint16, value uint8)
	ReadRegister(address uint16) uint8
	Advance(cycles int, doubleSpeed bool)
	ChannelsActive() uint8
}

// SerialPort is the device plugged into the link port.
// Send is called with the outgoing byte when a transfer starts, Receive
// is polled for bytes coming from the peer.
type SerialPort interface {
	Send(b byte)
	Receive() (byte, bool)
}

// connectedPort is implemented by ports that know whether a peer is on
// the other end of the cable.
type connectedPort interface {
	Connected() bool
}

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	cart  *Cartridge
	mbc   MBC
	model Model

	boot        []byte
	bootEnabled bool
	// compat is set when a CGB runs a DMG-only cartridge.
	compat bool

	vram     [2][0x2000]uint8
	vramBank uint8
	wram     [8][0x1000]uint8
	wramBank uint8
	oam      [0xA0]uint8
	io       [0x80]uint8
	hram     [0x7F]uint8
	ie       uint8

	bgPalette  PaletteRAM
	objPalette PaletteRAM

	joypad *Joypad
	timer  Timer
	dma    oamDMA
	hdma   hdma

	audio  Audio
	serial SerialPort
	link   serialTransfer

	// lateReplies counts timed out transfers whose reply may still arrive
	lateReplies int

	doubleSpeed bool
	speedHalf   int
}

// New creates a new memory unity with default data, i.e. nothing cartridge loaded.
// Equivalent to turning on a Gameboy without a cartridge in, past the boot ROM.
func New() *MMU {
	mmu, _ := NewWithCartridge(NewCartridge(), ModelDMG, nil)
	return mmu
}

// NewWithCartridge creates a new memory unit with the provided cartridge
// loaded. When boot is empty the machine starts in the state the boot ROM
// leaves behind, otherwise the boot ROM is mapped until it unmaps itself.
func NewWithCartridge(cart *Cartridge, model Model, boot []byte) (*MMU, error) {
	m := &MMU{
		cart:     cart,
		mbc:      newMBC(cart),
		model:    model,
		joypad:   NewJoypad(),
		vramBank: 0,
		wramBank: 1,
	}
	m.timer.TimerInterruptHandler = func() { m.RequestInterrupt(addr.TimerInterrupt) }

	if len(boot) > 0 {
		bootModel, err := ModelForBoot(boot)
		if err != nil {
			return nil, err
		}
		if bootModel != model {
			return nil, fmt.Errorf("%w: %s image for %s hardware", ErrInvalidBootImage, bootModel, model)
		}
		m.boot = boot
		m.bootEnabled = true
		return m, nil
	}

	m.skipBoot()
	return m, nil
}

// skipBoot reproduces the I/O state left by the boot ROM.
func (m *MMU) skipBoot() {
	m.io[addr.LCDC-addr.IOStart] = 0x91
	m.io[addr.STAT-addr.IOStart] = 0x85
	m.io[addr.BGP-addr.IOStart] = 0xFC
	m.io[addr.OBP0-addr.IOStart] = 0xFF
	m.io[addr.OBP1-addr.IOStart] = 0xFF
	m.io[addr.IF-addr.IOStart] = 0x01
	m.io[addr.BOOT-addr.IOStart] = 0x01

	switch {
	case m.model == ModelDMG:
		m.timer.SetSeed(0xABCC)
	case m.cart.SupportsColor():
		m.io[addr.KEY0-addr.IOStart] = m.cart.cgbFlag
		m.timer.SetSeed(0x1EA0)
	default:
		m.enterCompatMode()
		m.timer.SetSeed(0x267C)
	}
}

// enterCompatMode locks a CGB into DMG mode and seeds the palettes the
// DMG shades are looked up through.
func (m *MMU) enterCompatMode() {
	m.compat = true
	m.io[addr.KEY0-addr.IOStart] = 0x04
	ramp := [4]uint16{0x7FFF, 0x56B5, 0x294A, 0x0000}
	for i, c := range ramp {
		m.bgPalette.SetColor(0, uint8(i), c)
		m.objPalette.SetColor(0, uint8(i), c)
		m.objPalette.SetColor(1, uint8(i), c)
	}
}

// Model returns the emulated hardware.
func (m *MMU) Model() Model { return m.model }

// ColorMode reports whether CGB features (banks, color palettes, HDMA) are live.
func (m *MMU) ColorMode() bool { return m.model == ModelCGB && !m.compat }

// CompatMode reports whether a CGB is running a DMG cartridge.
func (m *MMU) CompatMode() bool { return m.model == ModelCGB && m.compat }

// BootEnabled reports whether the boot ROM is still mapped.
func (m *MMU) BootEnabled() bool { return m.bootEnabled }

// Cartridge returns the loaded cartridge.
func (m *MMU) Cartridge() *Cartridge { return m.cart }

// cgbRegisters reports whether CGB-only registers respond. During the CGB
// boot ROM they always do, even when it is about to select DMG mode.
func (m *MMU) cgbRegisters() bool {
	return m.model == ModelCGB && (m.bootEnabled || !m.compat)
}

func (m *MMU) inBootROM(address uint16) bool {
	if !m.bootEnabled {
		return false
	}
	if address < DMGBootSize {
		return true
	}
	return len(m.boot) == CGBBootSize && address >= 0x200 && int(address) < CGBBootSize
}

// Read returns the byte the CPU sees at an address. While an OAM DMA is
// running everything below the I/O page reads as the byte being copied.
func (m *MMU) Read(address uint16) uint8 {
	if m.dma.active && address < addr.IOStart {
		return m.dmaBusByte()
	}
	return m.read(address, true)
}

// ReadDirect reads memory bypassing the DMA bus conflict, for the display
// and the DMA engines themselves.
func (m *MMU) ReadDirect(address uint16) uint8 {
	return m.read(address, false)
}

func (m *MMU) read(address uint16, cpu bool) uint8 {
	switch {
	case address <= addr.ROMEnd:
		if m.inBootROM(address) {
			return m.boot[address]
		}
		return m.mbc.Read(address)
	case address <= addr.VRAMEnd:
		return m.vram[m.vramBank][address-addr.VRAMStart]
	case address <= addr.ExternalRAMEnd:
		return m.mbc.Read(address)
	case address < addr.WRAMBankNStart:
		return m.wram[0][address-addr.WRAMStart]
	case address <= addr.WRAMEnd:
		return m.wram[m.wramBank][address-addr.WRAMBankNStart]
	case address <= addr.EchoEnd:
		return m.read(address-0x2000, cpu)
	case address <= addr.OAMEnd:
		return m.oam[address-addr.OAMStart]
	case address <= addr.UnusableEnd:
		return 0x00
	case address <= addr.IOEnd:
		if !cpu {
			return m.io[address-addr.IOStart]
		}
		return m.readIO(address)
	case address <= addr.HRAMEnd:
		return m.hram[address-addr.HRAMStart]
	default:
		return m.ie
	}
}

// Write stores a byte as the CPU would, with all register side effects.
func (m *MMU) Write(address uint16, value uint8) {
	m.write(address, value, true)
}

// WriteDirect stores a byte without side effects. The display uses it to
// maintain LY and the STAT mode bits, which the CPU cannot write.
func (m *MMU) WriteDirect(address uint16, value uint8) {
	m.write(address, value, false)
}

func (m *MMU) write(address uint16, value uint8, cpu bool) {
	switch {
	case address <= addr.ROMEnd:
		if cpu {
			m.mbc.Write(address, value)
		}
	case address <= addr.VRAMEnd:
		m.vram[m.vramBank][address-addr.VRAMStart] = value
	case address <= addr.ExternalRAMEnd:
		m.mbc.Write(address, value)
	case address < addr.WRAMBankNStart:
		m.wram[0][address-addr.WRAMStart] = value
	case address <= addr.WRAMEnd:
		m.wram[m.wramBank][address-addr.WRAMBankNStart] = value
	case address <= addr.EchoEnd:
		m.write(address-0x2000, value, cpu)
	case address <= addr.OAMEnd:
		m.oam[address-addr.OAMStart] = value
	case address <= addr.UnusableEnd:
		// writes to the unusable area are dropped
	case address <= addr.IOEnd:
		if !cpu {
			m.io[address-addr.IOStart] = value
			return
		}
		m.writeIO(address, value)
	case address <= addr.HRAMEnd:
		m.hram[address-addr.HRAMStart] = value
	default:
		m.ie = value
	}
}

// ReadVRAM reads from a specific VRAM bank regardless of VBK.
func (m *MMU) ReadVRAM(bank uint8, address uint16) uint8 {
	return m.vram[bank&0x01][address&0x1FFF]
}

// PaletteColor returns a BGR555 color from CGB palette RAM.
func (m *MMU) PaletteColor(object bool, palette, color uint8) uint16 {
	if object {
		return m.objPalette.Color(palette, color)
	}
	return m.bgPalette.Color(palette, color)
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.io[addr.IF-addr.IOStart] |= uint8(interrupt) & addr.InterruptMask
}

// IF returns the pending interrupt requests.
func (m *MMU) IF() uint8 { return m.io[addr.IF-addr.IOStart] & addr.InterruptMask }

// SetIF overwrites the pending interrupt requests.
func (m *MMU) SetIF(value uint8) { m.io[addr.IF-addr.IOStart] = value & addr.InterruptMask }

// IE returns the interrupt enable register.
func (m *MMU) IE() uint8 { return m.ie }

// Advance steps everything on the bus that runs on its own clock. The
// cycle count is in CPU cycles, which in double speed tick twice as fast
// as the 4MHz reference the cartridge clock and serial port run on.
func (m *MMU) Advance(cycles int, doubleSpeed bool) {
	m.advanceOAMDMA(cycles)

	reference := cycles
	if doubleSpeed {
		m.speedHalf += cycles
		reference = m.speedHalf / 2
		m.speedHalf %= 2
	}
	m.mbc.Tick(reference)

	if m.audio != nil {
		m.audio.Advance(cycles, doubleSpeed)
	}
	m.advanceSerial(reference)
}

// UpdateTimers advances DIV and TIMA.
func (m *MMU) UpdateTimers(cycles int) {
	m.timer.Tick(cycles)
}

// SetTimerSeed initializes the internal timer divider seed and DIV register.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// DoubleSpeed reports whether the CGB runs at 8MHz.
func (m *MMU) DoubleSpeed() bool { return m.doubleSpeed }

// SwitchSpeed performs a prepared speed switch, called by STOP. It
// returns false when no switch was armed through KEY1.
func (m *MMU) SwitchSpeed() bool {
	key1 := addr.KEY1 - addr.IOStart
	if !m.cgbRegisters() || m.io[key1]&0x01 == 0 {
		return false
	}
	m.doubleSpeed = !m.doubleSpeed
	m.io[key1] = 0
	return true
}

// HandleKeyPress records a pressed key, requesting the joypad interrupt
// when the key is on a selected line.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	if m.joypad.Press(key) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// HandleKeyRelease records a released key.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}

// AttachAudio connects the sound unit.
func (m *MMU) AttachAudio(a Audio) { m.audio = a }

// AttachSerial plugs a device in the link port.
func (m *MMU) AttachSerial(p SerialPort) { m.serial = p }

// TakeRumble returns how strongly the rumble motor ran since the last
// call, between 0 and 1. Carts without a motor always report 0.
func (m *MMU) TakeRumble() float64 {
	if r, ok := m.mbc.(*MBC5); ok {
		return r.TakeRumble()
	}
	return 0
}

// RTC returns the cartridge clock, if any.
func (m *MMU) RTC() *RTC {
	if c, ok := m.mbc.(*MBC3); ok {
		return c.RTC()
	}
	return nil
}
