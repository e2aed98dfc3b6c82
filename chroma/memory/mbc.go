package memory

// MBC is the bank controller sitting between the bus and the cartridge.
// The set of controllers is closed: only the types in this package
// implement it, selected once per cartridge by newMBC.
type MBC interface {
	// Read returns the byte visible at a ROM (0x0000-0x7FFF) or
	// external RAM (0xA000-0xBFFF) address.
	Read(address uint16) uint8
	// Write updates control registers in the ROM range and stores
	// data in the external RAM range.
	Write(address uint16, value uint8)
	// RAM exposes the cartridge RAM backing store for persistence.
	RAM() []byte
	// Tick advances time dependent peripherals (clock, rumble) by the
	// given amount of 4MHz cycles.
	Tick(cycles int)

	kind() MBCKind
}

func newMBC(cart *Cartridge) MBC {
	switch cart.kind {
	case KindMBC1:
		return NewMBC1(cart.data, cart.romBanks, cart.ramBanks)
	case KindMBC2:
		return NewMBC2(cart.data, cart.romBanks)
	case KindMBC3:
		return NewMBC3(cart.data, cart.romBanks, cart.ramBanks, cart.hasRTC)
	case KindMBC5:
		return NewMBC5(cart.data, cart.romBanks, cart.ramBanks, cart.hasRumble)
	default:
		return NewNoMBC(cart.data, cart.ramBanks)
	}
}

// cartRAM is banked external RAM; reads without any bank return 0xFF.
type cartRAM struct {
	data  []byte
	banks int
}

func newCartRAM(banks int) cartRAM {
	return cartRAM{data: make([]byte, banks*ramBankSize), banks: banks}
}

func (r *cartRAM) read(bank int, address uint16) uint8 {
	if r.banks == 0 {
		return 0xFF
	}
	return r.data[(bank%r.banks)*ramBankSize+int(address&0x1FFF)]
}

func (r *cartRAM) write(bank int, address uint16, value uint8) {
	if r.banks == 0 {
		return
	}
	r.data[(bank%r.banks)*ramBankSize+int(address&0x1FFF)] = value
}

// romOffset converts a bank number and window offset into an index in the
// ROM image; the bank is wrapped around the real bank count.
func romOffset(bank, banks int, address uint16) int {
	return (bank%banks)*romBankSize + int(address&0x3FFF)
}

func isExternalRAM(address uint16) bool {
	return address >= 0xA000 && address <= 0xBFFF
}

// NoMBC is a plain 32KB cartridge, optionally with a single RAM bank
// that is always enabled.
type NoMBC struct {
	rom []uint8
	ram cartRAM
}

// NewNoMBC creates a new NoMBC controller
func NewNoMBC(rom []uint8, ramBanks int) *NoMBC {
	return &NoMBC{rom: rom, ram: newCartRAM(ramBanks)}
}

func (m *NoMBC) Read(address uint16) uint8 {
	if isExternalRAM(address) {
		return m.ram.read(0, address)
	}
	if int(address) < len(m.rom) {
		return m.rom[address]
	}
	return 0xFF
}

func (m *NoMBC) Write(address uint16, value uint8) {
	if isExternalRAM(address) {
		m.ram.write(0, address, value)
	}
}

func (m *NoMBC) RAM() []byte   { return m.ram.data }
func (m *NoMBC) Tick(int)      {}
func (m *NoMBC) kind() MBCKind { return KindNone }

// MBC1 is the first and most common MBC chip. Features include:
//   - up to 2MB ROM and 32KB RAM
//   - a 5 bit register (bank1) selecting the switchable ROM bank, where 0 reads as 1
//   - a 2 bit register (bank2) that either extends the ROM bank number or
//     selects the RAM bank, depending on the banking mode
//   - in mode 1, bank2 also remaps the 0x0000-0x3FFF window
type MBC1 struct {
	rom        []uint8
	romBanks   int
	ram        cartRAM
	ramEnabled bool
	bank1      uint8
	bank2      uint8
	mode       uint8
}

// NewMBC1 creates a new MBC1 controller
func NewMBC1(rom []uint8, romBanks, ramBanks int) *MBC1 {
	return &MBC1{
		rom:      rom,
		romBanks: romBanks,
		ram:      newCartRAM(ramBanks),
		bank1:    1,
	}
}

func (m *MBC1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.bank2) << 5
		}
		return m.rom[romOffset(bank, m.romBanks, address)]
	case address < 0x8000:
		return m.rom[romOffset(m.ROMBank(), m.romBanks, address)]
	case isExternalRAM(address):
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram.read(m.ramBank(), address)
	}
	return 0xFF
}

func (m *MBC1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}
	case address < 0x6000:
		m.bank2 = value & 0x03
	case address < 0x8000:
		m.mode = value & 0x01
	case isExternalRAM(address):
		if m.ramEnabled {
			m.ram.write(m.ramBank(), address, value)
		}
	}
}

// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
func (m *MBC1) ROMBank() int {
	return (int(m.bank2)<<5 | int(m.bank1)) % m.romBanks
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.bank2)
	}
	return 0
}

func (m *MBC1) RAM() []byte   { return m.ram.data }
func (m *MBC1) Tick(int)      {}
func (m *MBC1) kind() MBCKind { return KindMBC1 }

// MBC2 supports up to 256KB ROM and has 512 half-bytes of built-in RAM.
// Bit 8 of the write address selects between the RAM enable register
// (bit clear) and the ROM bank register (bit set). The RAM is mirrored
// through the whole 0xA000-0xBFFF window and its upper nibble reads as 1s.
type MBC2 struct {
	rom        []uint8
	romBanks   int
	ram        []uint8
	ramEnabled bool
	romBank    uint8
}

const mbc2RAMSize = 512

// NewMBC2 creates a new MBC2 controller
func NewMBC2(rom []uint8, romBanks int) *MBC2 {
	return &MBC2{
		rom:      rom,
		romBanks: romBanks,
		ram:      make([]uint8, ramBankSize),
		romBank:  1,
	}
}

func (m *MBC2) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		return m.rom[romOffset(int(m.romBank), m.romBanks, address)]
	case isExternalRAM(address):
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[address%mbc2RAMSize] | 0xF0
	}
	return 0xFF
}

func (m *MBC2) Write(address uint16, value uint8) {
	switch {
	case address < 0x4000:
		if address&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
			return
		}
		m.romBank = value & 0x0F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case isExternalRAM(address):
		if m.ramEnabled {
			m.ram[address%mbc2RAMSize] = value & 0x0F
		}
	}
}

func (m *MBC2) RAM() []byte   { return m.ram }
func (m *MBC2) Tick(int)      {}
func (m *MBC2) kind() MBCKind { return KindMBC2 }

// MBC5 supports up to 8MB ROM through a 9 bit bank number (bank 0 can be
// mapped in the switchable window) and up to 128KB RAM. Rumble cartridges
// wire bit 3 of the RAM bank register to the motor instead.
type MBC5 struct {
	rom        []uint8
	romBanks   int
	ram        cartRAM
	ramEnabled bool
	romBank    uint16
	ramBank    uint8

	hasRumble    bool
	motorOn      bool
	rumbleCycles int
	totalCycles  int
}

// NewMBC5 creates a new MBC5 controller
func NewMBC5(rom []uint8, romBanks, ramBanks int, hasRumble bool) *MBC5 {
	return &MBC5{
		rom:       rom,
		romBanks:  romBanks,
		ram:       newCartRAM(ramBanks),
		romBank:   1,
		hasRumble: hasRumble,
	}
}

func (m *MBC5) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		return m.rom[romOffset(int(m.romBank), m.romBanks, address)]
	case isExternalRAM(address):
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram.read(int(m.ramBank), address)
	}
	return 0xFF
}

func (m *MBC5) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case address < 0x4000:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case address < 0x6000:
		if m.hasRumble {
			m.motorOn = value&0x08 != 0
			m.ramBank = value & 0x07
			return
		}
		m.ramBank = value & 0x0F
	case isExternalRAM(address):
		if m.ramEnabled {
			m.ram.write(int(m.ramBank), address, value)
		}
	}
}

// Tick accumulates how long the rumble motor has been on.
func (m *MBC5) Tick(cycles int) {
	if !m.hasRumble {
		return
	}
	m.totalCycles += cycles
	if m.motorOn {
		m.rumbleCycles += cycles
	}
}

// TakeRumble returns the fraction of time the motor was on since the
// previous call, in the range [0, 1], and resets the accumulator.
func (m *MBC5) TakeRumble() float64 {
	if m.totalCycles == 0 {
		return 0
	}
	strength := float64(m.rumbleCycles) / float64(m.totalCycles)
	m.rumbleCycles, m.totalCycles = 0, 0
	return strength
}

func (m *MBC5) RAM() []byte   { return m.ram.data }
func (m *MBC5) kind() MBCKind { return KindMBC5 }
