package video

import (
	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/bit"
)

// Bus is the view of memory the display works through. Reads and writes
// bypass the CPU side effects; VRAM and palettes are addressed explicitly.
type Bus interface {
	ReadDirect(address uint16) uint8
	WriteDirect(address uint16, value uint8)
	ReadVRAM(bank uint8, address uint16) uint8
	PaletteColor(object bool, palette, color uint8) uint16
	RequestInterrupt(interrupt addr.Interrupt)
	// ColorMode is true when a color cartridge runs on color hardware.
	ColorMode() bool
	// CompatMode is true when a monochrome cartridge runs on color hardware.
	CompatMode() bool
	// HBlank gives an HBlank DMA transfer the chance to copy a block.
	HBlank()
}

// Mode is the display state, numbered as in the low bits of STAT.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAM
	ModeDraw
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "HBlank"
	case ModeVBlank:
		return "VBlank"
	case ModeOAM:
		return "OAM"
	default:
		return "Draw"
	}
}

const (
	oamCycles    = 80
	drawCycles   = 172
	hblankCycles = 204
	lineCycles   = oamCycles + drawCycles + hblankCycles

	visibleLines = FramebufferHeight
	lastLine     = 153

	// CyclesPerFrame is the length of one full frame, VBlank included.
	CyclesPerFrame = lineCycles * (lastLine + 1)
)

// LCDC (LCD Control) Register bit values
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG Display (0=Off, 1=On); in color mode BG/window master priority
const (
	lcdcBGEnable     uint8 = 0
	lcdcObjEnable    uint8 = 1
	lcdcObjSize      uint8 = 2
	lcdcBGMap        uint8 = 3
	lcdcTileData     uint8 = 4
	lcdcWindowEnable uint8 = 5
	lcdcWindowMap    uint8 = 6
	lcdcEnable       uint8 = 7
)

// STAT bits other than the mode.
const (
	statCoincidence uint8 = 2
	statHBlankIRQ   uint8 = 3
	statVBlankIRQ   uint8 = 4
	statOAMIRQ      uint8 = 5
	statLYCIRQ      uint8 = 6
)

// Display is the LCD controller: it walks the mode state machine, keeps LY
// and STAT current, raises display interrupts and composes scanlines.
type Display struct {
	bus Bus

	// front is the last complete frame, back the one being drawn.
	front *FrameBuffer
	back  *FrameBuffer

	enabled bool
	mode    Mode
	line    int
	cycles  int
	// remainder holds the odd cycle left over from double speed halving
	remainder int
	// statFired limits STAT interrupts to one per line
	statFired bool
	// windowLine is the window's own row counter; it only moves on lines
	// where the window was drawn
	windowLine int

	frames uint64

	// sprites holds the OAM search result for the current line, taken on
	// entry to OAM mode; spriteCount entries are valid
	sprites     [maxSpritesPerLine]Sprite
	spriteCount int
	priority    SpritePriorityBuffer
	// per pixel background state of the current line, for sprite priority
	bgIndex    [FramebufferWidth]uint8
	bgPriority [FramebufferWidth]bool
}

// New returns a display with the LCD considered off; it starts on the
// first Advance that finds LCDC bit 7 set.
func New(bus Bus) *Display {
	return &Display{
		bus:   bus,
		front: NewFrameBuffer(),
		back:  NewFrameBuffer(),
		mode:  ModeHBlank,
	}
}

// Advance runs the display for cycles CPU clock cycles. In double speed
// the display still runs at normal speed, so it consumes half of them.
func (d *Display) Advance(cycles int, doubleSpeed bool) {
	if doubleSpeed {
		cycles += d.remainder
		d.remainder = cycles & 1
		cycles >>= 1
	}

	lcdc := d.bus.ReadDirect(addr.LCDC)
	if !bit.IsSet(lcdcEnable, lcdc) {
		if d.enabled {
			d.turnOff()
		}
		return
	}
	if !d.enabled {
		d.turnOn()
	}

	d.cycles += cycles
	for d.step() {
	}
}

// step performs at most one mode transition, reporting whether it did.
func (d *Display) step() bool {
	switch d.mode {
	case ModeOAM:
		if d.cycles < oamCycles {
			return false
		}
		d.cycles -= oamCycles
		d.setMode(ModeDraw)

	case ModeDraw:
		if d.cycles < drawCycles {
			return false
		}
		d.cycles -= drawCycles
		d.renderLine()
		d.setMode(ModeHBlank)
		d.bus.HBlank()

	case ModeHBlank:
		if d.cycles < hblankCycles {
			return false
		}
		d.cycles -= hblankCycles
		d.setLine(d.line + 1)
		if d.line == visibleLines {
			d.enterVBlank()
		} else {
			d.enterOAM()
		}

	case ModeVBlank:
		if d.cycles < lineCycles {
			return false
		}
		d.cycles -= lineCycles
		if d.line == lastLine {
			d.windowLine = 0
			d.setLine(0)
			d.enterOAM()
		} else {
			d.setLine(d.line + 1)
		}
	}
	return true
}

func (d *Display) enterVBlank() {
	d.setMode(ModeVBlank)
	d.bus.RequestInterrupt(addr.VBlankInterrupt)

	// the only point where a finished picture becomes visible
	copy(d.front.buffer, d.back.buffer)
	d.frames++
}

func (d *Display) turnOff() {
	d.enabled = false
	d.cycles = 0
	d.remainder = 0
	d.windowLine = 0
	d.spriteCount = 0
	d.line = 0
	d.bus.WriteDirect(addr.LY, 0)
	d.mode = ModeHBlank
	d.writeModeBits()
}

func (d *Display) turnOn() {
	d.enabled = true
	d.cycles = 0
	d.windowLine = 0
	d.setLine(0)
	d.enterOAM()
}

// enterOAM starts a visible line with the sprite search. The selection and
// the sprite height are fixed here; OAM or LCDC writes made later in the
// line only affect the next one.
func (d *Display) enterOAM() {
	height := spriteHeight(d.bus.ReadDirect(addr.LCDC))
	d.spriteCount = len(scanSprites(d.bus, d.line, height, d.sprites[:0]))
	d.setMode(ModeOAM)
}

// statSources maps each mode with a STAT interrupt to its enable bit.
var statSources = map[Mode]uint8{
	ModeHBlank: statHBlankIRQ,
	ModeVBlank: statVBlankIRQ,
	ModeOAM:    statOAMIRQ,
}

func (d *Display) setMode(mode Mode) {
	d.mode = mode
	stat := d.writeModeBits()
	if source, ok := statSources[mode]; ok && bit.IsSet(source, stat) {
		d.requestSTAT()
	}
	d.compareLYC()
}

func (d *Display) writeModeBits() uint8 {
	stat := d.bus.ReadDirect(addr.STAT)&^0x03 | uint8(d.mode)
	d.bus.WriteDirect(addr.STAT, stat)
	return stat
}

// setLine moves LY. A new line rearms the STAT interrupt.
func (d *Display) setLine(line int) {
	d.line = line
	d.statFired = false
	d.bus.WriteDirect(addr.LY, uint8(line))
	d.compareLYC()
}

// compareLYC updates the coincidence flag and raises STAT on a match.
func (d *Display) compareLYC() {
	stat := d.bus.ReadDirect(addr.STAT)
	match := d.bus.ReadDirect(addr.LYC) == uint8(d.line)
	d.bus.WriteDirect(addr.STAT, bit.SetTo(statCoincidence, stat, match))
	if match && bit.IsSet(statLYCIRQ, stat) {
		d.requestSTAT()
	}
}

func (d *Display) requestSTAT() {
	if d.statFired {
		return
	}
	d.statFired = true
	d.bus.RequestInterrupt(addr.LCDSTATInterrupt)
}

// GetFrame returns the last published frame. The buffer is reused for the
// next frame; callers that keep it must Clone it.
func (d *Display) GetFrame() *FrameBuffer {
	return d.front
}

// FrameCount returns how many frames have been published.
func (d *Display) FrameCount() uint64 {
	return d.frames
}

func (d *Display) Mode() Mode {
	return d.mode
}

func (d *Display) Line() int {
	return d.line
}

// Enabled reports whether the LCD is running.
func (d *Display) Enabled() bool {
	return d.enabled
}
