package memory

import "github.com/valerio/go-chroma/chroma/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

const (
	selectDirections = 0x10
	selectButtons    = 0x20
)

// Joypad holds the button matrix. A cleared bit means pressed.
type Joypad struct {
	buttons uint8
	dpad    uint8
	line    uint8
}

// NewJoypad creates a new Joypad instance with nothing pressed and no line selected.
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
		line:    0x30,
	}
}

// Read returns the P1 register: bits 6-7 read as 1, bits 4-5 echo the
// selection and the low nibble reports the selected line(s).
func (j *Joypad) Read() uint8 {
	low := uint8(0x0F)
	if j.line&selectDirections == 0 {
		low &= j.dpad
	}
	if j.line&selectButtons == 0 {
		low &= j.buttons
	}
	return 0xC0 | j.line | low
}

// Write sets the joypad line to be read, only bits 4-5 are writable.
func (j *Joypad) Write(value uint8) {
	j.line = value & 0x30
}

// Press updates the joypad state when a key is pressed. It returns true
// when the key's line is selected and its bit falls from 1 to 0, which is
// when hardware raises the joypad interrupt. Repeated presses of a held
// key do not.
func (j *Joypad) Press(key JoypadKey) bool {
	if key < JoypadA {
		wasUp := bit.IsSet(uint8(key), j.dpad)
		j.dpad = bit.Reset(uint8(key), j.dpad)
		return wasUp && j.line&selectDirections == 0
	}
	index := uint8(key - JoypadA)
	wasUp := bit.IsSet(index, j.buttons)
	j.buttons = bit.Reset(index, j.buttons)
	return wasUp && j.line&selectButtons == 0
}

// Release updates the joypad state when a key is released
func (j *Joypad) Release(key JoypadKey) {
	if key < JoypadA {
		j.dpad = bit.Set(uint8(key), j.dpad)
		return
	}
	j.buttons = bit.Set(uint8(key-JoypadA), j.buttons)
}
