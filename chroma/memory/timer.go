package memory

import (
	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/bit"
)

// timerPeriods maps TAC input clock select (bits 1-0) to the number of
// cycles between TIMA increments:
//
//	00 -> 1024 (4096 Hz)
//	01 -> 16   (262144 Hz)
//	10 -> 64   (65536 Hz)
//	11 -> 256  (16384 Hz)
var timerPeriods = [4]int{1024, 16, 64, 256}

// Timer encapsulates the DIV/TIMA/TMA/TAC behavior.
// The divider is a free running 16 bit counter; DIV exposes its upper byte.
// TIMA counts on its own accumulator so a TAC frequency change does not
// produce spurious increments.
type Timer struct {
	divider     uint16
	accumulator int

	tima byte
	tma  byte
	tac  byte

	// IRQ requester callback
	TimerInterruptHandler func()
}

// SetSeed initializes the internal divider counter, as left by the boot ROM.
func (t *Timer) SetSeed(seed uint16) {
	t.divider = seed
	t.accumulator = 0
}

// Tick advances the divider and, if enabled, TIMA.
func (t *Timer) Tick(cycles int) {
	t.divider += uint16(cycles)

	if !bit.IsSet(2, t.tac) {
		return
	}

	t.accumulator += cycles
	period := timerPeriods[t.tac&0x03]
	for t.accumulator >= period {
		t.accumulator -= period
		t.tima++
		if t.tima == 0 {
			t.tima = t.tma
			if t.TimerInterruptHandler != nil {
				t.TimerInterruptHandler()
			}
		}
	}
}

// Divider returns the full internal counter.
func (t *Timer) Divider() uint16 {
	return t.divider
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return byte(t.divider >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// any write clears the whole counter, not only the visible byte
		t.divider = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
