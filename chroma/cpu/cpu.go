package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/bit"
)

// Bus is what the CPU needs from the memory controller.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// Advance steps every bus peripheral by the cycles an instruction took.
	Advance(cycles int, doubleSpeed bool)
	// UpdateTimers steps DIV and TIMA.
	UpdateTimers(cycles int)

	IF() uint8
	SetIF(value uint8)
	IE() uint8

	DoubleSpeed() bool
	// SwitchSpeed toggles CPU speed if a switch was armed through KEY1.
	SwitchSpeed() bool
}

// Display is advanced in lock step with the CPU.
type Display interface {
	Advance(cycles int, doubleSpeed bool)
}

// Model selects the register state left behind by the boot ROM.
type Model uint8

const (
	DMG Model = iota
	CGB
	// CGBCompat is a Game Boy Color running a monochrome cartridge.
	CGBCompat
)

const (
	baseInterruptAddress uint16 = 0x40
	haltedCycles                = 4
	wakeCycles                  = 4
	dispatchCycles              = 20
)

type bootState struct {
	af, bc, de, hl uint16
}

var postBoot = map[Model]bootState{
	DMG:       {af: 0x01B0, bc: 0x0013, de: 0x00D8, hl: 0x014D},
	CGB:       {af: 0x1180, bc: 0x0000, de: 0xFF56, hl: 0x000D},
	CGBCompat: {af: 0x0180, bc: 0x0000, de: 0x0008, hl: 0x007C},
}

// CPU is the main struct holding the processor state
type CPU struct {
	af RegisterPair
	bc RegisterPair
	de RegisterPair
	hl RegisterPair
	sp uint16
	pc uint16

	// interruptsEnabled is IME. eiPending delays EI by one instruction.
	interruptsEnabled bool
	eiPending         bool
	halted            bool

	currentOpcode uint16
	lastCycles    int
	// carry holds interrupt wake/dispatch cycles, which reach the display
	// and bus on the following step.
	carry        int
	cycles       uint64
	instructions uint64
	fault        *DecodeError

	model   Model
	bus     Bus
	display Display
}

// New returns a CPU connected to the bus and display, in the state the
// boot ROM leaves it in.
func New(bus Bus, display Display, model Model) *CPU {
	c := &CPU{
		af:      newFlagsPair(),
		model:   model,
		bus:     bus,
		display: display,
	}
	c.Reset(true)
	return c
}

// Reset clears the processor. With postBoot the registers are preset as
// if the boot ROM had run, otherwise execution starts at 0x0000.
func (c *CPU) Reset(postBootState bool) {
	c.af.Set(0)
	c.bc.Set(0)
	c.de.Set(0)
	c.hl.Set(0)
	c.sp, c.pc = 0, 0
	c.interruptsEnabled, c.eiPending, c.halted = false, false, false
	c.lastCycles, c.carry, c.cycles, c.instructions = 0, 0, 0, 0
	c.fault = nil

	if !postBootState {
		return
	}
	state := postBoot[c.model]
	c.af.Set(state.af)
	c.bc.Set(state.bc)
	c.de.Set(state.de)
	c.hl.Set(state.hl)
	c.sp = 0xFFFE
	c.pc = 0x0100
}

// Step runs one instruction, or one idle slot while halted, then advances
// display and bus by the elapsed cycles, services interrupts and updates
// the timers. It returns the cycles consumed, 0 once the CPU has faulted.
func (c *CPU) Step() int {
	if c.fault != nil {
		return 0
	}

	cycles := haltedCycles
	if !c.halted {
		if c.eiPending {
			c.eiPending = false
			c.interruptsEnabled = true
		}
		cycles = c.execute()
		if c.fault != nil {
			return 0
		}
		c.instructions++
	}

	doubleSpeed := c.bus.DoubleSpeed()
	elapsed := cycles + c.carry
	c.display.Advance(elapsed, doubleSpeed)
	c.bus.Advance(elapsed, doubleSpeed)

	c.carry = c.handleInterrupts()
	cycles += c.carry
	c.bus.UpdateTimers(cycles)

	c.cycles += uint64(cycles)
	c.lastCycles = cycles
	return cycles
}

func (c *CPU) execute() int {
	opcode := c.readImmediate()
	if opcode == 0xCB {
		cb := c.readImmediate()
		c.currentOpcode = 0xCB00 | uint16(cb)
		return opcodeCyclesCB[cb] + opcodesCB[cb](c)
	}
	c.currentOpcode = uint16(opcode)
	return opcodeCycles[opcode] + opcodes[opcode](c)
}

// handleInterrupts wakes the CPU from HALT on any pending enabled request
// and, with IME set, dispatches the highest priority one. It returns the
// cycles spent doing so.
func (c *CPU) handleInterrupts() int {
	pending := c.bus.IF() & c.bus.IE() & addr.InterruptMask
	if pending == 0 {
		return 0
	}

	spent := 0
	if c.halted {
		c.halted = false
		spent += wakeCycles
	}
	if !c.interruptsEnabled {
		return spent
	}

	// bit 0 (VBlank) has the highest priority
	for i := uint8(0); i < 5; i++ {
		if !bit.IsSet(i, pending) {
			continue
		}
		c.interruptsEnabled = false
		c.bus.SetIF(bit.Reset(i, c.bus.IF()))
		c.pushStack(c.pc)
		// handlers are 8 bytes apart: 0x40 - 0x48 - 0x50 - 0x58 - 0x60
		c.pc = baseInterruptAddress + uint16(i)*8
		return spent + dispatchCycles
	}
	return spent
}

// illegal handles the opcodes that do not exist on the chip. The CPU
// faults and stays stopped for the rest of the session.
func illegal(c *CPU) int {
	c.fault = &DecodeError{
		Opcode: uint8(c.currentOpcode),
		PC:     c.pc - 1,
		State:  c.State(),
	}
	slog.Error("illegal opcode, cpu halted",
		"opcode", fmt.Sprintf("0x%02X", c.fault.Opcode),
		"pc", fmt.Sprintf("0x%04X", c.fault.PC),
		"registers", c.fault.State.String())
	return 0
}

// readImmediate returns the byte at PC and moves PC past it. This value
// is known as immediate ('n' in mnemonics).
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord reads a little endian word at PC ('nn' in mnemonics).
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

// readSignedImmediate reads a signed displacement ('e' in mnemonics).
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// Fault returns the decode error that stopped the CPU, if any.
func (c *CPU) Fault() error {
	if c.fault == nil {
		return nil
	}
	return c.fault
}

// LastCycles returns the cycles consumed by the previous Step.
func (c *CPU) LastCycles() int { return c.lastCycles }

// InstructionCount returns how many instructions have been executed.
func (c *CPU) InstructionCount() uint64 { return c.instructions }

// Debug getter methods for register display
func (c *CPU) GetA() uint8       { return c.af.high }
func (c *CPU) GetF() uint8       { return c.af.low }
func (c *CPU) GetBC() uint16     { return c.bc.Get() }
func (c *CPU) GetDE() uint16     { return c.de.Get() }
func (c *CPU) GetHL() uint16     { return c.hl.Get() }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }

// Interrupt state getters
func (c *CPU) GetIME() bool   { return c.interruptsEnabled }
func (c *CPU) IsHalted() bool { return c.halted }

// State is a copy of the register file.
type State struct {
	AF, BC, DE, HL, SP, PC uint16
	IME, Halted            bool
}

// State returns a snapshot of the registers.
func (c *CPU) State() State {
	return State{
		AF:     c.af.Get(),
		BC:     c.bc.Get(),
		DE:     c.de.Get(),
		HL:     c.hl.Get(),
		SP:     c.sp,
		PC:     c.pc,
		IME:    c.interruptsEnabled,
		Halted: c.halted,
	}
}

func (s State) String() string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X IME=%t HALT=%t",
		s.AF, s.BC, s.DE, s.HL, s.SP, s.PC, s.IME, s.Halted)
}

// GetFlagString returns a human-readable representation of the flag register
func (c *CPU) GetFlagString() string {
	flags := []byte("----")
	for i, f := range []Flag{zeroFlag, subFlag, halfCarryFlag, carryFlag} {
		if c.flag(f) {
			flags[i] = "ZNHC"[i]
		}
	}
	return string(flags)
}
