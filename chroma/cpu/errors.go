package cpu

import "fmt"

// DecodeError is the fault raised when the CPU fetches an opcode that does
// not exist. Execution cannot continue past it.
type DecodeError struct {
	Opcode uint8
	PC     uint16
	State  State
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at 0x%04X (%s)", e.Opcode, e.PC, e.State)
}
