package debug

// CPUState contains all CPU register information for debugging
type CPUState struct {
	A uint8
	F uint8
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8

	SP     uint16
	PC     uint16
	IME    bool
	Halted bool
	Cycles uint64
	Flags  string
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// Read returns the byte at address, 0 outside the snapshot.
func (s *MemorySnapshot) Read(address uint16) uint8 {
	offset := int(address) - int(s.StartAddr)
	if offset < 0 || offset >= len(s.Bytes) {
		return 0
	}
	return s.Bytes[offset]
}

// Contains reports whether address was captured.
func (s *MemorySnapshot) Contains(address uint16) bool {
	offset := int(address) - int(s.StartAddr)
	return offset >= 0 && offset < len(s.Bytes)
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerPaused:
		return "PAUSED"
	case DebuggerStepInstruction:
		return "STEP"
	case DebuggerStepFrame:
		return "FRAME"
	default:
		return "RUNNING"
	}
}

// Data contains all debug information needed by debug displays
type Data struct {
	OAM             *OAMData
	CPU             *CPUState
	Memory          *MemorySnapshot
	DebuggerState   DebuggerState
	InterruptEnable uint8 // IE register at 0xFFFF
	InterruptFlags  uint8 // IF register at 0xFF0F

	Model       string
	DoubleSpeed bool
	Mode        string // display mode
	Line        int
	Fault       error
}
