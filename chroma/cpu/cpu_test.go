package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chroma/chroma/addr"
	"github.com/valerio/go-chroma/chroma/memory"
)

const programStart uint16 = 0xC000

type nopDisplay struct {
	cycles int
}

func (d *nopDisplay) Advance(cycles int, doubleSpeed bool) { d.cycles += cycles }

// newTestCPU returns a CPU executing program from work RAM, with IF
// cleared so nothing is dispatched unless a test asks for it.
func newTestCPU(t *testing.T, program ...byte) (*CPU, *memory.MMU) {
	t.Helper()
	mmu := memory.New()
	return loadProgram(mmu, DMG, program), mmu
}

func loadProgram(mmu *memory.MMU, model Model, program []byte) *CPU {
	for i, b := range program {
		mmu.Write(programStart+uint16(i), b)
	}
	mmu.SetIF(0)
	cpu := New(mmu, &nopDisplay{}, model)
	cpu.pc = programStart
	return cpu
}

func newColorCPU(t *testing.T, program ...byte) (*CPU, *memory.MMU) {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x143] = 0x80
	cart, err := memory.NewCartridgeWithData(rom)
	require.NoError(t, err)
	mmu, err := memory.NewWithCartridge(cart, memory.ModelCGB, nil)
	require.NoError(t, err)
	return loadProgram(mmu, CGB, program), mmu
}

func TestPostBootRegisters(t *testing.T) {
	tests := []struct {
		model          Model
		af, bc, de, hl uint16
	}{
		{DMG, 0x01B0, 0x0013, 0x00D8, 0x014D},
		{CGB, 0x1180, 0x0000, 0xFF56, 0x000D},
		{CGBCompat, 0x0180, 0x0000, 0x0008, 0x007C},
	}
	for _, tt := range tests {
		cpu := New(memory.New(), &nopDisplay{}, tt.model)
		state := cpu.State()
		assert.Equal(t, tt.af, state.AF)
		assert.Equal(t, tt.bc, state.BC)
		assert.Equal(t, tt.de, state.DE)
		assert.Equal(t, tt.hl, state.HL)
		assert.Equal(t, uint16(0xFFFE), state.SP)
		assert.Equal(t, uint16(0x0100), state.PC)
	}
}

func TestResetWithoutBootState(t *testing.T) {
	cpu := New(memory.New(), &nopDisplay{}, DMG)
	cpu.Reset(false)
	assert.Equal(t, State{}, cpu.State())
}

func TestStepCycles(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		setup   func(*CPU)
		want    int
	}{
		{"NOP", []byte{0x00}, nil, 4},
		{"LD BC,nn", []byte{0x01, 0x34, 0x12}, nil, 12},
		{"LD (HL),n", []byte{0x36, 0x00}, func(c *CPU) { c.hl.Set(0xC100) }, 12},
		{"JR taken", []byte{0x18, 0x00}, nil, 12},
		{"JR NZ not taken", []byte{0x20, 0x00}, func(c *CPU) { c.setFlags(true, false, false, false) }, 8},
		{"JR NZ taken", []byte{0x20, 0x00}, func(c *CPU) { c.setFlags(false, false, false, false) }, 12},
		{"JP nn", []byte{0xC3, 0x00, 0xC0}, nil, 16},
		{"JP Z not taken", []byte{0xCA, 0x00, 0xC0}, func(c *CPU) { c.setFlags(false, false, false, false) }, 12},
		{"CALL nn", []byte{0xCD, 0x00, 0xC0}, nil, 24},
		{"CALL C not taken", []byte{0xDC, 0x00, 0xC0}, func(c *CPU) { c.setFlags(false, false, false, false) }, 12},
		{"RET C taken", []byte{0xD8}, func(c *CPU) { c.setFlags(false, false, false, true) }, 20},
		{"RET C not taken", []byte{0xD8}, func(c *CPU) { c.setFlags(false, false, false, false) }, 8},
		{"RST 0x38", []byte{0xFF}, nil, 16},
		{"PUSH BC", []byte{0xC5}, nil, 16},
		{"ADD SP,e", []byte{0xE8, 0x01}, nil, 16},
		{"LD (nn),SP", []byte{0x08, 0x00, 0xC1}, nil, 20},
		{"CB RLC B", []byte{0xCB, 0x00}, nil, 8},
		{"CB BIT 7,(HL)", []byte{0xCB, 0x7E}, func(c *CPU) { c.hl.Set(0xC100) }, 12},
		{"CB SET 0,(HL)", []byte{0xCB, 0xC6}, func(c *CPU) { c.hl.Set(0xC100) }, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, tt.program...)
			if tt.setup != nil {
				tt.setup(cpu)
			}
			assert.Equal(t, tt.want, cpu.Step())
			assert.Equal(t, tt.want, cpu.LastCycles())
		})
	}
}

func TestStepAdvancesDisplayAndTimers(t *testing.T) {
	mmu := memory.New()
	display := &nopDisplay{}
	cpu := loadProgram(mmu, DMG, make([]byte, 64))
	cpu.display = display
	mmu.Write(addr.DIV, 0)

	total := 0
	for i := 0; i < 64; i++ {
		total += cpu.Step()
	}

	assert.Equal(t, 256, total)
	assert.Equal(t, 256, display.cycles)
	assert.Equal(t, uint8(1), mmu.Read(addr.DIV))
	assert.Equal(t, uint64(64), cpu.InstructionCount())
	assert.Equal(t, uint64(256), cpu.GetCycles())
}

func TestProgram(t *testing.T) {
	// LD A,0x05; LD B,0x03; ADD A,B; LD (0xC100),A; INC HL; DEC B; JR NZ,-4
	cpu, mmu := newTestCPU(t,
		0x3E, 0x05,
		0x06, 0x03,
		0x80,
		0xEA, 0x00, 0xC1,
		0x23,
		0x05,
		0x20, 0xFC,
	)
	cpu.hl.Set(0)

	for cpu.pc != programStart+12 {
		require.NotZero(t, cpu.Step())
	}

	assert.Equal(t, uint8(0x08), mmu.Read(0xC100))
	assert.Equal(t, uint16(3), cpu.hl.Get())
	assert.Equal(t, uint8(0), cpu.bc.High())
	assert.True(t, cpu.flag(zeroFlag))
}

func TestStackRoundTrip(t *testing.T) {
	// PUSH BC; POP AF
	cpu, _ := newTestCPU(t, 0xC5, 0xF1)
	cpu.sp = 0xD000
	cpu.bc.Set(0x12FF)

	cpu.Step()
	assert.Equal(t, uint16(0xCFFE), cpu.sp)
	cpu.Step()

	assert.Equal(t, uint16(0xD000), cpu.sp)
	assert.Equal(t, uint16(0x12F0), cpu.af.Get(), "low nibble of F always reads 0")
}

func TestCallAndReturn(t *testing.T) {
	// CALL 0xC010 ... at 0xC010: RET
	cpu, mmu := newTestCPU(t, 0xCD, 0x10, 0xC0)
	mmu.Write(0xC010, 0xC9)
	cpu.sp = 0xD000

	cpu.Step()
	assert.Equal(t, uint16(0xC010), cpu.pc)
	assert.Equal(t, uint8(0xC0), mmu.Read(0xCFFF))
	assert.Equal(t, uint8(0x03), mmu.Read(0xCFFE))

	cpu.Step()
	assert.Equal(t, uint16(0xC003), cpu.pc)
	assert.Equal(t, uint16(0xD000), cpu.sp)
}

func TestIllegalOpcodeFaults(t *testing.T) {
	for _, opcode := range []byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		cpu, _ := newTestCPU(t, 0x00, opcode)

		assert.Equal(t, 4, cpu.Step())
		assert.Equal(t, 0, cpu.Step(), "opcode 0x%02X", opcode)
		assert.Equal(t, 0, cpu.Step(), "a faulted cpu stays stopped")

		var decodeErr *DecodeError
		require.True(t, errors.As(cpu.Fault(), &decodeErr))
		assert.Equal(t, opcode, decodeErr.Opcode)
		assert.Equal(t, programStart+1, decodeErr.PC)
		assert.Contains(t, decodeErr.Error(), "PC=C002")
	}
}

func TestStopSwitchesSpeed(t *testing.T) {
	cpu, mmu := newColorCPU(t, 0x10, 0x00, 0x00)
	mmu.Write(addr.KEY1, 0x01)

	cpu.Step()

	assert.Equal(t, programStart+2, cpu.pc)
	assert.True(t, mmu.DoubleSpeed())
	assert.Equal(t, uint8(0xFE), mmu.Read(addr.KEY1))
}

func TestStopWithoutSwitchIsNop(t *testing.T) {
	cpu, mmu := newTestCPU(t, 0x10, 0x00)
	assert.Equal(t, 4, cpu.Step())
	assert.Equal(t, programStart+2, cpu.pc)
	assert.False(t, mmu.DoubleSpeed())
}

func TestCurrentInstruction(t *testing.T) {
	cpu, _ := newTestCPU(t, 0xCB, 0x11, 0x3C)
	assert.Equal(t, "RL C", cpu.CurrentInstruction())
	cpu.Step()
	assert.Equal(t, "INC A", cpu.CurrentInstruction())
}

func TestDisassemble(t *testing.T) {
	program := []byte{0x00, 0x3E, 0x42, 0xC3, 0x50, 0x01, 0xCB, 0x7C, 0xD3}
	read := func(address uint16) uint8 {
		if int(address) < len(program) {
			return program[address]
		}
		return 0
	}

	tests := []struct {
		address uint16
		want    string
		length  int
	}{
		{0, "NOP", 1},
		{1, "LD A,n", 2},
		{3, "JP nn", 3},
		{6, "BIT 7,H", 2},
		{8, "ILLEGAL", 1},
	}
	for _, tt := range tests {
		text, length := Disassemble(read, tt.address)
		assert.Contains(t, text, tt.want)
		assert.Equal(t, tt.length, length)
	}
}
