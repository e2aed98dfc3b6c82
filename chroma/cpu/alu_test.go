package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestINCAOverflow(t *testing.T) {
	for _, carry := range []bool{false, true} {
		cpu, _ := newTestCPU(t, 0x3C)
		cpu.af.high = 0xFF
		cpu.setFlags(false, true, false, carry)

		cpu.Step()

		assert.Equal(t, uint8(0x00), cpu.af.high)
		assert.True(t, cpu.flag(zeroFlag))
		assert.True(t, cpu.flag(halfCarryFlag))
		assert.False(t, cpu.flag(subFlag))
		assert.Equal(t, carry, cpu.flag(carryFlag), "carry unchanged")
	}
}

func TestDEC(t *testing.T) {
	cpu, _ := newTestCPU(t)
	testCases := []struct {
		desc  string
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "decreases", arg: 0x0B, want: 0x0A, flags: subFlag},
		{desc: "sets zero flag", arg: 0x01, want: 0x00, flags: zeroFlag | subFlag},
		{desc: "borrows from bit 4", arg: 0x10, want: 0x0F, flags: subFlag | halfCarryFlag},
		{desc: "wraps", arg: 0x00, want: 0xFF, flags: subFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.af.low = 0
			got := cpu.dec(tC.arg)
			assert.Equal(t, tC.want, got)
			assert.Equal(t, uint8(tC.flags), cpu.af.low)
		})
	}
}

// TestArithmeticTruthTable checks every operand pair and carry-in of
// ADD/ADC/SUB/SBC against a plain integer reference.
func TestArithmeticTruthTable(t *testing.T) {
	cpu, _ := newTestCPU(t)

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			for cin := 0; cin < 2; cin++ {
				cpu.af.high = uint8(a)
				cpu.setFlags(false, false, false, cin == 1)
				cpu.adcA(uint8(b))

				sum := a + b + cin
				half := (a&0x0F)+(b&0x0F)+cin > 0x0F
				if cpu.af.high != uint8(sum) || cpu.flag(halfCarryFlag) != half ||
					cpu.flag(carryFlag) != (sum > 0xFF) || cpu.flag(zeroFlag) != (uint8(sum) == 0) {
					require.Failf(t, "ADC mismatch", "a=%02X b=%02X cin=%d got A=%02X F=%02X", a, b, cin, cpu.af.high, cpu.af.low)
				}

				cpu.af.high = uint8(a)
				cpu.setFlags(false, false, false, cin == 1)
				cpu.sbcA(uint8(b))

				diff := a - b - cin
				borrowHalf := (a&0x0F)-(b&0x0F)-cin < 0
				if cpu.af.high != uint8(diff) || cpu.flag(halfCarryFlag) != borrowHalf ||
					cpu.flag(carryFlag) != (diff < 0) || !cpu.flag(subFlag) {
					require.Failf(t, "SBC mismatch", "a=%02X b=%02X cin=%d got A=%02X F=%02X", a, b, cin, cpu.af.high, cpu.af.low)
				}
			}
		}
	}
}

func TestArithmeticBoundaries(t *testing.T) {
	cpu, _ := newTestCPU(t)
	testCases := []struct {
		desc  string
		op    func(*CPU, uint8)
		a, b  uint8
		want  uint8
		flags Flag
	}{
		{"0x0F+0x01 half carry", (*CPU).addA, 0x0F, 0x01, 0x10, halfCarryFlag},
		{"0xFF+0x01 wraps", (*CPU).addA, 0xFF, 0x01, 0x00, zeroFlag | halfCarryFlag | carryFlag},
		{"0x10-0x01 half borrow", (*CPU).subA, 0x10, 0x01, 0x0F, subFlag | halfCarryFlag},
		{"0x00-0x01 borrow", (*CPU).subA, 0x00, 0x01, 0xFF, subFlag | halfCarryFlag | carryFlag},
		{"CP equal", (*CPU).cpA, 0x42, 0x42, 0x42, zeroFlag | subFlag},
		{"AND sets half carry", (*CPU).andA, 0xF0, 0x0F, 0x00, zeroFlag | halfCarryFlag},
		{"XOR", (*CPU).xorA, 0xFF, 0x0F, 0xF0, 0},
		{"OR", (*CPU).orA, 0x00, 0x00, 0x00, zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.af.Set(uint16(tC.a) << 8)
			tC.op(cpu, tC.b)
			assert.Equal(t, tC.want, cpu.af.high)
			assert.Equal(t, uint8(tC.flags), cpu.af.low)
		})
	}
}

func TestAddHLKeepsZero(t *testing.T) {
	cpu, _ := newTestCPU(t)
	cpu.setFlags(true, true, false, false)
	cpu.hl.Set(0x0FFF)

	cpu.addHL(0x0001)

	assert.Equal(t, uint16(0x1000), cpu.hl.Get())
	assert.Equal(t, uint8(zeroFlag|halfCarryFlag), cpu.af.low)

	cpu.hl.Set(0xFFFF)
	cpu.addHL(0x0001)
	assert.Equal(t, uint8(zeroFlag|halfCarryFlag|carryFlag), cpu.af.low)
}

func TestAddSPSigned(t *testing.T) {
	cpu, _ := newTestCPU(t)
	testCases := []struct {
		sp     uint16
		offset int8
		want   uint16
		flags  Flag
	}{
		{0xFFF8, 0x08, 0x0000, halfCarryFlag | carryFlag},
		{0x000F, 0x01, 0x0010, halfCarryFlag},
		{0x0000, -1, 0xFFFF, 0},
		{0x00FF, -1, 0x00FE, halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		cpu.sp = tC.sp
		cpu.setFlags(true, true, false, false)
		assert.Equal(t, tC.want, cpu.addSPSigned(tC.offset))
		assert.Equal(t, uint8(tC.flags), cpu.af.low, "SP=%04X e=%d", tC.sp, tC.offset)
	}
}

func TestDAA(t *testing.T) {
	cpu, _ := newTestCPU(t)
	testCases := []struct {
		desc  string
		op    func(*CPU, uint8)
		a, b  uint8
		want  uint8
		carry bool
	}{
		{"15+27", (*CPU).addA, 0x15, 0x27, 0x42, false},
		{"99+01", (*CPU).addA, 0x99, 0x01, 0x00, true},
		{"50+50", (*CPU).addA, 0x50, 0x50, 0x00, true},
		{"42-15", (*CPU).subA, 0x42, 0x15, 0x27, false},
		{"00-01", (*CPU).subA, 0x00, 0x01, 0x99, true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.af.high = tC.a
			tC.op(cpu, tC.b)
			cpu.daa()
			assert.Equal(t, tC.want, cpu.af.high)
			assert.Equal(t, tC.carry, cpu.flag(carryFlag))
			assert.False(t, cpu.flag(halfCarryFlag))
		})
	}
}

func TestRotates(t *testing.T) {
	cpu, _ := newTestCPU(t)

	t.Run("RLCA clears Z", func(t *testing.T) {
		cpu.af.Set(0x0000)
		cpu.rotateA((*CPU).rlc)
		assert.Equal(t, uint8(0), cpu.af.low)
	})

	t.Run("RLC r sets Z", func(t *testing.T) {
		cpu.af.low = 0
		assert.Equal(t, uint8(0), cpu.rlc(0))
		assert.True(t, cpu.flag(zeroFlag))
	})

	t.Run("RL through carry", func(t *testing.T) {
		cpu.setFlags(false, false, false, true)
		assert.Equal(t, uint8(0x01), cpu.rl(0x80))
		assert.True(t, cpu.flag(carryFlag))
	})

	t.Run("RR through carry", func(t *testing.T) {
		cpu.setFlags(false, false, false, true)
		assert.Equal(t, uint8(0x80), cpu.rr(0x01))
		assert.True(t, cpu.flag(carryFlag))
	})

	t.Run("SRA keeps sign", func(t *testing.T) {
		assert.Equal(t, uint8(0xC0), cpu.sra(0x81))
		assert.True(t, cpu.flag(carryFlag))
	})

	t.Run("SWAP", func(t *testing.T) {
		assert.Equal(t, uint8(0xBA), cpu.swap(0xAB))
		assert.Equal(t, uint8(0), cpu.af.low)
	})
}

func TestBIT(t *testing.T) {
	cpu, _ := newTestCPU(t)
	cpu.setFlags(false, true, false, true)

	cpu.testBit(7, 0x7F)
	assert.Equal(t, uint8(zeroFlag|halfCarryFlag|carryFlag), cpu.af.low)

	cpu.testBit(0, 0x01)
	assert.Equal(t, uint8(halfCarryFlag|carryFlag), cpu.af.low)
}

func TestSCFAndCCF(t *testing.T) {
	cpu, _ := newTestCPU(t)
	cpu.setFlags(true, true, true, false)

	cpu.scf()
	assert.Equal(t, uint8(zeroFlag|carryFlag), cpu.af.low)

	cpu.ccf()
	assert.Equal(t, uint8(zeroFlag), cpu.af.low)

	cpu.af.high = 0x35
	cpu.cpl()
	assert.Equal(t, uint8(0xCA), cpu.af.high)
	assert.Equal(t, uint8(zeroFlag|subFlag|halfCarryFlag), cpu.af.low)
}
