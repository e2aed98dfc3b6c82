package cpu

// arith adds or subtracts b and a carry-in from a and sets all four
// flags. Subtraction is performed as a + ^b + ^carry so the same carry
// chain produces both results; half carry and carry are then inverted to
// read as borrows.
func (c *CPU) arith(a, b, carryIn uint8, sub bool) uint8 {
	operand := uint(b)
	cin := uint(carryIn)
	if sub {
		operand = ^operand & 0xFF
		cin ^= 1
	}

	sum := uint(a) + operand + cin
	half := (sum^uint(a)^operand)&0x10 != 0
	carry := sum&0x100 != 0
	if sub {
		half, carry = !half, !carry
	}

	result := uint8(sum)
	c.setFlags(result == 0, sub, half, carry)
	return result
}

func (c *CPU) addA(value uint8) {
	c.af.high = c.arith(c.af.high, value, 0, false)
}

func (c *CPU) adcA(value uint8) {
	c.af.high = c.arith(c.af.high, value, c.flagToBit(carryFlag), false)
}

func (c *CPU) subA(value uint8) {
	c.af.high = c.arith(c.af.high, value, 0, true)
}

func (c *CPU) sbcA(value uint8) {
	c.af.high = c.arith(c.af.high, value, c.flagToBit(carryFlag), true)
}

func (c *CPU) andA(value uint8) {
	c.af.high &= value
	c.setFlags(c.af.high == 0, false, true, false)
}

func (c *CPU) xorA(value uint8) {
	c.af.high ^= value
	c.setFlags(c.af.high == 0, false, false, false)
}

func (c *CPU) orA(value uint8) {
	c.af.high |= value
	c.setFlags(c.af.high == 0, false, false, false)
}

// cpA compares A with value: a subtraction that only keeps the flags.
func (c *CPU) cpA(value uint8) {
	c.arith(c.af.high, value, 0, true)
}

// aluOps is indexed by bits 5-3 of the 0x80-0xBF opcodes and their
// immediate counterparts.
var aluOps = [8]func(*CPU, uint8){
	(*CPU).addA, (*CPU).adcA, (*CPU).subA, (*CPU).sbcA,
	(*CPU).andA, (*CPU).xorA, (*CPU).orA, (*CPU).cpA,
}

// inc increments a value, carry is left untouched.
func (c *CPU) inc(value uint8) uint8 {
	result := value + 1
	c.setFlags(result == 0, false, value&0x0F == 0x0F, c.flag(carryFlag))
	return result
}

// dec decrements a value, carry is left untouched.
func (c *CPU) dec(value uint8) uint8 {
	result := value - 1
	c.setFlags(result == 0, true, value&0x0F == 0x00, c.flag(carryFlag))
	return result
}

// addHL adds a 16 bit value to HL. Z is preserved, half carry comes from bit 11.
func (c *CPU) addHL(value uint16) {
	hl := uint32(c.hl.Get())
	sum := hl + uint32(value)
	half := (sum^hl^uint32(value))&0x1000 != 0
	c.setFlags(c.flag(zeroFlag), false, half, sum&0x10000 != 0)
	c.hl.Set(uint16(sum))
}

// addSPSigned returns SP plus a signed displacement, as used by ADD SP,e
// and LD HL,SP+e. Flags come from the unsigned addition of the low bytes.
func (c *CPU) addSPSigned(offset int8) uint16 {
	value := uint16(int16(offset))
	result := c.sp + value
	carries := c.sp ^ value ^ result
	c.setFlags(false, false, carries&0x10 != 0, carries&0x100 != 0)
	return result
}

// daa adjusts A to packed BCD after an addition or subtraction.
func (c *CPU) daa() {
	a := c.af.high
	sub := c.flag(subFlag)
	carry := c.flag(carryFlag)

	var correction uint8
	if c.flag(halfCarryFlag) || (!sub && a&0x0F > 0x09) {
		correction |= 0x06
	}
	if carry || (!sub && a > 0x99) {
		correction |= 0x60
		carry = true
	}

	if sub {
		a -= correction
	} else {
		a += correction
	}

	c.af.high = a
	c.setFlags(a == 0, sub, false, carry)
}

func (c *CPU) cpl() {
	c.af.high = ^c.af.high
	c.setFlags(c.flag(zeroFlag), true, true, c.flag(carryFlag))
}

func (c *CPU) scf() {
	c.setFlags(c.flag(zeroFlag), false, false, true)
}

func (c *CPU) ccf() {
	c.setFlags(c.flag(zeroFlag), false, false, !c.flag(carryFlag))
}

// Rotates and shifts. All of them set Z from the result; the accumulator
// variants (RLCA, RRCA, RLA, RRA) clear it afterwards.

func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setFlags(result == 0, false, false, false)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

// shiftOps is indexed by bits 5-3 of the 0xCB00-0xCB3F opcodes.
var shiftOps = [8]func(*CPU, uint8) uint8{
	(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
	(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
}

// rotateA runs a rotate on A with Z forced to 0.
func (c *CPU) rotateA(op func(*CPU, uint8) uint8) {
	c.af.high = op(c, c.af.high)
	c.af.low &^= uint8(zeroFlag)
}

// testBit implements BIT b: Z is set when the bit is clear, carry is kept.
func (c *CPU) testBit(index, value uint8) {
	c.setFlags(value&(1<<index) == 0, false, true, c.flag(carryFlag))
}

func (c *CPU) jr(offset int8) {
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) call(address uint16) {
	c.pushStack(c.pc)
	c.pc = address
}

func (c *CPU) rst(vector uint16) {
	c.call(vector)
}
