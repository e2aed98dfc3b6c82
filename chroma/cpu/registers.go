package cpu

// RegisterPair is a 16 bit register made of two 8 bit halves, addressable
// either as a whole or by half.
type RegisterPair struct {
	high uint8
	low  uint8
	// zeroBits are low byte bits that do not exist in hardware and always
	// read 0. Only AF uses them: the low nibble of F.
	zeroBits uint8
}

func newFlagsPair() RegisterPair {
	return RegisterPair{zeroBits: 0x0F}
}

// Get returns the full 16 bit value.
func (r RegisterPair) Get() uint16 {
	return uint16(r.high)<<8 | uint16(r.low)
}

// Set stores a 16 bit value.
func (r *RegisterPair) Set(value uint16) {
	r.high = uint8(value >> 8)
	r.low = uint8(value) &^ r.zeroBits
}

func (r RegisterPair) High() uint8 { return r.high }
func (r RegisterPair) Low() uint8  { return r.low }

func (r *RegisterPair) SetHigh(value uint8) { r.high = value }
func (r *RegisterPair) SetLow(value uint8)  { r.low = value &^ r.zeroBits }

// Flag is one of the 4 possible flags used in the flag register (low part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// 8 bit register operand encoding shared by the LD r,r', ALU and CB blocks.
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLIndirect
	regA
)

// reg returns the storage of an 8 bit register, nil for (HL).
func (c *CPU) reg(index uint8) *uint8 {
	switch index {
	case regB:
		return &c.bc.high
	case regC:
		return &c.bc.low
	case regD:
		return &c.de.high
	case regE:
		return &c.de.low
	case regH:
		return &c.hl.high
	case regL:
		return &c.hl.low
	case regA:
		return &c.af.high
	}
	return nil
}

func (c *CPU) readReg(index uint8) uint8 {
	if index == regHLIndirect {
		return c.bus.Read(c.hl.Get())
	}
	return *c.reg(index)
}

func (c *CPU) writeReg(index uint8, value uint8) {
	if index == regHLIndirect {
		c.bus.Write(c.hl.Get(), value)
		return
	}
	*c.reg(index) = value
}

func (c *CPU) flag(f Flag) bool {
	return c.af.low&uint8(f) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(f Flag) uint8 {
	if c.flag(f) {
		return 1
	}
	return 0
}

// setFlags rewrites the whole flag register.
func (c *CPU) setFlags(z, n, h, carry bool) {
	var f uint8
	if z {
		f |= uint8(zeroFlag)
	}
	if n {
		f |= uint8(subFlag)
	}
	if h {
		f |= uint8(halfCarryFlag)
	}
	if carry {
		f |= uint8(carryFlag)
	}
	c.af.SetLow(f)
}
