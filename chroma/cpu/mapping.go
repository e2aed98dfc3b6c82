package cpu

import (
	"fmt"

	"github.com/valerio/go-chroma/chroma/bit"
)

// Opcode represents a function that executes an opcode. It returns the
// extra cycles spent on top of the table cost, which is only non zero for
// taken conditional branches.
type Opcode func(*CPU) int

type condition func(*CPU) bool

func ifNotZero(c *CPU) bool  { return !c.flag(zeroFlag) }
func ifZero(c *CPU) bool     { return c.flag(zeroFlag) }
func ifNotCarry(c *CPU) bool { return !c.flag(carryFlag) }
func ifCarry(c *CPU) bool    { return c.flag(carryFlag) }

var opcodes = [256]Opcode{
	0x00: opcode0x00, 0x01: opcode0x01, 0x02: opcode0x02, 0x03: opcode0x03, 0x07: opcode0x07,
	0x08: opcode0x08, 0x09: opcode0x09, 0x0A: opcode0x0A, 0x0B: opcode0x0B, 0x0F: opcode0x0F,
	0x10: opcode0x10, 0x11: opcode0x11, 0x12: opcode0x12, 0x13: opcode0x13, 0x17: opcode0x17,
	0x18: opcode0x18, 0x19: opcode0x19, 0x1A: opcode0x1A, 0x1B: opcode0x1B, 0x1F: opcode0x1F,
	0x20: jrIf(ifNotZero), 0x21: opcode0x21, 0x22: opcode0x22, 0x23: opcode0x23, 0x27: opcode0x27,
	0x28: jrIf(ifZero), 0x29: opcode0x29, 0x2A: opcode0x2A, 0x2B: opcode0x2B, 0x2F: opcode0x2F,
	0x30: jrIf(ifNotCarry), 0x31: opcode0x31, 0x32: opcode0x32, 0x33: opcode0x33, 0x37: opcode0x37,
	0x38: jrIf(ifCarry), 0x39: opcode0x39, 0x3A: opcode0x3A, 0x3B: opcode0x3B, 0x3F: opcode0x3F,
	0x76: opcode0x76,
	0xC0: retIf(ifNotZero), 0xC1: opcode0xC1, 0xC2: jpIf(ifNotZero), 0xC3: opcode0xC3,
	0xC4: callIf(ifNotZero), 0xC5: opcode0xC5, 0xC8: retIf(ifZero), 0xC9: opcode0xC9,
	0xCA: jpIf(ifZero), 0xCC: callIf(ifZero), 0xCD: opcode0xCD,
	0xD0: retIf(ifNotCarry), 0xD1: opcode0xD1, 0xD2: jpIf(ifNotCarry), 0xD3: illegal,
	0xD4: callIf(ifNotCarry), 0xD5: opcode0xD5, 0xD8: retIf(ifCarry), 0xD9: opcode0xD9,
	0xDA: jpIf(ifCarry), 0xDB: illegal, 0xDC: callIf(ifCarry), 0xDD: illegal,
	0xE0: opcode0xE0, 0xE1: opcode0xE1, 0xE2: opcode0xE2, 0xE3: illegal, 0xE4: illegal,
	0xE5: opcode0xE5, 0xE8: opcode0xE8, 0xE9: opcode0xE9, 0xEA: opcode0xEA, 0xEB: illegal,
	0xEC: illegal, 0xED: illegal,
	0xF0: opcode0xF0, 0xF1: opcode0xF1, 0xF2: opcode0xF2, 0xF3: opcode0xF3, 0xF4: illegal,
	0xF5: opcode0xF5, 0xF8: opcode0xF8, 0xF9: opcode0xF9, 0xFA: opcode0xFA, 0xFB: opcode0xFB,
	0xFC: illegal, 0xFD: illegal,
}

var opcodesCB [256]Opcode

// The regular parts of the instruction set are generated from the operand
// encoding: r is bits 2-0 (source) and bits 5-3 (destination or ALU op).
func init() {
	for r := uint8(0); r < 8; r++ {
		opcodes[0x04|r<<3] = incReg(r)
		opcodes[0x05|r<<3] = decReg(r)
		opcodes[0x06|r<<3] = loadImmediate(r)
		opcodes[0xC6|r<<3] = aluImmediate(aluOps[r])
		opcodes[0xC7|r<<3] = restart(uint16(r) << 3)
	}

	for op := 0x40; op < 0x80; op++ {
		if op == 0x76 {
			continue
		}
		opcodes[op] = load(uint8(op>>3)&7, uint8(op)&7)
	}

	for op := 0x80; op < 0xC0; op++ {
		opcodes[op] = aluReg(aluOps[(op>>3)&7], uint8(op)&7)
	}

	for op := 0; op < 0x100; op++ {
		r, n := uint8(op)&7, uint8(op>>3)&7
		switch op >> 6 {
		case 0:
			opcodesCB[op] = shiftReg(shiftOps[n], r)
		case 1:
			opcodesCB[op] = bitReg(n, r)
		case 2:
			opcodesCB[op] = resetReg(n, r)
		default:
			opcodesCB[op] = setReg(n, r)
		}
	}
}

//INC r
//#0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
func incReg(r uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg(r, c.inc(c.readReg(r)))
		return 0
	}
}

//DEC r
//#0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
func decReg(r uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg(r, c.dec(c.readReg(r)))
		return 0
	}
}

//LD r, n
//#0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x36, 0x3E:
func loadImmediate(r uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg(r, c.readImmediate())
		return 0
	}
}

//LD r, r'
//#0x40-0x7F except 0x76:
func load(dst, src uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg(dst, c.readReg(src))
		return 0
	}
}

//ADD/ADC/SUB/SBC/AND/XOR/OR/CP r
//#0x80-0xBF:
func aluReg(op func(*CPU, uint8), r uint8) Opcode {
	return func(c *CPU) int {
		op(c, c.readReg(r))
		return 0
	}
}

//ADD/ADC/SUB/SBC/AND/XOR/OR/CP n
//#0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
func aluImmediate(op func(*CPU, uint8)) Opcode {
	return func(c *CPU) int {
		op(c, c.readImmediate())
		return 0
	}
}

//RST n
//#0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
func restart(vector uint16) Opcode {
	return func(c *CPU) int {
		c.rst(vector)
		return 0
	}
}

//RLC/RRC/RL/RR/SLA/SRA/SWAP/SRL r
//#0xCB00-0xCB3F:
func shiftReg(op func(*CPU, uint8) uint8, r uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg(r, op(c, c.readReg(r)))
		return 0
	}
}

//BIT b, r
//#0xCB40-0xCB7F:
func bitReg(b, r uint8) Opcode {
	return func(c *CPU) int {
		c.testBit(b, c.readReg(r))
		return 0
	}
}

//RES b, r
//#0xCB80-0xCBBF:
func resetReg(b, r uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg(r, bit.Reset(b, c.readReg(r)))
		return 0
	}
}

//SET b, r
//#0xCBC0-0xCBFF:
func setReg(b, r uint8) Opcode {
	return func(c *CPU) int {
		c.writeReg(r, bit.Set(b, c.readReg(r)))
		return 0
	}
}

// Disassemble returns the mnemonic of the instruction at address and its
// length in bytes, reading memory through read.
func Disassemble(read func(uint16) uint8, address uint16) (string, int) {
	code := read(address)
	if code == 0xCB {
		return opcodeNamesCB[read(address+1)], 2
	}

	name := opcodeNames[code]
	switch length := instructionLength(code); length {
	case 2:
		return fmt.Sprintf("%s ; n=0x%02X", name, read(address+1)), length
	case 3:
		nn := bit.Combine(read(address+2), read(address+1))
		return fmt.Sprintf("%s ; nn=0x%04X", name, nn), length
	default:
		return name, length
	}
}

// instructionLength returns how many bytes a primary opcode spans.
func instructionLength(code uint8) int {
	switch code {
	case 0x01, 0x08, 0x11, 0x21, 0x31, 0xC2, 0xC3, 0xC4, 0xCA, 0xCC, 0xCD,
		0xD2, 0xD4, 0xDA, 0xDC, 0xEA, 0xFA:
		return 3
	case 0x06, 0x0E, 0x10, 0x16, 0x18, 0x1E, 0x20, 0x26, 0x28, 0x2E, 0x30, 0x36, 0x38, 0x3E,
		0xC6, 0xCE, 0xD6, 0xDE, 0xE0, 0xE6, 0xE8, 0xEE, 0xF0, 0xF6, 0xF8, 0xFE:
		return 2
	default:
		return 1
	}
}

// CurrentInstruction disassembles the instruction at PC.
func (c *CPU) CurrentInstruction() string {
	name, _ := Disassemble(c.bus.Read, c.pc)
	return name
}

var opcodeNames = [...]string{
	"NOP", "LD BC,nn", "LD (BC),A", "INC BC", "INC B", "DEC B", "LD B,n", "RLCA", "LD (nn),SP", "ADD HL,BC", "LD A,(BC)", "DEC BC", "INC C", "DEC C", "LD C,n", "RRCA",
	"STOP", "LD DE,nn", "LD (DE),A", "INC DE", "INC D", "DEC D", "LD D,n", "RLA", "JR n", "ADD HL,DE", "LD A,(DE)", "DEC DE", "INC E", "DEC E", "LD E,n", "RRA",
	"JR NZ,n", "LD HL,nn", "LD (HLI),A", "INC HL", "INC H", "DEC H", "LD H,n", "DAA", "JR Z,n", "ADD HL,HL", "LD A,(HLI)", "DEC HL", "INC L", "DEC L", "LD L,n", "CPL",
	"JR NC,n", "LD SP,nn", "LD (HLD),A", "INC SP", "INC (HL)", "DEC (HL)", "LD (HL),n", "SCF", "JR C,n", "ADD HL,SP", "LD A,(HLD)", "DEC SP", "INC A", "DEC A", "LD A,n", "CCF",
	"LD B,B", "LD B,C", "LD B,D", "LD B,E", "LD B,H", "LD B,L", "LD B,(HL)", "LD B,A", "LD C,B", "LD C,C", "LD C,D", "LD C,E", "LD C,H", "LD C,L", "LD C,(HL)", "LD C,A",
	"LD D,B", "LD D,C", "LD D,D", "LD D,E", "LD D,H", "LD D,L", "LD D,(HL)", "LD D,A", "LD E,B", "LD E,C", "LD E,D", "LD E,E", "LD E,H", "LD E,L", "LD E,(HL)", "LD E,A",
	"LD H,B", "LD H,C", "LD H,D", "LD H,E", "LD H,H", "LD H,L", "LD H,(HL)", "LD H,A", "LD L,B", "LD L,C", "LD L,D", "LD L,E", "LD L,H", "LD L,L", "LD L,(HL)", "LD L,A",
	"LD (HL),B", "LD (HL),C", "LD (HL),D", "LD (HL),E", "LD (HL),H", "LD (HL),L", "HALT", "LD (HL),A", "LD A,B", "LD A,C", "LD A,D", "LD A,E", "LD A,H", "LD A,L", "LD A,(HL)", "LD A,A",
	"ADD A,B", "ADD A,C", "ADD A,D", "ADD A,E", "ADD A,H", "ADD A,L", "ADD A,(HL)", "ADD A,A", "ADC A,B", "ADC A,C", "ADC A,D", "ADC A,E", "ADC A,H", "ADC A,L", "ADC A,(HL)", "ADC A,A",
	"SUB B", "SUB C", "SUB D", "SUB E", "SUB H", "SUB L", "SUB (HL)", "SUB A", "SBC A,B", "SBC A,C", "SBC A,D", "SBC A,E", "SBC A,H", "SBC A,L", "SBC A,(HL)", "SBC A,A",
	"AND B", "AND C", "AND D", "AND E", "AND H", "AND L", "AND (HL)", "AND A", "XOR B", "XOR C", "XOR D", "XOR E", "XOR H", "XOR L", "XOR (HL)", "XOR A",
	"OR B", "OR C", "OR D", "OR E", "OR H", "OR L", "OR (HL)", "OR A", "CP B", "CP C", "CP D", "CP E", "CP H", "CP L", "CP (HL)", "CP A",
	"RET NZ", "POP BC", "JP NZ,nn", "JP nn", "CALL NZ,nn", "PUSH BC", "ADD A,n", "RST 0x00", "RET Z", "RET", "JP Z,nn", "PREFIX CB", "CALL Z,nn", "CALL nn", "ADC A,n", "RST 0x08",
	"RET NC", "POP DE", "JP NC,nn", "ILLEGAL", "CALL NC,nn", "PUSH DE", "SUB n", "RST 0x10", "RET C", "RETI", "JP C,nn", "ILLEGAL", "CALL C,nn", "ILLEGAL", "SBC A,n", "RST 0x18",
	"LD (0xFF00+n),A", "POP HL", "LD (0xFF00+C),A", "ILLEGAL", "ILLEGAL", "PUSH HL", "AND n", "RST 0x20", "ADD SP,n", "JP (HL)", "LD (nn),A", "ILLEGAL", "ILLEGAL", "ILLEGAL", "XOR n", "RST 0x28",
	"LD A,(0xFF00+n)", "POP AF", "LD A,(0xFF00+C)", "DI", "ILLEGAL", "PUSH AF", "OR n", "RST 0x30", "LD HL,SP+n", "LD SP,HL", "LD A,(nn)", "EI", "ILLEGAL", "ILLEGAL", "CP n", "RST 0x38",
}

var opcodeNamesCB = [...]string{
	"RLC B", "RLC C", "RLC D", "RLC E", "RLC H", "RLC L", "RLC (HL)", "RLC A", "RRC B", "RRC C", "RRC D", "RRC E", "RRC H", "RRC L", "RRC (HL)", "RRC A",
	"RL B", "RL C", "RL D", "RL E", "RL H", "RL L", "RL (HL)", "RL A", "RR B", "RR C", "RR D", "RR E", "RR H", "RR L", "RR (HL)", "RR A",
	"SLA B", "SLA C", "SLA D", "SLA E", "SLA H", "SLA L", "SLA (HL)", "SLA A", "SRA B", "SRA C", "SRA D", "SRA E", "SRA H", "SRA L", "SRA (HL)", "SRA A",
	"SWAP B", "SWAP C", "SWAP D", "SWAP E", "SWAP H", "SWAP L", "SWAP (HL)", "SWAP A", "SRL B", "SRL C", "SRL D", "SRL E", "SRL H", "SRL L", "SRL (HL)", "SRL A",
	"BIT 0 B", "BIT 0 C", "BIT 0 D", "BIT 0 E", "BIT 0 H", "BIT 0 L", "BIT 0 (HL)", "BIT 0 A", "BIT 1 B", "BIT 1 C", "BIT 1 D", "BIT 1 E", "BIT 1 H", "BIT 1 L", "BIT 1 (HL)", "BIT 1 A",
	"BIT 2 B", "BIT 2 C", "BIT 2 D", "BIT 2 E", "BIT 2 H", "BIT 2 L", "BIT 2 (HL)", "BIT 2 A", "BIT 3 B", "BIT 3 C", "BIT 3 D", "BIT 3 E", "BIT 3 H", "BIT 3 L", "BIT 3 (HL)", "BIT 3 A",
	"BIT 4 B", "BIT 4 C", "BIT 4 D", "BIT 4 E", "BIT 4 H", "BIT 4 L", "BIT 4 (HL)", "BIT 4 A", "BIT 5 B", "BIT 5 C", "BIT 5 D", "BIT 5 E", "BIT 5 H", "BIT 5 L", "BIT 5 (HL)", "BIT 5 A",
	"BIT 6 B", "BIT 6 C", "BIT 6 D", "BIT 6 E", "BIT 6 H", "BIT 6 L", "BIT 6 (HL)", "BIT 6 A", "BIT 7 B", "BIT 7 C", "BIT 7 D", "BIT 7 E", "BIT 7 H", "BIT 7 L", "BIT 7 (HL)", "BIT 7 A",
	"RES 0 B", "RES 0 C", "RES 0 D", "RES 0 E", "RES 0 H", "RES 0 L", "RES 0 (HL)", "RES 0 A", "RES 1 B", "RES 1 C", "RES 1 D", "RES 1 E", "RES 1 H", "RES 1 L", "RES 1 (HL)", "RES 1 A",
	"RES 2 B", "RES 2 C", "RES 2 D", "RES 2 E", "RES 2 H", "RES 2 L", "RES 2 (HL)", "RES 2 A", "RES 3 B", "RES 3 C", "RES 3 D", "RES 3 E", "RES 3 H", "RES 3 L", "RES 3 (HL)", "RES 3 A",
	"RES 4 B", "RES 4 C", "RES 4 D", "RES 4 E", "RES 4 H", "RES 4 L", "RES 4 (HL)", "RES 4 A", "RES 5 B", "RES 5 C", "RES 5 D", "RES 5 E", "RES 5 H", "RES 5 L", "RES 5 (HL)", "RES 5 A",
	"RES 6 B", "RES 6 C", "RES 6 D", "RES 6 E", "RES 6 H", "RES 6 L", "RES 6 (HL)", "RES 6 A", "RES 7 B", "RES 7 C", "RES 7 D", "RES 7 E", "RES 7 H", "RES 7 L", "RES 7 (HL)", "RES 7 A",
	"SET 0 B", "SET 0 C", "SET 0 D", "SET 0 E", "SET 0 H", "SET 0 L", "SET 0 (HL)", "SET 0 A", "SET 1 B", "SET 1 C", "SET 1 D", "SET 1 E", "SET 1 H", "SET 1 L", "SET 1 (HL)", "SET 1 A",
	"SET 2 B", "SET 2 C", "SET 2 D", "SET 2 E", "SET 2 H", "SET 2 L", "SET 2 (HL)", "SET 2 A", "SET 3 B", "SET 3 C", "SET 3 D", "SET 3 E", "SET 3 H", "SET 3 L", "SET 3 (HL)", "SET 3 A",
	"SET 4 B", "SET 4 C", "SET 4 D", "SET 4 E", "SET 4 H", "SET 4 L", "SET 4 (HL)", "SET 4 A", "SET 5 B", "SET 5 C", "SET 5 D", "SET 5 E", "SET 5 H", "SET 5 L", "SET 5 (HL)", "SET 5 A",
	"SET 6 B", "SET 6 C", "SET 6 D", "SET 6 E", "SET 6 H", "SET 6 L", "SET 6 (HL)", "SET 6 A", "SET 7 B", "SET 7 C", "SET 7 D", "SET 7 E", "SET 7 H", "SET 7 L", "SET 7 (HL)", "SET 7 A",
}
