package cpu

import "github.com/valerio/go-chroma/chroma/bit"

//NOP
//#0x00:
func opcode0x00(_ *CPU) int {
	return 0
}

//LD BC, nn
//#0x01:
func opcode0x01(cpu *CPU) int {
	cpu.bc.Set(cpu.readImmediateWord())
	return 0
}

//LD (BC), A
//#0x02:
func opcode0x02(cpu *CPU) int {
	cpu.bus.Write(cpu.bc.Get(), cpu.af.high)
	return 0
}

//INC BC
//#0x03:
func opcode0x03(cpu *CPU) int {
	cpu.bc.Set(cpu.bc.Get() + 1)
	return 0
}

//RLCA
//#0x07:
func opcode0x07(cpu *CPU) int {
	cpu.rotateA((*CPU).rlc)
	return 0
}

//LD (nn), SP
//#0x08:
func opcode0x08(cpu *CPU) int {
	address := cpu.readImmediateWord()
	cpu.bus.Write(address, bit.Low(cpu.sp))
	cpu.bus.Write(address+1, bit.High(cpu.sp))
	return 0
}

//ADD HL, BC
//#0x09:
func opcode0x09(cpu *CPU) int {
	cpu.addHL(cpu.bc.Get())
	return 0
}

//LD A, (BC)
//#0x0A:
func opcode0x0A(cpu *CPU) int {
	cpu.af.high = cpu.bus.Read(cpu.bc.Get())
	return 0
}

//DEC BC
//#0x0B:
func opcode0x0B(cpu *CPU) int {
	cpu.bc.Set(cpu.bc.Get() - 1)
	return 0
}

//RRCA
//#0x0F:
func opcode0x0F(cpu *CPU) int {
	cpu.rotateA((*CPU).rrc)
	return 0
}

//STOP
//#0x10:
func opcode0x10(cpu *CPU) int {
	// STOP is two bytes long, the second one is ignored.
	cpu.pc++
	// Only a prepared CGB speed switch is emulated; otherwise STOP is a NOP.
	cpu.bus.SwitchSpeed()
	return 0
}

//LD DE, nn
//#0x11:
func opcode0x11(cpu *CPU) int {
	cpu.de.Set(cpu.readImmediateWord())
	return 0
}

//LD (DE), A
//#0x12:
func opcode0x12(cpu *CPU) int {
	cpu.bus.Write(cpu.de.Get(), cpu.af.high)
	return 0
}

//INC DE
//#0x13:
func opcode0x13(cpu *CPU) int {
	cpu.de.Set(cpu.de.Get() + 1)
	return 0
}

//RLA
//#0x17:
func opcode0x17(cpu *CPU) int {
	cpu.rotateA((*CPU).rl)
	return 0
}

//JR n
//#0x18:
func opcode0x18(cpu *CPU) int {
	cpu.jr(cpu.readSignedImmediate())
	return 0
}

//ADD HL, DE
//#0x19:
func opcode0x19(cpu *CPU) int {
	cpu.addHL(cpu.de.Get())
	return 0
}

//LD A, (DE)
//#0x1A:
func opcode0x1A(cpu *CPU) int {
	cpu.af.high = cpu.bus.Read(cpu.de.Get())
	return 0
}

//DEC DE
//#0x1B:
func opcode0x1B(cpu *CPU) int {
	cpu.de.Set(cpu.de.Get() - 1)
	return 0
}

//RRA
//#0x1F:
func opcode0x1F(cpu *CPU) int {
	cpu.rotateA((*CPU).rr)
	return 0
}

//LD HL, nn
//#0x21:
func opcode0x21(cpu *CPU) int {
	cpu.hl.Set(cpu.readImmediateWord())
	return 0
}

//LD (HL+), A
//#0x22:
func opcode0x22(cpu *CPU) int {
	hl := cpu.hl.Get()
	cpu.bus.Write(hl, cpu.af.high)
	cpu.hl.Set(hl + 1)
	return 0
}

//INC HL
//#0x23:
func opcode0x23(cpu *CPU) int {
	cpu.hl.Set(cpu.hl.Get() + 1)
	return 0
}

//DAA
//#0x27:
func opcode0x27(cpu *CPU) int {
	cpu.daa()
	return 0
}

//ADD HL, HL
//#0x29:
func opcode0x29(cpu *CPU) int {
	cpu.addHL(cpu.hl.Get())
	return 0
}

//LD A, (HL+)
//#0x2A:
func opcode0x2A(cpu *CPU) int {
	hl := cpu.hl.Get()
	cpu.af.high = cpu.bus.Read(hl)
	cpu.hl.Set(hl + 1)
	return 0
}

//DEC HL
//#0x2B:
func opcode0x2B(cpu *CPU) int {
	cpu.hl.Set(cpu.hl.Get() - 1)
	return 0
}

//CPL
//#0x2F:
func opcode0x2F(cpu *CPU) int {
	cpu.cpl()
	return 0
}

//LD SP, nn
//#0x31:
func opcode0x31(cpu *CPU) int {
	cpu.sp = cpu.readImmediateWord()
	return 0
}

//LD (HL-), A
//#0x32:
func opcode0x32(cpu *CPU) int {
	hl := cpu.hl.Get()
	cpu.bus.Write(hl, cpu.af.high)
	cpu.hl.Set(hl - 1)
	return 0
}

//INC SP
//#0x33:
func opcode0x33(cpu *CPU) int {
	cpu.sp++
	return 0
}

//SCF
//#0x37:
func opcode0x37(cpu *CPU) int {
	cpu.scf()
	return 0
}

//ADD HL, SP
//#0x39:
func opcode0x39(cpu *CPU) int {
	cpu.addHL(cpu.sp)
	return 0
}

//LD A, (HL-)
//#0x3A:
func opcode0x3A(cpu *CPU) int {
	hl := cpu.hl.Get()
	cpu.af.high = cpu.bus.Read(hl)
	cpu.hl.Set(hl - 1)
	return 0
}

//DEC SP
//#0x3B:
func opcode0x3B(cpu *CPU) int {
	cpu.sp--
	return 0
}

//CCF
//#0x3F:
func opcode0x3F(cpu *CPU) int {
	cpu.ccf()
	return 0
}

//HALT
//#0x76:
func opcode0x76(cpu *CPU) int {
	cpu.halted = true
	return 0
}

//RET NZ / RET Z / RET NC / RET C
//#0xC0, 0xC8, 0xD0, 0xD8:
func retIf(cond condition) Opcode {
	return func(cpu *CPU) int {
		if !cond(cpu) {
			return 0
		}
		cpu.pc = cpu.popStack()
		return retTakenCycles
	}
}

//JP NZ, nn / JP Z, nn / JP NC, nn / JP C, nn
//#0xC2, 0xCA, 0xD2, 0xDA:
func jpIf(cond condition) Opcode {
	return func(cpu *CPU) int {
		address := cpu.readImmediateWord()
		if !cond(cpu) {
			return 0
		}
		cpu.pc = address
		return jpTakenCycles
	}
}

//CALL NZ, nn / CALL Z, nn / CALL NC, nn / CALL C, nn
//#0xC4, 0xCC, 0xD4, 0xDC:
func callIf(cond condition) Opcode {
	return func(cpu *CPU) int {
		address := cpu.readImmediateWord()
		if !cond(cpu) {
			return 0
		}
		cpu.call(address)
		return callTakenCycles
	}
}

//JR NZ, n / JR Z, n / JR NC, n / JR C, n
//#0x20, 0x28, 0x30, 0x38:
func jrIf(cond condition) Opcode {
	return func(cpu *CPU) int {
		offset := cpu.readSignedImmediate()
		if !cond(cpu) {
			return 0
		}
		cpu.jr(offset)
		return jrTakenCycles
	}
}

//POP BC
//#0xC1:
func opcode0xC1(cpu *CPU) int {
	cpu.bc.Set(cpu.popStack())
	return 0
}

//JP nn
//#0xC3:
func opcode0xC3(cpu *CPU) int {
	cpu.pc = cpu.readImmediateWord()
	return 0
}

//PUSH BC
//#0xC5:
func opcode0xC5(cpu *CPU) int {
	cpu.pushStack(cpu.bc.Get())
	return 0
}

//RET
//#0xC9:
func opcode0xC9(cpu *CPU) int {
	cpu.pc = cpu.popStack()
	return 0
}

//CALL nn
//#0xCD:
func opcode0xCD(cpu *CPU) int {
	cpu.call(cpu.readImmediateWord())
	return 0
}

//POP DE
//#0xD1:
func opcode0xD1(cpu *CPU) int {
	cpu.de.Set(cpu.popStack())
	return 0
}

//PUSH DE
//#0xD5:
func opcode0xD5(cpu *CPU) int {
	cpu.pushStack(cpu.de.Get())
	return 0
}

//RETI
//#0xD9:
func opcode0xD9(cpu *CPU) int {
	cpu.pc = cpu.popStack()
	cpu.interruptsEnabled = true
	return 0
}

//LD (0xFF00+n), A
//#0xE0:
func opcode0xE0(cpu *CPU) int {
	cpu.bus.Write(0xFF00|uint16(cpu.readImmediate()), cpu.af.high)
	return 0
}

//POP HL
//#0xE1:
func opcode0xE1(cpu *CPU) int {
	cpu.hl.Set(cpu.popStack())
	return 0
}

//LD (0xFF00+C), A
//#0xE2:
func opcode0xE2(cpu *CPU) int {
	cpu.bus.Write(0xFF00|uint16(cpu.bc.low), cpu.af.high)
	return 0
}

//PUSH HL
//#0xE5:
func opcode0xE5(cpu *CPU) int {
	cpu.pushStack(cpu.hl.Get())
	return 0
}

//ADD SP, n
//#0xE8:
func opcode0xE8(cpu *CPU) int {
	cpu.sp = cpu.addSPSigned(cpu.readSignedImmediate())
	return 0
}

//JP (HL)
//#0xE9:
func opcode0xE9(cpu *CPU) int {
	cpu.pc = cpu.hl.Get()
	return 0
}

//LD (nn), A
//#0xEA:
func opcode0xEA(cpu *CPU) int {
	cpu.bus.Write(cpu.readImmediateWord(), cpu.af.high)
	return 0
}

//LD A, (0xFF00+n)
//#0xF0:
func opcode0xF0(cpu *CPU) int {
	cpu.af.high = cpu.bus.Read(0xFF00 | uint16(cpu.readImmediate()))
	return 0
}

//POP AF
//#0xF1:
func opcode0xF1(cpu *CPU) int {
	cpu.af.Set(cpu.popStack())
	return 0
}

//LD A, (0xFF00+C)
//#0xF2:
func opcode0xF2(cpu *CPU) int {
	cpu.af.high = cpu.bus.Read(0xFF00 | uint16(cpu.bc.low))
	return 0
}

//DI
//#0xF3:
func opcode0xF3(cpu *CPU) int {
	cpu.interruptsEnabled = false
	cpu.eiPending = false
	return 0
}

//PUSH AF
//#0xF5:
func opcode0xF5(cpu *CPU) int {
	cpu.pushStack(cpu.af.Get())
	return 0
}

//LD HL, SP+n
//#0xF8:
func opcode0xF8(cpu *CPU) int {
	cpu.hl.Set(cpu.addSPSigned(cpu.readSignedImmediate()))
	return 0
}

//LD SP, HL
//#0xF9:
func opcode0xF9(cpu *CPU) int {
	cpu.sp = cpu.hl.Get()
	return 0
}

//LD A, (nn)
//#0xFA:
func opcode0xFA(cpu *CPU) int {
	cpu.af.high = cpu.bus.Read(cpu.readImmediateWord())
	return 0
}

//EI
//#0xFB:
func opcode0xFB(cpu *CPU) int {
	cpu.eiPending = true
	return 0
}
