package cpu

// Instruction handlers. Each receives the resolved operand address and
// whether the addressing fetch crossed a page, and returns any extra
// cycles beyond the base count (branches only; indexed page-crossing
// penalties are applied by Step via the PageCycle flag).

// Load operations
func (cpu *CPU) lda(address uint16, _ bool) uint8 {
	cpu.A = cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ldx(address uint16, _ bool) uint8 {
	cpu.X = cpu.memory.Read(address)
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) ldy(address uint16, _ bool) uint8 {
	cpu.Y = cpu.memory.Read(address)
	cpu.setZN(cpu.Y)
	return 0
}

// Store operations
func (cpu *CPU) sta(address uint16, _ bool) uint8 {
	cpu.memory.Write(address, cpu.A)
	return 0
}

func (cpu *CPU) stx(address uint16, _ bool) uint8 {
	cpu.memory.Write(address, cpu.X)
	return 0
}

func (cpu *CPU) sty(address uint16, _ bool) uint8 {
	cpu.memory.Write(address, cpu.Y)
	return 0
}

// Arithmetic operations. In decimal mode the accumulator (and, for ADC,
// the carry) come from the BCD-adjusted result while Z, N and V are
// computed from the binary intermediate, matching NMOS behavior.
func (cpu *CPU) adc(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}

	result := uint16(cpu.A) + uint16(value) + carry

	cpu.V = ((cpu.A^uint8(result))&0x80) != 0 && ((cpu.A^value)&0x80) == 0
	cpu.Z = uint8(result) == 0
	cpu.N = (result & nFlagMask) != 0

	if cpu.D {
		lo := uint16(cpu.A&0x0F) + uint16(value&0x0F) + carry
		hi := uint16(cpu.A>>4) + uint16(value>>4)
		if lo > 9 {
			lo += 6
			hi++
		}
		if hi > 9 {
			hi += 6
		}
		cpu.C = hi > 0x0F
		cpu.A = uint8(hi<<4) | uint8(lo&0x0F)
	} else {
		cpu.C = result > 0xFF
		cpu.A = uint8(result)
	}
	return 0
}

func (cpu *CPU) sbc(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	inverted := value ^ 0xFF
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}

	result := uint16(cpu.A) + uint16(inverted) + carry

	// All flags come from the binary intermediate, decimal mode or not
	cpu.V = ((cpu.A^uint8(result))&0x80) != 0 && ((cpu.A^inverted)&0x80) == 0
	cpu.Z = uint8(result) == 0
	cpu.N = (result & nFlagMask) != 0

	if cpu.D {
		borrow := int16(1 - carry)
		lo := int16(cpu.A&0x0F) - int16(value&0x0F) - borrow
		sum := int16(cpu.A) - int16(value) - borrow
		if sum < 0 {
			sum -= 0x60
		}
		if lo < 0 {
			sum -= 0x06
		}
		cpu.C = result > 0xFF
		cpu.A = uint8(sum)
	} else {
		cpu.C = result > 0xFF
		cpu.A = uint8(result)
	}
	return 0
}

// Logical operations
func (cpu *CPU) and(address uint16, _ bool) uint8 {
	cpu.A &= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ora(address uint16, _ bool) uint8 {
	cpu.A |= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) eor(address uint16, _ bool) uint8 {
	cpu.A ^= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

// Shift and rotate operations, memory versions
func (cpu *CPU) asl(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = (value & 0x80) != 0
	value <<= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) lsr(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = (value & 0x01) != 0
	value >>= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) rol(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = (value & 0x80) != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) ror(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = (value & 0x01) != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

// Accumulator versions
func (cpu *CPU) aslA(_ uint16, _ bool) uint8 {
	cpu.C = (cpu.A & 0x80) != 0
	cpu.A <<= 1
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) lsrA(_ uint16, _ bool) uint8 {
	cpu.C = (cpu.A & 0x01) != 0
	cpu.A >>= 1
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rolA(_ uint16, _ bool) uint8 {
	oldCarry := cpu.C
	cpu.C = (cpu.A & 0x80) != 0
	cpu.A <<= 1
	if oldCarry {
		cpu.A |= 0x01
	}
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rorA(_ uint16, _ bool) uint8 {
	oldCarry := cpu.C
	cpu.C = (cpu.A & 0x01) != 0
	cpu.A >>= 1
	if oldCarry {
		cpu.A |= 0x80
	}
	cpu.setZN(cpu.A)
	return 0
}

// Comparison operations
func (cpu *CPU) cmp(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	result := cpu.A - value
	cpu.C = cpu.A >= value
	cpu.setZN(result)
	return 0
}

func (cpu *CPU) cpx(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	result := cpu.X - value
	cpu.C = cpu.X >= value
	cpu.setZN(result)
	return 0
}

func (cpu *CPU) cpy(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	result := cpu.Y - value
	cpu.C = cpu.Y >= value
	cpu.setZN(result)
	return 0
}

// Increment/Decrement operations
func (cpu *CPU) inc(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address) + 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) dec(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address) - 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) inx(_ uint16, _ bool) uint8 {
	cpu.X++
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) dex(_ uint16, _ bool) uint8 {
	cpu.X--
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) iny(_ uint16, _ bool) uint8 {
	cpu.Y++
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) dey(_ uint16, _ bool) uint8 {
	cpu.Y--
	cpu.setZN(cpu.Y)
	return 0
}

// Transfer operations
func (cpu *CPU) tax(_ uint16, _ bool) uint8 {
	cpu.X = cpu.A
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) txa(_ uint16, _ bool) uint8 {
	cpu.A = cpu.X
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) tay(_ uint16, _ bool) uint8 {
	cpu.Y = cpu.A
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) tya(_ uint16, _ bool) uint8 {
	cpu.A = cpu.Y
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) tsx(_ uint16, _ bool) uint8 {
	cpu.X = cpu.SP
	cpu.setZN(cpu.X)
	return 0
}

// TXS sets no flags
func (cpu *CPU) txs(_ uint16, _ bool) uint8 {
	cpu.SP = cpu.X
	return 0
}

// Stack operations
func (cpu *CPU) pha(_ uint16, _ bool) uint8 {
	cpu.push(cpu.A)
	return 0
}

func (cpu *CPU) pla(_ uint16, _ bool) uint8 {
	cpu.A = cpu.pop()
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) php(_ uint16, _ bool) uint8 {
	cpu.push(cpu.statusByte(true)) // B set for PHP
	return 0
}

func (cpu *CPU) plp(_ uint16, _ bool) uint8 {
	cpu.setStatusByte(cpu.pop())
	return 0
}

// Flag operations
func (cpu *CPU) clc(_ uint16, _ bool) uint8 {
	cpu.C = false
	return 0
}

func (cpu *CPU) sec(_ uint16, _ bool) uint8 {
	cpu.C = true
	return 0
}

func (cpu *CPU) cli(_ uint16, _ bool) uint8 {
	cpu.I = false
	return 0
}

func (cpu *CPU) sei(_ uint16, _ bool) uint8 {
	cpu.I = true
	return 0
}

func (cpu *CPU) clv(_ uint16, _ bool) uint8 {
	cpu.V = false
	return 0
}

func (cpu *CPU) cld(_ uint16, _ bool) uint8 {
	cpu.D = false
	return 0
}

func (cpu *CPU) sed(_ uint16, _ bool) uint8 {
	cpu.D = true
	return 0
}

// Control flow operations
func (cpu *CPU) jmp(address uint16, _ bool) uint8 {
	cpu.PC = address
	return 0
}

func (cpu *CPU) jsr(address uint16, _ bool) uint8 {
	// Push return address - 1 (JSR pushes PC-1)
	cpu.pushWord(cpu.PC - 1)
	cpu.PC = address
	return 0
}

func (cpu *CPU) rts(_ uint16, _ bool) uint8 {
	cpu.PC = cpu.popWord() + 1 // RTS adds 1 to popped address
	return 0
}

func (cpu *CPU) rti(_ uint16, _ bool) uint8 {
	cpu.setStatusByte(cpu.pop())
	cpu.PC = cpu.popWord()
	return 0
}

// branch takes the branch when taken is true: 1 extra cycle, 2 if the
// target is on a different page from the branch opcode itself
func (cpu *CPU) branch(address uint16, pageCrossed, taken bool) uint8 {
	if !taken {
		return 0
	}
	cpu.PC = address
	if pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) bcc(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, !cpu.C)
}

func (cpu *CPU) bcs(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, cpu.C)
}

func (cpu *CPU) bne(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, !cpu.Z)
}

func (cpu *CPU) beq(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, cpu.Z)
}

func (cpu *CPU) bpl(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, !cpu.N)
}

func (cpu *CPU) bmi(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, cpu.N)
}

func (cpu *CPU) bvc(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, !cpu.V)
}

func (cpu *CPU) bvs(address uint16, pageCrossed bool) uint8 {
	return cpu.branch(address, pageCrossed, cpu.V)
}

// Miscellaneous operations
func (cpu *CPU) bit(address uint16, _ bool) uint8 {
	value := cpu.memory.Read(address)
	cpu.N = (value & nFlagMask) != 0 // Bit 7 of memory
	cpu.V = (value & vFlagMask) != 0 // Bit 6 of memory
	cpu.Z = (cpu.A & value) == 0
	return 0
}

func (cpu *CPU) nop(_ uint16, _ bool) uint8 {
	return 0
}

func (cpu *CPU) brk(_ uint16, _ bool) uint8 {
	// BRK is a 1-byte instruction that pushes PC+2. The implied-mode
	// fetch already advanced PC by 1; skip the padding byte here.
	cpu.PC++
	cpu.pushWord(cpu.PC)

	cpu.push(cpu.statusByte(true)) // B set when pushed by BRK
	cpu.I = true

	low := uint16(cpu.memory.Read(irqVector))
	high := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = (high << 8) | low
	return 0
}
