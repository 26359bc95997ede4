package cpu

// initInstructions populates the lookup table with the 151 documented
// opcodes. Entries left nil are illegal; fetching one halts the CPU.
// Cycle counts follow the canonical NMOS table. PageCycle marks the
// read-type indexed opcodes that cost one extra cycle on a page cross;
// write and read-modify-write opcodes carry the penalty in their base
// count instead.
func (cpu *CPU) initInstructions() {
	set := func(opcode uint8, name string, mode AddressingMode, cycles uint8, pageCycle bool, exec func(*CPU, uint16, bool) uint8) {
		if cpu.instructions[opcode] != nil {
			panic("duplicate opcode entry")
		}
		cpu.instructions[opcode] = &Instruction{
			Name:      name,
			Mode:      mode,
			Cycles:    cycles,
			PageCycle: pageCycle,
			exec:      exec,
		}
	}

	// Load/Store
	set(0xA9, "LDA", Immediate, 2, false, (*CPU).lda)
	set(0xA5, "LDA", ZeroPage, 3, false, (*CPU).lda)
	set(0xB5, "LDA", ZeroPageX, 4, false, (*CPU).lda)
	set(0xAD, "LDA", Absolute, 4, false, (*CPU).lda)
	set(0xBD, "LDA", AbsoluteX, 4, true, (*CPU).lda)
	set(0xB9, "LDA", AbsoluteY, 4, true, (*CPU).lda)
	set(0xA1, "LDA", IndexedIndirect, 6, false, (*CPU).lda)
	set(0xB1, "LDA", IndirectIndexed, 5, true, (*CPU).lda)

	set(0xA2, "LDX", Immediate, 2, false, (*CPU).ldx)
	set(0xA6, "LDX", ZeroPage, 3, false, (*CPU).ldx)
	set(0xB6, "LDX", ZeroPageY, 4, false, (*CPU).ldx)
	set(0xAE, "LDX", Absolute, 4, false, (*CPU).ldx)
	set(0xBE, "LDX", AbsoluteY, 4, true, (*CPU).ldx)

	set(0xA0, "LDY", Immediate, 2, false, (*CPU).ldy)
	set(0xA4, "LDY", ZeroPage, 3, false, (*CPU).ldy)
	set(0xB4, "LDY", ZeroPageX, 4, false, (*CPU).ldy)
	set(0xAC, "LDY", Absolute, 4, false, (*CPU).ldy)
	set(0xBC, "LDY", AbsoluteX, 4, true, (*CPU).ldy)

	set(0x85, "STA", ZeroPage, 3, false, (*CPU).sta)
	set(0x95, "STA", ZeroPageX, 4, false, (*CPU).sta)
	set(0x8D, "STA", Absolute, 4, false, (*CPU).sta)
	set(0x9D, "STA", AbsoluteX, 5, false, (*CPU).sta)
	set(0x99, "STA", AbsoluteY, 5, false, (*CPU).sta)
	set(0x81, "STA", IndexedIndirect, 6, false, (*CPU).sta)
	set(0x91, "STA", IndirectIndexed, 6, false, (*CPU).sta)

	set(0x86, "STX", ZeroPage, 3, false, (*CPU).stx)
	set(0x96, "STX", ZeroPageY, 4, false, (*CPU).stx)
	set(0x8E, "STX", Absolute, 4, false, (*CPU).stx)

	set(0x84, "STY", ZeroPage, 3, false, (*CPU).sty)
	set(0x94, "STY", ZeroPageX, 4, false, (*CPU).sty)
	set(0x8C, "STY", Absolute, 4, false, (*CPU).sty)

	// Transfers
	set(0xAA, "TAX", Implied, 2, false, (*CPU).tax)
	set(0xA8, "TAY", Implied, 2, false, (*CPU).tay)
	set(0x8A, "TXA", Implied, 2, false, (*CPU).txa)
	set(0x98, "TYA", Implied, 2, false, (*CPU).tya)
	set(0xBA, "TSX", Implied, 2, false, (*CPU).tsx)
	set(0x9A, "TXS", Implied, 2, false, (*CPU).txs)

	// Stack
	set(0x48, "PHA", Implied, 3, false, (*CPU).pha)
	set(0x08, "PHP", Implied, 3, false, (*CPU).php)
	set(0x68, "PLA", Implied, 4, false, (*CPU).pla)
	set(0x28, "PLP", Implied, 4, false, (*CPU).plp)

	// Logic
	set(0x29, "AND", Immediate, 2, false, (*CPU).and)
	set(0x25, "AND", ZeroPage, 3, false, (*CPU).and)
	set(0x35, "AND", ZeroPageX, 4, false, (*CPU).and)
	set(0x2D, "AND", Absolute, 4, false, (*CPU).and)
	set(0x3D, "AND", AbsoluteX, 4, true, (*CPU).and)
	set(0x39, "AND", AbsoluteY, 4, true, (*CPU).and)
	set(0x21, "AND", IndexedIndirect, 6, false, (*CPU).and)
	set(0x31, "AND", IndirectIndexed, 5, true, (*CPU).and)

	set(0x09, "ORA", Immediate, 2, false, (*CPU).ora)
	set(0x05, "ORA", ZeroPage, 3, false, (*CPU).ora)
	set(0x15, "ORA", ZeroPageX, 4, false, (*CPU).ora)
	set(0x0D, "ORA", Absolute, 4, false, (*CPU).ora)
	set(0x1D, "ORA", AbsoluteX, 4, true, (*CPU).ora)
	set(0x19, "ORA", AbsoluteY, 4, true, (*CPU).ora)
	set(0x01, "ORA", IndexedIndirect, 6, false, (*CPU).ora)
	set(0x11, "ORA", IndirectIndexed, 5, true, (*CPU).ora)

	set(0x49, "EOR", Immediate, 2, false, (*CPU).eor)
	set(0x45, "EOR", ZeroPage, 3, false, (*CPU).eor)
	set(0x55, "EOR", ZeroPageX, 4, false, (*CPU).eor)
	set(0x4D, "EOR", Absolute, 4, false, (*CPU).eor)
	set(0x5D, "EOR", AbsoluteX, 4, true, (*CPU).eor)
	set(0x59, "EOR", AbsoluteY, 4, true, (*CPU).eor)
	set(0x41, "EOR", IndexedIndirect, 6, false, (*CPU).eor)
	set(0x51, "EOR", IndirectIndexed, 5, true, (*CPU).eor)

	set(0x24, "BIT", ZeroPage, 3, false, (*CPU).bit)
	set(0x2C, "BIT", Absolute, 4, false, (*CPU).bit)

	// Arithmetic
	set(0x69, "ADC", Immediate, 2, false, (*CPU).adc)
	set(0x65, "ADC", ZeroPage, 3, false, (*CPU).adc)
	set(0x75, "ADC", ZeroPageX, 4, false, (*CPU).adc)
	set(0x6D, "ADC", Absolute, 4, false, (*CPU).adc)
	set(0x7D, "ADC", AbsoluteX, 4, true, (*CPU).adc)
	set(0x79, "ADC", AbsoluteY, 4, true, (*CPU).adc)
	set(0x61, "ADC", IndexedIndirect, 6, false, (*CPU).adc)
	set(0x71, "ADC", IndirectIndexed, 5, true, (*CPU).adc)

	set(0xE9, "SBC", Immediate, 2, false, (*CPU).sbc)
	set(0xE5, "SBC", ZeroPage, 3, false, (*CPU).sbc)
	set(0xF5, "SBC", ZeroPageX, 4, false, (*CPU).sbc)
	set(0xED, "SBC", Absolute, 4, false, (*CPU).sbc)
	set(0xFD, "SBC", AbsoluteX, 4, true, (*CPU).sbc)
	set(0xF9, "SBC", AbsoluteY, 4, true, (*CPU).sbc)
	set(0xE1, "SBC", IndexedIndirect, 6, false, (*CPU).sbc)
	set(0xF1, "SBC", IndirectIndexed, 5, true, (*CPU).sbc)

	// Compares
	set(0xC9, "CMP", Immediate, 2, false, (*CPU).cmp)
	set(0xC5, "CMP", ZeroPage, 3, false, (*CPU).cmp)
	set(0xD5, "CMP", ZeroPageX, 4, false, (*CPU).cmp)
	set(0xCD, "CMP", Absolute, 4, false, (*CPU).cmp)
	set(0xDD, "CMP", AbsoluteX, 4, true, (*CPU).cmp)
	set(0xD9, "CMP", AbsoluteY, 4, true, (*CPU).cmp)
	set(0xC1, "CMP", IndexedIndirect, 6, false, (*CPU).cmp)
	set(0xD1, "CMP", IndirectIndexed, 5, true, (*CPU).cmp)

	set(0xE0, "CPX", Immediate, 2, false, (*CPU).cpx)
	set(0xE4, "CPX", ZeroPage, 3, false, (*CPU).cpx)
	set(0xEC, "CPX", Absolute, 4, false, (*CPU).cpx)

	set(0xC0, "CPY", Immediate, 2, false, (*CPU).cpy)
	set(0xC4, "CPY", ZeroPage, 3, false, (*CPU).cpy)
	set(0xCC, "CPY", Absolute, 4, false, (*CPU).cpy)

	// Increments/decrements
	set(0xE6, "INC", ZeroPage, 5, false, (*CPU).inc)
	set(0xF6, "INC", ZeroPageX, 6, false, (*CPU).inc)
	set(0xEE, "INC", Absolute, 6, false, (*CPU).inc)
	set(0xFE, "INC", AbsoluteX, 7, false, (*CPU).inc)

	set(0xC6, "DEC", ZeroPage, 5, false, (*CPU).dec)
	set(0xD6, "DEC", ZeroPageX, 6, false, (*CPU).dec)
	set(0xCE, "DEC", Absolute, 6, false, (*CPU).dec)
	set(0xDE, "DEC", AbsoluteX, 7, false, (*CPU).dec)

	set(0xE8, "INX", Implied, 2, false, (*CPU).inx)
	set(0xC8, "INY", Implied, 2, false, (*CPU).iny)
	set(0xCA, "DEX", Implied, 2, false, (*CPU).dex)
	set(0x88, "DEY", Implied, 2, false, (*CPU).dey)

	// Shifts/rotates
	set(0x0A, "ASL", Accumulator, 2, false, (*CPU).aslA)
	set(0x06, "ASL", ZeroPage, 5, false, (*CPU).asl)
	set(0x16, "ASL", ZeroPageX, 6, false, (*CPU).asl)
	set(0x0E, "ASL", Absolute, 6, false, (*CPU).asl)
	set(0x1E, "ASL", AbsoluteX, 7, false, (*CPU).asl)

	set(0x4A, "LSR", Accumulator, 2, false, (*CPU).lsrA)
	set(0x46, "LSR", ZeroPage, 5, false, (*CPU).lsr)
	set(0x56, "LSR", ZeroPageX, 6, false, (*CPU).lsr)
	set(0x4E, "LSR", Absolute, 6, false, (*CPU).lsr)
	set(0x5E, "LSR", AbsoluteX, 7, false, (*CPU).lsr)

	set(0x2A, "ROL", Accumulator, 2, false, (*CPU).rolA)
	set(0x26, "ROL", ZeroPage, 5, false, (*CPU).rol)
	set(0x36, "ROL", ZeroPageX, 6, false, (*CPU).rol)
	set(0x2E, "ROL", Absolute, 6, false, (*CPU).rol)
	set(0x3E, "ROL", AbsoluteX, 7, false, (*CPU).rol)

	set(0x6A, "ROR", Accumulator, 2, false, (*CPU).rorA)
	set(0x66, "ROR", ZeroPage, 5, false, (*CPU).ror)
	set(0x76, "ROR", ZeroPageX, 6, false, (*CPU).ror)
	set(0x6E, "ROR", Absolute, 6, false, (*CPU).ror)
	set(0x7E, "ROR", AbsoluteX, 7, false, (*CPU).ror)

	// Jumps and subroutines
	set(0x4C, "JMP", Absolute, 3, false, (*CPU).jmp)
	set(0x6C, "JMP", Indirect, 5, false, (*CPU).jmp)
	set(0x20, "JSR", Absolute, 6, false, (*CPU).jsr)
	set(0x60, "RTS", Implied, 6, false, (*CPU).rts)
	set(0x40, "RTI", Implied, 6, false, (*CPU).rti)

	// Branches
	set(0x90, "BCC", Relative, 2, false, (*CPU).bcc)
	set(0xB0, "BCS", Relative, 2, false, (*CPU).bcs)
	set(0xF0, "BEQ", Relative, 2, false, (*CPU).beq)
	set(0xD0, "BNE", Relative, 2, false, (*CPU).bne)
	set(0x30, "BMI", Relative, 2, false, (*CPU).bmi)
	set(0x10, "BPL", Relative, 2, false, (*CPU).bpl)
	set(0x50, "BVC", Relative, 2, false, (*CPU).bvc)
	set(0x70, "BVS", Relative, 2, false, (*CPU).bvs)

	// Flag operations
	set(0x18, "CLC", Implied, 2, false, (*CPU).clc)
	set(0x38, "SEC", Implied, 2, false, (*CPU).sec)
	set(0x58, "CLI", Implied, 2, false, (*CPU).cli)
	set(0x78, "SEI", Implied, 2, false, (*CPU).sei)
	set(0xB8, "CLV", Implied, 2, false, (*CPU).clv)
	set(0xD8, "CLD", Implied, 2, false, (*CPU).cld)
	set(0xF8, "SED", Implied, 2, false, (*CPU).sed)

	// Miscellaneous
	set(0x00, "BRK", Implied, 7, false, (*CPU).brk)
	set(0xEA, "NOP", Implied, 2, false, (*CPU).nop)
}
