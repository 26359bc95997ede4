package cpu

import "testing"

func TestZeroPageAddressing(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x8000, 0xA5, 0x42) // LDA $42
	mem.SetByte(0x0042, 0x99)

	step(t, cpu)
	if cpu.A != 0x99 {
		t.Errorf("A = $%02X, want $99", cpu.A)
	}
	if cpu.PC != 0x8002 {
		t.Errorf("PC = $%04X, want $8002", cpu.PC)
	}
}

func TestZeroPageXWrapsAround(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x8000, 0xB5, 0xF0) // LDA $F0,X
	cpu.X = 0x20
	mem.SetByte(0x0010, 0xAB) // ($F0 + $20) & $FF = $10

	step(t, cpu)
	if cpu.A != 0xAB {
		t.Errorf("zero-page,X should wrap within page zero: A = $%02X, want $AB", cpu.A)
	}
}

func TestZeroPageYWrapsAround(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x8000, 0xB6, 0x80) // LDX $80,Y
	cpu.Y = 0x90
	mem.SetByte(0x0010, 0xCD)

	step(t, cpu)
	if cpu.X != 0xCD {
		t.Errorf("zero-page,Y should wrap within page zero: X = $%02X, want $CD", cpu.X)
	}
}

func TestAbsoluteAddressing(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x8000, 0xAD, 0x34, 0x12) // LDA $1234
	mem.SetByte(0x1234, 0x56)

	step(t, cpu)
	if cpu.A != 0x56 {
		t.Errorf("A = $%02X, want $56", cpu.A)
	}
	if cpu.PC != 0x8003 {
		t.Errorf("PC = $%04X, want $8003", cpu.PC)
	}
}

func TestAbsoluteIndexed(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x8000, 0xBD, 0x00, 0x20) // LDA $2000,X
	cpu.X = 0x10
	mem.SetByte(0x2010, 0x77)

	step(t, cpu)
	if cpu.A != 0x77 {
		t.Errorf("A = $%02X, want $77", cpu.A)
	}
}

func TestIndexedIndirect(t *testing.T) {
	// LDA ($20,X) with X=4: pointer at $24/$25
	cpu, mem := newTestCPU(t, 0x8000, 0xA1, 0x20)
	cpu.X = 0x04
	mem.SetWord(0x0024, 0x3000)
	mem.SetByte(0x3000, 0x5A)

	step(t, cpu)
	if cpu.A != 0x5A {
		t.Errorf("A = $%02X, want $5A", cpu.A)
	}
}

func TestIndexedIndirectPointerWraps(t *testing.T) {
	// LDA ($FF,X) with X=0: pointer bytes at $FF and $00
	cpu, mem := newTestCPU(t, 0x8000, 0xA1, 0xFF)
	mem.SetByte(0x00FF, 0x00)
	mem.SetByte(0x0000, 0x40)
	mem.SetByte(0x4000, 0x66)

	step(t, cpu)
	if cpu.A != 0x66 {
		t.Errorf("(zp,X) pointer should wrap in page zero: A = $%02X, want $66", cpu.A)
	}
}

func TestIndirectIndexed(t *testing.T) {
	// LDA ($20),Y with Y=0x10
	cpu, mem := newTestCPU(t, 0x8000, 0xB1, 0x20)
	cpu.Y = 0x10
	mem.SetWord(0x0020, 0x3000)
	mem.SetByte(0x3010, 0x88)

	step(t, cpu)
	if cpu.A != 0x88 {
		t.Errorf("A = $%02X, want $88", cpu.A)
	}
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	// JMP ($30FF): low byte from $30FF, high byte from $3000 (not $3100)
	cpu, mem := newTestCPU(t, 0x8000, 0x6C, 0xFF, 0x30)
	mem.SetByte(0x30FF, 0x00)
	mem.SetByte(0x3000, 0x40)
	mem.SetByte(0x3100, 0x80)

	step(t, cpu)
	if cpu.PC != 0x4000 {
		t.Errorf("PC = $%04X, want $4000 (page-wrap bug)", cpu.PC)
	}
}

func TestJMPIndirectWithoutWrap(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x8000, 0x6C, 0x00, 0x30)
	mem.SetWord(0x3000, 0x1234)

	step(t, cpu)
	if cpu.PC != 0x1234 {
		t.Errorf("PC = $%04X, want $1234", cpu.PC)
	}
}

func TestRelativeBranchBackward(t *testing.T) {
	// The offset applies to the PC after the instruction ($8002),
	// so -4 lands at $7FFE
	cpu, _ := newTestCPU(t, 0x8000, 0xD0, 0xFC)
	cpu.Z = false

	step(t, cpu)
	if cpu.PC != 0x7FFE {
		t.Errorf("PC = $%04X, want $7FFE", cpu.PC)
	}
}

func TestRelativeBranchForward(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x8000, 0xF0, 0x10) // BEQ *+0x10
	cpu.Z = true

	step(t, cpu)
	if cpu.PC != 0x8012 {
		t.Errorf("PC = $%04X, want $8012", cpu.PC)
	}
}

func TestImmediateAdvancesPC(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x8000, 0xA2, 0x7F) // LDX #$7F
	step(t, cpu)
	if cpu.X != 0x7F {
		t.Errorf("X = $%02X, want $7F", cpu.X)
	}
	if cpu.PC != 0x8002 {
		t.Errorf("PC = $%04X, want $8002", cpu.PC)
	}
}
