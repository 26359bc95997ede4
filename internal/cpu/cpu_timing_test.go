package cpu

import "testing"

func TestBaseCycleCounts(t *testing.T) {
	tests := []struct {
		name    string
		program []uint8
		cycles  uint64
	}{
		{"LDA immediate", []uint8{0xA9, 0x10}, 2},
		{"LDA zero page", []uint8{0xA5, 0x10}, 3},
		{"LDA zero page,X", []uint8{0xB5, 0x10}, 4},
		{"LDA absolute", []uint8{0xAD, 0x00, 0x20}, 4},
		{"LDA (zp,X)", []uint8{0xA1, 0x10}, 6},
		{"LDA (zp),Y", []uint8{0xB1, 0x10}, 5},
		{"STA absolute", []uint8{0x8D, 0x00, 0x20}, 4},
		{"INC zero page", []uint8{0xE6, 0x10}, 5},
		{"INC absolute,X", []uint8{0xFE, 0x00, 0x20}, 7},
		{"ASL accumulator", []uint8{0x0A}, 2},
		{"ASL absolute", []uint8{0x0E, 0x00, 0x20}, 6},
		{"JMP absolute", []uint8{0x4C, 0x00, 0x90}, 3},
		{"JMP indirect", []uint8{0x6C, 0x00, 0x20}, 5},
		{"JSR", []uint8{0x20, 0x00, 0x90}, 6},
		{"PHA", []uint8{0x48}, 3},
		{"PLA", []uint8{0x68}, 4},
		{"NOP", []uint8{0xEA}, 2},
		{"BRK", []uint8{0x00}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(t, 0x8000, tt.program...)
			if cycles := step(t, cpu); cycles != tt.cycles {
				t.Errorf("cycles = %d, want %d", cycles, tt.cycles)
			}
		})
	}
}

func TestReadPageCrossPenalty(t *testing.T) {
	// LDA $20F0,X with X=$20 crosses into $2110
	cpu, _ := newTestCPU(t, 0x8000, 0xBD, 0xF0, 0x20)
	cpu.X = 0x20
	if cycles := step(t, cpu); cycles != 5 {
		t.Errorf("LDA absolute,X crossing = %d cycles, want 5", cycles)
	}

	// No crossing
	cpu2, _ := newTestCPU(t, 0x8000, 0xBD, 0x00, 0x20)
	cpu2.X = 0x20
	if cycles := step(t, cpu2); cycles != 4 {
		t.Errorf("LDA absolute,X without crossing = %d cycles, want 4", cycles)
	}
}

func TestIndirectIndexedPageCrossPenalty(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x8000, 0xB1, 0x10)
	mem.SetWord(0x0010, 0x20F0)
	cpu.Y = 0x20
	if cycles := step(t, cpu); cycles != 6 {
		t.Errorf("LDA (zp),Y crossing = %d cycles, want 6", cycles)
	}
}

func TestStoresAlwaysPayIndexCycle(t *testing.T) {
	// STA absolute,X is 5 cycles whether or not the index crosses
	cpu, _ := newTestCPU(t, 0x8000, 0x9D, 0x00, 0x20)
	cpu.X = 0x01
	if cycles := step(t, cpu); cycles != 5 {
		t.Errorf("STA absolute,X without crossing = %d cycles, want 5", cycles)
	}

	cpu2, _ := newTestCPU(t, 0x8000, 0x9D, 0xF0, 0x20)
	cpu2.X = 0x20
	if cycles := step(t, cpu2); cycles != 5 {
		t.Errorf("STA absolute,X with crossing = %d cycles, want 5", cycles)
	}

	cpu3, mem := newTestCPU(t, 0x8000, 0x91, 0x10)
	mem.SetWord(0x0010, 0x20F0)
	cpu3.Y = 0x20
	if cycles := step(t, cpu3); cycles != 6 {
		t.Errorf("STA (zp),Y with crossing = %d cycles, want 6", cycles)
	}
}

func TestBranchCycles(t *testing.T) {
	// Not taken: 2 cycles
	cpu, _ := newTestCPU(t, 0x8000, 0xF0, 0x10)
	cpu.Z = false
	if cycles := step(t, cpu); cycles != 2 {
		t.Errorf("branch not taken = %d cycles, want 2", cycles)
	}

	// Taken, same page: 3 cycles
	cpu2, _ := newTestCPU(t, 0x8000, 0xF0, 0x10)
	cpu2.Z = true
	if cycles := step(t, cpu2); cycles != 3 {
		t.Errorf("branch taken same page = %d cycles, want 3", cycles)
	}
}

func TestBranchPageCrossCycles(t *testing.T) {
	// BEQ $8110 at $80FE: the branch sits on page $80 and the target
	// on page $81, so a taken branch costs 2 base + 1 taken + 1 cross
	mem := NewMockMemory()
	mem.SetBytes(0x80FE, 0xF0, 0x10) // BEQ *+$10
	mem.SetWord(resetVector, 0x80FE)
	cpu := New(mem)
	cpu.Reset()
	step(t, cpu)

	cpu.Z = true
	cycles := step(t, cpu)
	if cycles != 4 {
		t.Errorf("taken branch across page = %d cycles, want 4", cycles)
	}
	if cpu.PC != 0x8110 {
		t.Errorf("PC = $%04X, want $8110", cpu.PC)
	}

	// Not taken from the same spot stays at the base 2 cycles
	mem2 := NewMockMemory()
	mem2.SetBytes(0x80FE, 0xF0, 0x10)
	mem2.SetWord(resetVector, 0x80FE)
	cpu2 := New(mem2)
	cpu2.Reset()
	step(t, cpu2)

	cpu2.Z = false
	if cycles := step(t, cpu2); cycles != 2 {
		t.Errorf("branch not taken = %d cycles, want 2", cycles)
	}
}

func TestProgramCycleSum(t *testing.T) {
	// LDX #$00 (2), INX (2), CPX #$03 (2), BNE -5 (3 taken / 2 not)
	cpu, _ := newTestCPU(t, 0x8000, 0xA2, 0x00, 0xE8, 0xE0, 0x03, 0xD0, 0xFB)

	var total uint64
	for cpu.PC != 0x8007 {
		total += step(t, cpu)
	}
	// 2 + 3*(2+2) + 2*3 + 1*2 = 22
	if total != 22 {
		t.Errorf("loop total = %d cycles, want 22", total)
	}
	if cpu.X != 0x03 {
		t.Errorf("X = $%02X, want $03", cpu.X)
	}
}
