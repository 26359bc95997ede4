package cpu

import "fmt"

// TraceRecord captures one executed instruction: the PC and opcode
// before the fetch, the resolved operand address, the register file
// after execution, and the cumulative cycle count.
type TraceRecord struct {
	PC       uint16
	Opcode   uint8
	Mnemonic string
	Operand  uint16
	A        uint8
	X        uint8
	Y        uint8
	SP       uint8
	P        uint8
	Cycles   uint64
}

// String formats the record in the familiar reference-log layout.
func (r TraceRecord) String() string {
	return fmt.Sprintf("%04X  %02X  %s $%04X  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		r.PC, r.Opcode, r.Mnemonic, r.Operand, r.A, r.X, r.Y, r.P, r.SP, r.Cycles)
}
