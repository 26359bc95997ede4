// Package cpu implements the NMOS 6502 CPU core.
package cpu

import (
	"fmt"
	"sync/atomic"
)

// Addressing modes
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	// Stack base address
	stackBase = 0x0100
	// Status register bit masks
	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01
	// Zero page mask
	zeroPageMask = 0xFF
	// Page boundary mask
	pageMask = 0xFF00
	// Interrupt vectors
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
	// Interrupt entry (and reset) cost
	interruptCycles = 7
)

// Instruction describes one documented opcode: its mnemonic, addressing
// mode, base cycle count, whether an indexed page crossing costs one
// extra cycle, and the handler that executes it.
type Instruction struct {
	Name      string
	Mode      AddressingMode
	Cycles    uint8
	PageCycle bool
	exec      func(*CPU, uint16, bool) uint8
}

// MemoryInterface defines the interface for CPU memory access
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// IllegalOpcodeError reports a fetched opcode outside the documented
// set. The CPU stays halted with this error until Reset.
type IllegalOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode $%02X at $%04X", e.Opcode, e.PC)
}

// BusFaultError is reserved for devices that reject an access. None of
// the built-in devices raise it.
type BusFaultError struct {
	Address uint16
}

func (e *BusFaultError) Error() string {
	return fmt.Sprintf("bus fault at $%04X", e.Address)
}

// CPU represents a 6502 processor
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer
	PC uint16 // Program counter

	// Status register flags. B and the unused bit are not stored;
	// they are materialized on pushes and ignored on pulls.
	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode
	V bool // Overflow
	N bool // Negative

	// Memory interface, normally a *bus.Bus
	memory MemoryInterface

	// Cycle counter
	cycles uint64

	// Instruction lookup table; nil entries are illegal opcodes
	instructions [256]*Instruction

	// Interrupt lines. These are the only fields touched by threads
	// other than the one running Step.
	nmiPending   atomic.Bool
	irqLine      atomic.Bool
	resetPending atomic.Bool

	// Sticky error after an illegal opcode, cleared by Reset
	haltErr error

	// Optional per-instruction trace sink
	tracer func(TraceRecord)
}

// New creates a new CPU attached to the given memory
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{
		memory: memory,
		SP:     0xFD,
	}
	cpu.initInstructions()
	return cpu
}

// Reset asserts the RESET line. The sequence itself (I set, SP to
// $FD, PC loaded from $FFFC/$FFFD, 7 cycles) runs at the start of the
// next Step. Reset also clears a halt condition and pending interrupts.
func (cpu *CPU) Reset() {
	cpu.haltErr = nil
	cpu.nmiPending.Store(false)
	cpu.irqLine.Store(false)
	cpu.resetPending.Store(true)
}

// serviceReset performs the reset sequence
func (cpu *CPU) serviceReset() {
	cpu.A = 0x00
	cpu.X = 0x00
	cpu.Y = 0x00
	cpu.SP = 0xFD

	// Power-up status is $34: I set, everything else clear
	cpu.C = false
	cpu.Z = false
	cpu.I = true
	cpu.D = false
	cpu.V = false
	cpu.N = false

	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low

	cpu.cycles += interruptCycles
}

// SignalNMI latches a non-maskable interrupt edge. Safe to call from
// any goroutine; the edge is serviced before the next opcode fetch.
func (cpu *CPU) SignalNMI() {
	cpu.nmiPending.Store(true)
}

// SignalIRQ sets the level of the IRQ line. The interrupt is serviced
// before an opcode fetch while the line is high and I is clear. Safe
// to call from any goroutine.
func (cpu *CPU) SignalIRQ(level bool) {
	cpu.irqLine.Store(level)
}

// Halted reports the sticky error from an illegal opcode, or nil
func (cpu *CPU) Halted() error {
	return cpu.haltErr
}

// Cycles returns the total machine cycles consumed so far
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// SetTracer installs a per-instruction trace callback, or removes it
// when fn is nil. The callback runs on the emulation thread after each
// executed instruction.
func (cpu *CPU) SetTracer(fn func(TraceRecord)) {
	cpu.tracer = fn
}

// Step services pending interrupts, then fetches and executes one
// instruction. It returns the machine cycles consumed. After an
// illegal opcode the CPU halts and every call returns the same error
// until Reset.
func (cpu *CPU) Step() (uint64, error) {
	if cpu.haltErr != nil {
		return 0, cpu.haltErr
	}

	// RESET > NMI > IRQ, all checked before the opcode fetch
	if cpu.resetPending.CompareAndSwap(true, false) {
		cpu.serviceReset()
		return interruptCycles, nil
	}
	if cpu.nmiPending.CompareAndSwap(true, false) {
		cpu.interrupt(nmiVector)
		return interruptCycles, nil
	}
	if cpu.irqLine.Load() && !cpu.I {
		cpu.interrupt(irqVector)
		return interruptCycles, nil
	}

	startPC := cpu.PC
	opcode := cpu.memory.Read(cpu.PC)
	instruction := cpu.instructions[opcode]
	if instruction == nil {
		cpu.haltErr = &IllegalOpcodeError{Opcode: opcode, PC: startPC}
		return 0, cpu.haltErr
	}

	address, pageCrossed := cpu.getOperandAddress(instruction.Mode)
	extraCycles := instruction.exec(cpu, address, pageCrossed)
	if pageCrossed && instruction.PageCycle {
		extraCycles++
	}

	totalCycles := uint64(instruction.Cycles) + uint64(extraCycles)
	cpu.cycles += totalCycles

	if cpu.tracer != nil {
		cpu.tracer(TraceRecord{
			PC:       startPC,
			Opcode:   opcode,
			Mnemonic: instruction.Name,
			Operand:  address,
			A:        cpu.A,
			X:        cpu.X,
			Y:        cpu.Y,
			SP:       cpu.SP,
			P:        cpu.statusByte(false),
			Cycles:   cpu.cycles,
		})
	}

	return totalCycles, nil
}

// RunFor calls Step until at least budget cycles have been consumed by
// this call, returning the cycles actually executed. Front-ends use
// this to pace the CPU against wall time.
func (cpu *CPU) RunFor(budget uint64) (uint64, error) {
	var executed uint64
	for executed < budget {
		cycles, err := cpu.Step()
		executed += cycles
		if err != nil {
			return executed, err
		}
	}
	return executed, nil
}

// getOperandAddress returns the effective address for the given addressing mode.
// Returns the address and whether a page boundary was crossed (affects cycle timing).
func (cpu *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	pageCrossed := false

	switch mode {
	case Implied, Accumulator:
		cpu.PC += 1 // Single byte instruction
		return 0, false

	case Immediate:
		address := cpu.PC + 1
		cpu.PC += 2
		return address, false

	case ZeroPage:
		address := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC + 1)
		address := uint16((base + cpu.X) & zeroPageMask) // Wrap within zero page
		cpu.PC += 2
		return address, false

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC + 1)
		address := uint16((base + cpu.Y) & zeroPageMask) // Wrap within zero page
		cpu.PC += 2
		return address, false

	case Relative:
		opcodePC := cpu.PC
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC // Will be updated by branch instruction if taken
		pageCrossed = (opcodePC & pageMask) != (newPC & pageMask)
		return newPC, pageCrossed

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		address := (high << 8) | low
		cpu.PC += 3
		return address, false

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.X)
		cpu.PC += 3
		pageCrossed = (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		pageCrossed = (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	case Indirect: // Only used by JMP
		lowPtr := uint16(cpu.memory.Read(cpu.PC + 1))
		highPtr := uint16(cpu.memory.Read(cpu.PC + 2))
		ptr := (highPtr << 8) | lowPtr

		// Hardware bug: if the pointer sits on a page boundary the
		// high byte is fetched from the start of the same page
		var address uint16
		if (ptr & zeroPageMask) == zeroPageMask {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr & pageMask))
			address = (high << 8) | low
		} else {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr + 1))
			address = (high << 8) | low
		}
		cpu.PC += 3
		return address, false

	case IndexedIndirect: // (zp,X)
		base := cpu.memory.Read(cpu.PC + 1)
		ptr := (base + cpu.X) & zeroPageMask // Wrap within zero page
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16((ptr + 1) & zeroPageMask))) // Wrap within zero page
		address := (high << 8) | low
		cpu.PC += 2
		return address, false

	case IndirectIndexed: // (zp),Y
		ptr := uint16(cpu.memory.Read(cpu.PC + 1))
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask)) // Wrap within zero page
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 2
		pageCrossed = (base & pageMask) != (address & pageMask)
		return address, pageCrossed

	default:
		return 0, false
	}
}

// Stack operations
func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))   // High byte first
	cpu.push(uint8(value & 0xFF)) // Low byte second
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

// setZN sets Zero and Negative flags based on value
func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

// interrupt performs the NMI/IRQ entry sequence: push PC (high, low),
// push status with B clear, set I, load the vector.
func (cpu *CPU) interrupt(vector uint16) {
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.statusByte(false))
	cpu.I = true
	low := uint16(cpu.memory.Read(vector))
	high := uint16(cpu.memory.Read(vector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += interruptCycles
}

// statusByte packs the flags into a status byte. The unused bit is
// always set; B is set only when brk is true (BRK and PHP pushes).
func (cpu *CPU) statusByte(brk bool) uint8 {
	status := uint8(unusedMask)
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if brk {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// setStatusByte unpacks a status byte into the flags. Bits 4 and 5
// (B and unused) are ignored, matching PLP and RTI.
func (cpu *CPU) setStatusByte(status uint8) {
	cpu.N = (status & nFlagMask) != 0
	cpu.V = (status & vFlagMask) != 0
	cpu.D = (status & dFlagMask) != 0
	cpu.I = (status & iFlagMask) != 0
	cpu.Z = (status & zFlagMask) != 0
	cpu.C = (status & cFlagMask) != 0
}

// StatusByte returns the packed status register as it would be pushed
// by PHP (B and unused set). Exposed for front-end state displays.
func (cpu *CPU) StatusByte() uint8 {
	return cpu.statusByte(true)
}

// SetStatusByte loads the packed status register, ignoring B and the
// unused bit. Exposed for save states and tests.
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.setStatusByte(status)
}
