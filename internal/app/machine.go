package app

import (
	"fmt"
	"io"

	"m6502/internal/bus"
	"m6502/internal/cpu"
	"m6502/internal/devices"
	"m6502/internal/memory"
	"m6502/internal/rom"
	"m6502/internal/video"
)

// Default demo memory map
const (
	randPortAddr = 0x00FE
	keyPortAddr  = 0x00FF

	framebufferStart = 0x0200
	framebufferEnd   = 0x05FF

	aciaStart = 0xA000
	aciaEnd   = 0xA001

	consoleStart = 0xB000
	consoleEnd   = 0xB001

	// DefaultLoadBase is where ROM images load unless configured
	DefaultLoadBase = 0x8000
)

// Machine wires the CPU, bus and the default device set together. The
// bus owns the devices; the machine keeps direct handles so front-ends
// can reach the peripherals without going through the address space.
type Machine struct {
	Bus         *bus.Bus
	CPU         *cpu.CPU
	Key         *devices.KeyPort
	Rand        *devices.RandPort
	ACIA        *devices.ACIA
	Console     *devices.LineConsole
	Framebuffer *video.Framebuffer

	image *rom.Image
}

// NewMachine builds the demo memory map below the ROM area: zero page
// and stack RAM with the random and key ports punched into the last
// two zero-page bytes, the framebuffer at $0200, and the ACIA and
// read-line console in the $A000/$B000 holes. consoleIn feeds the
// read-line device, normally os.Stdin.
func NewMachine(consoleIn io.Reader, randSeed int64) (*Machine, error) {
	m := &Machine{
		Bus:         bus.New(),
		Key:         devices.NewKeyPort(),
		Rand:        devices.NewRandPort(randSeed),
		ACIA:        devices.NewACIA(),
		Console:     devices.NewLineConsole(consoleIn),
		Framebuffer: video.NewFramebuffer(),
	}

	attach := func(start, end uint16, dev bus.Device, name string) error {
		return m.Bus.Attach(start, end, dev, name)
	}

	steps := []struct {
		start, end uint16
		dev        bus.Device
		name       string
	}{
		{0x0000, randPortAddr - 1, memory.NewRAM(int(randPortAddr)), "zero page"},
		{randPortAddr, randPortAddr, m.Rand, "random port"},
		{keyPortAddr, keyPortAddr, m.Key, "key latch"},
		{0x0100, 0x01FF, memory.NewRAM(0x100), "stack"},
		{framebufferStart, framebufferEnd, m.Framebuffer, "framebuffer"},
		{aciaStart, aciaEnd, m.ACIA, "acia"},
		{consoleStart, consoleEnd, m.Console, "console"},
	}
	for _, s := range steps {
		if err := attach(s.start, s.end, s.dev, s.name); err != nil {
			return nil, err
		}
	}

	m.CPU = cpu.New(m.Bus)
	return m, nil
}

// Load maps the ROM image into the address space and asserts reset.
// The area from the image base to $FFFF becomes ROM windows wrapped
// around the MMIO holes; RAM fills the gap between the framebuffer and
// the image base. The image must cover the reset vector.
func (m *Machine) Load(img *rom.Image) error {
	if m.image != nil {
		return fmt.Errorf("machine already has %s loaded", m.image.Path)
	}
	if !img.Covers(rom.ResetVector) || !img.Covers(rom.ResetVector+1) {
		return &rom.LoadError{
			Path:   img.Path,
			Reason: "image does not cover the reset vector at $FFFC",
		}
	}

	// RAM fills the gap between the framebuffer and the start of ROM;
	// ROM windows cover the rest. Both wrap around the MMIO holes so
	// bus ranges stay non-overlapping.
	if img.Base > framebufferEnd+1 {
		err := attachAround(framebufferEnd+1, img.Base-1, func(start, end uint16) error {
			return m.Bus.Attach(start, end, memory.NewRAM(int(end)-int(start)+1), "ram")
		})
		if err != nil {
			return err
		}
	}
	err := attachAround(img.Base, 0xFFFF, func(start, end uint16) error {
		return m.attachWindow(img, start, end)
	})
	if err != nil {
		return err
	}

	m.image = img
	m.CPU.Reset()
	return nil
}

// attachAround invokes attach for every segment of [start, end] that
// does not intersect an MMIO hole
func attachAround(start, end uint16, attach func(start, end uint16) error) error {
	holes := [][2]uint16{
		{aciaStart, aciaEnd},
		{consoleStart, consoleEnd},
	}
	segStart := uint32(start)
	for _, hole := range holes {
		if uint32(hole[1]) < segStart || uint32(hole[0]) > uint32(end) {
			continue
		}
		if uint32(hole[0]) > segStart {
			if err := attach(uint16(segStart), hole[0]-1); err != nil {
				return err
			}
		}
		segStart = uint32(hole[1]) + 1
	}
	if segStart <= uint32(end) {
		return attach(uint16(segStart), end)
	}
	return nil
}

// attachWindow maps [start, end] of the address space onto the image
func (m *Machine) attachWindow(img *rom.Image, start, end uint16) error {
	offset := int(start) - int(img.Base)
	size := int(end) - int(start) + 1
	name := fmt.Sprintf("rom $%04X", start)
	return m.Bus.Attach(start, end, memory.NewWindow(img.Data, offset, size), name)
}

// Image returns the loaded ROM image, or nil
func (m *Machine) Image() *rom.Image {
	return m.image
}

// Step executes one instruction (or one interrupt service)
func (m *Machine) Step() (uint64, error) {
	return m.CPU.Step()
}

// RunFor paces the CPU for a cycle budget
func (m *Machine) RunFor(budget uint64) (uint64, error) {
	return m.CPU.RunFor(budget)
}
