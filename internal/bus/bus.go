// Package bus implements the 16-bit system bus that maps address
// ranges to devices.
package bus

import "fmt"

// Device is a memory-mapped peripheral. Addresses passed to Read and
// Write are relative to the start of the range the device is attached
// at, so a device mapped at a single byte always sees address 0.
type Device interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// region is one attached address range
type region struct {
	start  uint16
	end    uint16 // inclusive
	device Device
	name   string
}

// Bus maps the full 64 KiB address space onto attached devices.
// Ranges never overlap; addresses not covered by any range read as 0
// and swallow writes (open bus). The bus owns its devices: the CPU
// holds only the bus.
type Bus struct {
	regions []region
}

// New creates an empty bus. Every address resolves to open bus until
// devices are attached.
func New() *Bus {
	return &Bus{}
}

// Attach maps [start, end] (inclusive) to a device. Overlapping an
// existing range is an error.
func (b *Bus) Attach(start, end uint16, device Device, name string) error {
	if end < start {
		return fmt.Errorf("bus: invalid range $%04X-$%04X for %s", start, end, name)
	}
	if device == nil {
		return fmt.Errorf("bus: nil device for %s", name)
	}
	for _, r := range b.regions {
		if start <= r.end && end >= r.start {
			return fmt.Errorf("bus: range $%04X-$%04X for %s overlaps %s ($%04X-$%04X)",
				start, end, name, r.name, r.start, r.end)
		}
	}
	b.regions = append(b.regions, region{start: start, end: end, device: device, name: name})
	return nil
}

// find returns the region covering addr, or nil for open bus
func (b *Bus) find(addr uint16) *region {
	for i := range b.regions {
		r := &b.regions[i]
		if addr >= r.start && addr <= r.end {
			return r
		}
	}
	return nil
}

// Read reads one byte. Unmapped addresses return 0.
func (b *Bus) Read(address uint16) uint8 {
	if r := b.find(address); r != nil {
		return r.device.Read(address - r.start)
	}
	return 0
}

// Write writes one byte. Writes to unmapped addresses are ignored.
func (b *Bus) Write(address uint16, value uint8) {
	if r := b.find(address); r != nil {
		r.device.Write(address-r.start, value)
	}
}

// Read16 reads a little-endian word from address and address+1. The
// JMP-indirect page-wrap quirk is not modeled here; the CPU core
// performs its own byte reads for that case.
func (b *Bus) Read16(address uint16) uint16 {
	low := uint16(b.Read(address))
	high := uint16(b.Read(address + 1))
	return (high << 8) | low
}

// DeviceAt returns the device covering addr and its range start, for
// front-ends that need direct access to an attached peripheral.
func (b *Bus) DeviceAt(addr uint16) (Device, uint16, bool) {
	if r := b.find(addr); r != nil {
		return r.device, r.start, true
	}
	return nil, 0, false
}
