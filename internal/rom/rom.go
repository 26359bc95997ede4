// Package rom loads flat ROM images for the emulated machine.
package rom

import (
	"fmt"
	"os"
)

// Interrupt vector locations at the top of the address space
const (
	NMIVector   = 0xFFFA
	ResetVector = 0xFFFC
	IRQVector   = 0xFFFE
)

// LoadError reports a ROM image that cannot be mapped: empty, too
// large for the space above its base, or missing the reset vector.
type LoadError struct {
	Path   string
	Reason string
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rom: %s", e.Reason)
	}
	return fmt.Sprintf("rom %s: %s", e.Path, e.Reason)
}

// Image is a flat binary positioned at a base address. There is no
// header; the reset, NMI and IRQ vectors are the words at
// $FFFC/$FFFA/$FFFE when the image reaches that high.
type Image struct {
	Base uint16
	Data []uint8
	Path string
}

// New validates data against the space available above base
func New(data []uint8, base uint16) (*Image, error) {
	if len(data) == 0 {
		return nil, &LoadError{Reason: "empty image"}
	}
	if int(base)+len(data) > 0x10000 {
		return nil, &LoadError{
			Reason: fmt.Sprintf("image of %d bytes does not fit above base $%04X", len(data), base),
		}
	}
	return &Image{Base: base, Data: data}, nil
}

// LoadFile reads a flat binary from disk
func LoadFile(path string, base uint16) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: err.Error()}
	}
	img, err := New(data, base)
	if err != nil {
		err.(*LoadError).Path = path
		return nil, err
	}
	img.Path = path
	return img, nil
}

// End returns the last address the image occupies
func (img *Image) End() uint16 {
	return img.Base + uint16(len(img.Data)-1)
}

// Covers reports whether addr falls inside the image
func (img *Image) Covers(addr uint16) bool {
	return addr >= img.Base && addr <= img.End()
}

// ReadVector returns the little-endian word at addr, which must be
// covered by the image together with addr+1.
func (img *Image) ReadVector(addr uint16) (uint16, error) {
	if !img.Covers(addr) || !img.Covers(addr + 1) {
		return 0, &LoadError{
			Path:   img.Path,
			Reason: fmt.Sprintf("vector at $%04X reads outside the image", addr),
		}
	}
	low := uint16(img.Data[addr-img.Base])
	high := uint16(img.Data[addr+1-img.Base])
	return (high << 8) | low, nil
}
