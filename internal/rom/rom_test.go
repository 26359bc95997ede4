package rom

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeImage builds a 32 KiB image with the reset vector pointing at base
func makeImage(t *testing.T, base uint16) *Image {
	t.Helper()
	data := make([]uint8, 0x8000)
	data[ResetVector-base] = uint8(base & 0xFF)
	data[ResetVector-base+1] = uint8(base >> 8)
	img, err := New(data, base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return img
}

func TestNewValidImage(t *testing.T) {
	img := makeImage(t, 0x8000)
	if img.Base != 0x8000 || img.End() != 0xFFFF {
		t.Errorf("image spans $%04X-$%04X, want $8000-$FFFF", img.Base, img.End())
	}
}

func TestNewRejectsEmptyImage(t *testing.T) {
	_, err := New(nil, 0x8000)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestNewRejectsOversizedImage(t *testing.T) {
	data := make([]uint8, 0x9000)
	if _, err := New(data, 0x8000); err == nil {
		t.Error("a $9000-byte image cannot fit above $8000")
	}
	// Exactly filling the space is fine
	if _, err := New(make([]uint8, 0x8000), 0x8000); err != nil {
		t.Errorf("a $8000-byte image fits above $8000: %v", err)
	}
}

func TestCovers(t *testing.T) {
	img := makeImage(t, 0x8000)
	if !img.Covers(0x8000) || !img.Covers(0xFFFF) {
		t.Error("image should cover its own range")
	}
	if img.Covers(0x7FFF) {
		t.Error("image should not cover below its base")
	}
}

func TestReadVector(t *testing.T) {
	img := makeImage(t, 0x8000)
	vec, err := img.ReadVector(ResetVector)
	if err != nil {
		t.Fatalf("ReadVector failed: %v", err)
	}
	if vec != 0x8000 {
		t.Errorf("reset vector = $%04X, want $8000", vec)
	}
}

func TestReadVectorOutsideImage(t *testing.T) {
	data := make([]uint8, 0x100)
	img, err := New(data, 0x8000)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := img.ReadVector(ResetVector); err == nil {
		t.Error("vector outside a small image should be a LoadError")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.bin")
	data := []uint8{0xA9, 0x01, 0x00}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	img, err := LoadFile(path, 0x8000)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if img.Path != path || len(img.Data) != 3 || img.Data[0] != 0xA9 {
		t.Errorf("image = %+v, want the file contents at $8000", img)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.bin"), 0x8000)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}
