package graphics

import (
	"os"
	"path/filepath"
	"testing"

	"m6502/internal/video"
)

func TestCreateBackendTypes(t *testing.T) {
	tests := []struct {
		backendType BackendType
		name        string
		headless    bool
	}{
		{BackendHeadless, "Headless", true},
		{BackendTerminal, "Terminal", false},
	}
	for _, tt := range tests {
		backend, err := CreateBackend(tt.backendType)
		if err != nil {
			t.Fatalf("CreateBackend(%s) failed: %v", tt.backendType, err)
		}
		if backend.GetName() != tt.name {
			t.Errorf("GetName = %q, want %q", backend.GetName(), tt.name)
		}
	}
}

func TestCreateBackendUnknown(t *testing.T) {
	if _, err := CreateBackend("sdl9"); err == nil {
		t.Error("unknown backend type should fail")
	}
}

func TestHeadlessWindowLifecycle(t *testing.T) {
	backend := NewHeadlessBackend()
	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := backend.Initialize(Config{}); err == nil {
		t.Error("double Initialize should fail")
	}
	if !backend.IsHeadless() {
		t.Error("headless backend should report headless")
	}

	window, err := backend.CreateWindow("test", 512, 512)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}
	if window.ShouldClose() {
		t.Error("fresh window should not want to close")
	}
	if events := window.PollEvents(); len(events) != 0 {
		t.Errorf("headless window returned %d events, want 0", len(events))
	}

	var frame [video.Pixels]uint32
	if err := window.RenderFrame(frame); err != nil {
		t.Errorf("RenderFrame failed: %v", err)
	}

	if err := window.Cleanup(); err != nil {
		t.Errorf("Cleanup failed: %v", err)
	}
	if !window.ShouldClose() {
		t.Error("window should close after Cleanup")
	}
}

func TestHeadlessSaveFrameAsPPM(t *testing.T) {
	backend := NewHeadlessBackend()
	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	window, err := backend.CreateWindow("test", 32, 32)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}

	var frame [video.Pixels]uint32
	frame[0] = 0xFF0000

	path := filepath.Join(t.TempDir(), "frame.ppm")
	if err := window.(*HeadlessWindow).SaveFrameAsPPM(frame, path); err != nil {
		t.Fatalf("SaveFrameAsPPM failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) == 0 || string(data[:2]) != "P3" {
		t.Error("PPM file should start with the P3 magic")
	}
}

func TestUninitializedBackendRejectsWindow(t *testing.T) {
	backend := NewHeadlessBackend()
	if _, err := backend.CreateWindow("test", 32, 32); err == nil {
		t.Error("CreateWindow before Initialize should fail")
	}
}
