package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"m6502/internal/cpu"
	"m6502/internal/graphics"
	"m6502/internal/rom"
	"m6502/internal/serial"
	"m6502/internal/video"
)

// Application owns the machine, the configuration and the selected
// front-end, and paces the CPU against wall time.
type Application struct {
	config  *Config
	machine *Machine
	backend graphics.Backend
	window  graphics.Window
	bridge  *serial.Bridge

	running   bool
	romPath   string
	frame     [video.Pixels]uint32
	traceFile *os.File
}

// NewApplication loads configuration and builds the machine. A
// non-empty backendOverride wins over the configured video backend.
func NewApplication(configPath, backendOverride string) (*Application, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if backendOverride != "" {
		config.Video.Backend = backendOverride
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}

	machine, err := NewMachine(os.Stdin, config.Emulation.RandSeed)
	if err != nil {
		return nil, err
	}

	app := &Application{
		config:  config,
		machine: machine,
	}

	if config.Debug.Trace {
		if err := app.enableTrace(); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// enableTrace routes per-instruction trace records to the configured
// file or stderr
func (app *Application) enableTrace() error {
	sink := log.New(os.Stderr, "", 0)
	if app.config.Debug.TraceFile != "" {
		file, err := os.Create(app.config.Debug.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %v", err)
		}
		app.traceFile = file
		sink = log.New(file, "", 0)
	}
	app.machine.CPU.SetTracer(func(r cpu.TraceRecord) {
		sink.Println(r.String())
	})
	return nil
}

// LoadROM loads a flat binary at the configured base address
func (app *Application) LoadROM(romPath string) error {
	img, err := rom.LoadFile(romPath, uint16(app.config.Emulation.LoadBase))
	if err != nil {
		return err
	}
	if err := app.machine.Load(img); err != nil {
		return err
	}
	app.romPath = romPath
	return nil
}

// Run starts the selected front-end and blocks until it exits
func (app *Application) Run() error {
	if app.machine.Image() == nil {
		return fmt.Errorf("no ROM loaded")
	}

	// Trace may have been switched on after construction (--trace)
	if app.config.Debug.Trace && app.traceFile == nil {
		if err := app.enableTrace(); err != nil {
			return err
		}
	}

	backend, err := graphics.CreateBackend(graphics.BackendType(app.config.Video.Backend))
	if err != nil {
		return err
	}
	app.backend = backend

	if err := backend.Initialize(graphics.Config{
		WindowTitle: app.windowTitle(),
		VSync:       app.config.Video.VSync,
		Fullscreen:  app.config.Window.Fullscreen,
		Headless:    backend.IsHeadless(),
	}); err != nil {
		return err
	}

	width, height := app.config.GetWindowResolution()
	window, err := backend.CreateWindow(app.windowTitle(), width, height)
	if err != nil {
		return err
	}
	app.window = window

	if app.config.Serial.Port != "" {
		bridge, err := serial.Open(app.machine.ACIA, serial.Options{
			PortName: app.config.Serial.Port,
			BaudRate: app.config.Serial.BaudRate,
		})
		if err != nil {
			return err
		}
		app.bridge = bridge
	}

	app.running = true
	defer app.Cleanup()

	// The Ebitengine backend owns the loop; everything else is paced
	// here with a frame ticker.
	type gameLoop interface {
		SetEmulatorUpdateFunc(func() error)
		Run() error
	}
	if loopWindow, ok := window.(gameLoop); ok {
		loopWindow.SetEmulatorUpdateFunc(app.updateFrame)
		return loopWindow.Run()
	}
	return app.runLoop()
}

// runLoop paces terminal and headless front-ends
func (app *Application) runLoop() error {
	frameTime := time.Duration(float64(time.Second) / app.config.Emulation.FrameRate)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for app.running && !app.window.ShouldClose() {
		if err := app.updateFrame(); err != nil {
			return err
		}
		<-ticker.C
	}
	return nil
}

// updateFrame advances the machine one frame: input, one cycle budget,
// transmitted serial bytes, then the display
func (app *Application) updateFrame() error {
	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.running = false
			return nil
		case graphics.InputEventTypeKey:
			app.machine.Key.Press(event.Key)
		}
	}

	if _, err := app.machine.RunFor(app.config.CyclesPerFrame()); err != nil {
		var illegal *cpu.IllegalOpcodeError
		if errors.As(err, &illegal) {
			return fmt.Errorf("machine halted: %v", err)
		}
		return err
	}

	app.drainSerialOutput()
	return app.render()
}

// drainSerialOutput writes ACIA transmit bytes to stdout unless the
// physical bridge owns them
func (app *Application) drainSerialOutput() {
	if app.bridge != nil {
		return
	}
	for {
		value, ok := app.machine.ACIA.TxRead()
		if !ok {
			return
		}
		fmt.Printf("%c", value)
	}
}

// render pushes the framebuffer to the window when it changed
func (app *Application) render() error {
	if !app.machine.Framebuffer.TakeDirty() {
		return nil
	}
	app.machine.Framebuffer.Snapshot(app.frame[:])
	return app.window.RenderFrame(app.frame)
}

// windowTitle names the window after the loaded ROM
func (app *Application) windowTitle() string {
	if app.romPath != "" {
		return fmt.Sprintf("m6502 - %s", app.romPath)
	}
	return "m6502"
}

// Stop requests the run loop to exit
func (app *Application) Stop() {
	app.running = false
}

// GetConfig returns the active configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetMachine returns the assembled machine
func (app *Application) GetMachine() *Machine {
	return app.machine
}

// Cleanup releases the window, backend, serial bridge and trace file
func (app *Application) Cleanup() error {
	app.running = false

	var firstErr error
	if app.bridge != nil {
		if err := app.bridge.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.bridge = nil
	}
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.window = nil
	}
	if app.backend != nil {
		if err := app.backend.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.backend = nil
	}
	if app.traceFile != nil {
		if err := app.traceFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.traceFile = nil
	}
	return firstErr
}
