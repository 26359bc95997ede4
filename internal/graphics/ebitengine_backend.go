//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"m6502/internal/video"
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend            *EbitengineBackend
	title              string
	width              int
	height             int
	game               *EbitengineGame
	running            bool
	events             []InputEvent
	emulatorUpdateFunc func() error
}

// EbitengineGame implements ebiten.Game for the emulator
type EbitengineGame struct {
	window      *EbitengineWindow
	frameImage  *ebiten.Image
	imageBuffer *image.RGBA

	windowWidth  int
	windowHeight int
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		frameImage:   ebiten.NewImage(video.Width, video.Height),
		imageBuffer:  image.NewRGBA(image.Rect(0, 0, video.Width, video.Height)),
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	ebiten.SetScreenFilterEnabled(false) // nearest-neighbor keeps pixels crisp

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// EbitengineWindow implementation

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents processes input events and returns them
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame renders a machine framebuffer to the window
func (w *EbitengineWindow) RenderFrame(frame [video.Pixels]uint32) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	img := w.game.imageBuffer
	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			pixel := frame[y*video.Width+x]
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(pixel >> 16),
				G: uint8(pixel >> 8),
				B: uint8(pixel),
				A: 255,
			})
		}
	}

	w.game.frameImage.ReplacePixels(img.Pix)
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	return ebiten.RunGame(w.game)
}

// SetEmulatorUpdateFunc sets the emulator update function
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {
	w.emulatorUpdateFunc = updateFunc
}

// EbitengineGame implementation

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	g.processInput()

	if g.window.emulatorUpdateFunc != nil {
		if err := g.window.emulatorUpdateFunc(); err != nil {
			// Surface the error and stop the loop; the machine halted
			log.Printf("[Ebitengine] Emulator update error: %v", err)
			return err
		}
	}

	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{A: 255})

	op := &ebiten.DrawImageOptions{}

	// Scale to fit while keeping the square aspect ratio
	scaleX := float64(g.windowWidth) / float64(video.Width)
	scaleY := float64(g.windowHeight) / float64(video.Height)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	op.GeoM.Scale(scale, scale)

	offsetX := (float64(g.windowWidth) - float64(video.Width)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(video.Height)*scale) / 2
	op.GeoM.Translate(offsetX, offsetY)

	screen.DrawImage(g.frameImage, op)
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput translates just-pressed keys into ASCII key events for
// the machine's key latch
func (g *EbitengineGame) processInput() {
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		if key == ebiten.KeyEscape {
			g.window.events = append(g.window.events, InputEvent{Type: InputEventTypeQuit})
			continue
		}
		if code, ok := keyToASCII(key); ok {
			g.window.events = append(g.window.events, InputEvent{Type: InputEventTypeKey, Key: code})
		}
	}
}

// keyToASCII maps an ebiten key to the ASCII code the demo programs
// expect in the key latch
func keyToASCII(key ebiten.Key) (uint8, bool) {
	switch {
	case key >= ebiten.KeyA && key <= ebiten.KeyZ:
		return uint8('a' + (key - ebiten.KeyA)), true
	case key >= ebiten.KeyDigit0 && key <= ebiten.KeyDigit9:
		return uint8('0' + (key - ebiten.KeyDigit0)), true
	}
	switch key {
	case ebiten.KeySpace:
		return ' ', true
	case ebiten.KeyEnter:
		return '\r', true
	// Arrows double as WASD so both control schemes drive the demos
	case ebiten.KeyArrowUp:
		return 'w', true
	case ebiten.KeyArrowLeft:
		return 'a', true
	case ebiten.KeyArrowDown:
		return 's', true
	case ebiten.KeyArrowRight:
		return 'd', true
	}
	return 0, false
}
