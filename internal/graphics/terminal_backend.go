package graphics

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"m6502/internal/video"
)

// TerminalBackend implements the Backend interface for ANSI terminal
// rendering with raw-mode keyboard input.
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow implements the Window interface for terminal rendering
type TerminalWindow struct {
	title    string
	width    int
	height   int
	running  bool
	oldState *term.State
	keys     chan uint8
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow switches the terminal to raw mode and starts the key
// reader goroutine
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	w := &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		keys:    make(chan uint8, 64),
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to enter raw mode: %v", err)
		}
		w.oldState = state
		go w.readKeys()
	}

	// Hide the cursor and clear once; frames repaint in place
	fmt.Print("\033[?25l\033[2J")
	w.SetTitle(title)

	return w, nil
}

// readKeys feeds raw stdin bytes into the key channel
func (w *TerminalWindow) readKeys() {
	buf := make([]byte, 1)
	for w.running {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		select {
		case w.keys <- buf[0]:
		default:
			// Drop keys when the machine is not draining them
		}
	}
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// TerminalWindow implementation

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Printf("\033]0;%s\007", title)
}

// GetSize returns window dimensions
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents drains buffered key presses. Ctrl-C in raw mode arrives
// as 0x03 and becomes a quit event.
func (w *TerminalWindow) PollEvents() []InputEvent {
	var events []InputEvent
	for {
		select {
		case key := <-w.keys:
			if key == 0x03 {
				events = append(events, InputEvent{Type: InputEventTypeQuit})
			} else {
				events = append(events, InputEvent{Type: InputEventTypeKey, Key: key})
			}
		default:
			return events
		}
	}
}

// RenderFrame paints the framebuffer as two-character color cells
func (w *TerminalWindow) RenderFrame(frame [video.Pixels]uint32) error {
	var sb strings.Builder
	sb.WriteString("\033[H")

	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			pixel := frame[y*video.Width+x]
			fmt.Fprintf(&sb, "\033[48;2;%d;%d;%dm  ",
				(pixel>>16)&0xFF, (pixel>>8)&0xFF, pixel&0xFF)
		}
		sb.WriteString("\033[0m\r\n")
	}

	fmt.Print(sb.String())
	return nil
}

// Cleanup restores the terminal state
func (w *TerminalWindow) Cleanup() error {
	w.running = false
	fmt.Print("\033[?25h\033[0m")
	if w.oldState != nil {
		return term.Restore(int(os.Stdin.Fd()), w.oldState)
	}
	return nil
}
