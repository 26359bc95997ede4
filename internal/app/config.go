// Package app assembles the machine and runs it behind a front-end.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Emulation EmulationConfig `json:"emulation"`
	Serial    SerialConfig    `json:"serial"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // framebuffer pixel multiplier
}

// VideoConfig contains rendering configuration
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine", "terminal", "headless"
	VSync   bool   `json:"vsync"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	ClockHz   int64   `json:"clock_hz"`   // target CPU clock
	FrameRate float64 `json:"frame_rate"` // pacing rate for RunFor budgets
	LoadBase  int     `json:"load_base"`  // ROM load address
	RandSeed  int64   `json:"rand_seed"`  // seed for the random port
}

// SerialConfig contains the physical serial bridge settings
type SerialConfig struct {
	Port     string `json:"port"` // empty disables the bridge
	BaudRate uint   `json:"baud_rate"`
}

// DebugConfig contains debugging options
type DebugConfig struct {
	Trace     bool   `json:"trace"`      // per-instruction trace log
	TraceFile string `json:"trace_file"` // empty means stderr
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs string `json:"roms"`
	Logs string `json:"logs"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  512,
			Height: 512,
			Scale:  16,
		},
		Video: VideoConfig{
			Backend: "ebitengine",
			VSync:   true,
		},
		Emulation: EmulationConfig{
			ClockHz:   1_000_000, // 1 MHz, the classic NMOS part
			FrameRate: 60.0,
			LoadBase:  0x8000,
			RandSeed:  0,
		},
		Serial: SerialConfig{
			BaudRate: 19200,
		},
		Debug: DebugConfig{},
		Paths: PathsConfig{
			ROMs: "roms",
			Logs: "logs",
		},
	}
}

// GetDefaultConfigPath returns the default configuration file location
func GetDefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "m6502.json"
	}
	return filepath.Join(configDir, "m6502", "config.json")
}

// LoadConfig reads the configuration file at path, falling back to
// defaults when the file does not exist
func LoadConfig(path string) (*Config, error) {
	config := NewConfig()
	config.configPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %v", path, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %v", path, err)
	}
	config.loaded = true

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration back to its file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config path set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}
	return os.WriteFile(c.configPath, data, 0o644)
}

// Validate checks the configuration for usable values
func (c *Config) Validate() error {
	if c.Emulation.ClockHz <= 0 {
		return fmt.Errorf("clock_hz must be positive, got %d", c.Emulation.ClockHz)
	}
	if c.Emulation.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %f", c.Emulation.FrameRate)
	}
	if c.Emulation.LoadBase < 0 || c.Emulation.LoadBase > 0xFFFF {
		return fmt.Errorf("load_base $%X outside the address space", c.Emulation.LoadBase)
	}
	switch c.Video.Backend {
	case "ebitengine", "terminal", "headless":
	default:
		return fmt.Errorf("unknown video backend %q", c.Video.Backend)
	}
	return nil
}

// CyclesPerFrame returns the RunFor budget for one frame of pacing
func (c *Config) CyclesPerFrame() uint64 {
	return uint64(float64(c.Emulation.ClockHz) / c.Emulation.FrameRate)
}

// GetWindowResolution returns the effective window size
func (c *Config) GetWindowResolution() (int, int) {
	if c.Window.Width > 0 && c.Window.Height > 0 {
		return c.Window.Width, c.Window.Height
	}
	return 512, 512
}
