// Package cmd implements the command-line interface.
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"m6502/internal/app"
	"m6502/internal/version"
)

var (
	cfgFile     string
	frontend    string
	loadBase    string
	serialPort  string
	trace       bool
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "m6502 [rom]",
	Short: "m6502 is a MOS 6502 machine emulator",
	Long: `m6502 emulates a 6502 machine with a 32x32 framebuffer, key
latch, random port, ACIA serial adapter and read-line console. It runs
flat ROM images such as snake and Fibonacci demo programs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			version.PrintBuildInfo()
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("no ROM specified; pass the image path as the first argument")
		}
		return run(args[0])
	},
	SilenceUsage: true,
}

func run(romPath string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplication(configPath, frontend)
	if err != nil {
		return err
	}
	defer application.Cleanup()

	config := application.GetConfig()
	if trace {
		config.Debug.Trace = true
	}
	if serialPort != "" {
		config.Serial.Port = serialPort
	}
	if loadBase != "" {
		base, err := parseAddress(loadBase)
		if err != nil {
			return fmt.Errorf("invalid load base %q: %v", loadBase, err)
		}
		config.Emulation.LoadBase = int(base)
	}

	if err := application.LoadROM(romPath); err != nil {
		return err
	}

	return application.Run()
}

// parseAddress accepts $C000 or 0xC000 as hex and bare digits as decimal
func parseAddress(s string) (uint16, error) {
	if hex, ok := strings.CutPrefix(s, "$"); ok {
		value, err := strconv.ParseUint(hex, 16, 16)
		return uint16(value), err
	}
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		value, err := strconv.ParseUint(hex, 16, 16)
		return uint16(value), err
	}
	value, err := strconv.ParseUint(s, 10, 16)
	return uint16(value), err
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file")
	rootCmd.PersistentFlags().StringVarP(&frontend, "frontend", "f", "", "front-end: ebitengine, terminal or headless")
	rootCmd.PersistentFlags().StringVarP(&loadBase, "base", "b", "", "ROM load address (default $8000)")
	rootCmd.PersistentFlags().StringVarP(&serialPort, "serial", "s", "", "bridge the ACIA to a physical serial port")
	rootCmd.PersistentFlags().BoolVarP(&trace, "trace", "t", false, "log every executed instruction")
	rootCmd.PersistentFlags().BoolVar(&showVersion, "version", false, "print version information")
}
