// Package main implements the m6502 emulator executable.
package main

import (
	"os"

	"m6502/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
