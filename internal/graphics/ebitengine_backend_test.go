//go:build !headless
// +build !headless

package graphics

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestKeyToASCII(t *testing.T) {
	tests := []struct {
		key  ebiten.Key
		want uint8
		ok   bool
	}{
		{ebiten.KeyA, 'a', true},
		{ebiten.KeyZ, 'z', true},
		{ebiten.KeyDigit0, '0', true},
		{ebiten.KeyDigit9, '9', true},
		{ebiten.KeySpace, ' ', true},
		{ebiten.KeyEnter, '\r', true},
		{ebiten.KeyArrowUp, 'w', true},
		{ebiten.KeyArrowLeft, 'a', true},
		{ebiten.KeyArrowDown, 's', true},
		{ebiten.KeyArrowRight, 'd', true},
		{ebiten.KeyF1, 0, false},
		{ebiten.KeyShiftLeft, 0, false},
	}
	for _, tt := range tests {
		got, ok := keyToASCII(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("keyToASCII(%v) = %q %t, want %q %t", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}
