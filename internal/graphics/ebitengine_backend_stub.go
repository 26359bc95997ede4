//go:build headless
// +build headless

package graphics

// NewEbitengineBackend falls back to the headless backend when the
// binary is built without GUI support.
func NewEbitengineBackend() Backend {
	return NewHeadlessBackend()
}
