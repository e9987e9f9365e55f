//go:build !cgo

package hal

import "errors"

type WindowConfig struct {
	Size  Size
	Scale int
	Title string
}

func RunWindow(_ func(h HAL) func() error, _ WindowConfig) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
