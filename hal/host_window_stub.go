//go:build !tinygo && !cgo

package hal

import "errors"

func RunWindow(_ Screen, _ func(HAL) (StepFunc, error)) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
