// Package joystick uses a joystick/gamepad button as the sketch button
// on a host without GPIO.
package joystick

import (
	"errors"
	"io"
)

// ErrUnsupported indicates joystick devices are not supported on this platform.
var ErrUnsupported = errors.New("joystick unsupported on this platform")

// ButtonEvent represents the change on a button.
type ButtonEvent struct {
	Index   int
	Pressed bool
	// Init is set for the synthetic events reporting initial state.
	Init bool
}

// Device represents an opened joystick.
type Device interface {
	io.Closer
	// Index returns the index of the device on the system.
	Index() int
	// Name returns the name of the device.
	Name() string
	// ButtonCount returns the number of buttons on the device.
	ButtonCount() int
	// ReadButton reads until a button event arrives.
	ReadButton() (ButtonEvent, error)
}
