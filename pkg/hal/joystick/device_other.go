// +build !linux

package joystick

// Open is not supported.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// DetectAndOpen is not supported.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}
