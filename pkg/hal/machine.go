// +build tinygo

package hal

import "machine"

// MachinePin wraps a board pin.
type MachinePin struct {
	pin machine.Pin
}

// NewInput configures pin as input with the platform default pull.
func NewInput(pin machine.Pin) *MachinePin {
	pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	return &MachinePin{pin: pin}
}

// NewOutput configures pin as output.
func NewOutput(pin machine.Pin) *MachinePin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &MachinePin{pin: pin}
}

// Get implements InputPin.
func (p *MachinePin) Get() bool {
	return p.pin.Get()
}

// Set implements OutputPin.
func (p *MachinePin) Set(level bool) {
	p.pin.Set(level)
}
