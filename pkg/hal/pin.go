// Package hal abstracts the digital pins the sketch drives.
package hal

import (
	"sync"
)

// Default pin numbers of the board.
const (
	ButtonPin = 2
	LEDPin    = 13
)

// InputPin reads a binary level.
type InputPin interface {
	Get() bool
}

// OutputPin drives a binary level.
type OutputPin interface {
	Set(level bool)
}

// PinChangeFunc is called when a VirtualPin changes level.
type PinChangeFunc func(name string, level bool)

// VirtualPin is an in-memory pin usable as both input and output.
type VirtualPin struct {
	name     string
	level    bool
	onChange PinChangeFunc
	lock     sync.Mutex
}

// NewVirtualPin creates a VirtualPin, initially low.
func NewVirtualPin(name string) *VirtualPin {
	return &VirtualPin{name: name}
}

// Name returns the pin name.
func (p *VirtualPin) Name() string {
	return p.name
}

// OnChange installs the change callback.
func (p *VirtualPin) OnChange(fn PinChangeFunc) *VirtualPin {
	p.lock.Lock()
	p.onChange = fn
	p.lock.Unlock()
	return p
}

// Get implements InputPin.
func (p *VirtualPin) Get() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.level
}

// Set implements OutputPin.
func (p *VirtualPin) Set(level bool) {
	p.lock.Lock()
	changed := p.level != level
	p.level = level
	fn := p.onChange
	p.lock.Unlock()
	if changed && fn != nil {
		fn(p.name, level)
	}
}
