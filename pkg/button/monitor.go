// Package button turns a polled button level into LED output and press events.
package button

import (
	"time"

	"github.com/robotalks/btnlink/pkg/hal"
)

// State is the debounced state of the button.
type State int

const (
	// Released means the button is up.
	Released State = iota
	// Pressed means the button is down.
	Pressed
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// Defaults
const (
	DefaultHoldTime = 10 * time.Millisecond
	DefaultMessage  = "ENTER"
)

// Event is the result of one poll.
type Event struct {
	// Changed is set when the state changed in this poll.
	Changed bool
	State   State
	// Message is non-empty when a press completed its hold.
	Message string
}

// Monitor polls the button once per loop iteration.
type Monitor interface {
	Poll(now time.Time) Event
}

// Mirror copies the input level to the output on every poll.
type Mirror struct {
	Input  hal.InputPin
	Output hal.OutputPin

	last State
}

// NewMirror creates a Mirror.
func NewMirror(in hal.InputPin, out hal.OutputPin) *Mirror {
	return &Mirror{Input: in, Output: out}
}

// Poll implements Monitor.
func (m *Mirror) Poll(time.Time) (ev Event) {
	level := m.Input.Get()
	m.Output.Set(level)
	ev.State = Released
	if level {
		ev.State = Pressed
	}
	ev.Changed, m.last = ev.State != m.last, ev.State
	return
}

// EdgeMonitor reacts to transitions only. A press drives the output high
// and emits Message once the hold time elapsed; the hold does not block.
type EdgeMonitor struct {
	Input    hal.InputPin
	Output   hal.OutputPin
	HoldTime time.Duration
	Message  string

	state     State
	holding   bool
	holdUntil time.Time
}

// NewEdgeMonitor creates an EdgeMonitor with defaults.
func NewEdgeMonitor(in hal.InputPin, out hal.OutputPin) *EdgeMonitor {
	return &EdgeMonitor{
		Input:    in,
		Output:   out,
		HoldTime: DefaultHoldTime,
		Message:  DefaultMessage,
	}
}

// State returns the current state.
func (m *EdgeMonitor) State() State {
	return m.state
}

// Poll implements Monitor.
func (m *EdgeMonitor) Poll(now time.Time) (ev Event) {
	if m.holding {
		if now.Before(m.holdUntil) {
			ev.State = m.state
			return
		}
		m.holding = false
		ev.Message = m.Message
	}
	level := m.Input.Get()
	switch {
	case level && m.state == Released:
		m.state, ev.Changed = Pressed, true
		m.Output.Set(true)
		if m.HoldTime > 0 {
			m.holding, m.holdUntil = true, now.Add(m.HoldTime)
		} else {
			ev.Message = m.Message
		}
	case !level && m.state == Pressed:
		m.state, ev.Changed = Released, true
		m.Output.Set(false)
	}
	ev.State = m.state
	return
}
