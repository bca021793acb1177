package button

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/btnlink/pkg/hal"
)

func TestMirror(t *testing.T) {
	in, out := hal.NewVirtualPin("button"), hal.NewVirtualPin("led")
	m := NewMirror(in, out)
	now := time.Now()

	ev := m.Poll(now)
	require.False(t, out.Get())
	require.False(t, ev.Changed)

	in.Set(true)
	ev = m.Poll(now)
	require.True(t, out.Get())
	require.True(t, ev.Changed)
	require.Equal(t, Pressed, ev.State)
	require.Empty(t, ev.Message)

	ev = m.Poll(now)
	require.True(t, out.Get())
	require.False(t, ev.Changed)

	in.Set(false)
	ev = m.Poll(now)
	require.False(t, out.Get())
	require.Equal(t, Released, ev.State)
}

type edgeStep struct {
	after   time.Duration
	level   bool
	led     bool
	state   State
	message string
}

func TestEdgeMonitor(t *testing.T) {
	ms := time.Millisecond
	testCases := []struct {
		name  string
		steps []edgeStep
	}{
		{
			name: "press and release",
			steps: []edgeStep{
				{after: 0, level: false, led: false, state: Released},
				{after: ms, level: true, led: true, state: Pressed},
				{after: 5 * ms, level: true, led: true, state: Pressed},
				{after: 5 * ms, level: true, led: true, state: Pressed, message: DefaultMessage},
				{after: ms, level: true, led: true, state: Pressed},
				{after: ms, level: false, led: false, state: Released},
				{after: ms, level: false, led: false, state: Released},
			},
		},
		{
			name: "bounce during hold is ignored",
			steps: []edgeStep{
				{after: 0, level: true, led: true, state: Pressed},
				{after: 2 * ms, level: false, led: true, state: Pressed},
				{after: 2 * ms, level: true, led: true, state: Pressed},
				{after: 10 * ms, level: false, led: false, state: Released, message: DefaultMessage},
			},
		},
		{
			name: "two presses",
			steps: []edgeStep{
				{after: 0, level: true, led: true, state: Pressed},
				{after: 20 * ms, level: false, led: false, state: Released, message: DefaultMessage},
				{after: ms, level: true, led: true, state: Pressed},
				{after: 20 * ms, level: true, led: true, state: Pressed, message: DefaultMessage},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in, out := hal.NewVirtualPin("button"), hal.NewVirtualPin("led")
			m := NewEdgeMonitor(in, out)
			now := time.Unix(0, 0)
			for i, step := range tc.steps {
				now = now.Add(step.after)
				in.Set(step.level)
				ev := m.Poll(now)
				require.Equalf(t, step.led, out.Get(), "step[%d] led", i)
				require.Equalf(t, step.state, ev.State, "step[%d] state", i)
				require.Equalf(t, step.message, ev.Message, "step[%d] message", i)
			}
		})
	}
}

func TestEdgeMonitorOnePerPress(t *testing.T) {
	in, out := hal.NewVirtualPin("button"), hal.NewVirtualPin("led")
	m := NewEdgeMonitor(in, out)
	now := time.Unix(0, 0)
	in.Set(true)
	var messages int
	for i := 0; i < 1000; i++ {
		if ev := m.Poll(now); ev.Message != "" {
			messages++
		}
		now = now.Add(time.Millisecond)
	}
	require.Equal(t, 1, messages)
}

func TestEdgeMonitorNoHold(t *testing.T) {
	in, out := hal.NewVirtualPin("button"), hal.NewVirtualPin("led")
	m := NewEdgeMonitor(in, out)
	m.HoldTime = 0
	in.Set(true)
	ev := m.Poll(time.Now())
	require.True(t, ev.Changed)
	require.Equal(t, DefaultMessage, ev.Message)
	require.False(t, m.holding)
}
