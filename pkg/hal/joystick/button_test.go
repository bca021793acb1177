package joystick

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/btnlink/pkg/hal"
)

type fakeDevice struct {
	eventCh chan ButtonEvent
	closeCh chan struct{}
	once    sync.Once
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		eventCh: make(chan ButtonEvent),
		closeCh: make(chan struct{}),
	}
}

func (d *fakeDevice) Close() error {
	d.once.Do(func() { close(d.closeCh) })
	return nil
}

func (d *fakeDevice) Index() int       { return 0 }
func (d *fakeDevice) Name() string     { return "fake" }
func (d *fakeDevice) ButtonCount() int { return 4 }

func (d *fakeDevice) ReadButton() (ButtonEvent, error) {
	select {
	case ev := <-d.eventCh:
		return ev, nil
	case <-d.closeCh:
		return ButtonEvent{}, errors.New("closed")
	}
}

func TestButtonCopiesLevel(t *testing.T) {
	dev := newFakeDevice()
	var mu sync.Mutex
	var levels []bool
	pin := hal.NewVirtualPin("button").OnChange(func(_ string, v bool) {
		mu.Lock()
		levels = append(levels, v)
		mu.Unlock()
	})
	b := &Button{
		Button:     2,
		Pin:        pin,
		Open:       func() (Device, error) { return dev, nil },
		RetryDelay: time.Millisecond,
	}
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- b.Run(ctx) }()

	dev.eventCh <- ButtonEvent{Index: 1, Pressed: true}
	dev.eventCh <- ButtonEvent{Index: 2, Pressed: true}
	dev.eventCh <- ButtonEvent{Index: 2, Pressed: false}
	dev.eventCh <- ButtonEvent{Index: 2, Pressed: true}
	// ignored, but only received after the previous one is applied.
	dev.eventCh <- ButtonEvent{Index: 3, Pressed: true}
	require.True(t, pin.Get())

	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
	require.False(t, pin.Get())
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []bool{true, false, true, false}, levels)
}

func TestButtonUnsupported(t *testing.T) {
	b := &Button{
		Button: 0,
		Pin:    hal.NewVirtualPin("button"),
		Open:   func() (Device, error) { return nil, ErrUnsupported },
	}
	require.Equal(t, ErrUnsupported, b.Run(context.Background()))
}

func TestConfigEnabled(t *testing.T) {
	conf := NewConfig()
	require.False(t, conf.Enabled())
	conf.Button = 0
	require.True(t, conf.Enabled())
	b := conf.NewButton(hal.NewVirtualPin("button"))
	require.Equal(t, 0, b.Button)
	require.Equal(t, "joystick-button", b.Name())
}
