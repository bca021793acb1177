package joystick

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/btnlink/pkg/hal"
)

// Config defines which joystick button drives the sketch button.
type Config struct {
	// DeviceIndex is -1 for auto detection.
	DeviceIndex int
	// Button is -1 to disable.
	Button int
}

var defaultConfig = Config{
	DeviceIndex: -1,
	Button:      -1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "joystick", defaultConfig.DeviceIndex, "Joystick device index, -1 for auto detection.")
	flag.IntVar(&defaultConfig.Button, "joystick-button", defaultConfig.Button, "Joystick button used as the sketch button, -1 to disable.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Enabled indicates a button is selected.
func (c *Config) Enabled() bool {
	return c.Button >= 0
}

// NewButton creates the Button driving pin.
func (c *Config) NewButton(pin hal.OutputPin) *Button {
	return &Button{
		DeviceIndex: c.DeviceIndex,
		Button:      c.Button,
		Pin:         pin,
		Open:        c.open,
		RetryDelay:  time.Second,
	}
}

func (c *Config) open() (Device, error) {
	if c.DeviceIndex >= 0 {
		return Open(c.DeviceIndex)
	}
	return DetectAndOpen(0)
}

// Button copies a joystick button level to a pin, reopening the device
// when it goes away.
type Button struct {
	DeviceIndex int
	Button      int
	Pin         hal.OutputPin
	Open        func() (Device, error)
	RetryDelay  time.Duration
}

// Name implements Named.
func (b *Button) Name() string {
	return "joystick-button"
}

// Run implements Runnable.
func (b *Button) Run(ctx context.Context) error {
	for {
		dev, err := b.Open()
		if err == ErrUnsupported {
			return err
		}
		if err != nil {
			glog.Warningf("open joystick error: %v", err)
		} else if dev == nil {
			glog.V(1).Info("no joystick detected")
		} else {
			glog.Infof("joystick %d %q opened", dev.Index(), dev.Name())
			b.pump(ctx, dev)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.RetryDelay):
		}
	}
}

func (b *Button) pump(ctx context.Context, dev Device) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			dev.Close()
		case <-stop:
		}
	}()
	for {
		ev, err := dev.ReadButton()
		if err != nil {
			if ctx.Err() == nil {
				glog.Warningf("joystick read error: %v", err)
				dev.Close()
			}
			// released when the device goes away.
			b.Pin.Set(false)
			return
		}
		if ev.Index == b.Button {
			b.Pin.Set(ev.Pressed)
		}
	}
}
