package sketch

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/btnlink/pkg/button"
	"github.com/robotalks/btnlink/pkg/token"
)

// Config selects the sketch behavior.
type Config struct {
	// Variant selects both the terminators and the button mode:
	// VariantMirror mirrors the level, VariantEdge reports presses.
	Variant      token.Variant
	HoldTime     time.Duration
	Message      string
	PollInterval time.Duration
}

var defaultConfig = Config{
	Variant:      token.VariantEdge,
	HoldTime:     button.DefaultHoldTime,
	Message:      button.DefaultMessage,
	PollInterval: time.Millisecond,
}

func init() {
	if val := os.Getenv("BTNLINK_VARIANT"); val != "" {
		if v, ok := token.ParseVariant(val); ok {
			defaultConfig.Variant = v
		} else {
			glog.Warningf("ignore invalid BTNLINK_VARIANT %q", val)
		}
	}
}

type variantValue struct {
	v *token.Variant
}

func (f variantValue) String() string {
	if f.v == nil {
		return ""
	}
	return f.v.String()
}

func (f variantValue) Set(s string) error {
	v, ok := token.ParseVariant(s)
	if !ok {
		return fmt.Errorf("invalid variant %q, expect mirror or edge", s)
	}
	*f.v = v
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Var(variantValue{&defaultConfig.Variant}, "variant", "Sketch variant: mirror or edge.")
	flag.DurationVar(&defaultConfig.HoldTime, "hold", defaultConfig.HoldTime, "Hold time after a press before the message is sent.")
	flag.StringVar(&defaultConfig.Message, "message", defaultConfig.Message, "Message sent on button press.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Polling interval.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
