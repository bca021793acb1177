// Package serial provides the byte transport between the board and the host.
package serial

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	tarm "github.com/tarm/serial"
)

// DefaultBaud is the link rate used by the board.
const DefaultBaud = 115200

// Port is an opened serial link.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0"), "-" for stdin/stdout.
	Device string
	Baud   int
	// ReadTimeout is 0 for blocking reads. With a timeout, a Read pending
	// on an idle line notices Close within ReadTimeout.
	ReadTimeout time.Duration
}

var (
	// ErrNoDevice indicates Config.Device is empty.
	ErrNoDevice = errors.New("serial device not specified")
	// ErrUnsupportedPlatform indicates ports can't be listed.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

var defaultConfig = Config{
	Baud:        DefaultBaud,
	ReadTimeout: 100 * time.Millisecond,
}

func init() {
	if val := os.Getenv("BTNLINK_SERIAL"); val != "" {
		defaultConfig.Device = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device, - for stdin/stdout.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the configured port.
func (c *Config) Open() (Port, error) {
	return Open(c)
}

// Open opens a serial port.
func Open(c *Config) (Port, error) {
	if c.Device == "" {
		return nil, ErrNoDevice
	}
	if c.Device == "-" {
		return &stdio{}, nil
	}
	baud := c.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	p, err := tarm.OpenPort(&tarm.Config{
		Name:        c.Device,
		Baud:        baud,
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	if c.ReadTimeout > 0 {
		return IdleRetry(p), nil
	}
	return p, nil
}

// IdleRetry wraps a port opened with a read timeout. On linux an expired
// timeout makes Read return (0, io.EOF); the wrapper reads again instead,
// so Read only returns with data, on a real error or after Close.
func IdleRetry(p Port) Port {
	return &idleRetryPort{Port: p}
}

type idleRetryPort struct {
	Port
	closed int32
}

func (p *idleRetryPort) Read(b []byte) (int, error) {
	for {
		n, err := p.Port.Read(b)
		if n == 0 && err == io.EOF && atomic.LoadInt32(&p.closed) == 0 {
			continue
		}
		return n, err
	}
}

func (p *idleRetryPort) Close() error {
	atomic.StoreInt32(&p.closed, 1)
	return p.Port.Close()
}

// ListPorts lists the serial devices which can be opened.
func ListPorts() ([]string, error) {
	var pattern string
	switch runtime.GOOS {
	case "linux":
		// this excludes the controlling terminal "/dev/tty"
		pattern = "/dev/tty[A-Za-z]*"
	case "darwin":
		pattern = "/dev/tty.*"
	default:
		return nil, ErrUnsupportedPlatform
	}
	candidates, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	var ports []string
	for _, name := range candidates {
		p, err := tarm.OpenPort(&tarm.Config{Name: name, Baud: DefaultBaud})
		if err != nil {
			continue
		}
		p.Close()
		ports = append(ports, name)
	}
	return ports, nil
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error                { return nil }
