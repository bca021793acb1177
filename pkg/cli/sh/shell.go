// Package sh provides the interactive host console talking to a board
// over the serial link.
package sh

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/btnlink/pkg/serial"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell  *ishell.Shell
	Config *serial.Config

	port   serial.Port
	writer *serial.LineWriter
	cancel func()
	lock   sync.Mutex
	// echo prints a line received from the port.
	echo func(string)
}

const (
	shellKey       = "$shell"
	unopenedPrompt = "[closed] > "
)

var (
	evalOnly bool

	commands = []*ishell.Cmd{
		&PortsCmd,
		&OpenCmd,
		&CloseCmd,
		&SendCmd,
		&OffsetCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// AddCmds adds more commands before New is called.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *serial.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.echo = func(line string) { s.Shell.Println(line) }
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unopenedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requiring an opened port.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if !ShellFrom(c).IsOpen() {
			c.Err(fmt.Errorf("port not open"))
			return
		}
		fn(c)
	}
}

// IsOpen indicates a port is opened.
func (s *Shell) IsOpen() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.port != nil
}

// Open opens the configured port and starts printing received lines.
func (s *Shell) Open() error {
	port, err := serial.Open(s.Config)
	if err != nil {
		return err
	}
	s.Attach(port)
	return nil
}

// Attach uses an already opened port.
func (s *Shell) Attach(port serial.Port) {
	s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	s.lock.Lock()
	s.port, s.writer, s.cancel = port, serial.NewLineWriter(port), cancel
	s.lock.Unlock()
	go s.readLines(ctx, port)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", s.Config.Device))
}

// Close closes the current port.
func (s *Shell) Close() {
	s.lock.Lock()
	port, cancel := s.port, s.cancel
	s.port, s.writer, s.cancel = nil, nil, nil
	s.lock.Unlock()
	if port == nil {
		return
	}
	cancel()
	port.Close()
	s.Shell.SetPrompt(unopenedPrompt)
}

// SendLine writes one newline-terminated line.
func (s *Shell) SendLine(line string) error {
	s.lock.Lock()
	w := s.writer
	s.lock.Unlock()
	if w == nil {
		return fmt.Errorf("port not open")
	}
	glog.V(2).Infof("SEND %q", line)
	return w.WriteLine(line)
}

func (s *Shell) readLines(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.echo("< " + strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.echo("read error: " + err.Error())
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.Config.Device != "" {
		if err := s.Open(); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Device, err)
		}
	}
	defer s.Close()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// FormatOffsets formats X/Y pairs the way the board expects them:
// "%.4f,%.4f" per pair, pairs separated by commas.
func FormatOffsets(values []float64) (string, error) {
	if len(values) == 0 || len(values)%2 != 0 {
		return "", fmt.Errorf("X Y pairs expected")
	}
	items := make([]string, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		items = append(items, fmt.Sprintf("%.4f,%.4f", values[i], values[i+1]))
	}
	return strings.Join(items, ","), nil
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := serial.ListPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// OpenCmd opens a serial port.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "DEVICE [BAUD]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("DEVICE required"))
				return
			}
			conf := *s.Config
			conf.Device = c.Args[0]
			if len(c.Args) > 1 {
				baud, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(fmt.Errorf("Invalid BAUD: %v", err))
					return
				}
				conf.Baud = baud
			}
			s.Config = &conf
			if err := s.Open(); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the port.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// SendCmd sends a raw line.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT...",
		Func: MustBeOpen(func(c *ishell.Context) {
			if err := ShellFrom(c).SendLine(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		}),
	}

	// OffsetCmd sends X/Y offsets.
	OffsetCmd = ishell.Cmd{
		Name:    "offset",
		Aliases: []string{"off"},
		Help:    "X Y [X Y...]",
		Func: MustBeOpen(func(c *ishell.Context) {
			values := make([]float64, len(c.Args))
			for n, arg := range c.Args {
				val, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					c.Err(fmt.Errorf("Invalid value %q: %v", arg, err))
					return
				}
				values[n] = val
			}
			line, err := FormatOffsets(values)
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).SendLine(line); err != nil {
				c.Err(err)
			}
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(serial.NewConfig()).Run(flag.Args()...)
}
