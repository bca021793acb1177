// Package sketch wires the token assembler and the button monitor into
// one polling loop.
package sketch

import (
	"github.com/golang/glog"

	"github.com/robotalks/btnlink/pkg/button"
	fx "github.com/robotalks/btnlink/pkg/framework"
	"github.com/robotalks/btnlink/pkg/hal"
	"github.com/robotalks/btnlink/pkg/token"
)

// ByteSource reports a received byte without blocking.
type ByteSource interface {
	Available() (byte, bool)
}

// Sink receives emitted tokens and messages, one line each.
type Sink interface {
	WriteLine(string) error
}

// Observer is notified about what the sketch did in an iteration.
type Observer interface {
	TokenEmitted(fx.ControlContext, token.Result)
	ButtonChanged(fx.ControlContext, button.Event)
}

// Sketch is the polling loop body.
type Sketch struct {
	Source    ByteSource
	Sink      Sink
	Assembler *token.Assembler
	Monitor   button.Monitor

	observers []Observer
}

// New creates a Sketch for the config.
func New(conf *Config, src ByteSource, sink Sink, in hal.InputPin, out hal.OutputPin) *Sketch {
	s := &Sketch{
		Source:    src,
		Sink:      sink,
		Assembler: token.New(conf.Variant),
	}
	if conf.Variant == token.VariantEdge {
		m := button.NewEdgeMonitor(in, out)
		m.HoldTime, m.Message = conf.HoldTime, conf.Message
		s.Monitor = m
	} else {
		s.Monitor = button.NewMirror(in, out)
	}
	return s
}

// Observe adds observers.
func (s *Sketch) Observe(observers ...Observer) *Sketch {
	s.observers = append(s.observers, observers...)
	return s
}

// AddToLoop implements LoopAdder.
func (s *Sketch) AddToLoop(l *fx.Loop) {
	if adder, ok := s.Source.(fx.LoopAdder); ok {
		l.Add(adder)
	}
	l.AddController(fx.PrLvSerial, fx.ControlFunc(s.ProcessSerial))
	l.AddController(fx.PrLvButton, fx.ControlFunc(s.PollButton))
}

// ProcessSerial consumes at most one available byte.
func (s *Sketch) ProcessSerial(cc fx.ControlContext) error {
	b, ok := s.Source.Available()
	if !ok {
		return nil
	}
	// drain the rest without waiting for the next tick.
	cc.TriggerNext()
	r := s.Assembler.Feed(b)
	if r.Dropped {
		glog.V(3).Infof("token buffer full, dropped %q after %q", b, s.Assembler.Pending())
	}
	if !r.Emitted {
		return nil
	}
	if r.Truncated {
		glog.Warningf("token truncated to %d characters", token.MaxLen)
	}
	glog.V(2).Infof("token %q", r.Token)
	for _, obs := range s.observers {
		obs.TokenEmitted(cc, r)
	}
	return s.Sink.WriteLine(r.Token)
}

// PollButton polls the button monitor once.
func (s *Sketch) PollButton(cc fx.ControlContext) error {
	ev := s.Monitor.Poll(cc.Time())
	if !ev.Changed && ev.Message == "" {
		return nil
	}
	if ev.Changed {
		glog.V(2).Infof("button %s", ev.State)
	}
	for _, obs := range s.observers {
		obs.ButtonChanged(cc, ev)
	}
	if ev.Message != "" {
		return s.Sink.WriteLine(ev.Message)
	}
	return nil
}
