// Package comm forwards sketch events to remote observers over packet
// transports (MQTT, websocket, length-prefixed streams).
package comm

import (
	"errors"
	"sync"

	fx "github.com/robotalks/btnlink/pkg/framework"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// ErrClosed indicates the transport is closed.
var ErrClosed = errors.New("closed")

// MultiWriter writes every packet to all writers.
type MultiWriter struct {
	Writers []PacketWriter

	lock sync.Mutex
}

// Add adds more writers.
func (w *MultiWriter) Add(writers ...PacketWriter) *MultiWriter {
	w.lock.Lock()
	w.Writers = append(w.Writers, writers...)
	w.lock.Unlock()
	return w
}

// WritePacket implements PacketWriter.
func (w *MultiWriter) WritePacket(pkt []byte) error {
	w.lock.Lock()
	writers := w.Writers
	w.lock.Unlock()
	var errs fx.AggregatedError
	for _, writer := range writers {
		errs.Add(writer.WritePacket(pkt))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (w *MultiWriter) AddToLoop(l *fx.Loop) {
	for _, writer := range w.Writers {
		addTransport(l, writer)
	}
}

func addTransport(l *fx.Loop, t interface{}) {
	if adder, ok := t.(fx.LoopAdder); ok {
		l.Add(adder)
	} else if runnable, ok := t.(fx.Runnable); ok {
		l.AddRunnable(runnable)
	}
}
