package comm

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/btnlink/pkg/button"
	fx "github.com/robotalks/btnlink/pkg/framework"
	"github.com/robotalks/btnlink/pkg/hal"
	"github.com/robotalks/btnlink/pkg/msgs"
	"github.com/robotalks/btnlink/pkg/token"
)

// DefaultQueueSize is the number of packets buffered for sending.
const DefaultQueueSize = 16

// Bridge observes a sketch and publishes its events as Typed packets.
// Packets are sent from Run so a slow transport never stalls the loop;
// when the queue is full, events are dropped.
type Bridge struct {
	Writer PacketWriter
	// Readers deliver commands. ButtonSet drives Button.
	Readers []PacketReader
	Button  hal.OutputPin

	sendCh chan []byte
}

// NewBridge creates a Bridge.
func NewBridge(w PacketWriter, readers ...PacketReader) *Bridge {
	return &Bridge{Writer: w, Readers: readers, sendCh: make(chan []byte, DefaultQueueSize)}
}

// WithButton sets the pin driven by ButtonSet commands.
func (b *Bridge) WithButton(pin hal.OutputPin) *Bridge {
	b.Button = pin
	return b
}

// TokenEmitted implements sketch.Observer.
func (b *Bridge) TokenEmitted(cc fx.ControlContext, r token.Result) {
	msg := &msgs.Token{Text: r.Token, Truncated: r.Truncated}
	if val, err := token.Value(r.Token); err == nil {
		msg.Numeric, msg.Value = true, val
	}
	b.Send(msg)
}

// ButtonChanged implements sketch.Observer.
func (b *Bridge) ButtonChanged(cc fx.ControlContext, ev button.Event) {
	pressed := ev.State == button.Pressed
	b.Send(&msgs.ButtonEvent{Pressed: pressed, Changed: ev.Changed, Message: ev.Message})
	if ev.Changed {
		b.Send(&msgs.LEDState{On: pressed})
	}
}

// Send queues a message.
func (b *Bridge) Send(msg msgs.Message) {
	pkt, err := msgs.Encode(msg)
	if err != nil {
		glog.Errorf("encode %T error: %v", msg, err)
		return
	}
	select {
	case b.sendCh <- pkt:
	default:
		glog.Warningf("send queue full, drop %s", msg.String())
	}
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "bridge"
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	for _, r := range b.Readers {
		go b.recvLoop(ctx, r)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt := <-b.sendCh:
			if err := b.Writer.WritePacket(pkt); err != nil {
				glog.Warningf("send error: %v", err)
			}
		}
	}
}

// AddToLoop implements LoopAdder. Transports are added by their owner.
func (b *Bridge) AddToLoop(l *fx.Loop) {
	l.AddRunnable(b)
}

func (b *Bridge) recvLoop(ctx context.Context, r PacketReader) {
	for {
		pkt, err := r.ReadPacket()
		if err != nil {
			if err != io.EOF && err != ErrClosed {
				glog.Warningf("receive error: %v", err)
			}
			return
		}
		if err := b.HandlePacket(pkt); err != nil {
			glog.Warningf("bad packet: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// HandlePacket applies a received command packet.
func (b *Bridge) HandlePacket(pkt []byte) error {
	typed, msg, err := msgs.DecodeMessage(pkt)
	if err != nil {
		return err
	}
	if !typed.IsCommand() {
		// events from other devices on a shared transport.
		return nil
	}
	switch m := msg.(type) {
	case *msgs.ButtonSet:
		if b.Button == nil {
			glog.V(2).Info("ButtonSet ignored: no simulated button")
			return nil
		}
		glog.V(2).Infof("remote button pressed=%v", m.Pressed)
		b.Button.Set(m.Pressed)
	}
	return nil
}
