package mqtt

import (
	"context"
	"encoding/json"

	"github.com/robotalks/btnlink/pkg/comm"
)

// Topic suffixes under <type>/<id>/.
const (
	TopicEvent = "event"
	TopicCmd   = "cmd"
	TopicMeta  = "meta"
)

// ReadWriter implements comm.PacketReadWriter.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	closeCh  chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 4),
		closeCh:  make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForDevice sets topics used by a device:
// SubTopic = <type>/<id>/cmd
// PubTopic = <type>/<id>/event
func (p *ReadWriter) ForDevice(ref comm.DeviceRef) *ReadWriter {
	prefix := ref.Name() + "/"
	return p.WithTopics(prefix+TopicCmd, prefix+TopicEvent)
}

// ForRemote sets topics used to talk to a device:
// SubTopic = <type>/<id>/event
// PubTopic = <type>/<id>/cmd
func (p *ReadWriter) ForRemote(ref comm.DeviceRef) *ReadWriter {
	prefix := ref.Name() + "/"
	return p.WithTopics(prefix+TopicEvent, prefix+TopicCmd)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.closeCh:
		return nil, comm.ErrClosed
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Name implements Named.
func (p *ReadWriter) Name() string {
	return "mqtt:" + p.SubTopic
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer close(p.closeCh)
	defer sub.Close()
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.closeCh:
	default:
		// reader is behind; commands are level-based so the next one wins.
	}
}

// Announcer keeps the queue connected and publishes retained device
// metadata, cleared by a will when the device goes away.
type Announcer struct {
	Queue *Queue
	Info  comm.DeviceInfo

	metaJSON []byte
}

// NewAnnouncer creates an Announcer with its own connection.
func NewAnnouncer(brokerURL string, info comm.DeviceInfo) (*Announcer, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaTopic := info.Ref.Name() + "/" + TopicMeta
	opts.SetBinaryWill(topicPrefix+metaTopic, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("btnlink:" + info.Ref.Name())
	}
	a := &Announcer{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: meta,
	}
	a.Queue.OnConnect = func(q *Queue) {
		q.PubWith(metaTopic, a.metaJSON, 1, true)
	}
	return a, nil
}

// ReadWriter creates the device side ReadWriter sharing the connection.
func (a *Announcer) ReadWriter() *ReadWriter {
	return NewPacketReadWriter(a.Queue).ForDevice(a.Info.Ref)
}

// Name implements Named.
func (a *Announcer) Name() string {
	return "mqtt-announcer"
}

// Run implements Runnable.
func (a *Announcer) Run(ctx context.Context) error {
	token := a.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	<-ctx.Done()
	a.Queue.PubWith(a.Info.Ref.Name()+"/"+TopicMeta, nil, 1, true).Wait()
	a.Queue.Close()
	return ctx.Err()
}
