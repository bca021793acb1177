// Package websocket serves sketch events to websocket clients.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/btnlink/pkg/comm"
	fx "github.com/robotalks/btnlink/pkg/framework"
)

// ReadWriter implements comm.PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Hub accepts websocket clients, broadcasts packets to all of them and
// merges packets they send into one stream.
type Hub struct {
	Addr string
	Path string

	clients map[*ReadWriter]struct{}
	lock    sync.Mutex
	recvCh  chan []byte
	closeCh chan struct{}
}

// NewHub creates a Hub listening on addr.
func NewHub(addr string) *Hub {
	return &Hub{
		Addr:    addr,
		Path:    "/events",
		clients: make(map[*ReadWriter]struct{}),
		recvCh:  make(chan []byte, 4),
		closeCh: make(chan struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// WritePacket implements PacketWriter.
func (h *Hub) WritePacket(pkt []byte) error {
	h.lock.Lock()
	clients := make([]*ReadWriter, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.lock.Unlock()
	var errs fx.AggregatedError
	for _, c := range clients {
		errs.Add(c.WritePacket(pkt))
	}
	return errs.Aggregate()
}

// ReadPacket implements PacketReader.
func (h *Hub) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-h.recvCh:
		return pkt, nil
	case <-h.closeCh:
		return nil, comm.ErrClosed
	}
}

// Handler returns the websocket handler, exposed for embedding in
// another http.ServeMux.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serveConn)
}

func (h *Hub) serveConn(conn *websocket.Conn) {
	rw := New(conn)
	h.lock.Lock()
	h.clients[rw] = struct{}{}
	h.lock.Unlock()
	glog.V(1).Infof("websocket client %s connected", conn.Request().RemoteAddr)
	defer func() {
		h.lock.Lock()
		delete(h.clients, rw)
		h.lock.Unlock()
		conn.Close()
		glog.V(1).Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
	}()
	for {
		pkt, err := rw.ReadPacket()
		if err != nil {
			return
		}
		select {
		case h.recvCh <- pkt:
		case <-h.closeCh:
			return
		default:
			glog.Warning("websocket receive queue full, drop packet")
		}
	}
}

// Name implements Named.
func (h *Hub) Name() string {
	return "websocket:" + h.Addr
}

// Run implements Runnable.
func (h *Hub) Run(ctx context.Context) error {
	// unblocks ReadPacket once the hub is down.
	defer close(h.closeCh)
	mux := http.NewServeMux()
	mux.Handle(h.Path, h.Handler())
	server := &http.Server{Addr: h.Addr, Handler: mux}
	glog.Infof("websocket listening on %s%s", h.Addr, h.Path)
	err := fx.RunWithContextCancel(ctx, func() { server.Close() }, server.ListenAndServe)
	if err == http.ErrServerClosed {
		err = ctx.Err()
	}
	return err
}
