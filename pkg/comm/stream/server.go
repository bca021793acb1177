package stream

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/btnlink/pkg/comm"
	fx "github.com/robotalks/btnlink/pkg/framework"
)

// Server accepts TCP clients speaking length-prefixed packets.
type Server struct {
	Addr string

	listener net.Listener
	clients  map[*ReadWriter]struct{}
	lock     sync.Mutex
	recvCh   chan []byte
	closeCh  chan struct{}
}

// NewServer creates a Server listening on addr.
func NewServer(addr string) *Server {
	return &Server{
		Addr:    addr,
		clients: make(map[*ReadWriter]struct{}),
		recvCh:  make(chan []byte, 4),
		closeCh: make(chan struct{}),
	}
}

// Listen starts listening, Run calls it when not done yet.
func (s *Server) Listen() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// ListenAddr returns the actual listening address.
func (s *Server) ListenAddr() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

// WritePacket implements PacketWriter.
func (s *Server) WritePacket(pkt []byte) error {
	s.lock.Lock()
	clients := make([]*ReadWriter, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.lock.Unlock()
	var errs fx.AggregatedError
	for _, c := range clients {
		errs.Add(c.WritePacket(pkt))
	}
	return errs.Aggregate()
}

// ReadPacket implements PacketReader.
func (s *Server) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-s.recvCh:
		return pkt, nil
	case <-s.closeCh:
		return nil, comm.ErrClosed
	}
}

// Name implements Named.
func (s *Server) Name() string {
	return "tcp:" + s.Addr
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.closeCh)
	if err := s.Listen(); err != nil {
		return err
	}
	glog.Infof("tcp listening on %s", s.ListenAddr())
	var wg sync.WaitGroup
	err := fx.RunWithContextCloser(ctx, s.listener, func() error {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				return err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.serveConn(ctx, conn)
			}()
		}
	})
	wg.Wait()
	return err
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	rw := New(conn)
	s.lock.Lock()
	s.clients[rw] = struct{}{}
	s.lock.Unlock()
	glog.V(1).Infof("tcp client %s connected", conn.RemoteAddr())
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		s.lock.Lock()
		delete(s.clients, rw)
		s.lock.Unlock()
		conn.Close()
		glog.V(1).Infof("tcp client %s disconnected", conn.RemoteAddr())
	}()
	for {
		pkt, err := rw.ReadPacket()
		if err != nil {
			return
		}
		select {
		case s.recvCh <- pkt:
		case <-s.closeCh:
			return
		default:
			glog.Warning("tcp receive queue full, drop packet")
		}
	}
}
