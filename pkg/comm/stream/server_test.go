package stream

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/btnlink/pkg/comm"
)

func TestServer(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	require.NoError(t, s.Listen())
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- s.Run(ctx) }()

	conn, err := net.Dial("tcp", s.ListenAddr().String())
	require.NoError(t, err)
	defer conn.Close()
	client := New(conn)

	require.NoError(t, client.WritePacket([]byte("cmd")))
	pkt, err := s.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("cmd"), pkt)
	// the client is registered before its first packet is read.
	require.Equal(t, 1, s.Clients())

	require.NoError(t, s.WritePacket([]byte("event")))
	conn.SetReadDeadline(time.Now().Add(time.Second))
	pkt, err = client.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("event"), pkt)

	cancel()
	require.Error(t, <-doneCh)
	_, err = s.ReadPacket()
	require.Equal(t, comm.ErrClosed, err)
}

func TestServerNoClients(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	require.NoError(t, s.WritePacket([]byte("event")))
	require.Nil(t, s.ListenAddr())
	require.Equal(t, "tcp:127.0.0.1:0", s.Name())
}
