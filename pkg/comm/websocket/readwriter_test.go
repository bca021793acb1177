package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/btnlink/pkg/comm"
)

func TestHub(t *testing.T) {
	hub := NewHub("")
	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, err := websocket.Dial(url, "", server.URL)
	require.NoError(t, err)
	defer conn.Close()
	client := New(conn)

	deadline := time.Now().Add(time.Second)
	for hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, hub.Clients())

	require.NoError(t, hub.WritePacket([]byte{1, 2, 3}))
	pkt, err := client.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, pkt)

	require.NoError(t, client.WritePacket([]byte{4}))
	pkt, err = hub.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{4}, pkt)
}

func TestHubReadAfterRun(t *testing.T) {
	hub := NewHub("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- hub.Run(ctx) }()

	readCh := make(chan error, 1)
	go func() {
		_, err := hub.ReadPacket()
		readCh <- err
	}()
	cancel()
	require.Equal(t, context.Canceled, <-doneCh)
	select {
	case err := <-readCh:
		require.Equal(t, comm.ErrClosed, err)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}
