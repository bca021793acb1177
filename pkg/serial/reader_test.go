package serial

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/btnlink/pkg/framework"
)

type chanReader struct {
	readCh <-chan byte
}

func (c *chanReader) Read(p []byte) (int, error) {
	b, ok := <-c.readCh
	if !ok {
		return 0, io.EOF
	}
	p[0] = b
	return 1, nil
}

func TestReader(t *testing.T) {
	readCh := make(chan byte)
	notifyCh := make(chan struct{}, 8)
	r := NewReader(&chanReader{readCh: readCh}, 8)
	r.OnByte = func() { notifyCh <- struct{}{} }

	_, ok := r.Available()
	require.False(t, ok)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background()) }()

	for _, b := range []byte("1\n") {
		readCh <- b
		select {
		case <-notifyCh:
		case <-time.After(time.Second):
			t.Fatal("timeout")
		}
	}
	b, ok := r.Available()
	require.True(t, ok)
	require.Equal(t, byte('1'), b)
	b, ok = r.Available()
	require.True(t, ok)
	require.Equal(t, byte('\n'), b)
	_, ok = r.Available()
	require.False(t, ok)

	close(readCh)
	require.Equal(t, io.EOF, <-errCh)
}

func TestLineWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewLineWriter(&buf)
	require.NoError(t, w.WriteLine("12.5"))
	require.NoError(t, w.WriteLine(""))
	require.Equal(t, "12.5\n\n", buf.String())
}

func TestOpenNoDevice(t *testing.T) {
	_, err := Open(&Config{})
	require.Equal(t, ErrNoDevice, err)
	p, err := Open(&Config{Device: "-"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestReaderCancel(t *testing.T) {
	// never delivers a byte.
	r := NewReader(&chanReader{readCh: make(chan byte)}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

type readResult struct {
	data byte
	err  error
}

// idlePort behaves like a tarm port on linux: an expired read timeout
// reads (0, io.EOF).
type idlePort struct {
	readCh chan readResult
}

func newIdlePort() *idlePort {
	return &idlePort{readCh: make(chan readResult, 8)}
}

func (p *idlePort) Read(b []byte) (int, error) {
	r, ok := <-p.readCh
	if !ok {
		return 0, os.ErrClosed
	}
	if r.err != nil {
		return 0, r.err
	}
	b[0] = r.data
	return 1, nil
}

func (p *idlePort) Write(b []byte) (int, error) { return len(b), nil }
func (p *idlePort) Close() error                { return nil }

func TestReaderIdlePort(t *testing.T) {
	port := newIdlePort()
	port.readCh <- readResult{err: io.EOF}
	port.readCh <- readResult{err: io.EOF}
	port.readCh <- readResult{data: '7'}
	notifyCh := make(chan struct{}, 1)
	r := NewReader(IdleRetry(port), 1)
	r.OnByte = func() { notifyCh <- struct{}{} }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	select {
	case <-notifyCh:
	case err := <-errCh:
		t.Fatalf("reader stopped: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	b, ok := r.Available()
	require.True(t, ok)
	require.Equal(t, byte('7'), b)
}

func TestIdleRetryClosed(t *testing.T) {
	port := newIdlePort()
	p := IdleRetry(port)
	require.NoError(t, p.Close())
	port.readCh <- readResult{err: io.EOF}
	n, err := p.Read(make([]byte, 1))
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestReaderTriggersLoop(t *testing.T) {
	readCh := make(chan byte, 1)
	r := NewReader(&chanReader{readCh: readCh}, 1)
	loop := fx.NewLoop()
	loop.Interval = time.Hour
	var iterations int
	done := make(chan struct{})
	loop.AddController(fx.PrLvSerial, fx.ControlFunc(func(cc fx.ControlContext) error {
		if _, ok := r.Available(); ok {
			iterations++
			close(done)
		}
		return nil
	}))
	loop.Add(r)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	readCh <- '1'
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, 1, iterations)
}
