package sh

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/btnlink/pkg/serial"
	"github.com/robotalks/btnlink/pkg/token"
)

// timeoutPort returns queued chunks; an empty chunk reads (0, io.EOF) like
// an expired read timeout on a tarm port.
type timeoutPort struct {
	readCh chan string
}

func (p *timeoutPort) Read(b []byte) (int, error) {
	chunk, ok := <-p.readCh
	if !ok {
		return 0, os.ErrClosed
	}
	if chunk == "" {
		return 0, io.EOF
	}
	return copy(b, chunk), nil
}

func (p *timeoutPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *timeoutPort) Close() error                { return nil }

func TestReadLinesAfterIdle(t *testing.T) {
	port := &timeoutPort{readCh: make(chan string, 4)}
	lineCh := make(chan string, 4)
	s := &Shell{echo: func(line string) { lineCh <- line }}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.readLines(ctx, serial.IdleRetry(port))

	expect := func(expected string) {
		select {
		case line := <-lineCh:
			require.Equal(t, expected, line)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %q", expected)
		}
	}
	port.readCh <- "12.5\r\n"
	expect("< 12.5")
	port.readCh <- ""
	port.readCh <- "ENTER\n"
	expect("< ENTER")
	close(port.readCh)
	expect("read error: " + os.ErrClosed.Error())
}

func TestFormatOffsets(t *testing.T) {
	line, err := FormatOffsets([]float64{1.5, -2})
	require.NoError(t, err)
	require.Equal(t, "1.5000,-2.0000", line)

	line, err = FormatOffsets([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, "1.0000,2.0000,3.0000,4.0000", line)

	_, err = FormatOffsets([]float64{1})
	require.Error(t, err)
	_, err = FormatOffsets(nil)
	require.Error(t, err)
}

func TestFormatOffsetsAssembled(t *testing.T) {
	line, err := FormatOffsets([]float64{0.125, -3.5})
	require.NoError(t, err)
	var tokens []string
	token.New(token.VariantEdge).FeedBytes([]byte(line+"\n"), func(r token.Result) {
		tokens = append(tokens, r.Token)
	})
	require.Equal(t, []string{"0.1250", "-3.5000"}, tokens)
}
