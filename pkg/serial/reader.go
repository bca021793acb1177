package serial

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/btnlink/pkg/framework"
)

// Reader pumps bytes from a port into a channel so the polling loop can
// check for an available byte without blocking.
type Reader struct {
	Port io.Reader
	// OnByte is called after a byte is queued. When nil, Run triggers the
	// next iteration of the Loop running it.
	OnByte func()

	byteCh chan byte
}

// NewReader creates a Reader with a queue of size bytes.
func NewReader(port io.Reader, size int) *Reader {
	if size <= 0 {
		size = 64
	}
	return &Reader{Port: port, byteCh: make(chan byte, size)}
}

// Available returns the next byte if one is queued.
func (r *Reader) Available() (byte, bool) {
	select {
	case b := <-r.byteCh:
		return b, true
	default:
		return 0, false
	}
}

// Name implements Named.
func (r *Reader) Name() string {
	return "serial-reader"
}

// Run implements Runnable. It returns on cancel without waiting for a
// pending Read, which may never return on stdin.
func (r *Reader) Run(ctx context.Context) error {
	if r.OnByte == nil {
		if ctl := fx.LoopCtlFrom(ctx); ctl != nil {
			r.OnByte = ctl.TriggerNext
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.pump(ctx)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (r *Reader) pump(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		n, err := r.Port.Read(buf)
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}
		select {
		case r.byteCh <- buf[0]:
		case <-ctx.Done():
			return ctx.Err()
		}
		if fn := r.OnByte; fn != nil {
			fn()
		}
	}
}

// AddToLoop implements LoopAdder.
func (r *Reader) AddToLoop(l *fx.Loop) {
	l.AddRunnable(r)
}

// LineWriter writes each line terminated by "\n", like println.
type LineWriter struct {
	W io.Writer

	lock sync.Mutex
}

// NewLineWriter creates a LineWriter.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{W: w}
}

// WriteLine writes s followed by a newline.
func (w *LineWriter) WriteLine(s string) error {
	buf := make([]byte, 0, len(s)+1)
	buf = append(append(buf, s...), '\n')
	w.lock.Lock()
	defer w.lock.Unlock()
	_, err := w.W.Write(buf)
	if err != nil {
		glog.Warningf("serial write error: %v", err)
	}
	return err
}
