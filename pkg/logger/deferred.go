package logger

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DefaultDeferredLimit caps how many bytes a DeferredWriter holds.
const DefaultDeferredLimit = 1 << 20

// DeferredWriter buffers log output while the terminal is in raw mode and the
// alternate screen is active. Release flushes the buffer to the real sink and
// switches to pass-through writes.
type DeferredWriter struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	limit    int
	dropped  int
	dst      io.Writer
	released bool
}

// NewDeferredWriter returns a writer that holds up to limit bytes
// (DefaultDeferredLimit when limit <= 0) until Release.
func NewDeferredWriter(limit int) *DeferredWriter {
	if limit <= 0 {
		limit = DefaultDeferredLimit
	}
	return &DeferredWriter{limit: limit}
}

// Write buffers p, or forwards it once released. Writes that would overflow
// the buffer are dropped whole and counted.
func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.released {
		return w.dst.Write(p)
	}
	if w.buf.Len()+len(p) > w.limit {
		w.dropped++
		return len(p), nil
	}
	return w.buf.Write(p)
}

// Sync is a no-op while buffering.
func (w *DeferredWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.dst.(interface{ Sync() error }); ok && w.released {
		return s.Sync()
	}
	return nil
}

// Release writes everything buffered to dst and forwards later writes there.
// Calling Release again is a no-op.
func (w *DeferredWriter) Release(dst io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.released {
		return nil
	}
	w.released = true
	w.dst = dst
	if _, err := dst.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("flush deferred log: %w", err)
	}
	w.buf.Reset()
	if w.dropped > 0 {
		_, err := fmt.Fprintf(dst, "{\"level\":\"warn\",\"message\":\"dropped %d log entries while the terminal was in use\"}\n", w.dropped)
		return err
	}
	return nil
}

// Buffered reports how many bytes are waiting for Release.
func (w *DeferredWriter) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Len()
}
