package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Rendering svg graph...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if s.Frames() == 0 {
		t.Error("expected at least one frame")
	}
	got := out.String()
	if !strings.Contains(got, "Rendering svg graph...") {
		t.Errorf("output %q does not contain the message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("Stop should clear the line")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := newSpinnerTo(ctx, &out, "waiting")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancellation")
	}
	frames := s.Frames()
	time.Sleep(2 * spinnerInterval)
	if s.Frames() != frames {
		t.Error("spinner kept drawing after cancellation")
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "x")
	s.Start()
	s.Stop()
	s.Stop()
}
