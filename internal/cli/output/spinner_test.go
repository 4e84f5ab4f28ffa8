package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestSpinner_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading matches")
	if s.animate {
		t.Fatal("spinner animates on a buffer")
	}

	s.Start()
	s.Success("Loaded")
	if got := buf.String(); got != "✓ Loaded\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSpinner_Fail(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Deleting")
	s.Start()
	s.Fail("Could not delete match")
	if !strings.Contains(buf.String(), "✗ Could not delete match") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSpinner_StopTwice(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "x")
	s.Stop()
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("Stop() without Start wrote %q", buf.String())
	}
}

func TestSpinner_Animate(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Working")
	s.animate = true

	s.Start()
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Working") {
		t.Errorf("output = %q, want at least one frame", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("output = %q, want cleared line", out)
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("IsTerminal(buffer) = true")
	}
}

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
