package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Spinner displays a progress animation while a backend call runs.
// On anything but a terminal it stays silent until Success or Fail.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	animate  bool
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		animate: IsTerminal(w),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	if !s.animate || s.started {
		return
	}
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.started {
			<-s.stopped
			fmt.Fprint(s.w, "\r\033[K")
		}
	})
}

// Success stops the spinner with a success message.
func (s *Spinner) Success(message string) {
	s.Stop()
	fmt.Fprintf(s.w, "✓ %s\n", message)
}

// Fail stops the spinner with a failure message.
func (s *Spinner) Fail(message string) {
	s.Stop()
	fmt.Fprintf(s.w, "✗ %s\n", message)
}
