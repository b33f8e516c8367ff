package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner animates a single status line on w while a health run is in
// flight. The line is cleared on Stop so the report starts on a clean row.
type Spinner struct {
	frames   []string
	interval time.Duration
	label    string
	writer   io.Writer

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSpinner creates a spinner that prints label after each frame.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		label:    label,
		writer:   w,
		stopChan: make(chan struct{}),
	}
}

// Start begins the animation. Calling Start after Stop is a no-op.
func (s *Spinner) Start() {
	select {
	case <-s.stopChan:
		return
	default:
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for idx := 0; ; idx++ {
			fmt.Fprintf(s.writer, "\r%s %s", s.frames[idx%len(s.frames)], s.label)
			select {
			case <-s.stopChan:
				fmt.Fprint(s.writer, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and waits for the line to be cleared. Safe to
// call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

// isTerminal reports whether w is a character device, so progress output
// never ends up in pipes, files or test buffers.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
