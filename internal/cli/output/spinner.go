// Package output provides output formatting for the sessiondx CLI.
package output

import (
	"fmt"
	"io"
	"time"
)

// Spinner displays a progress animation while the CLI walks the gateway.
type Spinner struct {
	w        io.Writer
	message  string
	interval time.Duration
	done     chan struct{}
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
			}
		}
	}()
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	close(s.done)
	fmt.Fprint(s.w, "\r\033[K")
}
