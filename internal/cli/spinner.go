package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line with the elapsed time while a long batch
// runs. It stops on Stop or when its context ends, and clears the line.
type Spinner struct {
	w       io.Writer
	message string

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	width   int
}

// newSpinnerWithContext returns a spinner writing to w. Call Start to begin.
func newSpinnerWithContext(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{w: w, message: message, ctx: ctx, cancel: cancel, stopped: make(chan struct{})}
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	go s.run(time.Now())
}

func (s *Spinner) run(start time.Time) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			frame := styleIconSpinner.Render(string(spinnerFrames[i%len(spinnerFrames)]))
			line := fmt.Sprintf("%s %s", s.message, time.Since(start).Truncate(100*time.Millisecond))
			s.width = max(s.width, len(line)+2)
			fmt.Fprintf(s.w, "\r%s %s", frame, StyleDim.Render(line))
		}
	}
}

// Stop ends the animation and waits for the line to be cleared. Calling it
// again is a no-op.
func (s *Spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

func (s *Spinner) clear() {
	fmt.Fprintf(s.w, "\r%*s\r", s.width, "")
}
