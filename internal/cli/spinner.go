package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message on stderr while a slow call, such as a
// round trip to a remote store, is running.
type Spinner struct {
	w     io.Writer
	msg   string
	every time.Duration
}

func newSpinner(msg string) *Spinner {
	return &Spinner{w: os.Stderr, msg: msg, every: 80 * time.Millisecond}
}

// Run calls fn while the spinner animates and clears the line once fn
// returns. The context passed to fn ends when ctx does.
func (s *Spinner) Run(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.animate(ctx)
	}()

	err := fn(ctx)
	cancel()
	wg.Wait()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.msg)+4))
	return err
}

func (s *Spinner) animate(ctx context.Context) {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
		}
	}
}
