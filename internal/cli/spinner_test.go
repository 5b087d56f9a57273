package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func testSpinner(buf *bytes.Buffer) *Spinner {
	s := newSpinner("Pushing mnist...")
	s.w = buf
	s.every = time.Millisecond
	return s
}

func TestSpinnerRun(t *testing.T) {
	var buf bytes.Buffer
	errPush := errors.New("push failed")

	err := testSpinner(&buf).Run(context.Background(), func(ctx context.Context) error {
		time.Sleep(30 * time.Millisecond)
		return errPush
	})
	if !errors.Is(err, errPush) {
		t.Errorf("Run() = %v, want %v", err, errPush)
	}
	got := buf.String()
	if !strings.Contains(got, "Pushing mnist...") {
		t.Errorf("spinner never drew its message: %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner did not clear its line: %q", got)
	}
}

func TestSpinnerRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := testSpinner(&buf).Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestSpinnerRunFast(t *testing.T) {
	var buf bytes.Buffer
	if err := testSpinner(&buf).Run(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("spinner did not clear its line: %q", buf.String())
	}
}
