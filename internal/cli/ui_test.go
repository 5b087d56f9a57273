package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	dialerrors "github.com/davafons/dial/pkg/errors"
)

func TestPrintError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		lines []string
	}{
		{"plain", errors.New("boom"), []string{"boom"}},
		{"coded", dialerrors.New(dialerrors.ErrCodeInvalidInput, "bad kind"), []string{"bad kind"}},
		{
			"with cause",
			dialerrors.Wrap(dialerrors.ErrCodeInvalidScript, errors.New("line 3: unexpected )"), "invalid script"),
			[]string{"invalid script", "line 3: unexpected )"},
		},
		{
			"classified",
			dialerrors.Classify(errors.New("disk on fire")),
			[]string{"disk on fire"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)
			got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			if len(got) != len(tt.lines) {
				t.Fatalf("PrintError wrote %d lines, want %d:\n%s", len(got), len(tt.lines), buf.String())
			}
			for i, want := range tt.lines {
				if !strings.Contains(got[i], want) {
					t.Errorf("line %d = %q, want it to contain %q", i, got[i], want)
				}
			}
		})
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	prev := out
	out = &buf
	defer func() { out = prev }()

	printStats(4, 3, 9, true)
	got := buf.String()
	for _, want := range []string{"4 nodes", "3 edges", "9 cells", iconCached} {
		if !strings.Contains(got, want) {
			t.Errorf("printStats output %q missing %q", got, want)
		}
	}
}
