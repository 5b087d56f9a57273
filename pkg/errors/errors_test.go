package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/davafons/dial/pkg/nodeeditor"
	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/script"
	"github.com/davafons/dial/pkg/store"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}
	if want := "INVALID_INPUT: test message: value"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeIO, cause, "failed to save")

	if err.Code != ErrCodeIO || err.Cause != cause {
		t.Errorf("Wrap() = %+v", err)
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() did not return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"non-matching code", New(ErrCodeInvalidInput, "test"), ErrCodeIO, false},
		{"outer code wins", Wrap(ErrCodeIO, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeIO, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	if got := GetCode(New(ErrCodeCyclicGraph, "loop")); got != ErrCodeCyclicGraph {
		t.Errorf("GetCode() = %v", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v", got)
	}
	if got := UserMessage(New(ErrCodeInvalidInput, "friendly message")); got != "friendly message" {
		t.Errorf("UserMessage() = %v", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %v", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   Code
		status int
	}{
		{"cycle", &nodeeditor.CycleError{}, ErrCodeCyclicGraph, http.StatusUnprocessableEntity},
		{"port limit", fmt.Errorf("connect: %w", nodeeditor.ErrConnectionLimit), ErrCodeInvalidConnection, http.StatusUnprocessableEntity},
		{"unknown kind", fmt.Errorf("node x: %w", nodes.ErrUnknownKind), ErrCodeUnknownNodeKind, http.StatusUnprocessableEntity},
		{"script", &script.EvalError{Line: 2, Message: "boom"}, ErrCodeInvalidScript, http.StatusBadRequest},
		{"script timeout", script.ErrTimeout, ErrCodeTimeout, http.StatusGatewayTimeout},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout, http.StatusGatewayTimeout},
		{"stored project", fmt.Errorf("get: %w", store.ErrNotFound), ErrCodeNotFound, http.StatusNotFound},
		{"missing file", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, ErrCodeFileNotFound, http.StatusNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, ErrCodeIO, http.StatusInternalServerError},
		{"already coded", New(ErrCodeInvalidPath, "bad"), ErrCodeInvalidPath, http.StatusBadRequest},
		{"unknown", errors.New("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !Is(got, tt.code) {
				t.Errorf("Classify() code = %s, want %s", GetCode(got), tt.code)
			}
			if !errors.Is(got, tt.err) {
				t.Error("Classify() lost the original error")
			}
			if s := HTTPStatus(tt.err); s != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", s, tt.status)
			}
		})
	}

	if Classify(nil) != nil || HTTPStatus(nil) != http.StatusOK {
		t.Error("nil should stay nil and map to 200")
	}
}
