// Package errors provides coded errors shared by the CLI and the HTTP
// service.
//
// Library packages return plain sentinel errors. At the edge, [Classify]
// maps them onto a [Code] so the CLI can print a short message and the
// service can answer with a status and a machine-readable code:
//
//	err := errors.Classify(runner.Export(ctx, p, out))
//	if errors.Is(err, errors.ErrCodeCyclicGraph) {
//	    // the project has a loop
//	}
//	w.WriteHeader(errors.HTTPStatus(err))
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/davafons/dial/pkg/cache"
	"github.com/davafons/dial/pkg/nodeeditor"
	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/notebook"
	"github.com/davafons/dial/pkg/plugin"
	"github.com/davafons/dial/pkg/project"
	"github.com/davafons/dial/pkg/script"
	"github.com/davafons/dial/pkg/store"
)

// Code is a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidProject     Code = "INVALID_PROJECT"
	ErrCodeInvalidScript      Code = "INVALID_SCRIPT"
	ErrCodeInvalidConnection  Code = "INVALID_CONNECTION"
	ErrCodeCyclicGraph        Code = "CYCLIC_GRAPH"
	ErrCodeUnknownNodeKind    Code = "UNKNOWN_NODE_KIND"
	ErrCodeDuplicateNode      Code = "DUPLICATE_NODE"
	ErrCodeInvalidProjectName Code = "INVALID_PROJECT_NAME"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeNodeNotFound   Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodePluginNotFound Code = "PLUGIN_NOT_FOUND"

	// Infrastructure errors
	ErrCodeIO               Code = "IO_ERROR"
	ErrCodeTimeout          Code = "TIMEOUT"
	ErrCodeCacheUnavailable Code = "CACHE_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of an *Error without its code, or the
// plain error text.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// classes maps sentinel errors of the library packages to codes. Order
// matters: the first match wins.
var classes = []struct {
	target error
	code   Code
}{
	{nodeeditor.ErrCyclicGraph, ErrCodeCyclicGraph},
	{nodeeditor.ErrIncompatibleType, ErrCodeInvalidConnection},
	{nodeeditor.ErrConnectionLimit, ErrCodeInvalidConnection},
	{nodeeditor.ErrUnknownPort, ErrCodeInvalidConnection},
	{nodeeditor.ErrWrongDirection, ErrCodeInvalidConnection},
	{nodeeditor.ErrDuplicateNodeID, ErrCodeDuplicateNode},
	{nodeeditor.ErrUnknownNode, ErrCodeNodeNotFound},
	{nodes.ErrUnknownKind, ErrCodeUnknownNodeKind},
	{notebook.ErrUnregisteredKind, ErrCodeUnknownNodeKind},
	{notebook.ErrNoScene, ErrCodeInvalidProject},
	{project.ErrUnknownFormat, ErrCodeInvalidFormat},
	{script.ErrTimeout, ErrCodeTimeout},
	{plugin.ErrNotAvailable, ErrCodePluginNotFound},
	{plugin.ErrUnknownPlugin, ErrCodePluginNotFound},
	{store.ErrNotFound, ErrCodeNotFound},
	{store.ErrInvalidName, ErrCodeInvalidProjectName},
	{cache.ErrUnavailable, ErrCodeCacheUnavailable},
	{context.DeadlineExceeded, ErrCodeTimeout},
	{fs.ErrNotExist, ErrCodeFileNotFound},
}

// Classify returns err as an *Error, choosing the code from the sentinel
// errors in its chain. Errors that already carry a code are returned
// unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	var evalErr *script.EvalError
	if errors.As(err, &evalErr) {
		return Wrap(ErrCodeInvalidScript, err, "invalid script")
	}
	for _, c := range classes {
		if errors.Is(err, c.target) {
			return &Error{Code: c.code, Message: err.Error(), Cause: err}
		}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &Error{Code: ErrCodeIO, Message: err.Error(), Cause: err}
	}
	return &Error{Code: ErrCodeInternal, Message: err.Error(), Cause: err}
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch GetCode(Classify(err)) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath,
		ErrCodeInvalidProject, ErrCodeInvalidScript, ErrCodeInvalidProjectName:
		return http.StatusBadRequest
	case ErrCodeInvalidConnection, ErrCodeCyclicGraph, ErrCodeUnknownNodeKind,
		ErrCodeDuplicateNode, ErrCodeNodeNotFound:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodePluginNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
