package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath checks a user supplied relative path, such as a notebook
// name in a request:
//   - not empty, at most 500 characters
//   - no null bytes or control characters
//   - relative, without .. and without backslashes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// projectNameRegex matches names usable as a store key and a file name.
var projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateProjectName checks a project name before it is used as a store
// key.
func ValidateProjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidProjectName, "project name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidProjectName, "project name too long (max 128 characters)")
	}
	if !projectNameRegex.MatchString(name) || strings.Contains(name, "..") {
		return New(ErrCodeInvalidProjectName, "invalid project name %q: use letters, digits, '.', '_' and '-'", name)
	}
	return nil
}

// nodeKindRegex matches Go-style identifiers, the shape of every node kind.
var nodeKindRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateNodeKind checks the spelling of a node kind. It does not check
// that the kind is registered.
func ValidateNodeKind(kind string) error {
	if !nodeKindRegex.MatchString(kind) {
		return New(ErrCodeInvalidInput, "invalid node kind %q", kind)
	}
	return nil
}

// ValidateNodeID checks a node identifier from a project file or script.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "node id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "node id %q contains whitespace or control characters", id)
		}
	}
	return nil
}
