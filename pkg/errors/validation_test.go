package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "mnist.ipynb", false},
		{"nested", "out/mnist.ipynb", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "out/../../x", true},
		{"backslash", "out\\x", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %s", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "mnist", false},
		{"dotted", "mnist.v2", false},
		{"dashes", "fashion-mnist_cnn", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"slash", "a/b", true},
		{"leading dot", ".hidden", true},
		{"double dot", "a..b", true},
		{"space", "my project", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNodeKind(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"DatasetLoader", false},
		{"my_node2", false},
		{"", true},
		{"2Fast", true},
		{"Data-Loader", true},
		{"Data Loader", true},
	}
	for _, tt := range tests {
		if err := ValidateNodeKind(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateNodeKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"data", false},
		{"5f0c7a6e-1b2c-4d3e-9f00-aa11bb22cc33", false},
		{"", true},
		{"a b", true},
		{"a\tb", true},
		{strings.Repeat("x", 129), true},
	}
	for _, tt := range tests {
		if err := ValidateNodeID(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
