package datatype

import (
	"errors"
	"slices"
	"testing"
)

func clothes() Categorical {
	return Categorical{Categories: []string{"t-shirt", "jeans", "glasses"}}
}

func TestCategoricalProcess(t *testing.T) {
	tests := []struct {
		in   int
		want []float64
	}{
		{1, []float64{0, 1, 0}},
		{2, []float64{0, 0, 1}},
	}
	for _, tt := range tests {
		got, err := clothes().Process(tt.in)
		if err != nil {
			t.Fatalf("Process(%d) error = %v", tt.in, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Process(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := clothes().Process(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Process(3) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestCategoricalDisplay(t *testing.T) {
	for i, want := range []string{"t-shirt", "jeans", "glasses"} {
		got, err := clothes().Display(i)
		if err != nil || got != want {
			t.Errorf("Display(%d) = %q, %v; want %q", i, got, err, want)
		}
	}
	if _, err := clothes().Display(100); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Display(100) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestCategoricalConvert(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{"index", 0, 0, false},
		{"name", "jeans", 1, false},
		{"numeric string", "2", 2, false},
		{"one-hot longer than categories", []int{0, 0, 1, 0}, 2, false},
		{"probabilities", []float64{0.1, 0.7, 0.2}, 1, false},
		{"decoded list", []any{int64(0), 0.9, int64(0)}, 1, false},
		{"float index", 2.0, 2, false},
		{"unknown name", "not-exists", 0, true},
		{"out of range", 40, 0, true},
		{"one-hot out of range", []int{0, 0, 0, 0, 1, 0}, 0, true},
		{"fractional", 1.5, 0, true},
		{"empty vector", []int{}, 0, true},
		{"unsupported", struct{}{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := clothes().Convert(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Convert(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Convert(%v) error = %v, want ErrInvalidValue", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Convert(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	types := []DataType{Numeric{}, NumericArray{}, ImageArray{}, clothes()}
	want := []string{"Numeric", "NumericArray", "ImageArray", "Categorical"}
	for i, dt := range types {
		if dt.String() != want[i] {
			t.Errorf("String() = %q, want %q", dt.String(), want[i])
		}
	}
}
