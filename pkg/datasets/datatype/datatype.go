// Package datatype describes the shape of the values stored in a dataset
// column and converts user input into that shape.
package datatype

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrIndexOutOfRange is returned when a category index does not exist.
	ErrIndexOutOfRange = errors.New("category index out of range")

	// ErrInvalidValue is returned by [Categorical.Convert] for input that
	// does not name a category.
	ErrInvalidValue = errors.New("invalid categorical value")
)

// DataType names the representation of one side (x or y) of a dataset.
type DataType interface {
	Name() string
	String() string
}

// Numeric is a single number per sample.
type Numeric struct{}

func (Numeric) Name() string   { return "Numeric" }
func (Numeric) String() string { return "Numeric" }

// NumericArray is a flat vector of numbers per sample.
type NumericArray struct{}

func (NumericArray) Name() string   { return "NumericArray" }
func (NumericArray) String() string { return "NumericArray" }

// ImageArray is a 2D or 3D pixel array per sample.
type ImageArray struct{}

func (ImageArray) Name() string   { return "ImageArray" }
func (ImageArray) String() string { return "ImageArray" }

// Categorical is a class label stored as an index into Categories.
type Categorical struct {
	Categories []string
}

func (Categorical) Name() string   { return "Categorical" }
func (Categorical) String() string { return "Categorical" }

// Process returns the one-hot encoding of category index i.
func (c Categorical) Process(i int) ([]float64, error) {
	if i < 0 || i >= len(c.Categories) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(c.Categories))
	}
	out := make([]float64, len(c.Categories))
	out[i] = 1
	return out, nil
}

// Display returns the name of category index i.
func (c Categorical) Display(i int) (string, error) {
	if i < 0 || i >= len(c.Categories) {
		return "", fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(c.Categories))
	}
	return c.Categories[i], nil
}

// Convert turns v into a category index. Accepted inputs are an index, a
// category name, a numeric string, or a one-hot or probability vector
// (whose arg-max is taken).
func (c Categorical) Convert(v any) (int, error) {
	var i int
	switch x := v.(type) {
	case int:
		i = x
	case int64:
		i = int(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: %v is not an index", ErrInvalidValue, x)
		}
		i = int(x)
	case string:
		for idx, name := range c.Categories {
			if name == x {
				return idx, nil
			}
		}
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidValue, x)
		}
		i = n
	case []int:
		i = argmax(len(x), func(k int) float64 { return float64(x[k]) })
	case []float64:
		i = argmax(len(x), func(k int) float64 { return x[k] })
	case []any:
		vals := make([]float64, len(x))
		for k, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return 0, fmt.Errorf("%w: element %d is %T", ErrInvalidValue, k, e)
			}
			vals[k] = f
		}
		i = argmax(len(vals), func(k int) float64 { return vals[k] })
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
	}

	if i < 0 || i >= len(c.Categories) {
		return 0, fmt.Errorf("%w: index %d out of range (have %d)", ErrInvalidValue, i, len(c.Categories))
	}
	return i, nil
}

func argmax(n int, at func(int) float64) int {
	if n == 0 {
		return -1
	}
	best := 0
	for k := 1; k < n; k++ {
		if at(k) > at(best) {
			best = k
		}
	}
	return best
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
