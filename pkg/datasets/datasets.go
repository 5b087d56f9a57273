// Package datasets lists the example datasets a project can load.
//
// Each [Loader] describes a Keras built-in dataset: its display name, the
// data types of its inputs and labels, and the keras.datasets module the
// generated notebook imports to fetch it.
package datasets

import (
	"slices"
	"strings"

	"github.com/davafons/dial/pkg/datasets/datatype"
)

// Loader describes one predefined dataset.
type Loader struct {
	Name   string
	Brief  string
	X      datatype.DataType
	Y      datatype.DataType
	Module string // keras.datasets submodule
	Shape  []int  // shape of one input sample
}

// Categories returns the label names for categorical datasets.
func (l Loader) Categories() []string {
	if c, ok := l.Y.(datatype.Categorical); ok {
		return slices.Clone(c.Categories)
	}
	return nil
}

// LoadCode returns the Python statement that fetches the dataset into the
// train and test (x, y) tuples.
func (l Loader) LoadCode(train, test string) string {
	return train + ", " + test + " = keras.datasets." + l.Module + ".load_data()"
}

var catalog = []Loader{
	{
		Name:   "MNIST",
		Brief:  "Handwritten digit numbers",
		X:      datatype.ImageArray{},
		Y:      datatype.Numeric{},
		Module: "mnist",
		Shape:  []int{28, 28},
	},
	{
		Name:  "Fashion-MNIST",
		Brief: "Categorized set of clothing images",
		X:     datatype.ImageArray{},
		Y: datatype.Categorical{Categories: []string{
			"T-shirt/top", "Trouser", "Pullover", "Dress", "Coat",
			"Sandal", "Shirt", "Sneaker", "Bag", "Ankle boot",
		}},
		Module: "fashion_mnist",
		Shape:  []int{28, 28},
	},
	{
		Name:  "CIFAR10",
		Brief: "Categorized images",
		X:     datatype.ImageArray{},
		Y: datatype.Categorical{Categories: []string{
			"airplane", "automobile", "bird", "cat", "deer",
			"dog", "frog", "horse", "ship", "truck",
		}},
		Module: "cifar10",
		Shape:  []int{32, 32, 3},
	},
	{
		Name:   "Boston Housing",
		Brief:  "Boston house prices",
		X:      datatype.NumericArray{},
		Y:      datatype.Numeric{},
		Module: "boston_housing",
		Shape:  []int{13},
	},
}

// All returns every predefined dataset in catalog order.
func All() []Loader { return slices.Clone(catalog) }

// Names returns the dataset names in catalog order.
func Names() []string {
	out := make([]string, len(catalog))
	for i, l := range catalog {
		out[i] = l.Name
	}
	return out
}

// Lookup finds a dataset by name, ignoring case. The keras module name is
// accepted too.
func Lookup(name string) (Loader, bool) {
	for _, l := range catalog {
		if strings.EqualFold(l.Name, name) || strings.EqualFold(l.Module, name) {
			return l, true
		}
	}
	return Loader{}, false
}
