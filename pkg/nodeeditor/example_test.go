package nodeeditor_test

import (
	"errors"
	"fmt"

	"github.com/davafons/dial/pkg/nodeeditor"
)

func step(id string) *nodeeditor.Node {
	n := nodeeditor.NewNode("Step", nodeeditor.WithID(id))
	_, _ = n.AddInputPort("in", "Tensor")
	_, _ = n.AddOutputPort("out", "Tensor")
	return n
}

func ExampleScene_TopologicalOrder() {
	s := nodeeditor.NewScene()
	for _, id := range []string{"A", "B", "C", "D"} {
		_ = s.AddNode(step(id))
	}
	// Only C feeds D; A and B are independent.
	_ = s.Connect("C", "out", "D", "in")

	order, _ := s.TopologicalOrder()
	for _, n := range order {
		fmt.Print(n.ID(), " ")
	}
	fmt.Println()
	// Output:
	// A B C D
}

func ExamplePort_ConnectTo() {
	a, b, sink := step("a"), step("b"), step("sink")
	in, _ := sink.InputPort("in")
	outA, _ := a.OutputPort("out")
	outB, _ := b.OutputPort("out")

	fmt.Println(outA.ConnectTo(in))
	err := outB.ConnectTo(in)
	fmt.Println(errors.Is(err, nodeeditor.ErrConnectionLimit))
	fmt.Println(in.ConnectedTo())
	// Output:
	// <nil>
	// true
	// a.out
}

func ExampleCycleError() {
	s := nodeeditor.NewScene()
	_ = s.AddNode(step("A"))
	_ = s.AddNode(step("B"))
	_ = s.Connect("A", "out", "B", "in")
	_ = s.Connect("B", "out", "A", "in")

	err := s.Validate()
	var ce *nodeeditor.CycleError
	fmt.Println(errors.As(err, &ce), errors.Is(err, nodeeditor.ErrCyclicGraph))
	// Output:
	// true true
}
