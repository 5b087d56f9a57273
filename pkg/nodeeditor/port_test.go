package nodeeditor

import (
	"errors"
	"testing"
)

func newPair(t *testing.T, outType, inType PortType) (*Port, *Port) {
	t.Helper()
	src := NewNode("Source")
	dst := NewNode("Sink")
	out, err := src.AddOutputPort("out", outType)
	if err != nil {
		t.Fatalf("AddOutputPort() error = %v", err)
	}
	in, err := dst.AddInputPort("in", inType)
	if err != nil {
		t.Fatalf("AddInputPort() error = %v", err)
	}
	return out, in
}

func TestConnectTo(t *testing.T) {
	out, in := newPair(t, "Dataset", "Dataset")

	if err := out.ConnectTo(in); err != nil {
		t.Fatalf("ConnectTo() error = %v", err)
	}
	if !out.IsConnectedTo(in) || !in.IsConnectedTo(out) {
		t.Error("connection should be reciprocal")
	}
	if in.ConnectedTo() != out {
		t.Errorf("ConnectedTo() = %v, want %v", in.ConnectedTo(), out)
	}

	// Connecting again is a no-op.
	if err := in.ConnectTo(out); err != nil {
		t.Errorf("second ConnectTo() error = %v, want nil", err)
	}
	if got := len(out.Connections()); got != 1 {
		t.Errorf("len(Connections()) = %d, want 1", got)
	}
}

func TestConnectToIncompatible(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) (*Port, *Port)
	}{
		{
			name: "type mismatch",
			build: func(t *testing.T) (*Port, *Port) {
				return newPair(t, "Dataset", "Model")
			},
		},
		{
			name: "two outputs",
			build: func(t *testing.T) (*Port, *Port) {
				a, _ := NewNode("A").AddOutputPort("out", "Dataset")
				b, _ := NewNode("B").AddOutputPort("out", "Dataset")
				return a, b
			},
		},
		{
			name: "two inputs",
			build: func(t *testing.T) (*Port, *Port) {
				a, _ := NewNode("A").AddInputPort("in", "Dataset")
				b, _ := NewNode("B").AddInputPort("in", "Dataset")
				return a, b
			},
		},
		{
			name: "nil port",
			build: func(t *testing.T) (*Port, *Port) {
				a, _ := NewNode("A").AddOutputPort("out", "Dataset")
				return a, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := tt.build(t)
			err := a.ConnectTo(b)
			if !errors.Is(err, ErrIncompatibleType) {
				t.Fatalf("ConnectTo() error = %v, want ErrIncompatibleType", err)
			}
			if a.IsConnected() {
				t.Error("failed ConnectTo() must not modify the port")
			}
		})
	}
}

func TestConnectToCustomCompatibility(t *testing.T) {
	anyType := func(out, in PortType) bool { return in == "Any" || out == in }

	src := NewNode("Source")
	out, _ := src.AddOutputPort("out", "Dataset")
	dst := NewNode("Sink")
	in, _ := dst.AddInputPort("in", "Any", WithCompatibility(anyType))

	if err := out.ConnectTo(in); err != nil {
		t.Errorf("ConnectTo() error = %v, want nil", err)
	}
}

func TestConnectionLimit(t *testing.T) {
	first, in := newPair(t, "Dataset", "Dataset")
	second, _ := NewNode("Other").AddOutputPort("out", "Dataset")

	if err := first.ConnectTo(in); err != nil {
		t.Fatalf("ConnectTo() error = %v", err)
	}

	err := second.ConnectTo(in)
	if !errors.Is(err, ErrConnectionLimit) {
		t.Fatalf("ConnectTo() error = %v, want ErrConnectionLimit", err)
	}

	if in.ConnectedTo() != first {
		t.Error("original connection should remain after a rejected attempt")
	}
	if second.IsConnected() {
		t.Error("rejected output should stay disconnected")
	}
	if in.MaxConnections() != 1 {
		t.Errorf("MaxConnections() = %d, want 1", in.MaxConnections())
	}
}

func TestOutputAcceptsManyConnections(t *testing.T) {
	out, _ := NewNode("Source").AddOutputPort("out", "Dataset")
	for i := 0; i < 3; i++ {
		in, _ := NewNode("Sink").AddInputPort("in", "Dataset")
		if err := out.ConnectTo(in); err != nil {
			t.Fatalf("ConnectTo() #%d error = %v", i, err)
		}
	}
	if got := len(out.Connections()); got != 3 {
		t.Errorf("len(Connections()) = %d, want 3", got)
	}
	if out.MaxConnections() != 0 {
		t.Errorf("MaxConnections() = %d, want 0", out.MaxConnections())
	}
}

func TestDisconnect(t *testing.T) {
	out, in := newPair(t, "Dataset", "Dataset")
	_ = out.ConnectTo(in)

	in.Disconnect(out)

	if out.IsConnected() || in.IsConnected() {
		t.Error("Disconnect() should remove both links")
	}

	// Disconnecting unlinked ports is a no-op.
	in.Disconnect(out)
	in.Disconnect(nil)
}

func TestReceive(t *testing.T) {
	out, in := newPair(t, "Dataset", "Dataset")

	if _, err := in.Receive(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Receive() error = %v, want ErrNotConnected", err)
	}

	_ = out.ConnectTo(in)
	if _, err := in.Receive(); !errors.Is(err, ErrNoGenerator) {
		t.Fatalf("Receive() error = %v, want ErrNoGenerator", err)
	}

	out.SetGenerator(func() (any, error) { return 42, nil })
	got, err := in.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Receive() = %v, want 42", got)
	}

	if _, err := out.Receive(); !errors.Is(err, ErrWrongDirection) {
		t.Errorf("Receive() on output error = %v, want ErrWrongDirection", err)
	}
}

func TestSend(t *testing.T) {
	out, in := newPair(t, "Dataset", "Dataset")
	_ = out.ConnectTo(in)
	out.SetGenerator(func() (any, error) { return "value", nil })

	var got []any
	in.SetProcessor(func(v any) error { got = append(got, v); return nil })

	if err := out.Send(); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	in.ToggleReceivesInput(false)
	_ = out.Send()

	if len(got) != 1 || got[0] != "value" {
		t.Errorf("processed values = %v, want [value]", got)
	}
}

func TestPropagateTo(t *testing.T) {
	srcOut, midIn := newPair(t, "Dataset", "Dataset")
	mid := midIn.Node()
	midOut, _ := mid.AddOutputPort("out", "Dataset")
	sinkIn, _ := NewNode("Sink").AddInputPort("in", "Dataset")

	_ = srcOut.ConnectTo(midIn)
	_ = midOut.ConnectTo(sinkIn)

	srcOut.SetGenerator(func() (any, error) { return 1, nil })
	midOut.SetGenerator(func() (any, error) { return 2, nil })
	midIn.PropagateTo(midOut)

	var got any
	sinkIn.SetProcessor(func(v any) error { got = v; return nil })

	if err := srcOut.Send(); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got != 2 {
		t.Errorf("propagated value = %v, want 2", got)
	}
}

func TestSendErrors(t *testing.T) {
	errSink := errors.New("sink full")

	tests := []struct {
		name    string
		setup   func(first, second *Port)
		want    []error
		visited int
	}{
		{"all processed", func(first, second *Port) {}, nil, 2},
		{"processor fails", func(first, second *Port) {
			first.SetProcessor(func(any) error { return errSink })
		}, []error{errSink}, 1},
		{"missing processor", func(first, second *Port) {
			second.SetProcessor(nil)
		}, []error{ErrNoProcessor}, 1},
		{"missing processor not receiving", func(first, second *Port) {
			second.SetProcessor(nil)
			second.ToggleReceivesInput(false)
		}, nil, 1},
		{"both fail", func(first, second *Port) {
			first.SetProcessor(func(any) error { return errSink })
			second.SetProcessor(nil)
		}, []error{errSink, ErrNoProcessor}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := NewNode("Source").AddOutputPort("out", "Dataset")
			out.SetGenerator(func() (any, error) { return 1, nil })
			first, _ := NewNode("A").AddInputPort("in", "Dataset")
			second, _ := NewNode("B").AddInputPort("in", "Dataset")
			_ = out.ConnectTo(first)
			_ = out.ConnectTo(second)

			visited := 0
			count := func(any) error { visited++; return nil }
			first.SetProcessor(count)
			second.SetProcessor(count)
			tt.setup(first, second)

			err := out.Send()
			if len(tt.want) == 0 && err != nil {
				t.Errorf("Send() error = %v, want nil", err)
			}
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("Send() error = %v, want %v", err, want)
				}
			}
			if visited != tt.visited {
				t.Errorf("processors run = %d, want %d", visited, tt.visited)
			}
		})
	}
}

func TestPropagateToReturnsErrors(t *testing.T) {
	srcOut, midIn := newPair(t, "Dataset", "Dataset")
	midOut, _ := midIn.Node().AddOutputPort("out", "Dataset")
	sinkIn, _ := NewNode("Sink").AddInputPort("in", "Dataset")
	_ = srcOut.ConnectTo(midIn)
	_ = midOut.ConnectTo(sinkIn)

	srcOut.SetGenerator(func() (any, error) { return 1, nil })
	midIn.PropagateTo(midOut)

	// The forwarding output has no generator.
	if err := srcOut.Send(); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("Send() error = %v, want ErrNoGenerator", err)
	}

	midOut.SetGenerator(func() (any, error) { return 2, nil })
	if err := srcOut.Send(); !errors.Is(err, ErrNoProcessor) {
		t.Errorf("Send() error = %v, want ErrNoProcessor from the sink", err)
	}
}

func TestDuplicatePortName(t *testing.T) {
	n := NewNode("Layer")
	if _, err := n.AddInputPort("x", "Dataset"); err != nil {
		t.Fatalf("AddInputPort() error = %v", err)
	}
	if _, err := n.AddOutputPort("x", "Dataset"); !errors.Is(err, ErrDuplicatePort) {
		t.Errorf("AddOutputPort() error = %v, want ErrDuplicatePort", err)
	}
	if _, err := n.AddInputPort("", "Dataset"); !errors.Is(err, ErrInvalidPortName) {
		t.Errorf("AddInputPort(\"\") error = %v, want ErrInvalidPortName", err)
	}
}
