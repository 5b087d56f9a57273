package nodeeditor

import (
	"errors"
	"fmt"
	"testing"
)

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func TestTopologicalOrder(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  []string
	}{
		{
			name: "empty",
			want: []string{},
		},
		{
			name:  "independent then chain",
			ids:   []string{"a", "b", "c", "d"},
			edges: [][2]string{{"c", "d"}},
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "consumer inserted first",
			ids:   []string{"d", "c", "b", "a"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}},
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "diamond",
			ids:   []string{"top", "left", "right", "bottom"},
			edges: [][2]string{{"top", "left"}, {"top", "right"}, {"left", "bottom"}, {"right", "bottom"}},
			want:  []string{"top", "left", "right", "bottom"},
		},
		{
			name:  "interleaved branches",
			ids:   []string{"a1", "b1", "a2", "b2"},
			edges: [][2]string{{"a1", "a2"}, {"b1", "b2"}},
			want:  []string{"a1", "b1", "a2", "b2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene()
			for _, id := range tt.ids {
				if err := s.AddNode(multiNode(id)); err != nil {
					t.Fatal(err)
				}
			}
			for _, e := range tt.edges {
				if err := connectFree(s, e[0], e[1]); err != nil {
					t.Fatal(err)
				}
			}

			got, err := s.TopologicalOrder()
			if err != nil {
				t.Fatalf("TopologicalOrder() error = %v", err)
			}
			if fmt.Sprint(ids(got)) != fmt.Sprint(tt.want) {
				t.Errorf("TopologicalOrder() = %v, want %v", ids(got), tt.want)
			}
			assertSound(t, s, got)
		})
	}
}

// multiNode has a single output and as many inputs as connectFree needs.
func multiNode(id string) *Node {
	n := NewNode("Step", WithID(id))
	_, _ = n.AddOutputPort("out", "T")
	return n
}

// connectFree links from.out to a fresh input on to, so nodes can have
// several producers.
func connectFree(s *Scene, from, to string) error {
	dst, ok := s.Node(to)
	if !ok {
		return ErrUnknownNode
	}
	name := fmt.Sprintf("in%d", len(dst.Inputs()))
	if _, err := dst.AddInputPort(name, "T"); err != nil {
		return err
	}
	return s.Connect(from, "out", to, name)
}

func assertSound(t *testing.T, s *Scene, order []*Node) {
	t.Helper()
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n.ID()] = i
	}
	if len(pos) != s.Len() {
		t.Fatalf("order has %d nodes, scene has %d", len(pos), s.Len())
	}
	for _, e := range s.Edges() {
		if pos[e.From] >= pos[e.To] {
			t.Errorf("edge %s -> %s violated: %d >= %d", e.From, e.To, pos[e.From], pos[e.To])
		}
	}
}

func TestReverseTopological(t *testing.T) {
	s := buildScene(t, []string{"a", "b", "c", "d"}, [][2]string{{"c", "d"}})

	got, err := ReverseTopological(s.Nodes())
	if err != nil {
		t.Fatalf("ReverseTopological() error = %v", err)
	}
	want := []string{"d", "c", "b", "a"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Errorf("ReverseTopological() = %v, want %v", ids(got), want)
	}
}

func TestReverseTopologicalIgnoresOutsiders(t *testing.T) {
	s := buildScene(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	a, _ := s.Node("a")
	c, _ := s.Node("c")

	got, err := ReverseTopological([]*Node{a, c})
	if err != nil {
		t.Fatalf("ReverseTopological() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ReverseTopological() = %v, want 2 nodes", ids(got))
	}
}

func TestCycleDetection(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
	}{
		{"two nodes", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}},
		{"behind a prefix", []string{"root", "x", "y", "z"}, [][2]string{{"root", "x"}, {"x", "y"}, {"y", "z"}, {"z", "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene()
			for _, id := range tt.ids {
				_ = s.AddNode(multiNode(id))
			}
			for _, e := range tt.edges {
				if err := connectFree(s, e[0], e[1]); err != nil {
					t.Fatal(err)
				}
			}

			_, err := s.TopologicalOrder()
			if !errors.Is(err, ErrCyclicGraph) {
				t.Fatalf("TopologicalOrder() error = %v, want ErrCyclicGraph", err)
			}
			var ce *CycleError
			if !errors.As(err, &ce) || ce.Node == nil {
				t.Fatalf("error %v does not carry the offending node", err)
			}
			if err := s.Validate(); !errors.Is(err, ErrCyclicGraph) {
				t.Errorf("Validate() error = %v, want ErrCyclicGraph", err)
			}
		})
	}
}

func TestDeepChain(t *testing.T) {
	const depth = 100_000
	s := NewScene()
	for i := depth - 1; i >= 0; i-- {
		_ = s.AddNode(chainNode(fmt.Sprint(i)))
	}
	for i := 0; i < depth-1; i++ {
		if err := s.Connect(fmt.Sprint(i), "out", fmt.Sprint(i+1), "in"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() error = %v", err)
	}
	if got[0].ID() != "0" || got[depth-1].ID() != fmt.Sprint(depth-1) {
		t.Errorf("chain ends = %s..%s", got[0].ID(), got[depth-1].ID())
	}
}
