package nodeeditor

// visit states for the depth-first traversal.
const (
	white = iota
	inProgress
	done
)

// frame is one entry of the explicit DFS stack.
type frame struct {
	node     int
	children []int
	next     int
}

// ReverseTopological orders nodes so that every node appears after all of
// its downstream neighbours (consumers before producers). Iterating the
// result backwards yields producers before consumers.
//
// Seeds are taken in reverse input order, and each node's neighbours in
// [Node.ConnectedOutputNodes] order. Read backwards, independent subgraphs
// then keep the order in which they appear in nodes:
//
//	input:   a, b, c -> d        (a and b unconnected)
//	result:  d, c, b, a
//	reverse: a, b, c, d
//
// Neighbours that are not in nodes are ignored. The traversal uses an
// explicit stack, so deep graphs do not grow the goroutine stack. Reaching a
// node that is still being visited returns a [*CycleError] naming it.
//
// Runs in O(N+E) time.
func ReverseTopological(nodes []*Node) ([]*Node, error) {
	pos := make(map[*Node]int, len(nodes))
	for i, n := range nodes {
		if _, dup := pos[n]; !dup {
			pos[n] = i
		}
	}

	children := func(i int) []int {
		var out []int
		for _, c := range nodes[i].ConnectedOutputNodes() {
			if j, ok := pos[c]; ok {
				out = append(out, j)
			}
		}
		return out
	}

	state := make([]int, len(nodes))
	sorted := make([]*Node, 0, len(nodes))
	var stack []frame

	for seed := len(nodes) - 1; seed >= 0; seed-- {
		if state[seed] != white || pos[nodes[seed]] != seed {
			continue
		}
		state[seed] = inProgress
		stack = append(stack, frame{node: seed, children: children(seed)})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.children) {
				c := top.children[top.next]
				top.next++
				switch state[c] {
				case white:
					state[c] = inProgress
					stack = append(stack, frame{node: c, children: children(c)})
				case inProgress:
					return nil, &CycleError{Node: nodes[c]}
				}
				continue
			}
			state[top.node] = done
			sorted = append(sorted, nodes[top.node])
			stack = stack[:len(stack)-1]
		}
	}
	return sorted, nil
}

// TopologicalOrder returns the scene nodes with producers before consumers,
// using the same tie-break as [ReverseTopological].
func (s *Scene) TopologicalOrder() ([]*Node, error) {
	rev, err := ReverseTopological(s.Nodes())
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev, nil
}

// Validate reports a [*CycleError] if the scene contains a directed cycle.
func (s *Scene) Validate() error {
	_, err := ReverseTopological(s.Nodes())
	return err
}
