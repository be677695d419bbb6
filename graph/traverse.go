package graph

// Visitor receives traversal events from Walk.
type Visitor interface {
	// Enter is called the first time a name is reached in a run.
	Enter(name string, depth int)
	// Call is called for each callee of an entered name, in call order,
	// before the callee itself is walked at depth+1.
	Call(caller, callee string, depth int)
}

// Walk traverses the graph depth-first from entry. Each name is entered at
// most once per call, which bounds the walk on cyclic graphs; a name reached
// again only produces the Call event that led to it. Names without a
// definition are entered and have no callees.
func (g *CallGraph) Walk(entry string, v Visitor) {
	g.WalkDepth(entry, 0, v)
}

// WalkDepth is Walk with expansion stopped below maxDepth. Names at maxDepth
// are entered but their callees are not listed. maxDepth <= 0 means no limit.
func (g *CallGraph) WalkDepth(entry string, maxDepth int, v Visitor) {
	visited := make(map[string]bool)

	var visit func(name string, depth int)
	visit = func(name string, depth int) {
		if visited[name] {
			return
		}
		visited[name] = true
		v.Enter(name, depth)

		if maxDepth > 0 && depth >= maxDepth {
			return
		}
		for _, callee := range g.calls[name] {
			v.Call(name, callee, depth)
			visit(callee, depth+1)
		}
	}

	visit(entry, 0)
}

// Reachable returns the names entered by a walk from entry, in walk order.
func (g *CallGraph) Reachable(entry string) []string {
	var c collector
	g.Walk(entry, &c)
	return c.names
}

type collector struct {
	names []string
}

func (c *collector) Enter(name string, _ int) { c.names = append(c.names, name) }
func (c *collector) Call(_, _ string, _ int)  {}
