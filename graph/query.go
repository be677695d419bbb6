package graph

import (
	"strings"
)

// PathResult is a call path between two functions.
type PathResult struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Path   []string `json:"path"`
	Length int      `json:"length"`
}

// FindByPattern returns the defined names containing pattern, ignoring case.
func (g *CallGraph) FindByPattern(pattern string) []string {
	pattern = strings.ToLower(pattern)
	var results []string
	for _, name := range g.Names() {
		if strings.Contains(strings.ToLower(name), pattern) {
			results = append(results, name)
		}
	}
	return results
}

// FindPath finds the shortest call path from one name to another using BFS.
// Callees are explored in call order, so ties resolve to the earliest call.
// Returns nil if no path exists within maxDepth calls.
func (g *CallGraph) FindPath(from, to string, maxDepth int) *PathResult {
	if maxDepth <= 0 {
		maxDepth = 10 // Default max depth
	}

	type queueItem struct {
		name string
		path []string
	}

	visited := make(map[string]bool)
	queue := []queueItem{{name: from, path: []string{from}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.name == to {
			return &PathResult{
				From:   from,
				To:     to,
				Path:   current.path,
				Length: len(current.path) - 1,
			}
		}

		if len(current.path) > maxDepth || visited[current.name] {
			continue
		}
		visited[current.name] = true

		for _, callee := range g.calls[current.name] {
			if visited[callee] {
				continue
			}
			newPath := make([]string, len(current.path)+1)
			copy(newPath, current.path)
			newPath[len(current.path)] = callee
			queue = append(queue, queueItem{name: callee, path: newPath})
		}
	}

	return nil // No path found
}

// CalleeTree returns the names transitively called by start, grouped by
// depth. Level 0 holds start itself. Each name appears once, at the
// shallowest level it is reached.
func (g *CallGraph) CalleeTree(start string, maxDepth int) map[int][]string {
	return g.levels(start, maxDepth, func(name string) []string {
		return g.calls[name]
	})
}

// CallerTree returns the names that transitively call start, grouped by
// depth like CalleeTree.
func (g *CallGraph) CallerTree(start string, maxDepth int) map[int][]string {
	return g.levels(start, maxDepth, g.Callers)
}

func (g *CallGraph) levels(start string, maxDepth int, next func(string) []string) map[int][]string {
	if maxDepth <= 0 {
		maxDepth = 5
	}

	levels := make(map[int][]string)
	visited := map[string]bool{start: true}
	current := []string{start}

	for depth := 0; depth <= maxDepth && len(current) > 0; depth++ {
		levels[depth] = current

		var nextLevel []string
		for _, name := range current {
			for _, n := range next(name) {
				if !visited[n] {
					visited[n] = true
					nextLevel = append(nextLevel, n)
				}
			}
		}
		current = nextLevel
	}

	return levels
}

// CallSites returns the edges whose callee is name, in merge order.
func (g *CallGraph) CallSites(name string) []Edge {
	var sites []Edge
	for _, e := range g.edges {
		if e.Callee == name {
			sites = append(sites, e)
		}
	}
	return sites
}
