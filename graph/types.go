// Package graph provides the name-keyed call graph built from per-file
// function facts, and the depth-first traversal the renderers share.
//
// Function identity is the bare name: two functions that share a leaf name
// anywhere in the tree are one node, and their callee lists are concatenated.
// This is an intentional approximation of syntax-only analysis.
package graph

import (
	"slices"
)

// Edge is one call site: caller's body contains a call naming callee.
type Edge struct {
	Caller string `json:"caller"`
	Callee string `json:"callee"`
	Path   string `json:"path,omitempty"` // file path relative to the root
	Line   int    `json:"line,omitempty"`
}

// CallGraph maps each defined function name to the ordered names it calls.
// It is filled by a Builder and read-only afterwards.
type CallGraph struct {
	RootPath string `json:"root"`
	Files    int    `json:"files"`   // files parsed and merged
	Skipped  int    `json:"skipped"` // files that could not be read or parsed

	calls  map[string][]string
	bodies map[string]string
	edges  []Edge
}

// NewCallGraph creates an empty CallGraph.
func NewCallGraph(rootPath string) *CallGraph {
	return &CallGraph{
		RootPath: rootPath,
		calls:    make(map[string][]string),
		bodies:   make(map[string]string),
	}
}

// AddFunction registers a definition. The name becomes a node even when it
// makes no calls. A non-empty body replaces any earlier snapshot.
func (g *CallGraph) AddFunction(name, body string) {
	if _, ok := g.calls[name]; !ok {
		g.calls[name] = nil
	}
	if body != "" {
		g.bodies[name] = body
	}
}

// AddCall appends callee to caller's callee list. Repeated calls are kept.
func (g *CallGraph) AddCall(e Edge) {
	g.AddFunction(e.Caller, "")
	g.calls[e.Caller] = append(g.calls[e.Caller], e.Callee)
	g.edges = append(g.edges, e)
}

// CalleesOf returns name's callees in call order, or nil if name is not a
// defined function.
func (g *CallGraph) CalleesOf(name string) []string {
	return g.calls[name]
}

// Has reports whether name is a defined function.
func (g *CallGraph) Has(name string) bool {
	_, ok := g.calls[name]
	return ok
}

// Body returns the source snapshot of the last definition seen for name.
func (g *CallGraph) Body(name string) (string, bool) {
	body, ok := g.bodies[name]
	return body, ok
}

// Names returns all defined function names, sorted.
func (g *CallGraph) Names() []string {
	names := make([]string, 0, len(g.calls))
	for name := range g.calls {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Edges returns every call edge in merge order.
func (g *CallGraph) Edges() []Edge {
	return g.edges
}

// Callers returns the distinct functions calling name, in first-seen order.
func (g *CallGraph) Callers(name string) []string {
	var callers []string
	seen := make(map[string]bool)
	for _, e := range g.edges {
		if e.Callee == name && !seen[e.Caller] {
			seen[e.Caller] = true
			callers = append(callers, e.Caller)
		}
	}
	return callers
}

// Stats summarizes a graph.
type Stats struct {
	Files     int `json:"files"`
	Skipped   int `json:"skipped"`
	Functions int `json:"functions"`
	Calls     int `json:"calls"`
	Undefined int `json:"undefined"` // distinct callees with no definition
}

// GetStats computes statistics about the graph.
func (g *CallGraph) GetStats() Stats {
	undefined := make(map[string]bool)
	for _, e := range g.edges {
		if !g.Has(e.Callee) {
			undefined[e.Callee] = true
		}
	}
	return Stats{
		Files:     g.Files,
		Skipped:   g.Skipped,
		Functions: len(g.calls),
		Calls:     len(g.edges),
		Undefined: len(undefined),
	}
}
