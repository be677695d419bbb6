package render

import (
	"strings"

	"callchain/graph"
)

const mermaidHeader = "graph TD"

// Mermaid renders the call chain from entry as a Mermaid flowchart, one
// edge line per expanded call in walk order. An entry without calls gives
// the header alone.
func Mermaid(g *graph.CallGraph, entry string) string {
	return MermaidDepth(g, entry, 0)
}

// MermaidDepth is Mermaid with expansion stopped below maxDepth.
func MermaidDepth(g *graph.CallGraph, entry string, maxDepth int) string {
	mw := &mermaidWriter{lines: []string{mermaidHeader}}
	g.WalkDepth(entry, maxDepth, mw)
	return strings.Join(mw.lines, "\n")
}

type mermaidWriter struct {
	lines []string
}

func (w *mermaidWriter) Enter(string, int) {}

func (w *mermaidWriter) Call(caller, callee string, _ int) {
	w.lines = append(w.lines, mermaidNode(caller)+" --> "+mermaidNode(callee))
}

func mermaidNode(name string) string {
	return name + "[" + name + "]"
}
