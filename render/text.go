package render

import (
	"strings"

	"callchain/graph"
)

const indentUnit = "  "

// Text renders the call chain from entry as an indented trace:
//
//	main()
//	→ a()
//	  a()
//
// Each name gets its own line the first time it is reached. A name reached
// again only shows the arrow line that led to it. Lines are joined with "\n"
// and there is no trailing newline.
func Text(g *graph.CallGraph, entry string) string {
	return TextDepth(g, entry, 0)
}

// TextDepth is Text with expansion stopped below maxDepth.
func TextDepth(g *graph.CallGraph, entry string, maxDepth int) string {
	tw := &textWriter{}
	g.WalkDepth(entry, maxDepth, tw)
	return strings.Join(tw.lines, "\n")
}

type textWriter struct {
	lines []string
}

func (w *textWriter) Enter(name string, depth int) {
	w.lines = append(w.lines, strings.Repeat(indentUnit, depth)+name+"()")
}

func (w *textWriter) Call(_, callee string, depth int) {
	w.lines = append(w.lines, strings.Repeat(indentUnit, depth)+"→ "+callee+"()")
}
