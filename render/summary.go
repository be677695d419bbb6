package render

import (
	"fmt"
	"io"
	"path/filepath"

	"callchain/graph"
)

// SummaryView writes a compact overview of every defined function and its
// distinct callees. Callees without a definition are marked with "?".
func SummaryView(w io.Writer, g *graph.CallGraph) {
	projectName := filepath.Base(g.RootPath)
	names := g.Names()

	if len(names) == 0 {
		fmt.Fprintln(w, "  No functions found.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "=== Call Graph: %s ===\n", projectName)
	fmt.Fprintln(w)

	for _, name := range names {
		callees := distinct(g.CalleesOf(name))
		if len(callees) == 0 {
			fmt.Fprintf(w, "  %s()\n", name)
			continue
		}
		fmt.Fprintf(w, "  %s() → %d\n", name, len(callees))
		for _, c := range callees {
			fmt.Fprintf(w, "    %s %s()\n", calleeIcon(g, c), c)
		}
	}

	stats := g.GetStats()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Files: %d (%d skipped) · Functions: %d · Calls: %d · Undefined: %d\n",
		stats.Files, stats.Skipped, stats.Functions, stats.Calls, stats.Undefined)
}

// calleeIcon marks whether a callee resolves to a definition
func calleeIcon(g *graph.CallGraph, name string) string {
	if g.Has(name) {
		return "+"
	}
	return "?"
}

func distinct(names []string) []string {
	var out []string
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
