// Package analyzer runs a complete analysis: resolve the entry symbol,
// collect the call graph under a root, and render the chain.
package analyzer

import (
	"context"
	"log/slog"

	"callchain/graph"
	"callchain/render"
	"callchain/scanner"
)

// DefaultEntry is the entry symbol used when none is given.
const DefaultEntry = "main"

// ResolveEntry returns explicit when non-empty, otherwise DefaultEntry. The
// name is not checked against any graph.
func ResolveEntry(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return DefaultEntry
}

// Options configures Analyze. The zero value analyzes Rust sources and
// renders text.
type Options struct {
	Language    string
	Format      render.Format
	Jobs        int
	SkipIgnored bool
	MaxDepth    int

	// Loader resolves grammars. When nil, one is created from GrammarDir.
	Loader     *scanner.GrammarLoader
	GrammarDir string

	Logger *slog.Logger
}

// Result is the outcome of one analysis.
type Result struct {
	Entry     string
	Format    render.Format
	CallChain string
	Stats     graph.Stats
	Graph     *graph.CallGraph
}

// Reached returns the names entered from the entry, in walk order.
func (r *Result) Reached() []string {
	return r.Graph.Reachable(r.Entry)
}

// Analyze builds a fresh graph for root and renders the chain from entry.
// A missing root or an entry with no definition gives degenerate output,
// not an error.
func Analyze(ctx context.Context, root, entry string, opts Options) (*Result, error) {
	format, err := render.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	entry = ResolveEntry(entry)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = scanner.NewGrammarLoader(opts.GrammarDir)
	}

	g, err := graph.Collect(ctx, root, graph.CollectOptions{
		Language:    opts.Language,
		Jobs:        opts.Jobs,
		SkipIgnored: opts.SkipIgnored,
		Loader:      loader,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	chain, err := render.Render(g, entry, format, render.Options{MaxDepth: opts.MaxDepth})
	if err != nil {
		return nil, err
	}

	if !g.Has(entry) {
		logger.Debug("analyze.entry_missing", "entry", entry, "root", root)
	}

	return &Result{
		Entry:     entry,
		Format:    format,
		CallChain: chain,
		Stats:     g.GetStats(),
		Graph:     g,
	}, nil
}
