package graph

import (
	"log/slog"

	"callchain/scanner"
)

// Builder merges per-file facts into a CallGraph. Files must be added in a
// stable order: callee lists are concatenated in the order files arrive, and
// the last body seen for a name wins.
type Builder struct {
	graph  *CallGraph
	logger *slog.Logger
}

// BuilderOption configures the graph builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for per-file events.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a new graph builder.
func NewBuilder(rootPath string, opts ...BuilderOption) *Builder {
	b := &Builder{
		graph:  NewCallGraph(rootPath),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// AddFile merges one file's facts into the graph.
func (b *Builder) AddFile(facts *scanner.FileFacts) {
	if facts == nil {
		return
	}

	b.graph.Files++
	for _, fn := range facts.Functions {
		b.graph.AddFunction(fn.Name, fn.Body)
		for _, call := range fn.Calls {
			b.graph.AddCall(Edge{
				Caller: fn.Name,
				Callee: call.Callee,
				Path:   facts.Path,
				Line:   call.Line,
			})
		}
	}
	b.logger.Debug("collect.file", "path", facts.Path, "functions", len(facts.Functions))
}

// Skip records a file that could not be read or parsed. It never fails the
// build.
func (b *Builder) Skip(path string, err error) {
	b.graph.Skipped++
	b.logger.Debug("collect.skip", "path", path, "error", err)
}

// Build finalizes the graph and returns it.
func (b *Builder) Build() *CallGraph {
	stats := b.graph.GetStats()
	b.logger.Debug("collect.done",
		"root", b.graph.RootPath,
		"files", stats.Files,
		"skipped", stats.Skipped,
		"functions", stats.Functions,
		"calls", stats.Calls,
	)
	return b.graph
}
