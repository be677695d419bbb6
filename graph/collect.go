package graph

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"callchain/scanner"

	"golang.org/x/sync/errgroup"
)

// DefaultLanguage is the dialect collected when none is configured.
const DefaultLanguage = "rust"

// CollectOptions configures Collect.
type CollectOptions struct {
	// Language selects the dialect; empty means DefaultLanguage.
	Language string
	// Jobs bounds concurrent parsing; <= 0 means runtime.NumCPU().
	Jobs int
	// SkipIgnored skips well-known build/VCS directories and .gitignore matches.
	SkipIgnored bool
	// Loader resolves grammars; nil uses a loader with default search paths.
	Loader *scanner.GrammarLoader
	// Logger receives debug events; nil uses slog.Default().
	Logger *slog.Logger
}

type fileResult struct {
	facts *scanner.FileFacts
	err   error
}

// Collect builds the call graph for every source file under root. A root
// that does not exist gives an empty graph. Files that cannot be read or
// parsed are skipped. Parsing runs concurrently, but facts are merged in
// sorted relative-path order so the graph is the same for every run.
func Collect(ctx context.Context, root string, opts CollectOptions) (*CallGraph, error) {
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	loader := opts.Loader
	if loader == nil {
		loader = scanner.NewGrammarLoader("")
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	ex, err := loader.Extractor(lang)
	if err != nil {
		return nil, err
	}

	walkOpts := scanner.WalkOptions{
		Extensions:  ex.Dialect().Extensions,
		SkipIgnored: opts.SkipIgnored,
	}
	if opts.SkipIgnored {
		walkOpts.Gitignore = scanner.LoadGitignore(root)
	}

	files, err := scanner.SourceFiles(root, walkOpts)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			facts, err := ex.ExtractFile(f.AbsPath)
			results[i] = fileResult{facts: facts, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := NewBuilder(root, WithLogger(opts.Logger))
	for i, f := range files {
		r := results[i]
		if r.err != nil {
			b.Skip(f.RelPath, r.err)
			continue
		}
		r.facts.Path = f.RelPath
		b.AddFile(r.facts)
	}
	return b.Build(), nil
}
