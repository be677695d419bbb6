package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"callchain/analyzer"
	"callchain/config"
	"callchain/render"
	"callchain/report"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "1.0.0"

// options holds the command-line flags of the root command.
type options struct {
	projectPath string
	entry       string
	testHash    string
	output      string
	format      string
	reportKind  string
	withBodies  bool
	summary     bool
	language    string
	jobs        int
	skipIgnored bool
	grammarDir  string
	configPath  string
	debug       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "callchain [path]",
		Short: "Extract a static call chain from a source tree",
		Long: `callchain builds a name-keyed call graph from every source file under a
project and renders the calls reachable from an entry function, either as an
indented trace or as a Mermaid flowchart. The result is written as JSON:

  {"status": "ok", "call_chain": "...", "confidence": 90}`,
		Example: `  callchain -p ./my-crate
  callchain -p ./my-crate -e run -f mermaid -o chain.json
  callchain --report text --with-bodies .`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && opts.projectPath == "" {
				opts.projectPath = args[0]
			}
			return runAnalyze(cmd, opts, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.projectPath, "project-path", "p", "", "Path to the project (default: current directory)")
	flags.StringVarP(&opts.entry, "entry", "e", "", "Entry function (default: main)")
	flags.StringVarP(&opts.testHash, "test-hash", "t", "", "Entry function (alias of --entry)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	flags.StringVarP(&opts.format, "format", "f", "", fmt.Sprintf("Chain format: %s (default: text)", formatNames()))
	flags.StringVar(&opts.reportKind, "report", string(report.KindJSON), "Report encoding: json or text")
	flags.BoolVar(&opts.withBodies, "with-bodies", false, "Attach the source of every reached function")
	flags.BoolVar(&opts.summary, "summary", false, "Print a function/callee overview to stderr")
	flags.StringVarP(&opts.language, "language", "l", "", "Source language (default: rust)")
	flags.IntVar(&opts.jobs, "jobs", 0, "Parallel parsers (default: number of CPUs)")
	flags.BoolVar(&opts.skipIgnored, "skip-ignored", false, "Skip build/VCS directories and .gitignore matches")
	flags.StringVar(&opts.grammarDir, "grammar-dir", "", "Directory with extra tree-sitter grammars")
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: ~/.config/callchain/config.yaml, .callchain/config.yaml)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	_ = flags.MarkHidden("test-hash")

	cmd.AddCommand(newVersionCmd(stdout), newInitConfigCmd(stdout))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "callchain %s\n", version)
		},
	}
}

func newInitConfigCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default config file (default: .callchain/config.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ProjectConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Wrote %s\n", path)
			return nil
		},
	}
}

// loadConfig reads the config file layers and applies the flags the user
// actually set on top of them.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("test-hash") {
		cfg.Entry = opts.testHash
	}
	if flags.Changed("entry") {
		cfg.Entry = opts.entry
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("language") {
		cfg.Language = opts.language
	}
	if flags.Changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if flags.Changed("skip-ignored") {
		cfg.SkipIgnored = opts.skipIgnored
	}
	if flags.Changed("grammar-dir") {
		cfg.GrammarDir = opts.grammarDir
	}
	if opts.debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.Debug)
	slog.SetDefault(logger)

	root := opts.projectPath
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving project path: %w", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		logger.Warn("project path is not a readable directory; the chain will be empty", "path", absRoot)
	}

	res, err := analyzer.Analyze(cmd.Context(), absRoot, cfg.Entry, analyzer.Options{
		Language:    cfg.Language,
		Format:      render.Format(cfg.Format),
		Jobs:        cfg.Jobs,
		SkipIgnored: cfg.SkipIgnored,
		GrammarDir:  cfg.GrammarDir,
		Logger:      logger,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted")
		}
		return err
	}

	logger.Debug("analyze.done",
		"entry", res.Entry,
		"format", res.Format,
		"files", res.Stats.Files,
		"skipped", res.Stats.Skipped,
		"functions", res.Stats.Functions,
		"calls", res.Stats.Calls,
	)

	if opts.summary {
		render.SummaryView(stderr, res.Graph)
	}

	data, err := report.Encode(report.New(res, opts.withBodies), report.Kind(opts.reportKind))
	if err != nil {
		return err
	}
	return report.Write(opts.output, stdout, data)
}

func formatNames() string {
	var names []string
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// newLogger writes human-readable logs to a terminal and JSON lines otherwise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}
