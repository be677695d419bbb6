// MCP Server for callchain - exposes call graph analysis as tools to LLMs
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"callchain/analyzer"
	"callchain/graph"
	"callchain/render"
	"callchain/report"
	"callchain/scanner"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverVersion = "1.0.0"

// Input types for tools
type PathInput struct {
	Path     string `json:"path" jsonschema:"Path to the project directory to analyze"`
	Language string `json:"language,omitempty" jsonschema:"Source language (default: rust)"`
}

type CallChainInput struct {
	Path     string `json:"path" jsonschema:"Path to the project directory to analyze"`
	Entry    string `json:"entry,omitempty" jsonschema:"Function to start from (default: main)"`
	Format   string `json:"format,omitempty" jsonschema:"Output format: text (default) or mermaid"`
	Depth    int    `json:"depth,omitempty" jsonschema:"Maximum expansion depth (default: unlimited)"`
	Language string `json:"language,omitempty" jsonschema:"Source language (default: rust)"`
}

type CallersInput struct {
	Path     string `json:"path" jsonschema:"Path to the project directory"`
	Symbol   string `json:"symbol" jsonschema:"Function name to find callers for"`
	Depth    int    `json:"depth,omitempty" jsonschema:"Depth of caller chain (default: 1, max: 5)"`
	Language string `json:"language,omitempty" jsonschema:"Source language (default: rust)"`
}

type CalleesInput struct {
	Path     string `json:"path" jsonschema:"Path to the project directory"`
	Symbol   string `json:"symbol" jsonschema:"Function name to find callees for"`
	Depth    int    `json:"depth,omitempty" jsonschema:"Depth of callee chain (default: 1, max: 5)"`
	Language string `json:"language,omitempty" jsonschema:"Source language (default: rust)"`
}

type TracePathInput struct {
	Path     string `json:"path" jsonschema:"Path to the project directory"`
	From     string `json:"from" jsonschema:"Function to trace from"`
	To       string `json:"to" jsonschema:"Function to trace to"`
	Depth    int    `json:"depth,omitempty" jsonschema:"Maximum number of calls in the path (default: 10)"`
	Language string `json:"language,omitempty" jsonschema:"Source language (default: rust)"`
}

type EmptyInput struct{}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "callchain",
		Version: serverVersion,
	}, nil)

	// Tool: call_chain - Render the call chain from an entry function
	mcp.AddTool(server, &mcp.Tool{
		Name:        "call_chain",
		Description: "Extract the static call chain of a project starting from an entry function (default: main). Returns a JSON result with status, call_chain and confidence. Use format=mermaid for a Mermaid flowchart, or format=text for an indented trace. Functions are identified by bare name only.",
	}, handleCallChain)

	// Tool: get_callees - Find what a function calls
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_callees",
		Description: "Find all functions called by a specific function, level by level up to the given depth. Callees without a definition in the project are marked as external.",
	}, handleGetCallees)

	// Tool: get_callers - Find what calls a function
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_callers",
		Description: "Find all functions that call a specific function, with the file and line of each call site.",
	}, handleGetCallers)

	// Tool: trace_path - Find path between two functions
	mcp.AddTool(server, &mcp.Tool{
		Name:        "trace_path",
		Description: "Find the shortest call path from one function to another. Returns the chain of calls connecting the source to the target.",
	}, handleTracePath)

	// Tool: get_summary - Overview of every function and its callees
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_summary",
		Description: "List every function defined in the project with its distinct callees and overall graph statistics.",
	}, handleGetSummary)

	// Tool: status - Verify MCP connection
	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Check callchain MCP server status. Returns version, supported languages and the grammar directory in use.",
	}, handleStatus)

	// Run server on stdio
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		slog.Error("server error", "error", err)
	}
}

// validatePath validates and returns the absolute path
func validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}

	return absPath, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// clampDepth bounds a tree query depth to 1..5.
func clampDepth(depth int) int {
	if depth <= 0 {
		return 1
	}
	return min(depth, 5)
}

// collectGraph builds the graph for a tool call. Build and VCS directories
// are always skipped here.
func collectGraph(ctx context.Context, absRoot, language string) (*graph.CallGraph, error) {
	return graph.Collect(ctx, absRoot, graph.CollectOptions{
		Language:    language,
		SkipIgnored: true,
	})
}

func handleCallChain(ctx context.Context, req *mcp.CallToolRequest, input CallChainInput) (*mcp.CallToolResult, any, error) {
	absRoot, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	res, err := analyzer.Analyze(ctx, absRoot, input.Entry, analyzer.Options{
		Language:    input.Language,
		Format:      render.Format(input.Format),
		SkipIgnored: true,
		MaxDepth:    input.Depth,
	})
	if err != nil {
		return errorResult("Analysis error: " + err.Error()), nil, nil
	}

	data, err := report.Marshal(report.New(res, false))
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	return textResult(string(data)), nil, nil
}

func handleGetCallees(ctx context.Context, req *mcp.CallToolRequest, input CalleesInput) (*mcp.CallToolResult, any, error) {
	absRoot, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	g, err := collectGraph(ctx, absRoot, input.Language)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	if !g.Has(input.Symbol) {
		return notFound(g, input.Symbol), nil, nil
	}

	depth := clampDepth(input.Depth)
	calleeTree := g.CalleeTree(input.Symbol, depth)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== Callees of '%s' ===\n\n", input.Symbol))

	totalCallees := 0
	for level := 1; level <= depth; level++ {
		for _, callee := range calleeTree[level] {
			indent := strings.Repeat("  ", level-1)
			if g.Has(callee) {
				sb.WriteString(fmt.Sprintf("%s├─ %s\n", indent, callee))
			} else {
				sb.WriteString(fmt.Sprintf("%s├─ %s (external)\n", indent, callee))
			}
			totalCallees++
		}
	}

	if totalCallees == 0 {
		return textResult(fmt.Sprintf("No callees found for '%s'", input.Symbol)), nil, nil
	}

	sb.WriteString(fmt.Sprintf("\n───────────────────────────────────\nTotal callees: %d\n", totalCallees))
	return textResult(sb.String()), nil, nil
}

func handleGetCallers(ctx context.Context, req *mcp.CallToolRequest, input CallersInput) (*mcp.CallToolResult, any, error) {
	absRoot, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	g, err := collectGraph(ctx, absRoot, input.Language)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	depth := clampDepth(input.Depth)
	callerTree := g.CallerTree(input.Symbol, depth)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== Callers of '%s' ===\n\n", input.Symbol))

	// Direct callers are listed per call site
	totalCallers := 0
	for _, site := range g.CallSites(input.Symbol) {
		sb.WriteString(fmt.Sprintf("├─ %s (%s:%d)\n", site.Caller, site.Path, site.Line))
		totalCallers++
	}
	for level := 2; level <= depth; level++ {
		for _, caller := range callerTree[level] {
			indent := strings.Repeat("  ", level-1)
			sb.WriteString(fmt.Sprintf("%s├─ %s\n", indent, caller))
			totalCallers++
		}
	}

	if totalCallers == 0 {
		return textResult(fmt.Sprintf("No callers found for '%s'", input.Symbol)), nil, nil
	}

	sb.WriteString(fmt.Sprintf("\n───────────────────────────────────\nTotal callers: %d\n", totalCallers))
	return textResult(sb.String()), nil, nil
}

func handleTracePath(ctx context.Context, req *mcp.CallToolRequest, input TracePathInput) (*mcp.CallToolResult, any, error) {
	absRoot, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	g, err := collectGraph(ctx, absRoot, input.Language)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	if !g.Has(input.From) {
		return notFound(g, input.From), nil, nil
	}

	path := g.FindPath(input.From, input.To, input.Depth)
	if path == nil {
		return textResult(fmt.Sprintf("No call path found from '%s' to '%s'", input.From, input.To)), nil, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== Path: %s → %s ===\n\n", input.From, input.To))
	for i, name := range path.Path {
		sb.WriteString(fmt.Sprintf("%s%s()\n", strings.Repeat("  ", i), name))
	}
	sb.WriteString(fmt.Sprintf("\nLength: %d calls\n", path.Length))
	return textResult(sb.String()), nil, nil
}

// notFound reports an unknown function, suggesting close matches.
func notFound(g *graph.CallGraph, symbol string) *mcp.CallToolResult {
	msg := fmt.Sprintf("No function found named '%s'", symbol)
	if matches := g.FindByPattern(symbol); len(matches) > 0 {
		msg += fmt.Sprintf(". Did you mean: %s?", strings.Join(matches[:min(len(matches), 5)], ", "))
	}
	return errorResult(msg)
}

func handleGetSummary(ctx context.Context, req *mcp.CallToolRequest, input PathInput) (*mcp.CallToolResult, any, error) {
	absRoot, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	g, err := collectGraph(ctx, absRoot, input.Language)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	var buf bytes.Buffer
	render.SummaryView(&buf, g)
	return textResult(buf.String()), nil, nil
}

func handleStatus(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, any, error) {
	cwd, _ := os.Getwd()
	loader := scanner.NewGrammarLoader("")
	grammarDir := loader.GrammarDir()
	if grammarDir == "" {
		grammarDir = "(none, built-in grammars only)"
	}

	var langs []string
	for _, lang := range scanner.Languages() {
		if loader.Available(lang) {
			langs = append(langs, lang)
		} else {
			langs = append(langs, lang+" (no grammar)")
		}
	}

	return textResult(fmt.Sprintf(`callchain MCP server v%s
Status: connected
Local filesystem access: enabled
Working directory: %s
Languages: %s
Grammar directory: %s

Available tools:
  call_chain   - Call chain from an entry function (text or mermaid)
  get_callees  - Find what a function calls
  get_callers  - Find what calls a function
  trace_path   - Shortest call path between two functions
  get_summary  - Every function with its callees
  status       - This message`, serverVersion, cwd, strings.Join(langs, ", "), grammarDir)), nil, nil
}
