package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"callchain/report"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPTools(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	// The shared Rust corpus lives with the analyzer tests
	testDataPath := filepath.Join(filepath.Dir(cwd), "analyzer", "testdata", "corpus", "rust")
	_, err = os.Stat(testDataPath)
	require.NoError(t, err, "test data path does not exist: %s", testDataPath)

	ctx := context.Background()

	t.Run("call_chain", func(t *testing.T) {
		result, _, err := handleCallChain(ctx, nil, CallChainInput{Path: testDataPath})
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		var envelope report.Result
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &envelope))
		assert.Equal(t, "ok", envelope.Status)
		assert.Equal(t, 90, envelope.Confidence)
		assert.Contains(t, envelope.CallChain, "main()\n→ load_config()")
	})

	t.Run("call_chain mermaid with depth", func(t *testing.T) {
		input := CallChainInput{Path: testDataPath, Format: "mermaid", Depth: 1}
		result, _, err := handleCallChain(ctx, nil, input)
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, "main[main] --> collect[collect]")
		assert.NotContains(t, text, "collect[collect] --> new[new]")
	})

	t.Run("call_chain bad format", func(t *testing.T) {
		result, _, err := handleCallChain(ctx, nil, CallChainInput{Path: testDataPath, Format: "dot"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("get_callees", func(t *testing.T) {
		result, _, err := handleGetCallees(ctx, nil, CalleesInput{Path: testDataPath, Symbol: "collect", Depth: 2})
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		text := resultText(t, result)
		assert.Contains(t, text, "├─ new (external)\n")
		assert.Contains(t, text, "├─ helper\n")
		assert.Contains(t, text, "  ├─ validate\n")
		assert.Contains(t, text, "Total callees: 5")
	})

	t.Run("get_callees unknown symbol", func(t *testing.T) {
		result, _, err := handleGetCallees(ctx, nil, CalleesInput{Path: testDataPath, Symbol: "load"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Did you mean: load_config?")
	})

	t.Run("get_callers", func(t *testing.T) {
		result, _, err := handleGetCallers(ctx, nil, CallersInput{Path: testDataPath, Symbol: "helper"})
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, "├─ report (src/main.rs:26)")
		assert.Contains(t, text, "├─ collect (src/util.rs:8)")
	})

	t.Run("get_callers none", func(t *testing.T) {
		result, _, err := handleGetCallers(ctx, nil, CallersInput{Path: testDataPath, Symbol: "main"})
		require.NoError(t, err)
		assert.Equal(t, "No callers found for 'main'", resultText(t, result))
	})

	t.Run("get_callers deeper", func(t *testing.T) {
		result, _, err := handleGetCallers(ctx, nil, CallersInput{Path: testDataPath, Symbol: "log_line", Depth: 3})
		require.NoError(t, err)

		text := resultText(t, result)
		assert.Contains(t, text, "├─ helper (src/util.rs:17)")
		assert.Contains(t, text, "  ├─ collect\n")
		assert.Contains(t, text, "  ├─ report\n")
		assert.Contains(t, text, "    ├─ main\n")
	})

	t.Run("trace_path", func(t *testing.T) {
		result, _, err := handleTracePath(ctx, nil, TracePathInput{Path: testDataPath, From: "main", To: "validate"})
		require.NoError(t, err)

		text := resultText(t, result)
		assert.Contains(t, text, "main()\n  collect()\n    helper()\n      validate()\n")
		assert.Contains(t, text, "Length: 3 calls")
	})

	t.Run("trace_path none", func(t *testing.T) {
		result, _, err := handleTracePath(ctx, nil, TracePathInput{Path: testDataPath, From: "validate", To: "main"})
		require.NoError(t, err)
		assert.Equal(t, "No call path found from 'validate' to 'main'", resultText(t, result))
	})

	t.Run("get_summary", func(t *testing.T) {
		result, _, err := handleGetSummary(ctx, nil, PathInput{Path: testDataPath})
		require.NoError(t, err)

		text := resultText(t, result)
		assert.Contains(t, text, "=== Call Graph: rust ===")
		assert.Contains(t, text, "Functions: 10")
	})

	t.Run("status", func(t *testing.T) {
		result, _, err := handleStatus(ctx, nil, EmptyInput{})
		require.NoError(t, err)
		assert.Contains(t, resultText(t, result), "Languages: ")
	})

	t.Run("missing path", func(t *testing.T) {
		result, _, err := handleCallChain(ctx, nil, CallChainInput{Path: filepath.Join(t.TempDir(), "gone")})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestClampDepth(t *testing.T) {
	assert.Equal(t, 1, clampDepth(0))
	assert.Equal(t, 3, clampDepth(3))
	assert.Equal(t, 5, clampDepth(9))
}
