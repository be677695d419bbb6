package graph

import (
	"maps"
	"slices"
	"testing"

	"callchain/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fromAdjacency builds a graph the way the builder would for one file,
// adding callers in sorted order.
func fromAdjacency(adj map[string][]string) *CallGraph {
	g := NewCallGraph("")
	for _, caller := range slices.Sorted(maps.Keys(adj)) {
		g.AddFunction(caller, "")
		for _, callee := range adj[caller] {
			g.AddCall(Edge{Caller: caller, Callee: callee})
		}
	}
	return g
}

func TestCallGraph_CalleesOf(t *testing.T) {
	g := fromAdjacency(map[string][]string{
		"main": {"f", "g", "f"},
		"idle": nil,
	})

	assert.Equal(t, []string{"f", "g", "f"}, g.CalleesOf("main"))
	assert.Empty(t, g.CalleesOf("idle"))
	assert.True(t, g.Has("idle"))
	assert.Nil(t, g.CalleesOf("absent"))
	assert.False(t, g.Has("absent"))
	assert.False(t, g.Has("f"), "callees are not definitions")
	assert.Equal(t, []string{"idle", "main"}, g.Names())
}

func TestBuilder_MergesCollidingNames(t *testing.T) {
	b := NewBuilder("/src")
	b.AddFile(&scanner.FileFacts{
		Path: "src/config.rs",
		Functions: []scanner.FuncFacts{
			{Name: "helper", Body: "fn helper() { validate(); }", Calls: []scanner.CallSite{{Callee: "validate", Line: 2}}},
		},
	})
	b.AddFile(&scanner.FileFacts{
		Path: "src/util.rs",
		Functions: []scanner.FuncFacts{
			{Name: "helper", Body: "fn helper() { log_line(); validate(); }", Calls: []scanner.CallSite{
				{Callee: "log_line", Line: 7},
				{Callee: "validate", Line: 7},
			}},
		},
	})
	b.Skip("src/broken.rs", scanner.ErrSyntax)
	g := b.Build()

	assert.Equal(t, []string{"validate", "log_line", "validate"}, g.CalleesOf("helper"))

	body, ok := g.Body("helper")
	require.True(t, ok)
	assert.Equal(t, "fn helper() { log_line(); validate(); }", body, "last body wins")

	assert.Equal(t, Stats{Files: 2, Skipped: 1, Functions: 1, Calls: 3, Undefined: 2}, g.GetStats())

	edges := g.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, Edge{Caller: "helper", Callee: "validate", Path: "src/config.rs", Line: 2}, edges[0])
	assert.Equal(t, "src/util.rs", edges[2].Path)
}

func TestBuilder_NilFacts(t *testing.T) {
	b := NewBuilder("")
	b.AddFile(nil)
	assert.Equal(t, 0, b.Build().Files)
}

func TestCallGraph_Callers(t *testing.T) {
	g := NewCallGraph("")
	g.AddCall(Edge{Caller: "a", Callee: "x"})
	g.AddCall(Edge{Caller: "b", Callee: "x"})
	g.AddCall(Edge{Caller: "a", Callee: "x"})
	g.AddCall(Edge{Caller: "c", Callee: "y"})

	assert.Equal(t, []string{"a", "b"}, g.Callers("x"))
	assert.Nil(t, g.Callers("a"))
}
