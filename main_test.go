package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"callchain/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corpusPath returns the absolute path of the shared Rust corpus and moves
// the test into an empty working directory with no user config.
func corpusPath(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("analyzer", "testdata", "corpus", "rust"))
	require.NoError(t, err)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"CALLCHAIN_ENTRY", "CALLCHAIN_FORMAT", "CALLCHAIN_LANGUAGE", "CALLCHAIN_JOBS", "CALLCHAIN_DEBUG"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
	return abs
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decode(t *testing.T, data string) report.Result {
	t.Helper()
	var r report.Result
	require.NoError(t, json.Unmarshal([]byte(data), &r))
	return r
}

func TestRoot_JSONToStdout(t *testing.T) {
	corpus := corpusPath(t)

	stdout, _, err := execute(t, "-p", corpus)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "{\n  \"status\": \"ok\",\n  \"call_chain\": "))
	assert.True(t, strings.HasSuffix(stdout, "}\n"))

	r := decode(t, stdout)
	assert.Equal(t, 90, r.Confidence)
	assert.True(t, strings.HasPrefix(r.CallChain, "main()\n→ load_config()\n  load_config()"))
	assert.Empty(t, r.Functions)
}

func TestRoot_PositionalPathAndMermaid(t *testing.T) {
	corpus := corpusPath(t)

	stdout, _, err := execute(t, corpus, "--format", "mermaid", "--entry", "helper")
	require.NoError(t, err)

	r := decode(t, stdout)
	assert.Equal(t, "graph TD\nhelper[helper] --> validate[validate]\nhelper[helper] --> log_line[log_line]", r.CallChain)
	assert.NotContains(t, stdout, `\u003e`, "arrows are not HTML-escaped")
}

func TestRoot_TestHashAlias(t *testing.T) {
	corpus := corpusPath(t)

	stdout, _, err := execute(t, "-p", corpus, "-t", "report")
	require.NoError(t, err)
	assert.Equal(t, "report()\n→ helper()\n  helper()\n  → validate()\n    validate()\n  → log_line()\n    log_line()", decode(t, stdout).CallChain)
}

func TestRoot_OutputFile(t *testing.T) {
	corpus := corpusPath(t)
	dest := filepath.Join(t.TempDir(), "chain.json")

	stdout, _, err := execute(t, "-p", corpus, "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.False(t, bytes.HasSuffix(data, []byte("\n")))
	assert.Equal(t, "ok", decode(t, string(data)).Status)
}

func TestRoot_TextReportWithBodies(t *testing.T) {
	corpus := corpusPath(t)

	stdout, _, err := execute(t, "-p", corpus, "-e", "helper", "--report", "text", "--with-bodies")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "helper\tok\tConfidence: 90\nhelper()\n"))
	assert.Contains(t, stdout, "\n# helper\npub fn helper() {\n    log_line(\"helper\");\n}\n")
	assert.Contains(t, stdout, "\n# validate\nfn validate() {}\n")
	assert.True(t, strings.HasSuffix(stdout, "---\n"))
}

func TestRoot_MissingProjectIsDegenerate(t *testing.T) {
	corpusPath(t)

	stdout, stderr, err := execute(t, "-p", filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, "main()", decode(t, stdout).CallChain)
	assert.Contains(t, stderr, "project path is not a readable directory")
}

func TestRoot_Errors(t *testing.T) {
	corpus := corpusPath(t)

	_, _, err := execute(t, "-p", corpus, "-f", "dot")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = execute(t, "-p", corpus, "-l", "cobol")
	assert.ErrorContains(t, err, "unknown language")

	_, _, err = execute(t, "-p", corpus, "--report", "xml")
	assert.ErrorContains(t, err, "unknown report kind")

	_, _, err = execute(t, "-p", corpus, "-o", filepath.Join(t.TempDir(), "no", "such", "dir.json"))
	assert.ErrorContains(t, err, "writing output")
}

func TestRoot_FlagsOverrideBadEnvironment(t *testing.T) {
	corpus := corpusPath(t)
	t.Setenv("CALLCHAIN_FORMAT", "dot")

	_, _, err := execute(t, "-p", corpus)
	assert.ErrorContains(t, err, "unknown format: dot")

	stdout, _, err := execute(t, "-p", corpus, "-f", "text", "-e", "helper")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(decode(t, stdout).CallChain, "helper()\n"))
}

func TestRoot_OddEntryIsDegenerate(t *testing.T) {
	corpus := corpusPath(t)

	stdout, _, err := execute(t, "-p", corpus, "-e", "two words")
	require.NoError(t, err)
	assert.Equal(t, "two words()", decode(t, stdout).CallChain)

	stdout, _, err = execute(t, "-p", corpus, "-e", "two words", "-f", "mermaid")
	require.NoError(t, err)
	assert.Equal(t, "graph TD", decode(t, stdout).CallChain)
}

func TestRoot_ProjectConfig(t *testing.T) {
	corpus := corpusPath(t)
	require.NoError(t, os.MkdirAll(".callchain", 0755))
	require.NoError(t, os.WriteFile(filepath.Join(".callchain", "config.yaml"), []byte("entry: load_config\nformat: mermaid\n"), 0644))

	stdout, _, err := execute(t, "-p", corpus)
	require.NoError(t, err)
	assert.Equal(t, "graph TD\nload_config[load_config] --> read_input[read_input]\nread_input[read_input] --> args[args]\nload_config[load_config] --> parse[parse]",
		decode(t, stdout).CallChain)

	stdout, _, err = execute(t, "-p", corpus, "-f", "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(decode(t, stdout).CallChain, "load_config()\n"), "flags override config")
}

func TestVersionAndInitConfig(t *testing.T) {
	corpusPath(t)

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "callchain "+version+"\n", stdout)

	stdout, _, err = execute(t, "init-config")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(".callchain", "config.yaml"))
	_, err = os.Stat(filepath.Join(".callchain", "config.yaml"))
	require.NoError(t, err)

	_, _, err = execute(t, "init-config")
	assert.ErrorContains(t, err, "already exists")
}

func TestRoot_SummaryToStderr(t *testing.T) {
	corpus := corpusPath(t)

	stdout, stderr, err := execute(t, "-p", corpus, "--summary", "--debug")
	require.NoError(t, err)
	assert.Equal(t, "ok", decode(t, stdout).Status)
	assert.Contains(t, stderr, "=== Call Graph: rust ===")
	assert.Contains(t, stderr, `"msg":"collect.skip"`)
	assert.Contains(t, stderr, `"msg":"analyze.done"`)
}
