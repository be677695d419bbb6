// Package report builds the result envelope written by the CLI and encodes
// it as JSON or as a plain-text record.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"callchain/analyzer"
)

// Confidence is the fixed confidence attached to every result. It is not
// computed from the analysis.
const Confidence = 90

// StatusOK is the status of a completed analysis.
const StatusOK = "ok"

// Kind selects how a Result is encoded.
type Kind string

const (
	KindJSON Kind = "json"
	KindText Kind = "text"
)

// FunctionBody is the source snapshot of one reached function.
type FunctionBody struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Result is the envelope for one analysis.
type Result struct {
	Status     string         `json:"status"`
	CallChain  string         `json:"call_chain"`
	Confidence int            `json:"confidence"`
	Entry      string         `json:"-"`
	Functions  []FunctionBody `json:"functions,omitempty"`
}

// New wraps an analysis result. With withBodies set, the source of every
// reached function that has a definition is attached in walk order.
func New(res *analyzer.Result, withBodies bool) *Result {
	r := &Result{
		Status:     StatusOK,
		CallChain:  res.CallChain,
		Confidence: Confidence,
		Entry:      res.Entry,
	}
	if withBodies {
		for _, name := range res.Reached() {
			if body, ok := res.Graph.Body(name); ok {
				r.Functions = append(r.Functions, FunctionBody{Name: name, Body: body})
			}
		}
	}
	return r
}

// Marshal encodes r with two-space indentation. HTML characters are
// left unescaped so diagram arrows survive as "-->".
func Marshal(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalText encodes r as a plain-text record:
//
//	<entry>\t<status>\tConfidence: <n>
//	<call_chain>
//	---
//
// Attached function bodies are listed between the chain and the separator.
func MarshalText(r *Result) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\t%s\tConfidence: %d", r.Entry, r.Status, r.Confidence)
	fmt.Fprintf(&sb, "\n%s\n", r.CallChain)
	for _, fn := range r.Functions {
		fmt.Fprintf(&sb, "\n# %s\n%s\n", fn.Name, strings.TrimRight(fn.Body, "\n"))
	}
	sb.WriteString("---\n")
	return []byte(sb.String())
}

// Encode encodes r in the given kind. Empty means JSON.
func Encode(r *Result, kind Kind) ([]byte, error) {
	switch kind {
	case "", KindJSON:
		return Marshal(r)
	case KindText:
		return MarshalText(r), nil
	default:
		return nil, fmt.Errorf("unknown report kind %q (want json or text)", kind)
	}
}

// Write writes data to the file at dest, or to stdout followed by a newline
// when dest is empty.
func Write(dest string, stdout io.Writer, data []byte) error {
	if dest == "" {
		if _, err := stdout.Write(data); err != nil {
			return err
		}
		if !bytes.HasSuffix(data, []byte("\n")) {
			_, err := io.WriteString(stdout, "\n")
			return err
		}
		return nil
	}

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
