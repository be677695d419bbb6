// Package render turns a call graph walk into text. Both renderings share
// graph.Walk, so they list calls in the same order and stop on cycles the
// same way.
package render

import (
	"errors"
	"fmt"
	"strings"

	"callchain/graph"
)

// Format selects a rendering.
type Format string

const (
	FormatText    Format = "text"
	FormatMermaid Format = "mermaid"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("unknown format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatMermaid}
}

// ParseFormat maps a user-supplied name to a Format. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatMermaid:
		return FormatMermaid, nil
	default:
		return "", fmt.Errorf("%w: %q (want text or mermaid)", ErrUnknownFormat, name)
	}
}

// Options tunes a rendering.
type Options struct {
	// MaxDepth stops expansion below this depth. 0 means unlimited.
	MaxDepth int
}

// Render renders the chain from entry in the given format.
func Render(g *graph.CallGraph, entry string, format Format, opts Options) (string, error) {
	switch format {
	case "", FormatText:
		return TextDepth(g, entry, opts.MaxDepth), nil
	case FormatMermaid:
		return MermaidDepth(g, entry, opts.MaxDepth), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
