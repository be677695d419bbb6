package scanner

import (
	"fmt"
	"os"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Extractor turns source text into FileFacts for one dialect.
type Extractor struct {
	language *tree_sitter.Language
	dialect  *Dialect
}

// Dialect returns the dialect the extractor applies.
func (e *Extractor) Dialect() *Dialect {
	return e.dialect
}

// ExtractFile reads and analyzes a file.
func (e *Extractor) ExtractFile(path string) (*FileFacts, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Extract(path, content)
}

// Extract parses content and records every function definition together with
// the plain-name calls in its body. Content that does not parse cleanly
// yields ErrSyntax.
func (e *Extractor) Extract(path string, content []byte) (*FileFacts, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(e.language); err != nil {
		return nil, fmt.Errorf("set language %s: %w", e.dialect.Name, err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}

	v := &factVisitor{
		dialect: e.dialect,
		src:     content,
		facts:   &FileFacts{Path: path, Language: e.dialect.Name},
	}
	v.visit(root)
	return v.facts, nil
}

// factVisitor walks the tree depth-first in source order. open holds the
// indexes (into facts.Functions) of the definitions enclosing the current
// node; calls go to the innermost one.
type factVisitor struct {
	dialect *Dialect
	src     []byte
	facts   *FileFacts
	open    []int
}

func (v *factVisitor) visit(n *tree_sitter.Node) {
	kind := n.Kind()
	opened := false

	switch {
	case v.dialect.FuncKinds[kind] && !v.dialect.isMember(n):
		if name := n.ChildByFieldName(v.dialect.NameField); name != nil {
			v.facts.Functions = append(v.facts.Functions, FuncFacts{
				Name:    name.Utf8Text(v.src),
				Line:    int(n.StartPosition().Row) + 1,
				EndLine: int(n.EndPosition().Row) + 1,
				Body:    n.Utf8Text(v.src),
			})
			v.open = append(v.open, len(v.facts.Functions)-1)
			opened = true
		}

	case v.dialect.CallKinds[kind] && len(v.open) > 0:
		if callee := n.ChildByFieldName(v.dialect.CalleeField); callee != nil {
			if leaf := v.dialect.leafName(callee, v.src); leaf != "" {
				fn := &v.facts.Functions[v.open[len(v.open)-1]]
				fn.Calls = append(fn.Calls, CallSite{
					Callee: leaf,
					Line:   int(callee.StartPosition().Row) + 1,
				})
			}
		}
	}

	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil {
			v.visit(child)
		}
	}

	if opened {
		v.open = v.open[:len(v.open)-1]
	}
}
