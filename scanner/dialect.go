package scanner

import (
	"maps"
	"slices"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Dialect describes, for one grammar, which syntax nodes define functions
// and which are calls to a plain name.
type Dialect struct {
	Name       string
	Extensions []string

	// FuncKinds are node kinds that define a named function.
	FuncKinds map[string]bool
	// NameField is the field holding the function's identifier.
	NameField string

	// MemberBodies maps a container kind (impl, trait, class) to the kind of
	// its body node. Functions directly inside such a body are methods and
	// are not treated as definitions.
	MemberBodies map[string]string
	// Wrappers are kinds that enclose a single definition without changing
	// where it lives, such as Python's decorated_definition.
	Wrappers map[string]bool

	// CallKinds are call expression node kinds.
	CallKinds map[string]bool
	// CalleeField is the field holding the called expression.
	CalleeField string

	// LeafFields resolves a callee expression to its leaf identifier. A kind
	// mapped to "" is itself the leaf; a kind mapped to a field name is
	// resolved by following that field. Kinds not listed are not plain names
	// (method calls, field access, computed callees) and are ignored.
	LeafFields map[string]string
}

var dialects = map[string]*Dialect{
	"rust": {
		Name:       "rust",
		Extensions: []string{".rs"},
		FuncKinds:  map[string]bool{"function_item": true},
		NameField:  "name",
		MemberBodies: map[string]string{
			"impl_item":  "declaration_list",
			"trait_item": "declaration_list",
		},
		CallKinds:   map[string]bool{"call_expression": true},
		CalleeField: "function",
		LeafFields: map[string]string{
			"identifier":        "",
			"scoped_identifier": "name",
			"generic_function":  "function",
		},
	},
	"go": {
		Name:        "go",
		Extensions:  []string{".go"},
		FuncKinds:   map[string]bool{"function_declaration": true},
		NameField:   "name",
		CallKinds:   map[string]bool{"call_expression": true},
		CalleeField: "function",
		LeafFields:  map[string]string{"identifier": ""},
	},
	"python": {
		Name:         "python",
		Extensions:   []string{".py"},
		FuncKinds:    map[string]bool{"function_definition": true},
		NameField:    "name",
		MemberBodies: map[string]string{"class_definition": "block"},
		Wrappers:     map[string]bool{"decorated_definition": true},
		CallKinds:    map[string]bool{"call": true},
		CalleeField:  "function",
		LeafFields:   map[string]string{"identifier": ""},
	},
	"javascript": {
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".mjs"},
		FuncKinds: map[string]bool{
			"function_declaration":           true,
			"generator_function_declaration": true,
		},
		NameField:   "name",
		CallKinds:   map[string]bool{"call_expression": true},
		CalleeField: "function",
		LeafFields:  map[string]string{"identifier": ""},
	},
}

// LookupDialect returns the dialect registered for lang.
func LookupDialect(lang string) (*Dialect, bool) {
	d, ok := dialects[lang]
	return d, ok
}

// Languages returns the names of all known dialects.
func Languages() []string {
	return slices.Sorted(maps.Keys(dialects))
}

// isMember reports whether a function node sits directly in the body of a
// member container such as an impl block, looking through any wrappers.
func (d *Dialect) isMember(n *tree_sitter.Node) bool {
	if len(d.MemberBodies) == 0 {
		return false
	}
	body := n.Parent()
	for body != nil && d.Wrappers[body.Kind()] {
		body = body.Parent()
	}
	if body == nil {
		return false
	}
	container := body.Parent()
	if container == nil {
		return false
	}
	want, ok := d.MemberBodies[container.Kind()]
	return ok && want == body.Kind()
}

// leafName returns the identifier a callee expression names, or "" when the
// expression is not a plain path.
func (d *Dialect) leafName(n *tree_sitter.Node, src []byte) string {
	for n != nil {
		field, ok := d.LeafFields[n.Kind()]
		if !ok {
			return ""
		}
		if field == "" {
			return n.Utf8Text(src)
		}
		n = n.ChildByFieldName(field)
	}
	return ""
}
