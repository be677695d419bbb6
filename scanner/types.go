package scanner

import "errors"

var (
	// ErrSyntax is returned when a file's text does not parse cleanly.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupportedLanguage is returned for languages with no dialect or grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// SourceFile is a file selected for analysis.
type SourceFile struct {
	AbsPath string
	RelPath string // slash-separated, relative to the scan root
}

// CallSite is a single call whose target is a plain name.
type CallSite struct {
	Callee string `json:"callee"`
	Line   int    `json:"line"` // 1-indexed
}

// FuncFacts describes one function definition and the calls in its body.
type FuncFacts struct {
	Name    string     `json:"name"`
	Line    int        `json:"line"`
	EndLine int        `json:"end_line"`
	Body    string     `json:"-"` // source text of the whole definition
	Calls   []CallSite `json:"calls"`
}

// CalleeNames returns the callee names in source order.
func (f FuncFacts) CalleeNames() []string {
	names := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		names = append(names, c.Callee)
	}
	return names
}

// FileFacts holds the definitions found in one file, in definition order.
// A name may occur more than once (e.g. the same helper in two inline modules).
type FileFacts struct {
	Path      string      `json:"path"`
	Language  string      `json:"language"`
	Functions []FuncFacts `json:"functions"`
}
