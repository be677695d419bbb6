package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// builtinGrammars are compiled into the binary and need no grammar directory.
var builtinGrammars = map[string]func() unsafe.Pointer{
	"rust": tree_sitter_rust.Language,
}

// GrammarLoader resolves tree-sitter languages, either built in or loaded
// from libtree-sitter-<lang> shared libraries in a grammar directory.
type GrammarLoader struct {
	mu         sync.Mutex
	languages  map[string]*tree_sitter.Language
	grammarDir string
}

// NewGrammarLoader creates a loader. An explicit dir takes precedence over
// CALLCHAIN_GRAMMAR_DIR and the usual install locations.
func NewGrammarLoader(dir string) *GrammarLoader {
	loader := &GrammarLoader{
		languages: make(map[string]*tree_sitter.Language),
	}

	possibleDirs := []string{}
	if dir != "" {
		possibleDirs = append(possibleDirs, dir)
	}
	if envDir := os.Getenv("CALLCHAIN_GRAMMAR_DIR"); envDir != "" {
		possibleDirs = append(possibleDirs, envDir)
	}
	possibleDirs = append(possibleDirs,
		filepath.Join(getExecutableDir(), "grammars"),
		filepath.Join(getExecutableDir(), "..", "lib", "grammars"),
		"/usr/local/lib/callchain/grammars",
		filepath.Join(os.Getenv("HOME"), ".callchain", "grammars"),
	)

	for _, d := range possibleDirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			loader.grammarDir = d
			break
		}
	}

	return loader
}

// GrammarDir returns the grammar directory in use, or "" if none was found.
func (l *GrammarLoader) GrammarDir() string {
	return l.grammarDir
}

// Available reports whether lang can be parsed, without loading it.
func (l *GrammarLoader) Available(lang string) bool {
	if _, ok := dialects[lang]; !ok {
		return false
	}
	if _, ok := builtinGrammars[lang]; ok {
		return true
	}
	if l.grammarDir == "" {
		return false
	}
	_, err := os.Stat(l.libraryPath(lang))
	return err == nil
}

// Language returns the tree-sitter language for lang, loading it on first use.
func (l *GrammarLoader) Language(lang string) (*tree_sitter.Language, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if language, ok := l.languages[lang]; ok {
		return language, nil
	}
	if _, ok := dialects[lang]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	if fn, ok := builtinGrammars[lang]; ok {
		language := tree_sitter.NewLanguage(fn())
		l.languages[lang] = language
		return language, nil
	}

	if l.grammarDir == "" {
		return nil, fmt.Errorf("%w: %s (no grammar directory found)", ErrUnsupportedLanguage, lang)
	}

	libPath := l.libraryPath(lang)
	lib, err := loadLibrary(libPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", libPath, err)
	}

	langFunc, err := getLanguageFunc(lib, lang)
	if err != nil {
		return nil, fmt.Errorf("get func for %s: %w", lang, err)
	}

	language := tree_sitter.NewLanguage(langFunc())
	l.languages[lang] = language
	return language, nil
}

// Extractor returns a fact extractor for lang. Extractors are safe for
// concurrent use.
func (l *GrammarLoader) Extractor(lang string) (*Extractor, error) {
	language, err := l.Language(lang)
	if err != nil {
		return nil, err
	}
	return &Extractor{language: language, dialect: dialects[lang]}, nil
}

func (l *GrammarLoader) libraryPath(lang string) string {
	var libExt string
	switch runtime.GOOS {
	case "darwin":
		libExt = ".dylib"
	case "windows":
		libExt = ".dll"
	default:
		libExt = ".so"
	}
	return filepath.Join(l.grammarDir, fmt.Sprintf("libtree-sitter-%s%s", lang, libExt))
}

func getExecutableDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}
