//go:build !windows

package scanner

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

func loadLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// getLanguageFunc binds tree_sitter_<lang> from the loaded library.
func getLanguageFunc(lib uintptr, lang string) (func() unsafe.Pointer, error) {
	sym := fmt.Sprintf("tree_sitter_%s", lang)
	if _, err := purego.Dlsym(lib, sym); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sym, err)
	}
	var langFunc func() unsafe.Pointer
	purego.RegisterLibFunc(&langFunc, lib, sym)
	return langFunc, nil
}
