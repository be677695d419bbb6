//go:build windows

package scanner

import (
	"fmt"
	"syscall"
	"unsafe"
)

func loadLibrary(path string) (uintptr, error) {
	handle, err := syscall.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

// getLanguageFunc wraps the tree_sitter_<lang> export of a grammar DLL.
func getLanguageFunc(lib uintptr, lang string) (func() unsafe.Pointer, error) {
	sym := fmt.Sprintf("tree_sitter_%s", lang)
	proc, err := syscall.GetProcAddress(syscall.Handle(lib), sym)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sym, err)
	}
	return func() unsafe.Pointer {
		ret, _, _ := syscall.SyscallN(proc)
		return unsafe.Pointer(ret)
	}, nil
}
