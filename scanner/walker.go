package scanner

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoredDirs are skipped when WalkOptions.SkipIgnored is set.
var IgnoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	".cargo":       true,
	"target":       true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"grammars":     true,
}

// WalkOptions configures the file walking behavior.
type WalkOptions struct {
	// Extensions restricts the walk to files with these extensions
	// (with the dot, matched case-sensitively). Empty means every file.
	Extensions []string

	// SkipIgnored skips IgnoredDirs and paths matched by Gitignore.
	SkipIgnored bool

	// Gitignore patterns to apply when SkipIgnored is set (can be nil)
	Gitignore *ignore.GitIgnore
}

// WalkFunc is called for each selected file with its absolute and
// slash-separated relative path.
type WalkFunc func(absPath, relPath string, info os.FileInfo) error

// WalkFiles walks the directory tree and calls fn for each selected file.
// Entries that cannot be read are skipped, and a root that does not exist
// walks nothing.
func WalkFiles(root string, opts WalkOptions, fn WalkFunc) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if opts.SkipIgnored && path != root {
			if info.IsDir() && IgnoredDirs[info.Name()] {
				return filepath.SkipDir
			}
			if opts.Gitignore != nil && opts.Gitignore.MatchesPath(relPath) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		// Symlinked files are read through their target. Directory links are
		// not followed, and a dangling link is left for the reader to fail on.
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err == nil && !target.Mode().IsRegular() {
				return nil
			}
			if err == nil {
				info = target
			}
		} else if !info.Mode().IsRegular() {
			return nil
		}

		if len(opts.Extensions) > 0 && !slices.Contains(opts.Extensions, filepath.Ext(path)) {
			return nil
		}

		return fn(path, relPath, info)
	})
}

// LoadGitignore loads .gitignore from root if it exists
func LoadGitignore(root string) *ignore.GitIgnore {
	gitignorePath := filepath.Join(root, ".gitignore")

	if _, err := os.Stat(gitignorePath); err == nil {
		if gitignore, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
			return gitignore
		}
	}

	return nil
}

// SourceFiles returns the selected files under root sorted by relative path,
// which fixes the order in which per-file facts are merged.
func SourceFiles(root string, opts WalkOptions) ([]SourceFile, error) {
	var files []SourceFile
	err := WalkFiles(root, opts, func(absPath, relPath string, _ os.FileInfo) error {
		files = append(files, SourceFile{AbsPath: absPath, RelPath: relPath})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(files, func(a, b SourceFile) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
	return files, nil
}
