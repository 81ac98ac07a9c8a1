// Package walk collects the text files under a root path.
//
// Directories are traversed with an explicit stack rather than recursion.
// Each directory is canonicalized before it is scanned and recorded in a
// visited set, so no real directory is scanned twice even when bind mounts
// make it reachable along two paths. Symlinks are never followed, whether
// they point at files or directories.
package walk

import (
	"os"
	"path/filepath"
	"sort"

	mgerrors "github.com/XiaoConstantine/minigrep/pkg/errors"
	"github.com/XiaoConstantine/minigrep/pkg/textfile"
	"github.com/XiaoConstantine/minigrep/pkg/util"
)

// Walker enumerates files and directories under a root.
type Walker struct {
	rules  *IgnoreRules
	isText func(path string) bool
}

// New creates a walker. A nil rules value means the default ignore list only.
func New(rules *IgnoreRules) *Walker {
	if rules == nil {
		rules, _ = NewIgnoreRules("", nil)
	}
	return &Walker{rules: rules, isText: textfile.IsText}
}

// RulesFor builds ignore rules for root from the default directory list, the
// given globs and the root's .minigrepignore file.
func RulesFor(root string, patterns []string) (*IgnoreRules, error) {
	rules, err := NewIgnoreRules(root, patterns)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(root); err == nil && info.IsDir() {
		if err := rules.LoadIgnoreFile(filepath.Join(root, IgnoreFileName)); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// CollectTextFiles walks root with the default rules. See Walker.Collect.
func CollectTextFiles(root string) ([]string, error) {
	rules, err := RulesFor(root, nil)
	if err != nil {
		return nil, err
	}
	return New(rules).Collect(root)
}

// Collect returns the sorted text files under root.
//
// When root is a regular file it is returned as the only element without
// consulting the text classifier: a file the user names explicitly is always
// searched. A missing root fails with ErrNotFound; a root that is neither a
// file nor a directory fails with ErrNotADirectory. Any error while reading
// a directory or canonicalizing its path aborts the walk with ErrIO, since
// the result would otherwise be silently incomplete.
func (w *Walker) Collect(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, mgerrors.NewFileError("walk", root, err)
	}
	if info.Mode().IsRegular() {
		return []string{root}, nil
	}
	if !info.IsDir() {
		return nil, mgerrors.NewTypedFileError(mgerrors.ErrorTypeNotADirectory, "walk", root, nil)
	}

	var files []string
	err = w.walk(root, nil, func(path string) {
		if w.isText(path) {
			files = append(files, path)
		} else {
			util.Debugf(util.DebugDetailed, "skip non-text %s", path)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Dirs returns every directory the walker would scan under root, root
// included, sorted. Used to register directories for watching.
func (w *Walker) Dirs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, mgerrors.NewFileError("walk", root, err)
	}
	if !info.IsDir() {
		return nil, mgerrors.NewTypedFileError(mgerrors.ErrorTypeNotADirectory, "walk", root, nil)
	}

	var dirs []string
	if err := w.walk(root, func(dir string) { dirs = append(dirs, dir) }, nil); err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// IgnoresDir reports whether a directory at path would be skipped.
func (w *Walker) IgnoresDir(path string) bool {
	return w.rules.ShouldIgnoreDir(path)
}

func (w *Walker) walk(root string, onDir func(dir string), onFile func(path string)) error {
	visited := make(map[string]bool)
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		canonical, err := canonicalize(dir)
		if err != nil {
			return mgerrors.NewTypedFileError(mgerrors.ErrorTypeIO, "canonicalize", dir, err)
		}
		if visited[canonical] {
			util.Debugf(util.DebugDetailed, "skip visited %s (%s)", dir, canonical)
			continue
		}
		visited[canonical] = true
		if onDir != nil {
			onDir(dir)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return mgerrors.NewTypedFileError(mgerrors.ErrorTypeIO, "read dir", dir, err)
		}

		// Push in reverse so directories are popped in name order.
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			path := filepath.Join(dir, entry.Name())
			mode := entry.Type()

			switch {
			case mode&os.ModeSymlink != 0:
				util.Debugf(util.DebugDetailed, "skip symlink %s", path)
			case entry.IsDir():
				if w.IgnoresDir(path) {
					util.Debugf(util.DebugDetailed, "skip ignored dir %s", path)
					continue
				}
				stack = append(stack, path)
			case mode.IsRegular():
				if onFile == nil {
					continue
				}
				if w.rules.ShouldIgnoreFile(path) {
					util.Debugf(util.DebugDetailed, "skip excluded %s", path)
					continue
				}
				onFile(path)
			}
		}
	}

	util.Debugf(util.DebugSummary, "walked %d directories under %s", len(visited), root)
	return nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
