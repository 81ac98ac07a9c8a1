package walk

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFileName is read from the walk root when present.
const IgnoreFileName = ".minigrepignore"

// DefaultIgnoredDirs are version-control and build/dependency directory
// names that are never descended into.
var DefaultIgnoredDirs = []string{
	".git", ".hg", ".svn", ".bzr", "_darcs", "CVS",
	"target", "build", "dist",
	"node_modules", "vendor", "__pycache__", ".venv",
}

// IgnoreRules decides which entries the walker skips.
type IgnoreRules struct {
	dirs     map[string]bool
	patterns []string
	rootPath string
}

// NewIgnoreRules builds rules for a walk rooted at rootPath with the default
// directory names plus the given doublestar globs.
func NewIgnoreRules(rootPath string, patterns []string) (*IgnoreRules, error) {
	ir := &IgnoreRules{
		dirs:     make(map[string]bool, len(DefaultIgnoredDirs)),
		rootPath: rootPath,
	}
	for _, name := range DefaultIgnoredDirs {
		ir.dirs[name] = true
	}
	for _, p := range patterns {
		if err := ir.addPattern(p); err != nil {
			return nil, err
		}
	}
	return ir, nil
}

// LoadIgnoreFile appends patterns from path, one per line. Blank lines and
// lines starting with '#' are skipped. A missing file is not an error.
func (ir *IgnoreRules) LoadIgnoreFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open ignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ir.addPattern(line); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return scanner.Err()
}

func (ir *IgnoreRules) addPattern(p string) error {
	p = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(p)), "/")
	if p == "" {
		return nil
	}
	if !doublestar.ValidatePattern(p) {
		return fmt.Errorf("invalid exclude pattern %q", p)
	}
	ir.patterns = append(ir.patterns, p)
	return nil
}

// Patterns returns the configured globs.
func (ir *IgnoreRules) Patterns() []string {
	out := make([]string, len(ir.patterns))
	copy(out, ir.patterns)
	return out
}

// ShouldIgnoreDir reports whether the directory at path is skipped. The root
// itself is never ignored.
func (ir *IgnoreRules) ShouldIgnoreDir(path string) bool {
	if ir.isRoot(path) {
		return false
	}
	if ir.dirs[filepath.Base(path)] {
		return true
	}
	return ir.matchesPattern(path)
}

// ShouldIgnoreFile reports whether the file at path matches an exclude glob.
func (ir *IgnoreRules) ShouldIgnoreFile(path string) bool {
	if ir.isRoot(path) {
		return false
	}
	return ir.matchesPattern(path)
}

func (ir *IgnoreRules) isRoot(path string) bool {
	return filepath.Clean(path) == filepath.Clean(ir.rootPath)
}

// matchesPattern checks the base name and the slash path relative to the root.
func (ir *IgnoreRules) matchesPattern(path string) bool {
	if len(ir.patterns) == 0 {
		return false
	}
	base := filepath.Base(path)
	rel, err := filepath.Rel(ir.rootPath, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, p := range ir.patterns {
		if m, _ := doublestar.Match(p, base); m {
			return true
		}
		if m, _ := doublestar.Match(p, rel); m {
			return true
		}
	}
	return false
}
