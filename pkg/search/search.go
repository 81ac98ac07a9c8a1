// Package search runs a query over documents and assembles the lines to
// display, for a single file or for a list of files collected by a walk.
package search

import (
	"strings"

	"github.com/XiaoConstantine/minigrep/pkg/textfile"
	"github.com/XiaoConstantine/minigrep/pkg/util"
)

// Document is one file's contents split into lines. It lives for a single
// search call and is never cached across files.
type Document struct {
	Path  string
	Lines []string
}

// NewDocument splits contents into lines.
func NewDocument(path, contents string) *Document {
	return &Document{Path: path, Lines: SplitLines(contents)}
}

// SplitLines splits on "\n" and strips one trailing "\r" from each line. A
// trailing newline does not produce a final empty line, and empty contents
// have no lines.
func SplitLines(contents string) []string {
	if contents == "" {
		return nil
	}
	lines := strings.Split(contents, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// FileMatchSet is the ordered output for one file.
type FileMatchSet struct {
	Path    string       `json:"path"`
	Records []LineRecord `json:"records"`
}

// HasMatch reports whether any record is a match line.
func (s FileMatchSet) HasMatch() bool {
	for _, r := range s.Records {
		if r.IsMatch {
			return true
		}
	}
	return false
}

// MatchCount returns the number of match records.
func (s FileMatchSet) MatchCount() int {
	n := 0
	for _, r := range s.Records {
		if r.IsMatch {
			n++
		}
	}
	return n
}

// FileError pairs a path with the error that made it unsearchable.
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string { return e.Err.Error() }
func (e FileError) Unwrap() error { return e.Err }

// Searcher applies one matcher and context radius to documents and files.
type Searcher struct {
	matcher Matcher
	radius  int
	read    func(path string) (string, error)
}

// New creates a searcher that reads files with textfile.Read.
func New(m Matcher, radius int) *Searcher {
	if radius < 0 {
		radius = 0
	}
	return &Searcher{matcher: m, radius: radius, read: textfile.Read}
}

// SearchDocument assembles the records for an in-memory document.
func (s *Searcher) SearchDocument(doc *Document) FileMatchSet {
	return FileMatchSet{Path: doc.Path, Records: Assemble(doc.Lines, s.matcher, s.radius)}
}

// SearchFile reads path and searches it. Read failures are returned as is
// and classify with errors.Is as ErrNotFound, ErrIO or ErrInvalidUTF8.
func (s *Searcher) SearchFile(path string) (FileMatchSet, error) {
	contents, err := s.read(path)
	if err != nil {
		return FileMatchSet{Path: path}, err
	}
	return s.SearchDocument(NewDocument(path, contents)), nil
}

// SearchFiles searches every path independently. A file that cannot be read
// is recorded in the returned failures and skipped; it never aborts the
// remaining files. Only files with at least one record are returned, in the
// order of paths.
func (s *Searcher) SearchFiles(paths []string) ([]FileMatchSet, []FileError) {
	var results []FileMatchSet
	var failures []FileError

	for _, path := range paths {
		timer := util.NewTimer("search " + path)
		set, err := s.SearchFile(path)
		if err != nil {
			util.Debugf(util.DebugDetailed, "search %s failed: %v", path, err)
			failures = append(failures, FileError{Path: path, Err: err})
			continue
		}
		timer.StopAndLog(util.DebugDetailed)
		if len(set.Records) > 0 {
			results = append(results, set)
		}
	}

	return results, failures
}
