// Package query decides whether a single line of text matches a search query.
//
// A Query is built once from user input and is immutable afterwards. Literal
// queries use substring containment; regex queries are compiled at
// construction, so an invalid pattern is rejected before any file is read.
//
// Case-insensitive literal matching lowercases both the line and the pattern
// with strings.ToLower. This is a simple fold, not full Unicode case folding:
// "ß" does not match "SS", for example.
package query

import (
	"fmt"
	"regexp"
	"strings"

	mgerrors "github.com/XiaoConstantine/minigrep/pkg/errors"
)

// Mode selects how the pattern is interpreted.
type Mode int

const (
	Literal Mode = iota
	Regex
)

// String returns the mode name used in debug output.
func (m Mode) String() string {
	switch m {
	case Literal:
		return "literal"
	case Regex:
		return "regex"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Query is an immutable search query.
type Query struct {
	pattern       string
	mode          Mode
	caseSensitive bool

	folded string         // lowercased pattern, literal case-insensitive only
	re     *regexp.Regexp // regex mode only
}

// New builds a Query. It fails with an error matching
// errors.ErrInvalidPattern when mode is Regex and the pattern does not
// compile; no partial Query is returned in that case.
func New(pattern string, mode Mode, caseSensitive bool) (*Query, error) {
	q := &Query{
		pattern:       pattern,
		mode:          mode,
		caseSensitive: caseSensitive,
	}

	switch mode {
	case Literal:
		if !caseSensitive {
			q.folded = strings.ToLower(pattern)
		}
	case Regex:
		expr := pattern
		if !caseSensitive {
			expr = "(?i)" + pattern
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, mgerrors.NewPatternError(pattern, err)
		}
		q.re = re
	default:
		return nil, mgerrors.NewPatternError(pattern, fmt.Errorf("unknown mode %v", mode))
	}

	return q, nil
}

// MustNew is like New but panics on error. Intended for tests and constants.
func MustNew(pattern string, mode Mode, caseSensitive bool) *Query {
	q, err := New(pattern, mode, caseSensitive)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) Pattern() string     { return q.pattern }
func (q *Query) Mode() Mode          { return q.mode }
func (q *Query) CaseSensitive() bool { return q.caseSensitive }

// Matches reports whether line matches the query. An empty pattern matches
// every line in both modes.
func (q *Query) Matches(line string) bool {
	if q.mode == Regex {
		return q.re.MatchString(line)
	}
	if q.caseSensitive {
		return strings.Contains(line, q.pattern)
	}
	return strings.Contains(strings.ToLower(line), q.folded)
}

// Locate returns the byte ranges [start, end) of every non-overlapping,
// non-empty match in line, for highlighting. It returns nil when the line
// does not match, when the pattern is empty, or when lowercasing changes the
// line's byte length so offsets could not be mapped back.
func (q *Query) Locate(line string) [][2]int {
	if q.mode == Regex {
		var spans [][2]int
		for _, loc := range q.re.FindAllStringIndex(line, -1) {
			if loc[1] > loc[0] {
				spans = append(spans, [2]int{loc[0], loc[1]})
			}
		}
		return spans
	}

	needle, haystack := q.pattern, line
	if !q.caseSensitive {
		needle = q.folded
		haystack = strings.ToLower(line)
		if len(haystack) != len(line) {
			return nil
		}
	}
	if needle == "" {
		return nil
	}

	var spans [][2]int
	for offset := 0; offset < len(haystack); {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			break
		}
		start := offset + i
		spans = append(spans, [2]int{start, start + len(needle)})
		offset = start + len(needle)
	}
	return spans
}
