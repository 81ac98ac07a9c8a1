// Package minigrep provides line-oriented text search over a file or a
// directory tree.
//
// minigrep is designed for use both as a CLI tool and as an embedded library.
// For CLI usage, install with: go install github.com/XiaoConstantine/minigrep/cmd/minigrep@latest
//
// For library usage:
//
//	client, err := minigrep.New("./src", minigrep.Options{
//	    Pattern:   "TODO",
//	    Context:   2,
//	    Recursive: true,
//	})
//	if err != nil {
//	    log.Fatal(err) // invalid regex patterns fail here
//	}
//
//	report, err := client.Search()
//	if err != nil {
//	    log.Fatal(err) // missing root, unreadable directory
//	}
//	for _, f := range report.Failures {
//	    log.Printf("skipped %s: %v", f.Path, f.Err)
//	}
//	for _, file := range report.Files {
//	    for _, rec := range file.Records {
//	        fmt.Printf("%s:%d:%s\n", file.Path, rec.LineNumber, rec.Text)
//	    }
//	}
package minigrep

import (
	"context"
	"os"

	mgerrors "github.com/XiaoConstantine/minigrep/pkg/errors"
	"github.com/XiaoConstantine/minigrep/pkg/query"
	"github.com/XiaoConstantine/minigrep/pkg/search"
	"github.com/XiaoConstantine/minigrep/pkg/util"
	"github.com/XiaoConstantine/minigrep/pkg/walk"
	"github.com/XiaoConstantine/minigrep/pkg/watch"
)

// Result is the ordered output for one file.
type Result = search.FileMatchSet

// Options configures a search.
type Options struct {
	// Pattern is a literal substring, or a regular expression when Regex is set.
	Pattern    string
	Regex      bool
	IgnoreCase bool
	// Context is the number of lines shown before and after each match.
	Context int
	// Recursive walks Path as a directory tree instead of reading one file.
	Recursive bool
	// Exclude holds extra doublestar globs skipped during a recursive walk.
	Exclude []string
}

// Report is the outcome of one search.
type Report struct {
	Files         []Result
	Failures      []search.FileError
	FilesSearched int
}

// HasMatches reports whether any file produced a match line.
func (r *Report) HasMatches() bool {
	for _, f := range r.Files {
		if f.HasMatch() {
			return true
		}
	}
	return false
}

// MatchCount returns the number of match lines across all files.
func (r *Report) MatchCount() int {
	n := 0
	for _, f := range r.Files {
		n += f.MatchCount()
	}
	return n
}

// Client runs searches for one query against one path.
type Client struct {
	path     string
	opts     Options
	query    *query.Query
	searcher *search.Searcher
	stats    *util.TimingStats
}

// New creates a client. Query construction happens here, so an invalid
// regular expression fails with an error matching errors.ErrInvalidPattern.
func New(path string, opts Options) (*Client, error) {
	mode := query.Literal
	if opts.Regex {
		mode = query.Regex
	}
	q, err := query.New(opts.Pattern, mode, !opts.IgnoreCase)
	if err != nil {
		return nil, err
	}

	return &Client{
		path:     path,
		opts:     opts,
		query:    q,
		searcher: search.New(q, opts.Context),
		stats:    util.NewTimingStats(util.GetDebugLevel()),
	}, nil
}

// Query returns the compiled query, for highlighting.
func (c *Client) Query() *query.Query {
	return c.query
}

// Stats returns the per-stage timings collected so far.
func (c *Client) Stats() *util.TimingStats {
	return c.stats
}

// Search runs the query once.
//
// Without Options.Recursive the path must be a regular file and any read
// failure is returned. With it, the path is walked; walk failures are
// returned, while files that fail to read are listed in Report.Failures and
// skipped.
func (c *Client) Search() (*Report, error) {
	if !c.opts.Recursive {
		return c.searchSingle()
	}
	return c.searchTree()
}

func (c *Client) searchSingle() (*Report, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, mgerrors.NewFileError("search", c.path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, mgerrors.NewTypedFileError(mgerrors.ErrorTypeNotAFile, "search", c.path, nil)
	}

	timer := c.stats.Start("search").WithCount(1)
	set, err := c.searcher.SearchFile(c.path)
	timer.Stop()
	if err != nil {
		return nil, err
	}

	report := &Report{FilesSearched: 1}
	if len(set.Records) > 0 {
		report.Files = []Result{set}
	}
	return report, nil
}

func (c *Client) searchTree() (*Report, error) {
	rules, err := walk.RulesFor(c.path, c.opts.Exclude)
	if err != nil {
		return nil, err
	}

	walkTimer := c.stats.Start("walk")
	files, err := walk.New(rules).Collect(c.path)
	if err != nil {
		walkTimer.Stop()
		return nil, err
	}
	walkTimer.WithCount(int64(len(files))).Stop()
	util.Debugf(util.DebugSummary, "collected %d text files under %s", len(files), c.path)

	searchTimer := c.stats.Start("search").WithCount(int64(len(files)))
	results, failures := c.searcher.SearchFiles(files)
	searchTimer.Stop()

	return &Report{Files: results, Failures: failures, FilesSearched: len(files)}, nil
}

// Watch runs Search once, then again after every debounced batch of changes
// under the path, passing each outcome to fn. It blocks until ctx is
// cancelled.
func (c *Client) Watch(ctx context.Context, fn func(*Report, error)) error {
	var patterns []string
	if c.opts.Recursive {
		patterns = c.opts.Exclude
	}
	rules, err := walk.RulesFor(c.path, patterns)
	if err != nil {
		return err
	}
	w, err := watch.New(c.path, walk.New(rules))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	fn(c.Search())
	return w.Run(ctx, func(paths []string) {
		util.Debugf(util.DebugSummary, "%d paths changed, searching again", len(paths))
		fn(c.Search())
	})
}
