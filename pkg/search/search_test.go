package search

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	mgerrors "github.com/XiaoConstantine/minigrep/pkg/errors"
	"github.com/XiaoConstantine/minigrep/pkg/query"
	"github.com/XiaoConstantine/minigrep/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     []string
	}{
		{"empty", "", nil},
		{"single line", "one", []string{"one"}},
		{"trailing newline", "one\ntwo\n", []string{"one", "two"}},
		{"crlf", "one\r\ntwo\r\n", []string{"one", "two"}},
		{"blank lines kept", "a\n\nb", []string{"a", "", "b"}},
		{"only newline", "\n", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.contents))
		})
	}
}

func TestSearchDocument(t *testing.T) {
	s := New(query.MustNew("three", query.Literal, true), 0)
	set := s.SearchDocument(NewDocument("poem.txt", poem))

	assert.Equal(t, "poem.txt", set.Path)
	assert.Equal(t, []LineRecord{{LineNumber: 3, Text: "Pick three.", IsMatch: true}}, set.Records)
	assert.True(t, set.HasMatch())
	assert.Equal(t, 1, set.MatchCount())
}

func TestSearchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poem.txt")
	require.NoError(t, os.WriteFile(path, []byte(poem), 0644))

	s := New(query.MustNew("duct", query.Literal, false), 1)
	set, err := s.SearchFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, lineNumbers(set.Records))
	assert.Equal(t, []int{2, 4}, matchNumbers(set.Records))

	_, err = s.SearchFile(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, mgerrors.ErrNotFound)
}

func TestSearchFilesIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0644))
		return p
	}

	a := write("a.txt", []byte("needle here\nhay"))
	b := write("b.txt", []byte("only hay"))
	bad := write("bad.txt", []byte{'n', 0xff})
	gone := filepath.Join(dir, "gone.txt")
	c := write("c.txt", []byte("hay\nneedle again"))

	s := New(query.MustNew("needle", query.Literal, true), 0)
	results, failures := s.SearchFiles([]string{a, b, bad, gone, c})

	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].Path)
	assert.Equal(t, c, results[1].Path)
	assert.Equal(t, []int{2}, lineNumbers(results[1].Records))

	require.Len(t, failures, 2)
	assert.Equal(t, bad, failures[0].Path)
	assert.ErrorIs(t, failures[0], mgerrors.ErrInvalidUTF8)
	assert.Equal(t, gone, failures[1].Path)
	assert.ErrorIs(t, failures[1], mgerrors.ErrNotFound)
}

func TestSearchFilesNoMatches(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("nothing"), 0644))

	results, failures := New(query.MustNew("zzz", query.Literal, true), 2).SearchFiles([]string{p})
	assert.Empty(t, results)
	assert.Empty(t, failures)
}

func TestSearchFilesLogsPerFileTiming(t *testing.T) {
	prevLevel, prevWriter := util.GetDebugLevel(), util.GetDebugWriter()
	var buf bytes.Buffer
	util.SetDebugWriter(&buf)
	util.SetDebugLevel(util.DebugDetailed)
	t.Cleanup(func() {
		util.SetDebugWriter(prevWriter)
		util.SetDebugLevel(prevLevel)
	})

	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("needle"), 0644))
	gone := filepath.Join(dir, "gone.txt")

	New(query.MustNew("needle", query.Literal, true), 0).SearchFiles([]string{p, gone})

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] search "+p+": ")
	assert.Contains(t, out, "search "+gone+" failed")
}
