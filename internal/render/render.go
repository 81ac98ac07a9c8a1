// Package render prints search results for a terminal or a pipe.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/XiaoConstantine/minigrep/internal/config"
	"github.com/XiaoConstantine/minigrep/pkg/search"
)

// Separator is printed between non-adjacent runs of lines.
const Separator = "--"

// Highlighter returns the byte spans of a line to emphasize.
// *query.Query implements it.
type Highlighter interface {
	Locate(line string) [][2]int
}

// ColorEnabled resolves a color mode for output written to f.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if color.NoColor || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type palette struct {
	header  *color.Color
	matchNo *color.Color
	ctxNo   *color.Color
	sep     *color.Color
	match   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header:  color.New(color.FgMagenta, color.Bold),
		matchNo: color.New(color.FgGreen),
		ctxNo:   color.New(color.Faint),
		sep:     color.New(color.FgCyan),
		match:   color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.header, p.matchNo, p.ctxNo, p.sep, p.match} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Renderer writes FileMatchSets as "N:text" match lines and "N~text"
// context lines.
type Renderer struct {
	out       io.Writer
	color     bool
	recursive bool
	hl        Highlighter
	pal       palette
	files     int
}

// New creates a renderer. In recursive mode each file gets a "File: path"
// header and files are separated by a blank line. hl may be nil.
func New(out io.Writer, colorOn, recursive bool, hl Highlighter) *Renderer {
	return &Renderer{
		out:       out,
		color:     colorOn,
		recursive: recursive,
		hl:        hl,
		pal:       newPalette(colorOn),
	}
}

// Render writes every file that has records. Files without records print
// nothing.
func (r *Renderer) Render(sets []search.FileMatchSet) error {
	for _, set := range sets {
		if err := r.RenderFile(set); err != nil {
			return err
		}
	}
	return nil
}

// RenderFile writes one file's records.
func (r *Renderer) RenderFile(set search.FileMatchSet) error {
	if len(set.Records) == 0 {
		return nil
	}

	var b strings.Builder
	if r.recursive {
		if r.files > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.pal.header.Sprint("File: " + set.Path))
		b.WriteByte('\n')
	}
	r.files++

	for i, group := range search.Groups(set.Records) {
		if i > 0 {
			b.WriteString(r.pal.sep.Sprint(Separator))
			b.WriteByte('\n')
		}
		for _, rec := range group {
			r.writeRecord(&b, rec)
		}
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) writeRecord(b *strings.Builder, rec search.LineRecord) {
	if !rec.IsMatch {
		b.WriteString(r.pal.ctxNo.Sprintf("%d~", rec.LineNumber))
		b.WriteString(rec.Text)
		b.WriteByte('\n')
		return
	}

	b.WriteString(r.pal.matchNo.Sprintf("%d:", rec.LineNumber))
	b.WriteString(r.highlight(rec.Text))
	b.WriteByte('\n')
}

func (r *Renderer) highlight(text string) string {
	if !r.color || r.hl == nil {
		return text
	}
	spans := r.hl.Locate(text)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	prev := 0
	for _, s := range spans {
		if s[0] < prev || s[1] > len(text) || s[0] >= s[1] {
			continue
		}
		b.WriteString(text[prev:s[0]])
		b.WriteString(r.pal.match.Sprint(text[s[0]:s[1]]))
		prev = s[1]
	}
	b.WriteString(text[prev:])
	return b.String()
}

// JSON writes one JSON object per file with records, one per line.
func JSON(out io.Writer, sets []search.FileMatchSet) error {
	enc := json.NewEncoder(out)
	for _, set := range sets {
		if len(set.Records) == 0 {
			continue
		}
		if err := enc.Encode(set); err != nil {
			return fmt.Errorf("encode %s: %w", set.Path, err)
		}
	}
	return nil
}
