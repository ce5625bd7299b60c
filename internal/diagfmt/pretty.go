package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rsbundle/internal/diag"
	"rsbundle/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	PrettyList(w, bag.Items(), fs, opts)
}

// PrettyList is Pretty over a plain slice.
func PrettyList(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i := range items {
		d := &items[i]
		p.header(w, fs, d, opts)
		p.snippet(w, fs, d.Primary, opts, p.sevColor(d.Severity))
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note"), location(fs, n.Span, opts.PathMode), n.Msg)
			p.snippet(w, fs, n.Span, opts, p.note)
		}
	}
}

type palette struct {
	err, warn, info, note, gutter, bold *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan),
		note:   mk(color.FgBlue, color.Bold),
		gutter: mk(color.FgBlue),
		bold:   mk(color.Bold),
	}
}

func (p palette) sevColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

func (p palette) header(w io.Writer, fs *source.FileSet, d *diag.Diagnostic, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.bold.Sprint(location(fs, d.Primary, opts.PathMode)),
		p.sevColor(d.Severity).Sprint(d.Severity.String()),
		d.Code.ID(),
		clip(d.Message, int(opts.Width)))
}

// snippet печатает строку span-а с соседями и подчёркиванием.
func (p palette) snippet(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts, mark *color.Color) {
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := min(start.Line+ctx, lineCount(f))
	width := len(fmt.Sprint(last))

	for line := first; line <= last; line++ {
		text := strings.ReplaceAll(f.GetLine(line), "\t", "    ")
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", width, line), clip(text, int(opts.Width)))
		if line != start.Line {
			continue
		}
		col := int(start.Col)
		n := 1
		if end.Line == start.Line && end.Col > start.Col {
			n = int(end.Col - start.Col)
		}
		raw := f.GetLine(line)
		prefix := strings.ReplaceAll(raw[:min(max(col-1, 0), len(raw))], "\t", "    ")
		pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad, mark.Sprint("^"+strings.Repeat("~", n-1)))
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(fs, sp.File, mode), start.Line, start.Col)
}

func lineCount(f *source.File) uint32 {
	n := uint32(len(f.LineIdx)) // #nosec G115 -- bounded by file size
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return max(n, 1)
}

func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
