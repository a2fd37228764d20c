// Package output turns report rows into text, optionally decorated with
// ANSI colors and OSC 8 hyperlinks.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/termenv"

	"github.com/Dicklesworthstone/termconf/internal/report"
	"github.com/Dicklesworthstone/termconf/internal/snapshot"
	"github.com/Dicklesworthstone/termconf/internal/util"
)

// Options control how rows are decorated.
type Options struct {
	UseColor      bool
	UseHyperlinks bool
	// DiffOnly switches section titles from "ALL ..." to "DIFF of ...".
	DiffOnly bool
	// Profile is the color profile used when UseColor is set.
	Profile termenv.Profile
	Theme   Theme
}

// Renderer writes report rows as aligned text.
type Renderer struct {
	opts Options
	st   styles
}

// NewRenderer creates a renderer. Theme fields left empty take the
// DefaultTheme colors.
func NewRenderer(opts Options) *Renderer {
	opts.Theme = opts.Theme.Merge(DefaultTheme())
	return &Renderer{
		opts: opts,
		st:   newStyles(opts.UseColor, opts.Profile, opts.Theme),
	}
}

// Render writes rows to w. Output is buffered; the error of the final
// flush is returned.
func (r *Renderer) Render(w io.Writer, rows []report.Row) error {
	bw := bufio.NewWriter(w)
	for _, line := range r.Lines(rows) {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// String renders rows into a single string.
func (r *Renderer) String(rows []report.Row) string {
	var b strings.Builder
	for _, line := range r.Lines(rows) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Lines renders rows section by section, with an empty line between
// sections. A line may contain newlines when a value spans several lines.
func (r *Renderer) Lines(rows []report.Row) []string {
	var lines []string
	for i, group := range groupSections(rows) {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, r.section(group)...)
	}
	return lines
}

// groupSections splits rows at headers and section changes.
func groupSections(rows []report.Row) [][]report.Row {
	var groups [][]report.Row
	for i, row := range rows {
		if i == 0 || row.Hint == report.HintHeader || row.Section != rows[i-1].Section {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], row)
	}
	return groups
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// widths are the column widths of one section.
type widths struct {
	label  int
	label1 int
	group  int
	prefix int
	mods   int
	key    int
	mods1  int
	key1   int
}

func measure(rows []report.Row) widths {
	var w widths
	grow := func(cur *int, s string) {
		if n := util.Width(s); n > *cur {
			*cur = n
		}
	}
	for _, row := range rows {
		if row.Hint == report.HintHeader {
			continue
		}
		switch row.Section {
		case report.FlagKeys, report.FlagMouse:
			mods, key := snapshot.SplitChord(row.Label)
			grow(&w.prefix, prefixText(row.Prefix))
			grow(&w.mods, mods)
			grow(&w.key, key)
		case report.FlagActions:
			if row.Depth == 0 {
				grow(&w.group, row.Prefix)
				grow(&w.label, row.Label)
				continue
			}
			mods, key := snapshot.SplitChord(row.Label)
			grow(&w.prefix, prefixText(row.Prefix))
			grow(&w.mods1, mods)
			grow(&w.key1, key)
		case report.FlagInfo:
			if row.Depth > 0 && row.Value != "" {
				grow(&w.label1, row.Label+":")
			}
		default:
			grow(&w.label, row.Label)
		}
	}
	return w
}

func prefixText(p string) string {
	if p == "" {
		return ""
	}
	return "[" + p + "] "
}

func (r *Renderer) section(rows []report.Row) []string {
	w := measure(rows)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var line string
		switch {
		case row.Hint == report.HintHeader:
			line = r.header(row)
		case row.Section == report.FlagInfo:
			line = r.infoRow(row, w)
		case row.Section == report.FlagKeys || row.Section == report.FlagMouse:
			line = r.bindingRow(row, w)
		case row.Section == report.FlagActions:
			line = r.actionRow(row, w)
		default:
			line = r.entryRow(row, w)
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return lines
}

func (r *Renderer) link(url, text string) string {
	if !r.opts.UseHyperlinks || url == "" {
		return text
	}
	return termenv.Hyperlink(url, text)
}

func (r *Renderer) header(row report.Row) string {
	title := row.Label
	if row.Section != report.FlagInfo {
		what := "ALL"
		if r.opts.DiffOnly {
			what = "DIFF of"
		}
		title = what + " " + title
	}
	return r.link(row.Link, r.st.title(title+":"))
}

func (r *Renderer) marker(row report.Row) string {
	style := r.st.changed
	switch row.Marker {
	case "":
		return "     "
	case report.MarkerAdded:
		style = r.st.added
	case report.MarkerDeleted:
		style = r.st.deleted
	}
	return "  " + style(row.Marker) + "  "
}

// tail renders the value, the previous value and the note of a row.
func (r *Renderer) tail(row report.Row, value string) string {
	var parts []string
	if value != "" {
		if row.Hint == report.HintChanged {
			value = r.st.value(value)
		}
		parts = append(parts, value)
	}
	if row.Previous != "" {
		parts = append(parts, r.st.dim("("+row.Previous+")"))
	}
	if row.Note != "" {
		parts = append(parts, r.st.dim(row.Note))
	}
	return strings.Join(parts, "  ")
}

// multiline keeps the first line of v in place and indents the others to
// column col.
func multiline(v string, col int) (first, rest string) {
	first, rest, ok := strings.Cut(v, "\n")
	if !ok {
		return first, ""
	}
	return first, "\n" + indent.String(rest, uint(col))
}

func (r *Renderer) entryRow(row report.Row, w widths) string {
	name := r.st.label(row.Label)
	if row.Hint == report.HintDeleted {
		name = r.st.struck(row.Label)
	}
	lead := r.marker(row) + r.link(row.Link, name) + spaces(w.label-util.Width(row.Label)) + " "

	first, rest := multiline(row.Value, 5+w.label+1)
	line := lead + r.tail(row, first)
	if row.Swatch != "" {
		if swatch := r.st.swatchFn(row.Swatch); swatch != "" {
			line += " " + swatch
		}
	}
	return line + rest
}

func (r *Renderer) trigger(row report.Row, modsWidth, keyWidth int) string {
	mods, key := snapshot.SplitChord(row.Label)
	modsStyle, keyStyle := r.st.mods, r.st.keys
	if row.Hint == report.HintDeleted {
		modsStyle, keyStyle = r.st.struck, r.st.struck
	}
	return spaces(modsWidth-util.Width(mods)) + modsStyle(mods) + keyStyle(key) + spaces(keyWidth-util.Width(key))
}

func (r *Renderer) invocation(value, url string) string {
	if value == "" {
		return ""
	}
	name, args := snapshot.SplitInvocation(value)
	return r.link(url, name) + args
}

func (r *Renderer) bindingRow(row report.Row, w widths) string {
	lead := "  " + util.PadRight(prefixText(row.Prefix), w.prefix)
	return lead + r.trigger(row, w.mods, w.key) + r.marker(row) + r.tail(row, r.invocation(row.Value, row.ValueLink))
}

func (r *Renderer) actionRow(row report.Row, w widths) string {
	if row.Depth > 0 {
		lead := spaces(10) + util.PadRight(prefixText(row.Prefix), w.prefix)
		line := lead + r.trigger(row, w.mods1, w.key1)
		if row.Value != "" {
			line += "   " + r.invocation(row.Value, row.ValueLink)
		}
		return line
	}

	name := row.Label
	if row.Hint == report.HintUnassigned {
		name = r.st.muted(name)
	}
	line := r.st.group(util.PadRight(row.Prefix, w.group)) + "  " +
		r.link(row.Link, name) + spaces(w.label-util.Width(row.Label))
	if row.Note != "" {
		line += "   " + r.st.dim(row.Note)
	}
	return line
}

func (r *Renderer) infoRow(row report.Row, w widths) string {
	if row.Depth == 0 {
		label := r.st.info(row.Label + ":")
		switch {
		case row.Value == "":
			return label
		case strings.Contains(row.Value, "\n"):
			return label + "\n" + indent.String(row.Value, 2)
		default:
			return label + " " + row.Value
		}
	}
	pad := strings.Repeat("  ", row.Depth)
	if row.Value == "" {
		return pad + row.Label
	}
	label := row.Label + ":"
	return pad + r.st.label(label) + spaces(w.label1-util.Width(label)) + " " + row.Value
}
