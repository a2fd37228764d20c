package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the ANSI colors (0-255, as strings) of the report. Empty
// fields fall back to DefaultTheme.
type Theme struct {
	Title   string `toml:"title"`
	Changed string `toml:"changed"`
	Added   string `toml:"added"`
	Deleted string `toml:"deleted"`
	Label   string `toml:"label"`
	Mods    string `toml:"mods"`
	Keys    string `toml:"keys"`
	Group   string `toml:"group"`
	Info    string `toml:"info"`
}

// DefaultTheme matches the terminal's own debug output: bright blue titles,
// red markers, yellow names and modifiers, green keys, blue action groups.
func DefaultTheme() Theme {
	return Theme{
		Title:   "12",
		Changed: "1",
		Added:   "1",
		Deleted: "1",
		Label:   "3",
		Mods:    "3",
		Keys:    "2",
		Group:   "4",
		Info:    "2",
	}
}

// Merge fills empty fields of t from base.
func (t Theme) Merge(base Theme) Theme {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return Theme{
		Title:   pick(t.Title, base.Title),
		Changed: pick(t.Changed, base.Changed),
		Added:   pick(t.Added, base.Added),
		Deleted: pick(t.Deleted, base.Deleted),
		Label:   pick(t.Label, base.Label),
		Mods:    pick(t.Mods, base.Mods),
		Keys:    pick(t.Keys, base.Keys),
		Group:   pick(t.Group, base.Group),
		Info:    pick(t.Info, base.Info),
	}
}

type styleFunc func(string) string

func plain(s string) string { return s }

// render adapts the variadic lipgloss Render to a styleFunc.
func render(st lipgloss.Style) styleFunc {
	return func(s string) string { return st.Render(s) }
}

// styles are the decorations of one Renderer. With color off every field
// is the identity.
type styles struct {
	title    styleFunc
	changed  styleFunc
	added    styleFunc
	deleted  styleFunc
	label    styleFunc
	mods     styleFunc
	keys     styleFunc
	group    styleFunc
	info     styleFunc
	value    styleFunc
	dim      styleFunc
	muted    styleFunc
	struck   styleFunc
	swatchFn func(hex string) string
}

func newStyles(useColor bool, profile termenv.Profile, th Theme) styles {
	if !useColor || profile == termenv.Ascii {
		return styles{
			title: plain, changed: plain, added: plain, deleted: plain,
			label: plain, mods: plain, keys: plain, group: plain, info: plain,
			value: plain, dim: plain, muted: plain, struck: plain,
			swatchFn: func(string) string { return "" },
		}
	}

	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	fg := func(c string) styleFunc {
		return render(r.NewStyle().Foreground(lipgloss.Color(c)))
	}
	return styles{
		title:   render(r.NewStyle().Foreground(lipgloss.Color(th.Title)).Bold(true)),
		changed: fg(th.Changed),
		added:   fg(th.Added),
		deleted: fg(th.Deleted),
		label:   fg(th.Label),
		mods:    fg(th.Mods),
		keys:    fg(th.Keys),
		group:   fg(th.Group),
		info:    fg(th.Info),
		value:   render(r.NewStyle().Bold(true)),
		dim:     render(r.NewStyle().Faint(true)),
		muted:   render(r.NewStyle().Faint(true).Italic(true)),
		struck:  render(r.NewStyle().Faint(true).Strikethrough(true)),
		swatchFn: func(hex string) string {
			return r.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
		},
	}
}
