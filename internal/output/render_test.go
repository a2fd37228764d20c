package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/Dicklesworthstone/termconf/internal/report"
	"github.com/Dicklesworthstone/termconf/internal/snapshot"
	"github.com/Dicklesworthstone/termconf/internal/util"
)

func sampleRows() []report.Row {
	return []report.Row{
		{Section: report.FlagConfig, Label: "config options", Hint: report.HintHeader, Link: "https://docs/conf/"},
		{Section: report.FlagConfig, Label: "font_size", Value: "12", Previous: "11", Marker: report.MarkerChanged,
			Class: report.Changed, Hint: report.HintChanged, Link: "https://docs/conf/#opt-kitty.font_size"},
		{Section: report.FlagConfig, Label: "cursor_shape", Value: "block"},
		{Section: report.FlagKeys, Label: "keyboard shortcuts", Hint: report.HintHeader},
		{Section: report.FlagKeys, Label: "ctrl+shift+t", Value: "new_window", Previous: "new_tab",
			Marker: report.MarkerChanged, Class: report.Changed, Hint: report.HintChanged,
			ValueLink: "https://docs/actions/#action-new_window"},
		{Section: report.FlagKeys, Label: "f1", Value: "show_scrollback"},
	}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(Options{}).Render(&buf, sampleRows()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	want := strings.Join([]string{
		"ALL config options:",
		"  C  font_size    12  (11)",
		"     cursor_shape block",
		"",
		"ALL keyboard shortcuts:",
		"  ctrl+shift+t   C  new_window  (new_tab)",
		"             f1     show_scrollback",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderDiffTitles(t *testing.T) {
	out := NewRenderer(Options{DiffOnly: true}).String(sampleRows())
	if !strings.HasPrefix(out, "DIFF of config options:\n") {
		t.Errorf("diff output should start with a DIFF title, got %q", out)
	}
	if !strings.Contains(out, "DIFF of keyboard shortcuts:") {
		t.Error("every section title should switch to DIFF")
	}
}

func TestRenderPlainHasNoEscapes(t *testing.T) {
	rows := append(sampleRows(),
		report.Row{Section: report.FlagColors, Label: "colors", Hint: report.HintHeader},
		report.Row{Section: report.FlagColors, Label: "color1", Value: "#00ff00", Swatch: "#00ff00"},
	)
	out := NewRenderer(Options{UseHyperlinks: false}).String(rows)
	if strings.Contains(out, "\x1b") {
		t.Errorf("plain output contains escape sequences: %q", out)
	}
	if strings.Contains(out, "\t") {
		t.Error("output should not contain tabs")
	}
}

func TestRenderColor(t *testing.T) {
	out := NewRenderer(Options{UseColor: true, Profile: termenv.ANSI256}).String(sampleRows())
	if !strings.Contains(out, "\x1b[") {
		t.Error("colored output should contain SGR sequences")
	}
	if strings.Contains(out, "\x1b]8;") {
		t.Error("hyperlinks should be off")
	}
}

func TestStylesKeepText(t *testing.T) {
	st := newStyles(true, termenv.ANSI256, DefaultTheme())
	for name, fn := range map[string]styleFunc{
		"title": st.title, "changed": st.changed, "keys": st.keys,
		"value": st.value, "dim": st.dim, "struck": st.struck,
	} {
		got := fn("font_size")
		if got == "font_size" {
			t.Errorf("%s style left the text undecorated", name)
		}
		if util.StripANSI(got) != "font_size" {
			t.Errorf("%s style changed the text: %q", name, got)
		}
	}
}

func TestRenderAsciiProfileIsPlain(t *testing.T) {
	out := NewRenderer(Options{UseColor: true, Profile: termenv.Ascii}).String(sampleRows())
	if strings.Contains(out, "\x1b") {
		t.Error("the Ascii profile should not emit escapes")
	}
}

func TestRenderHyperlinks(t *testing.T) {
	out := NewRenderer(Options{UseHyperlinks: true}).String(sampleRows())
	for _, want := range []string{
		"\x1b]8;;https://docs/conf/#opt-kitty.font_size\x1b\\font_size\x1b]8;;\x1b\\",
		"\x1b]8;;https://docs/actions/#action-new_window\x1b\\new_window\x1b]8;;\x1b\\",
		"\x1b]8;;https://docs/conf/\x1b\\ALL config options:\x1b]8;;\x1b\\",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing hyperlink %q:\n%q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("hyperlinks alone should not add colors")
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer(Options{UseColor: true, UseHyperlinks: true})
	if r.String(sampleRows()) != r.String(sampleRows()) {
		t.Error("rendering the same rows twice differs")
	}
}

func TestRenderMultilineValue(t *testing.T) {
	rows := []report.Row{
		{Section: report.FlagConfig, Label: "symbol_map", Value: "a → A\nb → B"},
		{Section: report.FlagConfig, Label: "x", Value: "1"},
	}
	out := NewRenderer(Options{}).String(rows)
	want := "     symbol_map a → A\n                b → B\n     x          1\n"
	if out != want {
		t.Errorf("String() =\n%q\nwant\n%q", out, want)
	}
}

func TestRenderActions(t *testing.T) {
	rows := []report.Row{
		{Section: report.FlagActions, Label: "available actions", Hint: report.HintHeader},
		{Section: report.FlagActions, Label: "new_tab", Prefix: "tab", Note: "New tab"},
		{Section: report.FlagActions, Label: "ctrl+shift+t", Depth: 1},
		{Section: report.FlagActions, Label: "detach_tab", Prefix: "tab", Note: "Detach a tab",
			Class: report.Unassigned, Hint: report.HintUnassigned},
		{Section: report.FlagActions, Label: "kitten", Prefix: "misc", Note: "Run a kitten"},
		{Section: report.FlagActions, Label: "ctrl+shift+u", Value: "kitten unicode_input", Depth: 1},
	}
	out := NewRenderer(Options{}).String(rows)
	want := strings.Join([]string{
		"ALL available actions:",
		"tab   new_tab      New tab",
		"          ctrl+shift+t",
		"tab   detach_tab   Detach a tab",
		"misc  kitten       Run a kitten",
		"          ctrl+shift+u   kitten unicode_input",
		"",
	}, "\n")
	if out != want {
		t.Errorf("String() =\n%s\nwant\n%s", out, want)
	}
}

func TestRenderInfo(t *testing.T) {
	rows := []report.Row{
		{Section: report.FlagInfo, Label: "system info", Hint: report.HintHeader},
		{Section: report.FlagInfo, Label: "Version", Value: "0.35.2"},
		{Section: report.FlagInfo, Label: "Release", Value: "A=1\nB=2"},
		{Section: report.FlagInfo, Label: "Paths"},
		{Section: report.FlagInfo, Label: "executable", Value: "/usr/bin/kitty", Depth: 1},
		{Section: report.FlagInfo, Label: "system shell", Value: "/bin/sh", Depth: 1},
		{Section: report.FlagInfo, Label: "Loaded config files"},
		{Section: report.FlagInfo, Label: "/home/me/kitty.conf", Depth: 1},
	}
	out := NewRenderer(Options{}).String(rows)
	want := strings.Join([]string{
		"system info:",
		"Version: 0.35.2",
		"Release:",
		"  A=1",
		"  B=2",
		"Paths:",
		"  executable:   /usr/bin/kitty",
		"  system shell: /bin/sh",
		"Loaded config files:",
		"  /home/me/kitty.conf",
		"",
	}, "\n")
	if out != want {
		t.Errorf("String() =\n%s\nwant\n%s", out, want)
	}
}

func TestRenderDeletedBinding(t *testing.T) {
	rows := []report.Row{
		{Section: report.FlagKeys, Label: "ctrl+shift+q", Previous: "close_tab", Marker: report.MarkerDeleted,
			Class: report.Deleted, Hint: report.HintDeleted},
	}
	out := NewRenderer(Options{}).String(rows)
	if out != "  ctrl+shift+q  -  (close_tab)\n" {
		t.Errorf("String() = %q", out)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRenderWriteError(t *testing.T) {
	err := NewRenderer(Options{}).Render(failingWriter{}, sampleRows())
	if err == nil {
		t.Fatal("expected write error")
	}
	if !strings.Contains(err.Error(), "broken pipe") {
		t.Errorf("error = %v, want the writer's error wrapped", err)
	}
}

func TestRenderEndToEnd(t *testing.T) {
	d, err := snapshot.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	live, err := snapshot.ApplyOverrides(d, []string{"font_size=12"})
	if err != nil {
		t.Fatal(err)
	}
	res := report.Resolve(report.FlagSet{}.With(report.FlagDiff, true).With(report.FlagConfig, true))
	rows := report.Build(report.Input{Live: live, Defaults: d}, res)
	out := NewRenderer(ResolveDecorations(Capabilities{}, res)).String(rows)

	want := "DIFF of config options:\n  C  font_size 12  (11)\n"
	if out != want {
		t.Errorf("String() = %q, want %q", out, want)
	}
}
