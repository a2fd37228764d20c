package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/termconf/internal/report"
)

// Capabilities describes what an output stream can display.
type Capabilities struct {
	Color      bool
	Hyperlinks bool
	Profile    termenv.Profile
	// Width is the terminal width in columns, 0 when unknown.
	Width int
}

// DetectCapabilities inspects w. Only terminals get color or hyperlinks;
// NO_COLOR and CLICOLOR_FORCE are honored through termenv. Writers that are
// not files have no capabilities.
func DetectCapabilities(w io.Writer) Capabilities {
	f, ok := w.(*os.File)
	if !ok {
		return Capabilities{Profile: termenv.Ascii}
	}

	profile := termenv.NewOutput(f).EnvColorProfile()
	caps := Capabilities{
		Color:      profile != termenv.Ascii,
		Profile:    profile,
		Hyperlinks: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()),
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil {
		caps.Width = width
	}
	return caps
}

// ResolveDecorations combines detected capabilities with the plain and
// links flags of a resolution. plain=true turns color and hyperlinks off,
// plain=false forces color on, and an explicit links flag overrides
// detection unless plain=true.
func ResolveDecorations(caps Capabilities, res report.Resolution) Options {
	opts := Options{
		UseColor:      caps.Color,
		UseHyperlinks: caps.Hyperlinks,
		DiffOnly:      res.DiffOnly,
		Profile:       caps.Profile,
	}
	if res.Links.IsSet() {
		opts.UseHyperlinks = res.Links == report.True
	}
	switch res.Plain {
	case report.True:
		opts.UseColor = false
		opts.UseHyperlinks = false
	case report.False:
		opts.UseColor = true
	}
	if opts.UseColor && opts.Profile == termenv.Ascii {
		opts.Profile = termenv.ANSI256
	}
	return opts
}
