package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Dicklesworthstone/termconf/internal/output"
	"github.com/Dicklesworthstone/termconf/internal/pager"
	"github.com/Dicklesworthstone/termconf/internal/report"
	"github.com/Dicklesworthstone/termconf/internal/snapshot"
	"github.com/Dicklesworthstone/termconf/internal/sysinfo"
)

// pipeline runs one report, from loading the snapshots to rendering. Every
// run starts from scratch.
type pipeline struct {
	livePath     string
	liveExplicit bool // a missing implicit live config means the terminal runs on defaults
	defaultsFile string
	overrides    []string
	docsURL      string
	theme        output.Theme
	flags        report.FlagSet
	logger       *slog.Logger
	collect      func(*slog.Logger) sysinfo.Info
}

func (p *pipeline) loadDefaults() (*snapshot.Snapshot, error) {
	if p.defaultsFile == "" {
		return snapshot.Defaults()
	}
	d, err := (&snapshot.Loader{Logger: p.logger}).Load(p.defaultsFile)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	return d, nil
}

func (p *pipeline) loadLive(defaults *snapshot.Snapshot) (*snapshot.Snapshot, error) {
	if !p.liveExplicit {
		if _, err := os.Stat(p.livePath); errors.Is(err, fs.ErrNotExist) {
			p.logger.Info("no terminal config found, using defaults", "path", p.livePath)
			return snapshot.ApplyOverrides(defaults, p.overrides)
		}
	}
	live, err := (&snapshot.Loader{Base: defaults, Logger: p.logger}).Load(p.livePath, p.overrides...)
	if err != nil {
		return nil, fmt.Errorf("loading live config: %w", err)
	}
	return live, nil
}

// build produces the rows of one report.
func (p *pipeline) build() ([]report.Row, report.Resolution, *snapshot.Snapshot, error) {
	defaults, err := p.loadDefaults()
	if err != nil {
		return nil, report.Resolution{}, nil, err
	}
	live, err := p.loadLive(defaults)
	if err != nil {
		return nil, report.Resolution{}, nil, err
	}

	res := report.Resolve(p.flags)
	p.logger.Debug("resolved sections", "sections", strings.Join(res.EnabledSections(), ","),
		"diff", res.DiffOnly, "deleted", res.ShowDeleted, "empty", res.ShowEmpty)

	in := report.Input{Live: live, Defaults: defaults, DocsURL: p.docsURL}
	if res.Enabled(report.FlagInfo) && p.collect != nil {
		in.Host = p.collect(p.logger)
	}
	return report.Build(in, res), res, live, nil
}

func (p *pipeline) renderer(caps output.Capabilities, res report.Resolution) *output.Renderer {
	opts := output.ResolveDecorations(caps, res)
	opts.Theme = p.theme
	return output.NewRenderer(opts)
}

// run writes the report to w.
func (p *pipeline) run(w io.Writer, caps output.Capabilities) error {
	rows, res, _, err := p.build()
	if err != nil {
		return err
	}
	return p.renderer(caps, res).Render(w, rows)
}

// pageSource renders the report for the pager. The files to watch are the
// config files the live snapshot was read from, or the live path itself
// when none exist yet.
func (p *pipeline) pageSource(caps output.Capabilities) pager.Source {
	return func() (pager.Page, error) {
		rows, res, live, err := p.build()
		if err != nil {
			return pager.Page{}, err
		}
		watch := append([]string(nil), live.Info.ConfigPaths...)
		if len(watch) == 0 && p.livePath != "" {
			watch = []string{p.livePath}
		}
		if p.defaultsFile != "" {
			watch = append(watch, p.defaultsFile)
		}
		return pager.Page{Content: p.renderer(caps, res).String(rows), Watch: watch}, nil
	}
}
