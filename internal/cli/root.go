// Package cli implements the termconf command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/termconf/internal/config"
	"github.com/Dicklesworthstone/termconf/internal/output"
	"github.com/Dicklesworthstone/termconf/internal/pager"
	"github.com/Dicklesworthstone/termconf/internal/report"
	"github.com/Dicklesworthstone/termconf/internal/sysinfo"
)

var (
	// Build information, set via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// collectHost gathers the info section's host facts; tests replace it.
var collectHost = func(logger *slog.Logger) sysinfo.Info {
	return (&sysinfo.Collector{Logger: logger}).Collect()
}

// runPager shows the interactive pager; tests replace it.
var runPager = pager.Run

// rootOptions are the non-report flags of the root command.
type rootOptions struct {
	cfgFile      string
	live         string
	defaultsFile string
	overrides    []string
	pager        bool
	logLevel     string
	report       reportFlags
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "termconf",
		Short: "Show the effective terminal configuration and how it differs from the defaults",
		Long: `termconf reports a terminal's effective configuration: options, colors,
keyboard shortcuts, mouse actions, environment overrides and the action
catalog, compared against the built-in defaults.

Examples:
  termconf                        # everything
  termconf --diff                 # only what was changed
  termconf --keys --no-deleted    # keyboard shortcuts only, without removed ones
  termconf --debug                # the terminal's own debug report
  termconf -o font_size=14 -d     # preview an override`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlagName)
	opts.report = bindReportFlags(fs)

	fs.StringVar(&opts.live, "live", "", "terminal config or snapshot to inspect (default from settings, else kitty.conf)")
	fs.StringVar(&opts.defaultsFile, "defaults-file", "", "snapshot to compare against instead of the built-in defaults")
	fs.StringArrayVarP(&opts.overrides, "override", "o", nil, "override a config option, as key=value (repeatable)")
	fs.BoolVar(&opts.pager, "pager", false, "show the report in an interactive pager that reloads on change")

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&opts.cfgFile, "config-file", "", "termconf settings file (default ~/.config/termconf/config.toml)")
	pfs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newVersionCmd(), newConfigCmd(opts))
	return cmd
}

// loadSettings reads the settings file and installs the default logger.
func loadSettings(cmd *cobra.Command, opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	levelName := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		levelName = opts.logLevel
	}
	level, err := config.ParseLogLevel(levelName)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	for _, verr := range config.Validate(cfg) {
		logger.Warn("invalid setting", "error", verr)
	}
	return cfg, logger, nil
}

func runReport(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	settingsFlags, err := cfg.FlagSet()
	if err != nil {
		logger.Warn("ignoring [flags] table", "error", err)
		settingsFlags = report.FlagSet{}
	}
	flags := settingsFlags.Merge(opts.report.FlagSet())
	logger.Debug("report flags", "flags", describeFlags(flags))

	p := &pipeline{
		livePath:     cfg.LiveConfig,
		liveExplicit: cfg.LiveConfig != config.DefaultLiveConfig(),
		defaultsFile: cfg.DefaultsFile,
		overrides:    opts.overrides,
		docsURL:      cfg.DocsURL,
		theme:        cfg.Theme,
		flags:        flags,
		logger:       logger,
		collect:      collectHost,
	}
	if cmd.Flags().Changed("live") {
		p.livePath = config.ExpandHome(opts.live)
		p.liveExplicit = true
	}
	if cmd.Flags().Changed("defaults-file") {
		p.defaultsFile = config.ExpandHome(opts.defaultsFile)
	}

	usePager := cfg.Pager
	if cmd.Flags().Changed("pager") {
		usePager = opts.pager
	}

	out := cmd.OutOrStdout()
	caps := output.DetectCapabilities(out)
	if usePager {
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return runPager(cmdContext(cmd), p.pageSource(caps), pager.Options{Watch: true, Logger: logger})
		}
		logger.Info("stdout is not a terminal, printing instead of paging")
	}
	return p.run(out, caps)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "termconf %s (commit %s, built %s)\n", Version, Commit, Date)
			return err
		},
	}
}

// Execute runs the root command. Errors are printed to stderr.
func Execute() error {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}
