// Package config loads termconf's own settings from a TOML file, with
// environment variable overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Dicklesworthstone/termconf/internal/output"
	"github.com/Dicklesworthstone/termconf/internal/report"
)

// DefaultLogLevel is used when no level is configured anywhere.
const DefaultLogLevel = "warn"

// Config holds termconf settings.
type Config struct {
	LiveConfig   string          `toml:"live_config"`   // Terminal config to inspect (kitty.conf or a snapshot)
	DefaultsFile string          `toml:"defaults_file"` // Snapshot replacing the built-in defaults (optional)
	DocsURL      string          `toml:"docs_url"`      // Base URL for option and action hyperlinks
	Pager        bool            `toml:"pager"`         // Show the report in the interactive pager
	LogLevel     string          `toml:"log_level"`     // debug, info, warn or error
	Flags        map[string]bool `toml:"flags"`         // Default report flags; the command line wins
	Theme        output.Theme    `toml:"theme"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LiveConfig: DefaultLiveConfig(),
		DocsURL:    report.DefaultDocsURL,
		LogLevel:   DefaultLogLevel,
		Flags:      map[string]bool{},
		Theme:      output.DefaultTheme(),
	}
}

// DefaultPath returns the settings file location.
func DefaultPath() string {
	if env := os.Getenv("TERMCONF_CONFIG"); env != "" {
		return ExpandHome(env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "termconf", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "termconf", "config.toml")
}

// DefaultLiveConfig is where the terminal keeps its configuration:
// $KITTY_CONFIG_DIRECTORY, then $XDG_CONFIG_HOME/kitty, then ~/.config/kitty.
func DefaultLiveConfig() string {
	if dir := os.Getenv("KITTY_CONFIG_DIRECTORY"); dir != "" {
		return filepath.Join(ExpandHome(dir), "kitty.conf")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kitty", "kitty.conf")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "kitty.conf"
	}
	return filepath.Join(home, ".config", "kitty", "kitty.conf")
}

// Load reads the settings at path (DefaultPath when empty). A missing file
// yields the defaults. Environment variables override the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Env > TOML > Default
	if v := os.Getenv("TERMCONF_LIVE_CONFIG"); v != "" {
		cfg.LiveConfig = v
	}
	if v := os.Getenv("TERMCONF_DEFAULTS"); v != "" {
		cfg.DefaultsFile = v
	}
	if v := os.Getenv("TERMCONF_DOCS_URL"); v != "" {
		cfg.DocsURL = v
	}
	if v := os.Getenv("TERMCONF_PAGER"); v != "" {
		pager, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TERMCONF_PAGER: %w", err)
		}
		cfg.Pager = pager
	}
	if v := os.Getenv("TERMCONF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.LiveConfig = ExpandHome(cfg.LiveConfig)
	cfg.DefaultsFile = ExpandHome(cfg.DefaultsFile)
	if cfg.Flags == nil {
		cfg.Flags = map[string]bool{}
	}
	cfg.Theme = cfg.Theme.Merge(output.DefaultTheme())
	return cfg, nil
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}

	return path
}

// FlagSet converts the [flags] table into report flags.
func (c *Config) FlagSet() (report.FlagSet, error) {
	fs, err := report.NewFlagSet(c.Flags)
	if err != nil {
		return report.FlagSet{}, fmt.Errorf("flags: %w", err)
	}
	return fs, nil
}

// ParseLogLevel maps a level name onto slog. Both "warn" and "warning" are
// accepted.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", name)
}

// Validate reports every problem with cfg.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	names := make([]string, 0, len(cfg.Flags))
	for name := range cfg.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := report.CanonicalFlag(name); !ok {
			errs = append(errs, fmt.Errorf("flags: unknown flag %q", name))
		}
	}

	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if cfg.DocsURL != "" {
		u, err := url.Parse(cfg.DocsURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			errs = append(errs, fmt.Errorf("docs_url: must be an absolute URL, got %q", cfg.DocsURL))
		}
	}

	if cfg.DefaultsFile != "" {
		if _, err := os.Stat(cfg.DefaultsFile); err != nil {
			errs = append(errs, fmt.Errorf("defaults_file: %w", err))
		}
	}

	return errs
}

// Print writes cfg as a commented TOML file.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# termconf configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Terminal config file to inspect (kitty.conf, or a .toml/.yaml/.json snapshot)")
	fmt.Fprintf(w, "live_config = %q\n", cfg.LiveConfig)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Snapshot replacing the built-in defaults")
	if cfg.DefaultsFile != "" {
		fmt.Fprintf(w, "defaults_file = %q\n", cfg.DefaultsFile)
	} else {
		fmt.Fprintln(w, "# defaults_file = \"\"")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Base URL for hyperlinks to option and action documentation")
	fmt.Fprintf(w, "docs_url = %q\n", cfg.DocsURL)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Show the report in the interactive pager")
	fmt.Fprintf(w, "pager = %t\n", cfg.Pager)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Log level (debug, info, warn, error)")
	fmt.Fprintf(w, "log_level = %q\n", cfg.LogLevel)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Default report flags; command line flags take precedence")
	fmt.Fprintln(w, "[flags]")
	names := make([]string, 0, len(cfg.Flags))
	for name := range cfg.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(w, "# diff = true")
	}
	for _, name := range names {
		fmt.Fprintf(w, "%s = %t\n", name, cfg.Flags[name])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# ANSI colors (0-255)")
	fmt.Fprintln(w, "[theme]")
	th := cfg.Theme.Merge(output.DefaultTheme())
	for _, kv := range [][2]string{
		{"title", th.Title},
		{"changed", th.Changed},
		{"added", th.Added},
		{"deleted", th.Deleted},
		{"label", th.Label},
		{"mods", th.Mods},
		{"keys", th.Keys},
		{"group", th.Group},
		{"info", th.Info},
	} {
		if _, err := fmt.Fprintf(w, "%s = %q\n", kv[0], kv[1]); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}
	return nil
}

// CreateDefault writes the default settings to path (DefaultPath when
// empty) and returns the path. An existing file is left alone.
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	var buffer strings.Builder
	if err := Print(Default(), &buffer); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(buffer.String()), 0644); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
