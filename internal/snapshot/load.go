package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for snapshot files whose extension is not
// one of .toml, .yaml, .yml, .json or .conf.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// DefaultKittyMod is used when a snapshot does not declare kitty_mod.
const DefaultKittyMod = "ctrl+shift"

// Loader reads snapshots from disk.
type Loader struct {
	// Base is the snapshot a .conf file is overlaid on. Nil means the
	// embedded factory defaults.
	Base *Snapshot

	Logger *slog.Logger
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// LoadFile loads a snapshot with the default Loader.
func LoadFile(path string, overrides ...string) (*Snapshot, error) {
	return (&Loader{}).Load(path, overrides...)
}

// Load reads the snapshot at path, picking the decoder from the file
// extension, then applies "key=value" overrides on top.
func (l *Loader) Load(path string, overrides ...string) (*Snapshot, error) {
	var (
		s   *Snapshot
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".conf":
		s, err = l.parseConf(path)
	case ".toml", ".yaml", ".yml", ".json":
		s, err = l.decode(path, ext)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	if err := l.applyOverrides(s, overrides); err != nil {
		return nil, err
	}
	finalize(s)
	return s, nil
}

func (l *Loader) decode(path, ext string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var s Snapshot
	switch ext {
	case ".toml":
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
		for _, key := range md.Undecoded() {
			l.logger().Debug("ignoring unknown snapshot key", "file", path, "key", key.String())
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
	}
	s.Info.ConfigPaths = append(s.Info.ConfigPaths, path)
	return &s, nil
}

// ApplyOverrides returns a copy of s with "key=value" overrides applied the
// way -o works on the terminal's command line.
func ApplyOverrides(s *Snapshot, overrides []string) (*Snapshot, error) {
	c := s.Clone()
	if err := (&Loader{}).applyOverrides(c, overrides); err != nil {
		return nil, err
	}
	finalize(c)
	return c, nil
}

func (l *Loader) applyOverrides(s *Snapshot, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	p := newConfParser(s, l.logger())
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid override %q: expected key=value", o)
		}
		p.directive(key, strings.TrimSpace(value), "override", 0)
		s.Info.ConfigOverrides = append(s.Info.ConfigOverrides, key+" "+strings.TrimSpace(value))
	}
	return nil
}

// finalize expands kitty_mod and normalizes every trigger, collapsing
// duplicate bindings so the last definition wins in place of the first.
// Bindings to no_op are unmaps and are dropped. Triggers are expanded from
// their declared form, so a snapshot overlaid with a new kitty_mod moves the
// bindings it inherited.
func finalize(s *Snapshot) {
	kittyMod := DefaultKittyMod
	if v, ok := s.Option("kitty_mod"); ok {
		if km := Normalize(v); km != "" {
			kittyMod = km
		}
	}
	s.Keys = dedupeBindings(s.Keys, func(t string) string { return NormalizeTrigger(t, kittyMod) })
	s.Mouse = dedupeBindings(s.Mouse, func(t string) string { return NormalizeMouseTrigger(t, kittyMod) })
	for i := range s.Colors {
		s.Colors[i].Name = strings.TrimSpace(s.Colors[i].Name)
	}
}

func dedupeBindings(bindings []Binding, normalize func(string) string) []Binding {
	out := make([]Binding, 0, len(bindings))
	index := make(map[string]int, len(bindings))
	for _, b := range bindings {
		if b.source == "" {
			b.source = b.Trigger
		}
		b.Trigger = normalize(b.source)
		b.Action = strings.TrimSpace(b.Action)
		if b.Trigger == "" {
			continue
		}
		key := b.Key()
		i, seen := index[key]
		if isUnmap(b.Action) {
			if seen {
				out[i].Action = ""
				delete(index, key)
			}
			continue
		}
		if seen {
			out[i] = b
			continue
		}
		index[key] = len(out)
		out = append(out, b)
	}
	kept := out[:0]
	for _, b := range out {
		if b.Action != "" {
			kept = append(kept, b)
		}
	}
	return kept
}

func isUnmap(action string) bool {
	return action == "" || action == "no_op"
}
