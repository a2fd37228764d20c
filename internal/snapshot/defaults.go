package snapshot

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed defaults.toml
var defaultsTOML string

var (
	rawDefaultsOnce sync.Once
	rawDefaults     *Snapshot
	rawDefaultsErr  error
)

// loadRawDefaults decodes the embedded catalog once. The result still has
// kitty_mod placeholders in its triggers and must not be mutated.
func loadRawDefaults() (*Snapshot, error) {
	rawDefaultsOnce.Do(func() {
		var s Snapshot
		if _, err := toml.Decode(defaultsTOML, &s); err != nil {
			rawDefaultsErr = fmt.Errorf("decoding embedded defaults: %w", err)
			return
		}
		rawDefaults = &s
	})
	return rawDefaults, rawDefaultsErr
}

// Defaults returns the factory default snapshot with triggers normalized.
// Every call returns a fresh copy.
func Defaults() (*Snapshot, error) {
	raw, err := loadRawDefaults()
	if err != nil {
		return nil, err
	}
	s := raw.Clone()
	finalize(s)
	return s, nil
}

// DefaultColorNames lists the color names the default catalog declares.
func DefaultColorNames() []string {
	raw, err := loadRawDefaults()
	if err != nil {
		return nil
	}
	names := make([]string, len(raw.Colors))
	for i, c := range raw.Colors {
		names[i] = c.Name
	}
	return names
}
