// Package snapshot holds read-only views of a terminal's configuration: the
// live configuration in effect and the factory defaults it is compared to.
package snapshot

import (
	"strings"
)

// Info describes the terminal installation a snapshot was taken from.
type Info struct {
	Version         string   `toml:"version" yaml:"version" json:"version"`
	Executable      string   `toml:"executable" yaml:"executable" json:"executable"`
	BaseDir         string   `toml:"base_dir" yaml:"base_dir" json:"base_dir"`
	ExtensionsDir   string   `toml:"extensions_dir" yaml:"extensions_dir" json:"extensions_dir"`
	Shell           string   `toml:"shell" yaml:"shell" json:"shell"`
	// Frozen reports a self-contained build; nil when the source does not say.
	Frozen          *bool    `toml:"frozen,omitempty" yaml:"frozen,omitempty" json:"frozen,omitempty"`
	ConfigPaths     []string `toml:"config_paths" yaml:"config_paths" json:"config_paths"`
	ConfigOverrides []string `toml:"config_overrides" yaml:"config_overrides" json:"config_overrides"`
}

// Entry is a named configuration value. Value holds whatever the source
// decoded (string, number, bool, list or table); use Normalize to compare.
type Entry struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Value any    `toml:"value" yaml:"value" json:"value"`
}

// Binding maps a trigger (key chord or mouse event) to an action invocation.
type Binding struct {
	Trigger string `toml:"trigger" yaml:"trigger" json:"trigger"`
	// Mode names the alternate mapping table; empty for the normal table.
	Mode   string `toml:"mode,omitempty" yaml:"mode,omitempty" json:"mode,omitempty"`
	Action string `toml:"action" yaml:"action" json:"action"`

	// source is the trigger as declared, before kitty_mod expansion.
	source string
}

// Key identifies a binding within its table.
func (b Binding) Key() string {
	if b.Mode == "" {
		return b.Trigger
	}
	return b.Mode + "\x00" + b.Trigger
}

// ActionName is the invoked action without its arguments.
func (b Binding) ActionName() string {
	name, _ := SplitInvocation(b.Action)
	return name
}

// Action is one entry of the action catalog.
type Action struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Group string `toml:"group" yaml:"group" json:"group"`
	Doc   string `toml:"doc" yaml:"doc" json:"doc"`
}

// Snapshot is an immutable view of a configuration. Every slice is in the
// order the source declared it.
type Snapshot struct {
	Info    Info      `toml:"info" yaml:"info" json:"info"`
	Options []Entry   `toml:"options" yaml:"options" json:"options"`
	Colors  []Entry   `toml:"colors" yaml:"colors" json:"colors"`
	Keys    []Binding `toml:"keys" yaml:"keys" json:"keys"`
	Mouse   []Binding `toml:"mouse" yaml:"mouse" json:"mouse"`
	Env     []Entry   `toml:"env" yaml:"env" json:"env"`
	Actions []Action  `toml:"actions" yaml:"actions" json:"actions"`
}

// Option returns the value of a named option.
func (s *Snapshot) Option(name string) (any, bool) {
	return lookup(s.Options, name)
}

// Color returns the value of a named color.
func (s *Snapshot) Color(name string) (any, bool) {
	return lookup(s.Colors, name)
}

// Clone returns a deep enough copy that mutating slices of the result does
// not affect s.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Info.ConfigPaths = append([]string(nil), s.Info.ConfigPaths...)
	c.Info.ConfigOverrides = append([]string(nil), s.Info.ConfigOverrides...)
	c.Options = append([]Entry(nil), s.Options...)
	c.Colors = append([]Entry(nil), s.Colors...)
	c.Keys = append([]Binding(nil), s.Keys...)
	c.Mouse = append([]Binding(nil), s.Mouse...)
	c.Env = append([]Entry(nil), s.Env...)
	c.Actions = append([]Action(nil), s.Actions...)
	return &c
}

func lookup(entries []Entry, name string) (any, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// SplitInvocation splits "action args..." into the action name and the
// argument text (with its leading space).
func SplitInvocation(inv string) (name, args string) {
	inv = strings.TrimSpace(inv)
	if i := strings.IndexAny(inv, " \t"); i >= 0 {
		return inv[:i], inv[i:]
	}
	return inv, ""
}
