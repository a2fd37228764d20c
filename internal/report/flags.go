// Package report turns a live and a default configuration snapshot into the
// ordered rows of a configuration report. It decides which sections run,
// classifies every item against its default and builds one row per item.
package report

import (
	"fmt"
	"sort"
	"strings"
)

// Tristate is a flag value that may be left unset.
type Tristate int8

const (
	Unset Tristate = iota
	True
	False
)

// TristateOf converts a bool into a set Tristate.
func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// IsSet reports whether the flag was given explicitly.
func (t Tristate) IsSet() bool {
	return t != Unset
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

// Flag names. The first seven are also the report sections.
const (
	FlagInfo    = "info"
	FlagConfig  = "config"
	FlagMouse   = "mouse"
	FlagKeys    = "keys"
	FlagColors  = "colors"
	FlagEnv     = "env"
	FlagActions = "actions"
	FlagDeleted = "deleted"
	FlagEmpty   = "empty"
	FlagAll     = "all"
	FlagDiff    = "diff"
	FlagDebug   = "debug"
	FlagLinks   = "links"
	FlagPlain   = "plain"
)

// Sections lists the report sections in render order.
var Sections = []string{FlagInfo, FlagConfig, FlagColors, FlagKeys, FlagMouse, FlagEnv, FlagActions}

var flagNames = []string{
	FlagInfo, FlagConfig, FlagMouse, FlagKeys, FlagColors, FlagEnv, FlagActions,
	FlagDeleted, FlagEmpty, FlagAll, FlagDiff, FlagDebug, FlagLinks, FlagPlain,
}

var flagAliases = map[string]string{
	"unassigned":   FlagEmpty,
	"debug_config": FlagDebug,
	"plaintext":    FlagPlain,
}

// FlagNames returns every canonical flag name.
func FlagNames() []string {
	return append([]string(nil), flagNames...)
}

// FlagAliases returns the alias -> canonical name table.
func FlagAliases() map[string]string {
	out := make(map[string]string, len(flagAliases))
	for k, v := range flagAliases {
		out[k] = v
	}
	return out
}

// CanonicalFlag resolves aliases and reports whether name is a known flag.
func CanonicalFlag(name string) (string, bool) {
	name = strings.TrimSpace(strings.ToLower(name))
	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	for _, n := range flagNames {
		if n == name {
			return n, true
		}
	}
	return "", false
}

// FlagSet maps flag names to tri-state values. The zero value is an empty
// set; every method returns a new FlagSet and never modifies the receiver.
type FlagSet struct {
	values map[string]Tristate
}

// NewFlagSet builds a FlagSet from explicit values, accepting aliases.
func NewFlagSet(values map[string]bool) (FlagSet, error) {
	f := FlagSet{values: make(map[string]Tristate, len(values))}
	for name, v := range values {
		canonical, ok := CanonicalFlag(name)
		if !ok {
			return FlagSet{}, fmt.Errorf("unknown flag %q", name)
		}
		f.values[canonical] = TristateOf(v)
	}
	return f, nil
}

// Get returns the value of a flag; aliases are accepted.
func (f FlagSet) Get(name string) Tristate {
	canonical, ok := CanonicalFlag(name)
	if !ok {
		return Unset
	}
	return f.values[canonical]
}

// With returns a copy of f with name set to v. Unknown names are ignored.
func (f FlagSet) With(name string, v bool) FlagSet {
	canonical, ok := CanonicalFlag(name)
	if !ok {
		return f
	}
	out := f.copy()
	out.values[canonical] = TristateOf(v)
	return out
}

// Merge returns f overlaid with every explicit value of over.
func (f FlagSet) Merge(over FlagSet) FlagSet {
	out := f.copy()
	for name, v := range over.values {
		if v.IsSet() {
			out.values[name] = v
		}
	}
	return out
}

// Len is the number of explicit values.
func (f FlagSet) Len() int {
	return len(f.values)
}

// String renders the explicit values as "name=value" pairs in name order.
func (f FlagSet) String() string {
	names := make([]string, 0, len(f.values))
	for name := range f.values {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + f.values[name].String()
	}
	return strings.Join(parts, " ")
}

func (f FlagSet) copy() FlagSet {
	out := FlagSet{values: make(map[string]Tristate, len(f.values)+1)}
	for k, v := range f.values {
		out.values[k] = v
	}
	return out
}

// DebugPreset is the bundle of flags --debug stands for: a diff of
// everything except the action catalog, with deleted entries and without
// unassigned actions.
func DebugPreset() FlagSet {
	f, _ := NewFlagSet(map[string]bool{
		FlagDiff:    true,
		FlagDeleted: true,
		FlagEmpty:   false,
		FlagInfo:    true,
		FlagConfig:  true,
		FlagMouse:   true,
		FlagKeys:    true,
		FlagColors:  true,
		FlagEnv:     true,
		FlagActions: false,
	})
	return f
}

// Resolution is the outcome of resolving a FlagSet.
type Resolution struct {
	sections map[string]bool

	// ShowDeleted keeps rows for items removed from the defaults.
	ShowDeleted bool
	// ShowEmpty keeps actions that nothing is bound to.
	ShowEmpty bool
	// DiffOnly drops unchanged rows outside the actions section.
	DiffOnly bool

	// Links and Plain are passed through for the renderer, which combines
	// them with what the output supports.
	Links Tristate
	Plain Tristate
}

// Enabled reports whether a section is part of the report.
func (r Resolution) Enabled(section string) bool {
	return r.sections[section]
}

// EnabledSections lists enabled sections in render order.
func (r Resolution) EnabledSections() []string {
	var out []string
	for _, s := range Sections {
		if r.sections[s] {
			out = append(out, s)
		}
	}
	return out
}

// decorations keeps only the links and plain values of f.
func (f FlagSet) decorations() FlagSet {
	out := FlagSet{values: make(map[string]Tristate, 2)}
	for _, name := range []string{FlagLinks, FlagPlain} {
		if v := f.values[name]; v.IsSet() {
			out.values[name] = v
		}
	}
	return out
}

// Resolve folds a FlagSet into a Resolution.
//
// debug=true merges DebugPreset under the other flags. debug=false resets
// every selection flag to its default; links and plain are kept.
//
// Every section starts enabled unless all=false is given without any
// section flag set to true. Section flags that are only true select exactly
// those sections, unless all=true was given explicitly, in which case they
// refine it like any other explicit flag. Otherwise each explicit section
// flag overrides the baseline for its own section.
func Resolve(flags FlagSet) Resolution {
	switch flags.Get(FlagDebug) {
	case True:
		flags = DebugPreset().Merge(flags)
	case False:
		flags = flags.decorations()
	}

	var trues, falses int
	for _, s := range Sections {
		switch flags.Get(s) {
		case True:
			trues++
		case False:
			falses++
		}
	}
	all := flags.Get(FlagAll)
	baseline := !(all == False && trues == 0)
	inclusive := trues > 0 && falses == 0 && all != True

	r := Resolution{sections: make(map[string]bool, len(Sections))}
	for _, s := range Sections {
		v := flags.Get(s)
		switch {
		case inclusive:
			r.sections[s] = v == True
		case v.IsSet():
			r.sections[s] = v == True
		default:
			r.sections[s] = baseline
		}
	}

	r.ShowDeleted = flags.Get(FlagDeleted) != False
	r.ShowEmpty = flags.Get(FlagEmpty) != False
	r.DiffOnly = flags.Get(FlagDiff) == True
	r.Links = flags.Get(FlagLinks)
	r.Plain = flags.Get(FlagPlain)
	return r
}
