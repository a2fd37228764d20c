package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Dicklesworthstone/termconf/internal/report"
)

// reportFlagHelp describes each report flag in --help.
var reportFlagHelp = map[string]string{
	report.FlagInfo:    "system info section",
	report.FlagConfig:  "config options section",
	report.FlagMouse:   "mouse actions section",
	report.FlagKeys:    "keyboard shortcuts section",
	report.FlagColors:  "colors section",
	report.FlagEnv:     "environment overrides section",
	report.FlagActions: "available actions section",
	report.FlagDeleted: "rows for items removed from the defaults",
	report.FlagEmpty:   "actions that nothing is bound to",
	report.FlagAll:     "every section (--no-all starts from none)",
	report.FlagDiff:    "only what differs from the defaults",
	report.FlagDebug:   "the debug preset: diff of every section but actions",
	report.FlagLinks:   "hyperlinks to the documentation",
	report.FlagPlain:   "plain text without colors or hyperlinks",
}

var reportFlagShorts = map[string]string{
	report.FlagInfo:    "i",
	report.FlagConfig:  "c",
	report.FlagMouse:   "m",
	report.FlagKeys:    "k",
	report.FlagColors:  "l",
	report.FlagEnv:     "e",
	report.FlagActions: "t",
	report.FlagAll:     "a",
	report.FlagDiff:    "d",
}

// tristateValue is one half of a --name/--no-name pair. Both halves write
// the same Tristate, so the last one on the command line wins.
type tristateValue struct {
	target *report.Tristate
	negate bool
}

func (v *tristateValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if v.negate {
		b = !b
	}
	*v.target = report.TristateOf(b)
	return nil
}

func (v *tristateValue) String() string {
	if v.target == nil || *v.target == report.Unset {
		return "false"
	}
	return strconv.FormatBool((*v.target == report.True) != v.negate)
}

func (v *tristateValue) Type() string     { return "bool" }
func (v *tristateValue) IsBoolFlag() bool { return true }

// reportFlags holds the command line state of every report flag.
type reportFlags map[string]*report.Tristate

// bindReportFlags registers --name and --no-name for every report flag.
func bindReportFlags(fs *pflag.FlagSet) reportFlags {
	rf := make(reportFlags)
	for _, name := range report.FlagNames() {
		state := new(report.Tristate)
		rf[name] = state

		f := fs.VarPF(&tristateValue{target: state}, name, reportFlagShorts[name], "show "+reportFlagHelp[name])
		f.NoOptDefVal = "true"
		f = fs.VarPF(&tristateValue{target: state, negate: true}, "no-"+name, "", "hide "+reportFlagHelp[name])
		f.NoOptDefVal = "true"
	}
	return rf
}

// FlagSet returns the explicitly given flags.
func (rf reportFlags) FlagSet() report.FlagSet {
	var fs report.FlagSet
	for name, state := range rf {
		if state.IsSet() {
			fs = fs.With(name, *state == report.True)
		}
	}
	return fs
}

// normalizeFlagName maps alias spellings (--unassigned, --debug_config,
// --plaintext and their --no- forms) onto the canonical flags.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	prefix, rest := "", name
	if strings.HasPrefix(name, "no-") {
		prefix, rest = "no-", name[len("no-"):]
	}
	if canonical, ok := report.FlagAliases()[strings.ReplaceAll(rest, "-", "_")]; ok {
		return pflag.NormalizedName(prefix + canonical)
	}
	return pflag.NormalizedName(name)
}

func describeFlags(fs report.FlagSet) string {
	if fs.Len() == 0 {
		return "(none)"
	}
	return fs.String()
}
