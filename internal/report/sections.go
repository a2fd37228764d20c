package report

import (
	"strings"

	"github.com/Dicklesworthstone/termconf/internal/snapshot"
	"github.com/Dicklesworthstone/termconf/internal/sysinfo"
)

// DefaultDocsURL is the base of documentation hyperlinks.
const DefaultDocsURL = "https://sw.kovidgoyal.net/kitty"

// Input is everything the builders read. Live and Defaults must not be nil.
type Input struct {
	Live     *snapshot.Snapshot
	Defaults *snapshot.Snapshot
	Host     sysinfo.Info
	DocsURL  string
}

func (in Input) docsURL() string {
	if in.DocsURL == "" {
		return DefaultDocsURL
	}
	return strings.TrimRight(in.DocsURL, "/")
}

func (in Input) optionLink(name string) string {
	return in.docsURL() + "/conf/#opt-kitty." + name
}

func (in Input) actionLink(name string) string {
	return in.docsURL() + "/actions/#action-" + name
}

type builder func(Input, Resolution) []Row

var builders = map[string]builder{
	FlagInfo:    buildInfo,
	FlagConfig:  buildOptions,
	FlagColors:  buildColors,
	FlagKeys:    buildKeys,
	FlagMouse:   buildMouse,
	FlagEnv:     buildEnv,
	FlagActions: buildActions,
}

var sectionTitles = map[string]string{
	FlagInfo:    "system info",
	FlagConfig:  "config options",
	FlagColors:  "colors",
	FlagKeys:    "keyboard shortcuts",
	FlagMouse:   "mouse actions",
	FlagEnv:     "environment overrides",
	FlagActions: "available actions",
}

var sectionAnchors = map[string]string{
	FlagConfig:  "/conf/",
	FlagColors:  "/conf/#the-color-table",
	FlagKeys:    "/conf/#keyboard-shortcuts",
	FlagMouse:   "/conf/#mouse-actions",
	FlagEnv:     "/conf/#opt-kitty.env",
	FlagActions: "/actions/",
}

// SectionTitle is the header label of a section.
func SectionTitle(section string) string {
	return sectionTitles[section]
}

func header(section string, in Input) Row {
	r := Row{Section: section, Label: sectionTitles[section], Hint: HintHeader}
	if anchor, ok := sectionAnchors[section]; ok {
		r.Link = in.docsURL() + anchor
	}
	return r
}

func buildInfo(in Input, _ Resolution) []Row {
	var rows []Row
	add := func(label, value string, depth int) {
		rows = append(rows, Row{Section: FlagInfo, Label: label, Value: value, Depth: depth})
	}
	addGroup := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		add(label, "", 0)
		for _, item := range items {
			add(item, "", 1)
		}
	}

	version := in.Live.Info.Version
	if version == "" {
		version = in.Defaults.Info.Version
	}
	if version != "" {
		add("Version", version, 0)
	}
	if u := in.Host.Uname.String(); u != "" {
		add("System", u, 0)
	}
	if in.Host.MacOS != "" {
		add("macOS", in.Host.MacOS, 0)
	}
	if in.Host.Issue != "" {
		add("OS", in.Host.Issue, 0)
	}
	if len(in.Host.Release) > 0 {
		add("Release", strings.Join(in.Host.Release, "\n"), 0)
	}
	if in.Host.DisplayServer != "" {
		add("Running under", in.Host.DisplayServer, 0)
	}
	if frozen := firstFrozen(in.Live.Info.Frozen, in.Defaults.Info.Frozen); frozen != nil {
		value := "False"
		if *frozen {
			value = "True"
		}
		add("Frozen", value, 0)
	}

	paths := []struct{ label, value string }{
		{"executable", firstNonEmpty(in.Live.Info.Executable, in.Host.TerminalExe)},
		{"base dir", in.Live.Info.BaseDir},
		{"extensions dir", in.Live.Info.ExtensionsDir},
		{"system shell", firstNonEmpty(in.Live.Info.Shell, in.Host.Shell)},
	}
	var pathRows []Row
	for _, p := range paths {
		if p.value != "" {
			pathRows = append(pathRows, Row{Section: FlagInfo, Label: p.label, Value: p.value, Depth: 1})
		}
	}
	if len(pathRows) > 0 {
		add("Paths", "", 0)
		rows = append(rows, pathRows...)
	}

	addGroup("Loaded config files", in.Live.Info.ConfigPaths)
	addGroup("Loaded config overrides", in.Live.Info.ConfigOverrides)

	if len(in.Host.Env) > 0 {
		add("Environment", "", 0)
		for _, e := range in.Host.Env {
			add(e.Name, e.Value, 1)
		}
	}
	return rows
}

func firstFrozen(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// entryRows diffs two named value lists: default order first, then entries
// only the live side has, in live order.
func entryRows(section string, kind Kind, live, defaults []snapshot.Entry, res Resolution,
	normalize func(any) string, link func(string) string) []Row {

	liveByName := make(map[string]snapshot.Entry, len(live))
	for _, e := range live {
		liveByName[e.Name] = e
	}
	defaultNames := make(map[string]bool, len(defaults))

	var rows []Row
	emit := func(name string, liveEntry, defEntry *snapshot.Entry) {
		liveVal, defVal := Absent, Absent
		if liveEntry != nil {
			liveVal = Present(normalize(liveEntry.Value))
		}
		if defEntry != nil {
			defVal = Present(normalize(defEntry.Value))
		}
		c := Classify(kind, liveVal, defVal, false)
		if !res.Visible(kind, c) {
			return
		}
		r := Row{Section: section, Label: name, Class: c.Class, Hint: hintFor(c.Class), Marker: markerFor(c)}
		if link != nil {
			r.Link = link(name)
		}
		switch {
		case c.Class == Deleted:
			r.Previous = displayValue(kind, defEntry.Value, normalize)
		case c.Added():
			r.Value = displayValue(kind, liveEntry.Value, normalize)
			r.Previous = NoDefault
		case c.Class == Changed:
			r.Value = displayValue(kind, liveEntry.Value, normalize)
			r.Previous = displayValue(kind, defEntry.Value, normalize)
		default:
			r.Value = displayValue(kind, liveEntry.Value, normalize)
		}
		if kind == KindColor {
			if c.Class == Deleted {
				r.Swatch, _ = snapshot.ColorHex(defEntry.Value)
			} else {
				r.Swatch, _ = snapshot.ColorHex(liveEntry.Value)
			}
		}
		rows = append(rows, r)
	}

	for i := range defaults {
		d := &defaults[i]
		defaultNames[d.Name] = true
		if l, ok := liveByName[d.Name]; ok {
			emit(d.Name, &l, d)
		} else {
			emit(d.Name, nil, d)
		}
	}
	for i := range live {
		if !defaultNames[live[i].Name] {
			emit(live[i].Name, &live[i], nil)
		}
	}
	return rows
}

func displayValue(kind Kind, v any, normalize func(any) string) string {
	if kind == KindColor {
		return normalize(v)
	}
	return strings.Join(snapshot.Display(v), "\n")
}

func buildOptions(in Input, res Resolution) []Row {
	return entryRows(FlagConfig, KindOption, in.Live.Options, in.Defaults.Options, res,
		snapshot.Normalize, in.optionLink)
}

func buildColors(in Input, res Resolution) []Row {
	return entryRows(FlagColors, KindColor, in.Live.Colors, in.Defaults.Colors, res,
		snapshot.NormalizeColor, in.optionLink)
}

func buildEnv(in Input, res Resolution) []Row {
	return entryRows(FlagEnv, KindEnv, in.Live.Env, in.Defaults.Env, res, snapshot.Text, nil)
}

// bindingRows diffs two binding tables. Live bindings come first in live
// order, followed by default bindings the live table no longer has.
func bindingRows(section string, kind Kind, live, defaults []snapshot.Binding, res Resolution, in Input) []Row {
	defaultByKey := make(map[string]snapshot.Binding, len(defaults))
	for _, b := range defaults {
		defaultByKey[b.Key()] = b
	}
	liveKeys := make(map[string]bool, len(live))

	var rows []Row
	emit := func(b snapshot.Binding, liveVal, defVal Value) {
		c := Classify(kind, liveVal, defVal, false)
		if !res.Visible(kind, c) {
			return
		}
		r := Row{
			Section: section,
			Label:   b.Trigger,
			Prefix:  b.Mode,
			Value:   liveVal.Text,
			Class:   c.Class,
			Hint:    hintFor(c.Class),
			Marker:  markerFor(c),
		}
		if liveVal.OK {
			r.ValueLink = in.actionLink(b.ActionName())
		}
		switch {
		case c.Added():
			r.Previous = NoDefault
		case c.Class == Changed || c.Class == Deleted:
			r.Previous = defVal.Text
		}
		rows = append(rows, r)
	}

	for _, b := range live {
		liveKeys[b.Key()] = true
		defVal := Absent
		if d, ok := defaultByKey[b.Key()]; ok {
			defVal = Present(d.Action)
		}
		emit(b, Present(b.Action), defVal)
	}
	for _, d := range defaults {
		if !liveKeys[d.Key()] {
			emit(d, Absent, Present(d.Action))
		}
	}
	return rows
}

func buildKeys(in Input, res Resolution) []Row {
	return bindingRows(FlagKeys, KindKey, in.Live.Keys, in.Defaults.Keys, res, in)
}

func buildMouse(in Input, res Resolution) []Row {
	return bindingRows(FlagMouse, KindMouse, in.Live.Mouse, in.Defaults.Mouse, res, in)
}

// InvokedActions maps every action name to the live bindings invoking it,
// keys first, then mouse bindings.
func InvokedActions(s *snapshot.Snapshot) map[string][]snapshot.Binding {
	invoked := make(map[string][]snapshot.Binding)
	for _, table := range [][]snapshot.Binding{s.Keys, s.Mouse} {
		for _, b := range table {
			name := b.ActionName()
			invoked[name] = append(invoked[name], b)
		}
	}
	return invoked
}

func buildActions(in Input, res Resolution) []Row {
	catalog := in.Live.Actions
	if len(catalog) == 0 {
		catalog = in.Defaults.Actions
	}
	invoked := InvokedActions(in.Live)

	var rows []Row
	for _, a := range catalog {
		bindings := invoked[a.Name]
		c := Classify(KindAction, Absent, Absent, len(bindings) > 0)
		if !res.Visible(KindAction, c) {
			continue
		}
		rows = append(rows, Row{
			Section: FlagActions,
			Label:   a.Name,
			Prefix:  a.Group,
			Note:    a.Doc,
			Class:   c.Class,
			Hint:    hintFor(c.Class),
			Link:    in.actionLink(a.Name),
		})
		for _, b := range bindings {
			child := Row{
				Section: FlagActions,
				Label:   b.Trigger,
				Prefix:  b.Mode,
				Depth:   1,
			}
			if _, args := snapshot.SplitInvocation(b.Action); args != "" {
				child.Value = b.Action
				child.ValueLink = in.actionLink(a.Name)
			}
			rows = append(rows, child)
		}
	}
	return rows
}
