package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// multiOptions accumulate one table entry per occurrence instead of being
// replaced by the last occurrence.
var multiOptions = map[string]bool{
	"symbol_map":              true,
	"narrow_symbols":          true,
	"font_features":           true,
	"modify_font":             true,
	"action_alias":            true,
	"kitten_alias":            true,
	"remote_control_password": true,
	"watcher":                 true,
	"exe_search_path":         true,
}

var colorNamePattern = regexp.MustCompile(`^(color[0-9]{1,3}|mark[1-3]_(fore|back)ground)$`)

func (l *Loader) parseConf(path string) (*Snapshot, error) {
	base := l.Base
	if base == nil {
		raw, err := loadRawDefaults()
		if err != nil {
			return nil, err
		}
		base = raw
	}
	s := base.Clone()
	s.Info.ConfigPaths = nil
	s.Info.ConfigOverrides = nil

	p := newConfParser(s, l.logger())
	if err := p.parseFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// confParser applies the directives of a terminal .conf file to a snapshot
// in place.
type confParser struct {
	snap       *Snapshot
	logger     *slog.Logger
	colorNames map[string]bool
	knownOpts  map[string]bool
	visited    map[string]bool
}

func newConfParser(s *Snapshot, logger *slog.Logger) *confParser {
	p := &confParser{
		snap:       s,
		logger:     logger,
		colorNames: make(map[string]bool),
		knownOpts:  make(map[string]bool),
		visited:    make(map[string]bool),
	}
	for _, name := range DefaultColorNames() {
		p.colorNames[name] = true
	}
	for _, c := range s.Colors {
		p.colorNames[c.Name] = true
	}
	if raw, err := loadRawDefaults(); err == nil {
		for _, o := range raw.Options {
			p.knownOpts[o.Name] = true
		}
	}
	return p
}

func (p *confParser) parseFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if p.visited[abs] {
		p.logger.Warn("skipping recursive include", "file", abs)
		return nil
	}
	p.visited[abs] = true

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()

	lines, err := logicalLines(f)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", abs, err)
	}
	p.snap.Info.ConfigPaths = append(p.snap.Info.ConfigPaths, abs)

	for _, ln := range lines {
		key, value := cutField(ln.text)
		p.directive(key, value, abs, ln.number)
	}
	return nil
}

type confLine struct {
	number int
	text   string
}

// logicalLines drops blank lines and comments and joins continuation lines
// (lines whose first non-blank character is a backslash) onto the previous
// line.
func logicalLines(r io.Reader) ([]confLine, error) {
	var lines []confLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, `\`) && len(lines) > 0 {
			lines[len(lines)-1].text += text[1:]
			continue
		}
		lines = append(lines, confLine{number: n, text: text})
	}
	return lines, scanner.Err()
}

// directive applies one "key value" line. file and line only feed log
// messages.
func (p *confParser) directive(key, value, file string, line int) {
	switch {
	case key == "include":
		p.include(value, file, false)
	case key == "globinclude":
		p.include(value, file, true)
	case key == "envinclude" || key == "geninclude":
		p.logger.Debug("ignoring unsupported directive", "file", file, "line", line, "directive", key)
	case key == "map":
		if b, ok := parseMap(value); ok {
			p.snap.Keys = append(p.snap.Keys, b)
		} else {
			p.logger.Debug("ignoring invalid map", "file", file, "line", line, "value", value)
		}
	case key == "mouse_map":
		if b, ok := parseMouseMap(value); ok {
			p.snap.Mouse = append(p.snap.Mouse, b)
		} else {
			p.logger.Debug("ignoring invalid mouse_map", "file", file, "line", line, "value", value)
		}
	case key == "clear_all_shortcuts":
		if truthy(value) {
			p.snap.Keys = nil
		}
	case key == "clear_all_mouse_actions":
		if truthy(value) {
			p.snap.Mouse = nil
		}
	case key == "env":
		p.env(value)
	case multiOptions[key]:
		p.multiOption(key, value)
	case p.colorNames[key] || colorNamePattern.MatchString(key):
		p.snap.Colors = setEntry(p.snap.Colors, key, value)
	default:
		if !p.knownOpts[key] {
			p.logger.Debug("unknown option", "file", file, "line", line, "option", key)
		}
		p.snap.Options = setEntry(p.snap.Options, key, value)
	}
}

func (p *confParser) include(pattern, from string, glob bool) {
	pattern = os.ExpandEnv(strings.TrimSpace(pattern))
	if strings.HasPrefix(pattern, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			pattern = filepath.Join(home, pattern[1:])
		}
	}
	if !filepath.IsAbs(pattern) {
		dir := "."
		if from != "override" {
			dir = filepath.Dir(from)
		}
		pattern = filepath.Join(dir, pattern)
	}

	paths := []string{pattern}
	if glob {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			p.logger.Warn("invalid include pattern", "file", from, "pattern", pattern, "error", err)
			return
		}
		sort.Strings(matches)
		paths = matches
	}
	for _, path := range paths {
		if err := p.parseFile(path); err != nil {
			p.logger.Warn("skipping include", "file", from, "include", path, "error", err)
		}
	}
}

func (p *confParser) env(value string) {
	name, val, hasValue := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if !hasValue {
		p.snap.Env = removeEntry(p.snap.Env, name)
		return
	}
	p.snap.Env = setEntry(p.snap.Env, name, val)
}

func (p *confParser) multiOption(key, value string) {
	table := make(map[string]any)
	if current, ok := p.snap.Option(key); ok {
		if m, ok := current.(map[string]any); ok {
			for k, v := range m {
				table[k] = v
			}
		}
	}
	k, v := cutField(value)
	if k == "" {
		return
	}
	table[k] = v
	p.snap.Options = setEntry(p.snap.Options, key, table)
}

// parseMap parses the value of a map directive:
//
//	[--mode NAME] [--when-focus-on EXPR] [--new-mode NAME] trigger action...
func parseMap(value string) (Binding, bool) {
	var b Binding
	var newMode string
	rest := value
	for {
		field, r := cutField(rest)
		if !strings.HasPrefix(field, "--") {
			break
		}
		rest = r
		name, arg, hasArg := strings.Cut(field[2:], "=")
		if !hasArg {
			arg, rest = cutField(rest)
		}
		switch name {
		case "mode":
			b.Mode = arg
		case "new-mode":
			newMode = arg
		case "when-focus-on":
			b.Mode = "when-focus-on " + arg
		}
	}
	b.Trigger, b.Action = cutField(rest)
	if b.Trigger == "" {
		return Binding{}, false
	}
	if newMode != "" && b.Action == "" {
		b.Action = "push_keyboard_mode " + newMode
	}
	if b.Action == "" {
		b.Action = "no_op"
	}
	return b, true
}

// parseMouseMap parses "button event modes action...".
func parseMouseMap(value string) (Binding, bool) {
	button, rest := cutField(value)
	event, rest := cutField(rest)
	modes, action := cutField(rest)
	if button == "" || event == "" || modes == "" {
		return Binding{}, false
	}
	if action == "" {
		action = "no_op"
	}
	return Binding{Trigger: button + " " + event + " " + modes, Action: action}, true
}

func cutField(s string) (field, rest string) {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return strings.TrimSpace(s), ""
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "on":
		return true
	}
	return false
}

// setEntry replaces the value of name in place or appends it.
func setEntry(entries []Entry, name string, value any) []Entry {
	for i, e := range entries {
		if e.Name == name {
			entries[i].Value = value
			return entries
		}
	}
	return append(entries, Entry{Name: name, Value: value})
}

func removeEntry(entries []Entry, name string) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}
