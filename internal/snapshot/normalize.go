package snapshot

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var numberPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Normalize renders a decoded value as a canonical string so that values
// from TOML, YAML, JSON and .conf sources compare equal when they mean the
// same thing. Number-like strings are canonicalized ("1.0" becomes "1").
// Tables are rendered with sorted keys.
func Normalize(v any) string {
	return render(v, true)
}

// Text renders a decoded value like Normalize but keeps strings as written.
// Use it for display and for opaque values such as environment variables.
func Text(v any) string {
	return render(v, false)
}

func render(v any, canonical bool) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		x = strings.TrimSpace(x)
		if canonical && numberPattern.MatchString(x) {
			if f, err := strconv.ParseFloat(x, 64); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
		return x
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = render(item, canonical)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := sortedKeys(x)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + render(x[k], canonical)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = val
		}
		return render(m, canonical)
	default:
		return fmt.Sprint(x)
	}
}

// Display renders a value for humans, keeping strings as written. Tables
// with more than one entry are split into one "key → value" line each;
// everything else is one line.
func Display(v any) []string {
	m, ok := v.(map[string]any)
	if !ok || len(m) < 2 {
		return []string{Text(v)}
	}
	keys := sortedKeys(m)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + " → " + Text(m[k])
	}
	return lines
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var namedColors = map[string]string{
	"black":   "#000000",
	"red":     "#ff0000",
	"green":   "#00ff00",
	"yellow":  "#ffff00",
	"blue":    "#0000ff",
	"magenta": "#ff00ff",
	"cyan":    "#00ffff",
	"white":   "#ffffff",
	"gray":    "#bebebe",
	"grey":    "#bebebe",
}

// NormalizeColor maps the spellings a color can take (#rgb, #rrggbb in any
// case, rgb:r/g/b, basic names) onto lowercase #rrggbb. Values that are not
// colors (for example "none") are returned trimmed and lowercased.
func NormalizeColor(v any) string {
	s := strings.ToLower(Normalize(v))
	if hex, ok := colorHex(s); ok {
		return hex
	}
	return s
}

// ColorHex reports the #rrggbb form of a color value, if it is one.
func ColorHex(v any) (string, bool) {
	return colorHex(strings.ToLower(Normalize(v)))
}

func colorHex(s string) (string, bool) {
	if named, ok := namedColors[s]; ok {
		return named, true
	}
	switch {
	case strings.HasPrefix(s, "#"):
		if len(s) != 4 && len(s) != 7 {
			return "", false
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	case strings.HasPrefix(s, "rgb:"):
		parts := strings.Split(s[len("rgb:"):], "/")
		if len(parts) != 3 {
			return "", false
		}
		var channels [3]float64
		for i, p := range parts {
			if len(p) == 0 || len(p) > 4 {
				return "", false
			}
			n, err := strconv.ParseUint(p, 16, 16)
			if err != nil {
				return "", false
			}
			max := float64(uint64(1)<<(4*len(p)) - 1)
			channels[i] = float64(n) / max
		}
		return colorful.Color{R: channels[0], G: channels[1], B: channels[2]}.Hex(), true
	}
	return "", false
}

var modifierAliases = map[string]string{
	"control": "ctrl",
	"ctl":     "ctrl",
	"⌃":       "ctrl",
	"cmd":     "super",
	"command": "super",
	"⌘":       "super",
	"win":     "super",
	"opt":     "alt",
	"option":  "alt",
	"⌥":       "alt",
	"⇧":       "shift",
}

var modifierRank = map[string]int{
	"ctrl":  0,
	"alt":   1,
	"shift": 2,
	"super": 3,
	"hyper": 4,
	"meta":  5,
}

// KittyModPlaceholder is the modifier name that expands to the kitty_mod
// option inside triggers.
const KittyModPlaceholder = "kitty_mod"

// NormalizeTrigger canonicalizes a key chord or chord sequence
// ("ctrl+x>ctrl+y"): lowercase, modifier aliases resolved, kitty_mod
// expanded, modifiers in a fixed order.
func NormalizeTrigger(trigger, kittyMod string) string {
	parts := strings.Split(strings.TrimSpace(trigger), ">")
	for i, p := range parts {
		parts[i] = normalizeChord(p, kittyMod)
	}
	return strings.Join(parts, ">")
}

// NormalizeMouseTrigger canonicalizes "button event modes" mouse triggers.
// The button part is a chord and may carry modifiers.
func NormalizeMouseTrigger(trigger, kittyMod string) string {
	fields := strings.Fields(strings.ToLower(trigger))
	if len(fields) == 0 {
		return ""
	}
	fields[0] = normalizeChord(fields[0], kittyMod)
	if len(fields) > 2 {
		modes := strings.Split(fields[2], ",")
		sort.Strings(modes)
		fields[2] = strings.Join(modes, ",")
	}
	return strings.Join(fields, " ")
}

func normalizeChord(chord, kittyMod string) string {
	chord = strings.ToLower(strings.TrimSpace(chord))
	if chord == "" {
		return ""
	}
	var key, modPart string
	switch {
	case chord == "+":
		key = "+"
	case strings.HasSuffix(chord, "++"):
		key, modPart = "+", strings.TrimSuffix(chord, "++")
	default:
		if i := strings.LastIndex(chord, "+"); i >= 0 {
			key, modPart = chord[i+1:], chord[:i]
		} else {
			key = chord
		}
	}

	seen := make(map[string]bool)
	var mods []string
	add := func(m string) {
		m = strings.TrimSpace(m)
		if alias, ok := modifierAliases[m]; ok {
			m = alias
		}
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		mods = append(mods, m)
	}
	if modPart != "" {
		for _, m := range strings.Split(modPart, "+") {
			if m == KittyModPlaceholder {
				for _, km := range strings.Split(strings.ToLower(kittyMod), "+") {
					add(km)
				}
				continue
			}
			add(m)
		}
	}
	sort.SliceStable(mods, func(i, j int) bool {
		ri, iok := modifierRank[mods[i]]
		rj, jok := modifierRank[mods[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return mods[i] < mods[j]
		}
	})
	if len(mods) == 0 {
		return key
	}
	return strings.Join(mods, "+") + "+" + key
}

// SplitChord separates the modifier prefix (with its trailing "+") from the
// final key of the last chord in a trigger, for display.
func SplitChord(trigger string) (mods, key string) {
	if trigger == "" {
		return "", ""
	}
	if strings.HasSuffix(trigger, "++") {
		return trigger[:len(trigger)-1], "+"
	}
	i := strings.LastIndex(trigger, "+")
	if i < 0 || i == len(trigger)-1 {
		return "", trigger
	}
	return trigger[:i+1], trigger[i+1:]
}
