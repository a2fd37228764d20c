package report

import "strings"

// StyleHint tells the renderer how to decorate a row.
type StyleHint int

const (
	HintNeutral StyleHint = iota
	HintHeader
	HintChanged
	HintDeleted
	HintUnassigned
)

func (h StyleHint) String() string {
	switch h {
	case HintHeader:
		return "header"
	case HintChanged:
		return "changed"
	case HintDeleted:
		return "deleted"
	case HintUnassigned:
		return "unassigned"
	default:
		return "neutral"
	}
}

// Markers shown in front of classified rows.
const (
	MarkerChanged = "C"
	MarkerAdded   = "A"
	MarkerDeleted = "-"
)

// NoDefault is shown in place of the previous value of an added item.
const NoDefault = "no default"

// Row is one line of the report, free of any terminal decoration.
type Row struct {
	Section string
	// Label names the item: option name, trigger, action name.
	Label string
	// Value is the live value; may span several lines.
	Value string
	// Previous is the default value of a changed or deleted item.
	Previous string
	// Note is trailing descriptive text such as an action's doc line.
	Note string
	// Prefix is shown before the label: binding mode or action group.
	Prefix string
	Marker string
	Class  Class
	Hint   StyleHint
	// Depth is the nesting level below a parent row.
	Depth int
	// Link is the hyperlink target for Label, ValueLink the one for the
	// action name at the start of Value.
	Link      string
	ValueLink string
	// Swatch is the #rrggbb color a color row shows a sample of.
	Swatch string
}

// DisplayText is the row's text without alignment or decoration.
func (r Row) DisplayText() string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	add(r.Marker)
	if r.Prefix != "" {
		add("[" + r.Prefix + "]")
	}
	add(r.Label)
	add(strings.ReplaceAll(r.Value, "\n", "; "))
	if r.Previous != "" {
		add("(" + r.Previous + ")")
	}
	add(r.Note)
	return strings.Repeat("  ", r.Depth) + strings.Join(parts, " ")
}

func hintFor(c Class) StyleHint {
	switch c {
	case Changed:
		return HintChanged
	case Deleted:
		return HintDeleted
	case Unassigned:
		return HintUnassigned
	default:
		return HintNeutral
	}
}

func markerFor(c Classification) string {
	switch {
	case c.Added():
		return MarkerAdded
	case c.Class == Changed:
		return MarkerChanged
	case c.Class == Deleted:
		return MarkerDeleted
	default:
		return ""
	}
}
