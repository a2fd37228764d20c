package report

// Kind is the category a configuration item belongs to.
type Kind int

const (
	KindOption Kind = iota
	KindColor
	KindEnv
	KindKey
	KindMouse
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindOption:
		return "option"
	case KindColor:
		return "color"
	case KindEnv:
		return "environment-variable"
	case KindKey:
		return "key-binding"
	case KindMouse:
		return "mouse-binding"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Class is the outcome of comparing an item with its default.
type Class int

const (
	Unchanged Class = iota
	Changed
	Deleted
	Unassigned
)

func (c Class) String() string {
	switch c {
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	case Unassigned:
		return "unassigned"
	default:
		return "unchanged"
	}
}

// Value is an optional normalized value.
type Value struct {
	Text string
	OK   bool
}

// Present wraps a normalized value.
func Present(text string) Value {
	return Value{Text: text, OK: true}
}

// Absent is the missing value.
var Absent = Value{}

// Classification is a Class together with both values it was derived from.
type Classification struct {
	Class   Class
	Live    Value
	Default Value
}

// Added reports a live item that has no default.
func (c Classification) Added() bool {
	return c.Class == Changed && !c.Default.OK
}

// Classify compares a live value with its default. Values are compared by
// their normalized text. For actions only referenced matters: an action no
// binding invokes is Unassigned.
func Classify(kind Kind, live, def Value, referenced bool) Classification {
	c := Classification{Live: live, Default: def}
	switch {
	case kind == KindAction:
		if referenced {
			c.Class = Unchanged
		} else {
			c.Class = Unassigned
		}
	case !live.OK && def.OK:
		c.Class = Deleted
	case live.OK && !def.OK:
		c.Class = Changed
	case live.OK && live.Text != def.Text:
		c.Class = Changed
	default:
		c.Class = Unchanged
	}
	return c
}

// Visible applies the row-level filters of r to a classified item.
func (r Resolution) Visible(kind Kind, c Classification) bool {
	switch c.Class {
	case Unassigned:
		return r.ShowEmpty
	case Deleted:
		return r.ShowDeleted
	case Unchanged:
		return kind == KindAction || !r.DiffOnly
	default:
		return true
	}
}
