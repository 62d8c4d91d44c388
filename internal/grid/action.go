package grid

// ActionVariant is the closed set of bulk action kinds. Front ends map each
// variant to a style through a table indexed by the variant.
type ActionVariant int

const (
	ActionDefault ActionVariant = iota
	ActionDestructive

	// ActionVariantCount is the number of variants; mapping tables are sized
	// with it.
	ActionVariantCount
)

func (v ActionVariant) String() string {
	switch v {
	case ActionDefault:
		return "default"
	case ActionDestructive:
		return "destructive"
	}
	return "unknown"
}

// BulkAction is an operation applied to every selected row at once. Handler
// receives the selected rows resolved at invocation time.
type BulkAction[R any] struct {
	Label   string
	Key     string // optional shortcut hint for front ends
	Variant ActionVariant
	Handler func(selected []R)
}
