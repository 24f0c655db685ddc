package atoms

// Origin tracks who supplied a field's value. The states drive the
// merge discipline: a later write never overwrites a present value.
type Origin int

const (
	// Unset means no value has been supplied yet.
	Unset Origin = iota
	// Computed means the finalization engine derived the value from
	// policy defaults and already-finalized fields.
	Computed
	// User means the value came from the caller: the manifest, an
	// existing packaging directory, or a customization.
	User
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case Computed:
		return "computed"
	case User:
		return "user-supplied"
	default:
		return "unset"
	}
}

// Field is one optional slot of the packaging declaration: a value plus
// the origin state that records who set it.
type Field[T any] struct {
	value  T
	origin Origin
}

// Get returns the current value (the zero value while unset).
func (f Field[T]) Get() T { return f.value }

// IsSet reports whether the field holds a value.
func (f Field[T]) IsSet() bool { return f.origin != Unset }

// Origin returns the field's origin state.
func (f Field[T]) Origin() Origin { return f.origin }

// Set stores a user-supplied value if the field is still unset and
// reports whether it was stored. First writer wins.
func (f *Field[T]) Set(v T) bool { return f.set(v, User) }

// Compute stores an engine-derived value if the field is still unset and
// reports whether it was stored. A present value, whatever its origin,
// is never altered.
func (f *Field[T]) Compute(v T) bool { return f.set(v, Computed) }

// Override unconditionally replaces the value with a user-supplied one.
// Used by remapping steps that must retroactively correct earlier data.
func (f *Field[T]) Override(v T) {
	f.value = v
	f.origin = User
}

func (f *Field[T]) set(v T, o Origin) bool {
	if f.origin != Unset {
		return false
	}
	f.value = v
	f.origin = o
	return true
}

// mergeField copies src into dst when dst is unset.
func mergeField[T any](dst *Field[T], src Field[T]) {
	if src.origin != Unset && dst.origin == Unset {
		*dst = src
	}
}
