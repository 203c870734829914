package model

// Option is an explicit three-state container for fields the specification
// calls "possibly unassigned" (a vNode's rNode, a pair's path, a flow's
// slot). Using a sentinel integer (-1, etc.) for "unassigned" is exactly the
// bug class this type exists to rule out at compile time.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }

// None is the absent value of T.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the contained value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.ok }

// MustGet returns the contained value, panicking if absent. Callers should
// only use this once IsSome has already been checked, or when the caller's
// own invariant guarantees presence.
func (o Option[T]) MustGet() T {
	if !o.ok {
		panic("model: Option.MustGet called on an absent value")
	}
	return o.value
}
