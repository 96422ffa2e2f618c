package effects

// Pure wraps a value computed without side effects so composition code can
// chain pure steps apart from the effects it plans.
type Pure[T any] struct {
	value T
}

func Of[T any](v T) Pure[T] {
	return Pure[T]{value: v}
}

func (p Pure[T]) Get() T {
	return p.value
}

func Map[T, U any](p Pure[T], f func(T) U) Pure[U] {
	return Of(f(p.value))
}

func FlatMap[T, U any](p Pure[T], f func(T) Pure[U]) Pure[U] {
	return f(p.value)
}

func Apply[T, U any](pf Pure[func(T) U], p Pure[T]) Pure[U] {
	return Of(pf.value(p.value))
}
