package engine

// SplitFunc derives the state of each child when a space is split into parts children.
type SplitFunc[S any] func(parent S, parts int) S

// Rule computes the next state of a leaf from its own state and its neighbors' states.
type Rule[S any] func(state S, neighbors []S) S

// Number is the set of types DivideEvenly works with.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// CopyState gives every child an unchanged copy of the parent state.
func CopyState[S any](parent S, _ int) S {
	return parent
}

// DivideEvenly splits a quantity between the children, so the sum over the
// children matches the parent (up to integer truncation).
func DivideEvenly[S Number](parent S, parts int) S {
	return parent / S(parts)
}

// Sum merges numeric states by addition. It is the inverse of DivideEvenly.
func Sum[S Number](states []S) S {
	var total S
	for _, s := range states {
		total += s
	}
	return total
}
