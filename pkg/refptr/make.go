package refptr

import "fmt"

// block holds a payload together with its counter, so that both are allocated
// at once.
type block[T any] struct {
	cnt counter
	val T
}

// Make allocates a zero payload and its counter block in one allocation, then
// initializes the payload with init (which can be nil). If init fails nothing
// is retained, Destroy is not called and the error is returned.
func Make[T any](init func(*T) error) (Shared[T], error) {
	b := new(block[T])
	if init != nil {
		if err := init(&b.val); err != nil {
			return Shared[T]{}, fmt.Errorf("failed to construct payload: %w", err)
		}
	}
	b.cnt.init()
	return Shared[T]{ptr: &b.val, cnt: &b.cnt}, nil
}

// MakeValue is like Make, but the payload is a copy of v.
func MakeValue[T any](v T) Shared[T] {
	b := &block[T]{val: v}
	b.cnt.init()
	return Shared[T]{ptr: &b.val, cnt: &b.cnt}
}
