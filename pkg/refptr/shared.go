/*
Package refptr implements shared ownership of heap objects with deterministic
destruction. Shared is a strong reference that keeps its payload alive, Weak
observes the payload without extending its lifetime and can be promoted back
to Shared while the payload is alive.

Handles are plain values with an empty zero value. Since Go has no copy
constructors or destructors, duplicating a handle is done with Clone and
dropping it with Release; copying a handle struct by assignment bypasses
reference counting and must not be done.

Handles are not safe for concurrent use, all handles sharing a payload must be
owned by a single goroutine at a time.
*/
package refptr

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrExpired is returned when a strong reference is requested from a weak one
// whose payload has already been destroyed.
var ErrExpired = errors.New("expired weak reference")

// Destroyer is implemented by payloads that need cleanup once the last strong
// reference to them is dropped. Destroy is called exactly once.
type Destroyer interface {
	Destroy()
}

// Shared is a strong reference to a payload of type T.
type Shared[T any] struct {
	ptr *T
	cnt *counter
}

// New takes ownership of p. A nil p produces an empty handle.
func New[T any](p *T) Shared[T] {
	if p == nil {
		return Shared[T]{}
	}
	return Shared[T]{ptr: p, cnt: newCounter()}
}

// FromWeak promotes w to a strong reference. It returns ErrExpired if the
// payload w refers to is already destroyed (or w is empty).
func FromWeak[T any](w *Weak[T]) (Shared[T], error) {
	if w.Expired() {
		reportExpired[T]()
		return Shared[T]{}, ErrExpired
	}
	w.cnt.incStrong()
	return Shared[T]{ptr: w.ptr, cnt: w.cnt}, nil
}

// Clone returns a new strong reference to the same payload.
func (s *Shared[T]) Clone() Shared[T] {
	if s.cnt != nil {
		s.cnt.incStrong()
	}
	return Shared[T]{ptr: s.ptr, cnt: s.cnt}
}

// Move transfers the reference held by s to the returned handle, s becomes
// empty. Counts are not changed.
func (s *Shared[T]) Move() Shared[T] {
	r := *s
	s.ptr, s.cnt = nil, nil
	return r
}

// Assign makes s share the payload of o, releasing whatever s held before.
func (s *Shared[T]) Assign(o *Shared[T]) {
	if s == o {
		return
	}
	ptr, cnt := o.ptr, o.cnt
	if cnt != nil {
		cnt.incStrong()
	}
	s.Release()
	s.ptr, s.cnt = ptr, cnt
}

// MoveFrom releases s and transfers the reference held by o to it, leaving o
// empty.
func (s *Shared[T]) MoveFrom(o *Shared[T]) {
	if s == o {
		return
	}
	ptr, cnt := o.ptr, o.cnt
	o.ptr, o.cnt = nil, nil
	s.Release()
	s.ptr, s.cnt = ptr, cnt
}

// AssignWeak promotes w and stores the result in s. If w is expired,
// ErrExpired is returned and s is left untouched.
func (s *Shared[T]) AssignWeak(w *Weak[T]) error {
	if w.Expired() {
		reportExpired[T]()
		return ErrExpired
	}
	ptr, cnt := w.ptr, w.cnt
	cnt.incStrong()
	s.Release()
	s.ptr, s.cnt = ptr, cnt
	return nil
}

// Reset releases the payload held by s, leaving it empty.
func (s *Shared[T]) Reset() {
	s.ResetTo(nil)
}

// ResetTo releases the payload held by s and takes ownership of p with a new
// counter block. It's a no-op if p is the payload s already holds.
func (s *Shared[T]) ResetTo(p *T) {
	if p == s.ptr {
		return
	}
	s.Release()
	if p != nil {
		s.ptr, s.cnt = p, newCounter()
	}
}

// Swap exchanges the references held by s and o.
func (s *Shared[T]) Swap(o *Shared[T]) {
	s.ptr, o.ptr = o.ptr, s.ptr
	s.cnt, o.cnt = o.cnt, s.cnt
}

// Get returns the payload pointer without affecting ownership, nil for an
// empty handle.
func (s *Shared[T]) Get() *T {
	return s.ptr
}

// Value returns a copy of the payload. It panics if s is empty.
func (s *Shared[T]) Value() T {
	return *s.ptr
}

// Valid returns true if s holds a payload.
func (s *Shared[T]) Valid() bool {
	return s.ptr != nil
}

// UseCount returns the number of strong references to the payload, 0 for an
// empty handle.
func (s *Shared[T]) UseCount() uint {
	if s.cnt == nil {
		return 0
	}
	return s.cnt.strong
}

// Weak returns a weak reference to the payload of s.
func (s *Shared[T]) Weak() Weak[T] {
	return NewWeak(s)
}

// Release drops the reference held by s and leaves it empty. The payload is
// destroyed if it was the last strong reference, the counter block is freed
// if there are no weak references either. Releasing an empty handle is a
// no-op.
func (s *Shared[T]) Release() {
	if s.cnt == nil {
		return
	}
	ptr, cnt := s.ptr, s.cnt
	s.ptr, s.cnt = nil, nil
	if cnt.decStrong() != 0 {
		return
	}
	destroy(ptr)
	// Destroy can release weak references to its own block.
	cnt.tryFree()
}

func destroy[T any](p *T) {
	if d, ok := any(p).(Destroyer); ok {
		d.Destroy()
	}
	payloadsDestroyed.Inc()
	if ce := logger().Check(zap.DebugLevel, "payload destroyed"); ce != nil {
		ce.Write(zap.String("type", fmt.Sprintf("%T", p)))
	}
}

func reportExpired[T any]() {
	expiredPromotions.Inc()
	if ce := logger().Check(zap.DebugLevel, "promotion of expired weak reference"); ce != nil {
		ce.Write(zap.String("type", fmt.Sprintf("%T", (*T)(nil))))
	}
}
