package refptr

// Weak is a non-owning reference to a payload managed by Shared. It keeps the
// counter block alive, but not the payload.
type Weak[T any] struct {
	// ptr is only valid after a successful promotion.
	ptr *T
	cnt *counter
}

// NewWeak returns a weak reference to the payload of s. A weak reference to an
// empty handle is empty (and expired).
func NewWeak[T any](s *Shared[T]) Weak[T] {
	if s.cnt != nil {
		s.cnt.incWeak()
	}
	return Weak[T]{ptr: s.ptr, cnt: s.cnt}
}

// Clone returns another weak reference to the same block.
func (w *Weak[T]) Clone() Weak[T] {
	if w.cnt != nil {
		w.cnt.incWeak()
	}
	return Weak[T]{ptr: w.ptr, cnt: w.cnt}
}

// Move transfers the reference held by w to the returned handle, w becomes
// empty.
func (w *Weak[T]) Move() Weak[T] {
	r := *w
	w.ptr, w.cnt = nil, nil
	return r
}

// Assign makes w refer to the same block as o.
func (w *Weak[T]) Assign(o *Weak[T]) {
	if w == o {
		return
	}
	w.set(o.ptr, o.cnt)
}

// AssignShared makes w observe the payload of s.
func (w *Weak[T]) AssignShared(s *Shared[T]) {
	w.set(s.ptr, s.cnt)
}

func (w *Weak[T]) set(ptr *T, cnt *counter) {
	if cnt != nil {
		cnt.incWeak()
	}
	w.Release()
	w.ptr, w.cnt = ptr, cnt
}

// MoveFrom releases w and transfers the reference held by o to it, leaving o
// empty.
func (w *Weak[T]) MoveFrom(o *Weak[T]) {
	if w == o {
		return
	}
	ptr, cnt := o.ptr, o.cnt
	o.ptr, o.cnt = nil, nil
	w.Release()
	w.ptr, w.cnt = ptr, cnt
}

// Reset releases w, leaving it empty.
func (w *Weak[T]) Reset() {
	w.Release()
}

// Swap exchanges the references held by w and o.
func (w *Weak[T]) Swap(o *Weak[T]) {
	w.ptr, o.ptr = o.ptr, w.ptr
	w.cnt, o.cnt = o.cnt, w.cnt
}

// UseCount returns the number of strong references to the observed payload.
func (w *Weak[T]) UseCount() uint {
	if w.cnt == nil {
		return 0
	}
	return w.cnt.strong
}

// Expired returns true if the payload is destroyed (or w is empty).
func (w *Weak[T]) Expired() bool {
	return w.UseCount() == 0
}

// Lock returns a strong reference to the payload or an empty handle if w is
// expired. Unlike FromWeak it never fails.
func (w *Weak[T]) Lock() Shared[T] {
	if w.Expired() {
		return Shared[T]{}
	}
	w.cnt.incStrong()
	return Shared[T]{ptr: w.ptr, cnt: w.cnt}
}

// Release drops the weak reference and leaves w empty. The counter block is
// freed if this was the last reference of any kind. The payload is never
// touched.
func (w *Weak[T]) Release() {
	if w.cnt == nil {
		return
	}
	cnt := w.cnt
	w.ptr, w.cnt = nil, nil
	cnt.decWeak()
	cnt.tryFree()
}
