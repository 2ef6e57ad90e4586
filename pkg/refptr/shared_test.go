package refptr

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// tracked counts its own destructions.
type tracked struct {
	id        int
	destroyed *int
}

func (p *tracked) Destroy() {
	*p.destroyed++
}

func newTracked(id int) (*tracked, *int) {
	var n int
	return &tracked{id: id, destroyed: &n}, &n
}

// lifecycle captures metric values to compare them with later ones.
type lifecycle struct {
	allocated, freed, destroyed float64
}

func snapshot() lifecycle {
	return lifecycle{
		allocated: testutil.ToFloat64(blocksAllocated),
		freed:     testutil.ToFloat64(blocksFreed),
		destroyed: testutil.ToFloat64(payloadsDestroyed),
	}
}

func (l lifecycle) requireDelta(t *testing.T, allocated, freed, destroyed int) {
	cur := snapshot()
	require.Equal(t, float64(allocated), cur.allocated-l.allocated, "allocated blocks")
	require.Equal(t, float64(freed), cur.freed-l.freed, "freed blocks")
	require.Equal(t, float64(destroyed), cur.destroyed-l.destroyed, "destroyed payloads")
}

func TestNew(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		before := snapshot()
		s := New[int](nil)
		require.False(t, s.Valid())
		require.Nil(t, s.Get())
		require.Equal(t, uint(0), s.UseCount())
		s.Release()
		before.requireDelta(t, 0, 0, 0)
	})
	t.Run("payload", func(t *testing.T) {
		before := snapshot()
		p, n := newTracked(1)
		s := New(p)
		require.True(t, s.Valid())
		require.Same(t, p, s.Get())
		require.Equal(t, 1, s.Value().id)
		require.Equal(t, uint(1), s.UseCount())

		s.Release()
		require.Equal(t, 1, *n)
		require.False(t, s.Valid())
		s.Release()
		require.Equal(t, 1, *n)
		before.requireDelta(t, 1, 1, 1)
	})
}

func TestShared_CloneRelease(t *testing.T) {
	p, n := newTracked(1)
	a := New(p)
	b := a.Clone()
	require.Equal(t, uint(2), a.UseCount())
	require.Equal(t, uint(2), b.UseCount())
	require.Same(t, a.Get(), b.Get())

	a.Release()
	require.Equal(t, 0, *n)
	require.Equal(t, uint(1), b.UseCount())

	b.Release()
	require.Equal(t, 1, *n)
}

func TestShared_UseCountTracksLiveHandles(t *testing.T) {
	p, n := newTracked(1)
	handles := []Shared[tracked]{New(p)}
	for i := 0; i < 9; i++ {
		handles = append(handles, handles[i].Clone())
	}
	moved := handles[9].Move()
	require.False(t, handles[9].Valid())
	handles[9] = moved
	for i := range handles {
		require.Equal(t, uint(10), handles[i].UseCount())
	}
	for i := 0; i < 9; i++ {
		handles[i].Release()
		require.Equal(t, uint(9-i), handles[9].UseCount())
	}
	require.Equal(t, 0, *n)
	handles[9].Release()
	require.Equal(t, 1, *n)
}

func TestShared_Move(t *testing.T) {
	p, _ := newTracked(1)
	a := New(p)
	b := a.Move()
	require.False(t, a.Valid())
	require.Equal(t, uint(0), a.UseCount())
	require.Equal(t, uint(1), b.UseCount())
	b.Release()

	var e Shared[tracked]
	m := e.Move()
	require.False(t, m.Valid())
}

func TestShared_Assign(t *testing.T) {
	p1, n1 := newTracked(1)
	p2, n2 := newTracked(2)
	a := New(p1)
	b := New(p2)

	a.Assign(&a)
	require.Equal(t, uint(1), a.UseCount())

	a.Assign(&b)
	require.Equal(t, 1, *n1)
	require.Equal(t, uint(2), a.UseCount())
	require.Same(t, p2, a.Get())

	// Same block, different handles.
	a.Assign(&b)
	require.Equal(t, uint(2), b.UseCount())
	require.Equal(t, 0, *n2)

	var e Shared[tracked]
	a.Assign(&e)
	require.False(t, a.Valid())
	require.Equal(t, uint(1), b.UseCount())

	b.Release()
	require.Equal(t, 1, *n2)
}

func TestShared_MoveFrom(t *testing.T) {
	p1, n1 := newTracked(1)
	p2, n2 := newTracked(2)
	a := New(p1)
	b := New(p2)

	a.MoveFrom(&a)
	require.True(t, a.Valid())

	a.MoveFrom(&b)
	require.Equal(t, 1, *n1)
	require.False(t, b.Valid())
	require.Equal(t, uint(1), a.UseCount())
	require.Same(t, p2, a.Get())

	a.Release()
	require.Equal(t, 1, *n2)
}

func TestShared_Reset(t *testing.T) {
	before := snapshot()
	p1, n1 := newTracked(1)
	p2, n2 := newTracked(2)
	a := New(p1)
	b := a.Clone()

	a.ResetTo(p1)
	require.Equal(t, uint(2), a.UseCount())

	a.ResetTo(p2)
	require.Equal(t, uint(1), a.UseCount())
	require.Equal(t, uint(1), b.UseCount())
	require.Equal(t, 0, *n1)

	a.Reset()
	require.False(t, a.Valid())
	require.Equal(t, 1, *n2)
	a.Reset()

	b.Reset()
	require.Equal(t, 1, *n1)
	before.requireDelta(t, 2, 2, 2)
}

func TestShared_Swap(t *testing.T) {
	p1, _ := newTracked(1)
	a := New(p1)
	b := a.Clone()
	var c Shared[tracked]

	a.Swap(&c)
	require.False(t, a.Valid())
	require.Same(t, p1, c.Get())
	require.Equal(t, uint(2), c.UseCount())

	c.Release()
	b.Release()
}

func TestShared_NonDestroyerPayload(t *testing.T) {
	before := snapshot()
	x := 42
	s := New(&x)
	require.Equal(t, 42, s.Value())
	*s.Get() = 43
	require.Equal(t, 43, x)
	s.Release()
	before.requireDelta(t, 1, 1, 1)
}

func TestShared_CopyScenario(t *testing.T) {
	p, n := newTracked(1)
	a := New(p)
	require.Equal(t, uint(1), a.UseCount())
	b := a.Clone()
	require.Equal(t, uint(2), b.UseCount())
	a.Release()
	require.Equal(t, 0, *n)
	require.Equal(t, uint(1), b.UseCount())
	require.Equal(t, 1, b.Value().id)
	b.Release()
}
