package lrukx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUK_New_DefaultCapacity(t *testing.T) {
	r := New(0, 0)
	require.NotNil(t, r)
	require.Equal(t, 1, r.Capacity())
	require.Equal(t, 0, r.Size())
}

func TestLRUK_SetEvictable_TogglesSize(t *testing.T) {
	r := New(3, 2)

	r.RecordAccess(1)
	require.Equal(t, 0, r.Size())

	r.SetEvictable(1, true)
	require.Equal(t, 1, r.Size())

	// Idempotent on no-change.
	r.SetEvictable(1, true)
	require.Equal(t, 1, r.Size())

	r.SetEvictable(1, false)
	require.Equal(t, 0, r.Size())
}

func TestLRUK_SetEvictable_UntrackedFramePanics(t *testing.T) {
	r := New(2, 2)
	require.Panics(t, func() { r.SetEvictable(0, true) })
}

func TestLRUK_Evict_NoneEvictable(t *testing.T) {
	r := New(2, 2)
	r.RecordAccess(0)
	r.RecordAccess(1)

	_, ok := r.Evict()
	require.False(t, ok)
	require.Equal(t, 0, r.Size())
}

// TestLRUK_Evict_Ordering exercises the spec's replacer-ordering scenario:
// K=2, access frames 1..6 once each, mark all evictable, then re-access 1
// and 2. Eviction order must be 3,4,5,6, then whichever of 1/2 has the
// older 2nd-most-recent access.
func TestLRUK_Evict_Ordering(t *testing.T) {
	r := New(7, 2)

	for _, f := range []int{1, 2, 3, 4, 5, 6} {
		r.RecordAccess(f)
	}
	for _, f := range []int{1, 2, 3, 4, 5, 6} {
		r.SetEvictable(f, true)
	}
	require.Equal(t, 6, r.Size())

	// 1 and 2 get a second access, becoming "mature" (>=K) while 3..6
	// remain newcomers with a single access each.
	r.RecordAccess(1)
	r.RecordAccess(2)

	wantOrder := []int{3, 4, 5, 6}
	for _, want := range wantOrder {
		got, ok := r.Evict()
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	// Both 1 and 2 are now mature with oldest-kept-tick ordering: their
	// 2nd-most-recent ("front") timestamps are their first accesses, and
	// 1 was first accessed before 2, so 1 is evicted first.
	got, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, got)

	got, ok = r.Evict()
	require.True(t, ok)
	require.Equal(t, 2, got)

	_, ok = r.Evict()
	require.False(t, ok)
}

func TestLRUK_RecordAccess_DropsOldestBeyondK(t *testing.T) {
	r := New(1, 2)

	r.RecordAccess(0)
	r.RecordAccess(0)
	r.RecordAccess(0)
	r.SetEvictable(0, true)

	// history should hold exactly the last 2 ticks; Size/Evict still work.
	require.Equal(t, []uint64{2, 3}, r.nodes[0].history)
	frame, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 0, frame)
}

func TestLRUK_Remove_RequiresEvictable(t *testing.T) {
	r := New(2, 2)
	r.RecordAccess(0)

	require.Panics(t, func() { r.Remove(0) })

	r.SetEvictable(0, true)
	require.Equal(t, 1, r.Size())
	r.Remove(0)
	require.Equal(t, 0, r.Size())
}

func TestLRUK_BoundsChecks(t *testing.T) {
	r := New(2, 2)

	// RecordAccess silently ignores out-of-range frames (no precondition
	// to violate: it's the call that would start tracking one).
	r.RecordAccess(-1)
	r.RecordAccess(5)
	require.Equal(t, 0, r.Size())

	// Remove treats an out-of-range frame the same as any other untracked
	// one: a contract breach, not a no-op.
	require.Panics(t, func() { r.Remove(-1) })
	require.Panics(t, func() { r.Remove(5) })
}
