package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUKReplacer_SizeAndEvictable(t *testing.T) {
	r := newLRUKReplacer(4, 2)

	r.RecordAccess(0)
	r.RecordAccess(1)
	require.Equal(t, 0, r.Size())

	r.SetEvictable(0, true)
	require.Equal(t, 1, r.Size())

	r.SetEvictable(1, true)
	require.Equal(t, 2, r.Size())

	r.SetEvictable(0, false)
	require.Equal(t, 1, r.Size())
}

func TestLRUKReplacer_Evict_NoneEvictable(t *testing.T) {
	r := newLRUKReplacer(2, 2)

	r.RecordAccess(0)
	r.RecordAccess(1)

	_, ok := r.Evict()
	require.False(t, ok)
	require.Equal(t, 0, r.Size())
}

func TestLRUKReplacer_Evict_PrefersLeastRecentNewcomer(t *testing.T) {
	r := newLRUKReplacer(3, 2)

	for i := 0; i < 3; i++ {
		r.RecordAccess(i)
		r.SetEvictable(i, true)
	}
	require.Equal(t, 3, r.Size())

	v1, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 0, v1)
	require.Equal(t, 2, r.Size())

	v2, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, v2)

	v3, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 2, v3)

	_, ok = r.Evict()
	require.False(t, ok)
}

func TestLRUKReplacer_Remove_PreventsEviction(t *testing.T) {
	r := newLRUKReplacer(2, 2)

	r.RecordAccess(0)
	r.RecordAccess(1)
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)
	require.Equal(t, 2, r.Size())

	r.Remove(0)
	require.Equal(t, 1, r.Size())

	v, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 0, r.Size())
}
