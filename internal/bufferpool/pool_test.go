package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ktnguyen/bptreekv/internal/storage"
)

// newTestPool creates a temporary directory, StorageManager and buffer pool
// for testing. The directory is removed automatically via t.TempDir().
func newTestPool(t *testing.T, capacity, k int) *Pool {
	t.Helper()

	dir := t.TempDir()
	sm := storage.NewStorageManager()
	fs := storage.LocalFileSet{Dir: dir, Base: "testtree"}

	pool, err := NewPool(sm, fs, capacity, k)
	require.NoError(t, err)
	return pool
}

func TestPool_NewPage_PinsAndAssignsFrame(t *testing.T) {
	pool := newTestPool(t, 4, 2)

	pageID, f, err := pool.NewPage()
	require.NoError(t, err)
	require.Equal(t, storage.PageID(0), pageID)
	require.Equal(t, int32(1), f.PinCount())
	require.False(t, f.dirty)

	pageID2, _, err := pool.NewPage()
	require.NoError(t, err)
	require.Equal(t, storage.PageID(1), pageID2)
}

func TestPool_FetchPage_HitIncreasesPin(t *testing.T) {
	pool := newTestPool(t, 4, 2)

	pageID, f1, err := pool.NewPage()
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(pageID, false))

	f2, err := pool.FetchPage(pageID)
	require.NoError(t, err)
	require.Same(t, f1, f2)
	require.Equal(t, int32(1), f2.PinCount())
}

func TestPool_NewPage_Full_NoFreeFrame(t *testing.T) {
	pool := newTestPool(t, 1, 2)

	_, _, err := pool.NewPage()
	require.NoError(t, err)

	// The only frame is still pinned; no victim is evictable.
	_, _, err = pool.NewPage()
	require.ErrorIs(t, err, ErrNoFreeFrame)
}

func TestPool_EvictDirtyFrameAndFlush(t *testing.T) {
	pool := newTestPool(t, 1, 2)

	pageID, f, err := pool.NewPage()
	require.NoError(t, err)

	f.Data()[0] = 42
	require.NoError(t, pool.UnpinPage(pageID, true))
	require.Equal(t, int32(0), f.PinCount())

	// Forcing a second page in evicts pageID, which must be flushed first.
	pageID2, _, err := pool.NewPage()
	require.NoError(t, err)
	require.NotEqual(t, pageID, pageID2)

	reloaded := make([]byte, storage.PageSize)
	require.NoError(t, pool.sm.ReadPage(pool.fs, pageID, reloaded))
	require.Equal(t, byte(42), reloaded[0])
}

func TestPool_UnpinPage_NotResident(t *testing.T) {
	pool := newTestPool(t, 2, 2)
	err := pool.UnpinPage(storage.PageID(99), false)
	require.ErrorIs(t, err, ErrPageNotResident)
}

func TestPool_DeletePage_FailsWhenPinned(t *testing.T) {
	pool := newTestPool(t, 2, 2)
	pageID, _, err := pool.NewPage()
	require.NoError(t, err)

	err = pool.DeletePage(pageID)
	require.ErrorIs(t, err, ErrPagePinned)

	require.NoError(t, pool.UnpinPage(pageID, false))
	require.NoError(t, pool.DeletePage(pageID))
}

func TestPool_FlushAll_WritesDirtyFrames(t *testing.T) {
	pool := newTestPool(t, 2, 2)

	pageID0, f0, err := pool.NewPage()
	require.NoError(t, err)
	pageID1, f1, err := pool.NewPage()
	require.NoError(t, err)

	f0.Data()[10] = 11
	f1.Data()[20] = 22

	require.NoError(t, pool.UnpinPage(pageID0, true))
	require.NoError(t, pool.UnpinPage(pageID1, true))

	require.NoError(t, pool.FlushAll())
	require.False(t, f0.dirty)
	require.False(t, f1.dirty)

	buf := make([]byte, storage.PageSize)
	require.NoError(t, pool.sm.ReadPage(pool.fs, pageID0, buf))
	require.Equal(t, byte(11), buf[10])
}

func TestNewPool_DefaultCapacity(t *testing.T) {
	pool := newTestPool(t, 0, 0)
	require.Equal(t, 16, pool.Capacity())

	pageID, _, err := pool.NewPage()
	require.NoError(t, err)
	require.Equal(t, storage.PageID(0), pageID)
}
