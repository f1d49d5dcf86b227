package bufferpool

import (
	"sync"

	"github.com/ktnguyen/bptreekv/internal/lock"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

// Frame is one slot of the pool's fixed frame array. Its latch is the
// frame-level reader/writer lock that page guards acquire and release;
// the pool never takes this latch itself, and guards acquire it only after
// the pool call that pinned the frame has returned and released the pool
// mutex.
type Frame struct {
	id     int
	pageID storage.PageID
	data   []byte

	latch sync.RWMutex
	pin   *locking.PinCount
	dirty bool
}

func newFrame(id int) *Frame {
	return &Frame{
		id:     id,
		pageID: storage.InvalidPageID,
		data:   make([]byte, storage.PageSize),
		pin:    locking.NewPinCount(),
	}
}

func (f *Frame) PageID() storage.PageID { return f.pageID }

// Data returns the frame's raw page bytes. Callers hold the frame latch
// (via a page guard) before reading or writing through this slice.
func (f *Frame) Data() []byte { return f.data }

func (f *Frame) PinCount() int32 { return f.pin.Get() }

func (f *Frame) RLatch()   { f.latch.RLock() }
func (f *Frame) RUnlatch() { f.latch.RUnlock() }
func (f *Frame) WLatch()   { f.latch.Lock() }
func (f *Frame) WUnlatch() { f.latch.Unlock() }

func (f *Frame) reset(pageID storage.PageID) {
	f.pageID = pageID
	for i := range f.data {
		f.data[i] = 0
	}
	f.dirty = false
}
