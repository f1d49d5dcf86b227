// Package bufferpool implements the fixed-capacity buffer pool (C2): a
// frame array, a free-list, a page_id -> frame mapping, and a Replacer
// consulted when the free-list is empty. All pool operations hold a single
// pool-wide mutex; per-frame reader/writer latching belongs to package
// guard and lives outside it, matching bustub's buffer_pool_manager.cpp
// split between BufferPoolManager's latch_ and each Page's rwlatch_.
package bufferpool

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ktnguyen/bptreekv/internal/storage"
)

var logDebugPrefix = "bufferpool: "

// DefaultK is the history depth used by the LRU-K replacer when a caller
// does not specify one.
const DefaultK = 2

var (
	// ErrNoFreeFrame is the "no result" outcome of new_page/fetch_page: no
	// free frame exists and the replacer has no evictable victim either.
	ErrNoFreeFrame = errors.New("bufferpool: no free frame available")

	// ErrPageNotResident is returned by operations that require the page
	// to already be resident in the pool (unpin_page, flush_page).
	ErrPageNotResident = errors.New("bufferpool: page is not resident")

	// ErrPagePinned is returned by delete_page when the page still has
	// outstanding pins.
	ErrPagePinned = errors.New("bufferpool: page is pinned")

	// ErrUnpinNotPinned is returned by unpin_page when the frame's pin
	// count is already zero.
	ErrUnpinNotPinned = errors.New("bufferpool: page is not pinned")
)

// Pool is a fixed-size buffer pool bound to one FileSet (one tree's
// backing segment files).
type Pool struct {
	sm *storage.StorageManager
	fs storage.FileSet

	mu        sync.Mutex
	frames    []*Frame
	freeList  []int
	pageTable map[storage.PageID]int
	repl      Replacer

	nextPageID uint32
}

// NewPool builds a pool of the given frame capacity with an LRU-K replacer
// of history depth k, bound to fs. If fs already holds materialized pages
// (reopening an existing tree's files), NewPage's id allocator is seeded
// past them via sm.CountPages so it never reassigns an id already in use.
func NewPool(sm *storage.StorageManager, fs storage.FileSet, capacity, k int) (*Pool, error) {
	if capacity <= 0 {
		capacity = 16
	}
	if k <= 0 {
		k = DefaultK
	}

	frames := make([]*Frame, capacity)
	freeList := make([]int, capacity)
	for i := 0; i < capacity; i++ {
		frames[i] = newFrame(i)
		freeList[i] = capacity - 1 - i // pop from the back; order is arbitrary
	}

	nextPageID, err := sm.CountPages(fs)
	if err != nil {
		return nil, err
	}

	return &Pool{
		sm:         sm,
		fs:         fs,
		frames:     frames,
		freeList:   freeList,
		pageTable:  make(map[storage.PageID]int),
		repl:       newLRUKReplacer(capacity, k),
		nextPageID: nextPageID,
	}, nil
}

func (p *Pool) Capacity() int { return len(p.frames) }

// NewPage allocates a fresh page identifier and a zeroed, pinned,
// non-evictable frame for it.
func (p *Pool) NewPage() (storage.PageID, *Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.obtainFrameLocked()
	if !ok {
		return storage.InvalidPageID, nil, ErrNoFreeFrame
	}

	pageID := storage.PageID(atomic.AddUint32(&p.nextPageID, 1) - 1)

	f := p.frames[idx]
	f.reset(pageID)
	f.pin.Inc()
	p.pageTable[pageID] = idx

	p.repl.RecordAccess(idx)
	p.repl.SetEvictable(idx, false)

	slog.Debug(logDebugPrefix+"NewPage", "pageID", pageID, "frame", idx)
	return pageID, f, nil
}

// FetchPage returns the frame holding pageID, pinning it. If the page is
// not resident, a frame is obtained and the block is read from disk.
func (p *Pool) FetchPage(pageID storage.PageID) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable[pageID]; ok {
		f := p.frames[idx]
		wasUnpinned := f.pin.Get() == 0
		f.pin.Inc()
		p.repl.RecordAccess(idx)
		if wasUnpinned {
			p.repl.SetEvictable(idx, false)
		}
		slog.Debug(logDebugPrefix+"FetchPage hit", "pageID", pageID, "frame", idx)
		return f, nil
	}

	idx, ok := p.obtainFrameLocked()
	if !ok {
		return nil, ErrNoFreeFrame
	}

	f := p.frames[idx]
	f.reset(pageID)
	if err := p.sm.ReadPage(p.fs, pageID, f.data); err != nil {
		// Frame is now an unowned free slot again.
		f.pageID = storage.InvalidPageID
		p.freeList = append(p.freeList, idx)
		return nil, err
	}

	f.pin.Inc()
	p.pageTable[pageID] = idx
	p.repl.RecordAccess(idx)
	p.repl.SetEvictable(idx, false)

	slog.Debug(logDebugPrefix+"FetchPage miss, loaded from disk", "pageID", pageID, "frame", idx)
	return f, nil
}

// obtainFrameLocked returns a frame index ready to be repurposed, either
// from the free-list or via eviction. Caller holds p.mu.
func (p *Pool) obtainFrameLocked() (int, bool) {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return idx, true
	}

	victimIdx, ok := p.repl.Evict()
	if !ok {
		return 0, false
	}

	victim := p.frames[victimIdx]
	delete(p.pageTable, victim.pageID)

	if victim.dirty {
		if err := p.sm.WritePage(p.fs, victim.pageID, victim.data); err != nil {
			slog.Error(logDebugPrefix+"flush victim on eviction failed", "pageID", victim.pageID, "err", err)
			// The frame is already detached from pageTable; surface the
			// error rather than silently losing the dirty write.
			return 0, false
		}
		victim.dirty = false
	}

	return victimIdx, true
}

// UnpinPage decrements pageID's pin count, optionally marking it dirty.
// When the pin count reaches zero the frame becomes evictable.
func (p *Pool) UnpinPage(pageID storage.PageID, markDirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		return ErrPageNotResident
	}
	f := p.frames[idx]
	if f.pin.Get() == 0 {
		return ErrUnpinNotPinned
	}

	if markDirty {
		f.dirty = true
	}
	if f.pin.Dec() {
		p.repl.SetEvictable(idx, true)
	}
	return nil
}

// FlushPage writes pageID's frame to disk unconditionally and clears its
// dirty bit, regardless of pin state.
func (p *Pool) FlushPage(pageID storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		return ErrPageNotResident
	}
	f := p.frames[idx]
	if err := p.sm.WritePage(p.fs, f.pageID, f.data); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// FlushAll writes every resident dirty page to disk.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		if f.pageID == storage.InvalidPageID || !f.dirty {
			continue
		}
		if err := p.sm.WritePage(p.fs, f.pageID, f.data); err != nil {
			return err
		}
		f.dirty = false
	}
	return nil
}

// DeletePage removes pageID from the pool. A page that is not resident is
// considered already deleted and succeeds trivially; a pinned page cannot
// be deleted.
func (p *Pool) DeletePage(pageID storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		return nil
	}
	f := p.frames[idx]
	if f.pin.Get() != 0 {
		return ErrPagePinned
	}

	if f.dirty {
		if err := p.sm.WritePage(p.fs, f.pageID, f.data); err != nil {
			return err
		}
	}

	delete(p.pageTable, pageID)
	p.repl.Remove(idx)
	f.pageID = storage.InvalidPageID
	f.dirty = false
	p.freeList = append(p.freeList, idx)
	return nil
}
