// Package guard provides RAII-style scoped ownership of a fetched buffer
// frame (C3). Go has no destructors, so "drop on scope exit" is spelled
// as an explicit Drop() call, conventionally deferred at the call site
// right after a guard is obtained — the same discipline bustub's
// BasicPageGuard/ReadPageGuard/WritePageGuard give C++ for free.
package guard

import (
	"github.com/ktnguyen/bptreekv/internal/bufferpool"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

// pool is the subset of *bufferpool.Pool guards need; kept narrow so
// package btree can be tested against a fake pool if ever needed.
type pool interface {
	UnpinPage(pageID storage.PageID, markDirty bool) error
}

// BasicPageGuard owns a pin on a frame with no latch held. It is the
// cheapest guard and the one upgraded into Read/Write guards.
type BasicPageGuard struct {
	pool    pool
	frame   *bufferpool.Frame
	dirty   bool
	dropped bool
}

// NewBasicPageGuard wraps an already-pinned frame. Callers get frames by
// pinning them through a Pool (NewPage/FetchPage); this constructor does
// not pin again.
func NewBasicPageGuard(p pool, f *bufferpool.Frame) *BasicPageGuard {
	return &BasicPageGuard{pool: p, frame: f}
}

func (g *BasicPageGuard) PageID() storage.PageID { return g.frame.PageID() }

func (g *BasicPageGuard) Data() []byte { return g.frame.Data() }

// DataMut returns the mutable backing bytes and marks the frame dirty.
// This is the only path through a guard that can set the dirty flag.
func (g *BasicPageGuard) DataMut() []byte {
	g.dirty = true
	return g.frame.Data()
}

// Drop releases the pin (propagating the accumulated dirty flag). It is
// idempotent: calling it again, or after the guard has been transferred
// away via UpgradeRead/UpgradeWrite, is a no-op.
func (g *BasicPageGuard) Drop() {
	if g.dropped || g.frame == nil {
		return
	}
	g.dropped = true
	_ = g.pool.UnpinPage(g.frame.PageID(), g.dirty)
}

// UpgradeRead converts this guard into a ReadPageGuard, taking the shared
// latch once and preserving the existing pin. The basic guard is
// consumed: further use of it is a programming error.
func (g *BasicPageGuard) UpgradeRead() *ReadPageGuard {
	g.frame.RLatch()
	rg := &ReadPageGuard{pool: g.pool, frame: g.frame}
	g.dropped = true // ownership transferred; this guard no longer unpins
	return rg
}

// UpgradeWrite converts this guard into a WritePageGuard, taking the
// exclusive latch once and preserving the existing pin.
func (g *BasicPageGuard) UpgradeWrite() *WritePageGuard {
	g.frame.WLatch()
	wg := &WritePageGuard{pool: g.pool, frame: g.frame}
	g.dropped = true
	return wg
}

// ReadPageGuard owns a pin plus the frame's shared latch.
type ReadPageGuard struct {
	pool    pool
	frame   *bufferpool.Frame
	dropped bool
}

func NewReadPageGuard(p pool, f *bufferpool.Frame) *ReadPageGuard {
	f.RLatch()
	return &ReadPageGuard{pool: p, frame: f}
}

func (g *ReadPageGuard) PageID() storage.PageID { return g.frame.PageID() }

func (g *ReadPageGuard) Data() []byte { return g.frame.Data() }

// Drop releases the shared latch, then the pin, in that order — the
// inverse of acquisition. Idempotent.
func (g *ReadPageGuard) Drop() {
	if g.dropped || g.frame == nil {
		return
	}
	g.dropped = true
	g.frame.RUnlatch()
	_ = g.pool.UnpinPage(g.frame.PageID(), false)
}

// WritePageGuard owns a pin plus the frame's exclusive latch.
type WritePageGuard struct {
	pool    pool
	frame   *bufferpool.Frame
	dirty   bool
	dropped bool
}

func NewWritePageGuard(p pool, f *bufferpool.Frame) *WritePageGuard {
	f.WLatch()
	return &WritePageGuard{pool: p, frame: f}
}

func (g *WritePageGuard) PageID() storage.PageID { return g.frame.PageID() }

func (g *WritePageGuard) Data() []byte { return g.frame.Data() }

func (g *WritePageGuard) DataMut() []byte {
	g.dirty = true
	return g.frame.Data()
}

// Drop releases the exclusive latch, then the pin. Unlike the original
// bustub implementation (which releases a WritePageGuard's latch via
// RUnlatch, a bug carried from a BasicPageGuard copy-paste), this
// releases the actual write latch it acquired.
func (g *WritePageGuard) Drop() {
	if g.dropped || g.frame == nil {
		return
	}
	g.dropped = true
	g.frame.WUnlatch()
	_ = g.pool.UnpinPage(g.frame.PageID(), g.dirty)
}
