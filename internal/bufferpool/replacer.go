package bufferpool

import "github.com/ktnguyen/bptreekv/pkg/lrukx"

// Replacer is the victim-selection policy consulted by Pool whenever it
// needs a frame and the free-list is empty. The buffer pool never
// interprets the ordering itself; it only reports accesses and pin
// transitions and asks for a victim.
type Replacer interface {
	RecordAccess(frameID int)
	SetEvictable(frameID int, evictable bool)
	Evict() (frameID int, ok bool)
	Remove(frameID int)
	Size() int
}

var _ Replacer = (*lrukReplacer)(nil)

// lrukReplacer adapts pkg/lrukx.LRUK to the Replacer shape the pool
// expects, mirroring how a CLOCK-based adapter would have plugged into
// the same seam.
type lrukReplacer struct {
	r *lrukx.LRUK
}

// newLRUKReplacer builds the replacer backing a pool of the given frame
// capacity, evicting by LRU-K with history depth k.
func newLRUKReplacer(capacity, k int) *lrukReplacer {
	return &lrukReplacer{r: lrukx.New(capacity, k)}
}

func (a *lrukReplacer) RecordAccess(frameID int)              { a.r.RecordAccess(frameID) }
func (a *lrukReplacer) SetEvictable(frameID int, evictable bool) { a.r.SetEvictable(frameID, evictable) }
func (a *lrukReplacer) Evict() (int, bool)                    { return a.r.Evict() }
func (a *lrukReplacer) Remove(frameID int)                    { a.r.Remove(frameID) }
func (a *lrukReplacer) Size() int                             { return a.r.Size() }
