package btree

import (
	"github.com/ktnguyen/bptreekv/internal/guard"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

// Iterator walks leaf entries in key order. It latches only the leaf it is
// currently positioned on, and only for the duration of materializing or
// advancing past the current entry — it is not a consistent snapshot of
// the tree and will observe concurrent inserts/deletes that land ahead of
// its cursor.
type Iterator[K any] struct {
	tree    *Tree[K]
	pageID  storage.PageID
	idx     int
	key     K
	value   RID
	atEnd   bool
	started bool
}

// Begin returns an iterator positioned at the tree's first entry.
func (t *Tree[K]) Begin() (*Iterator[K], error) {
	return t.iteratorFrom(nil)
}

// BeginAt returns an iterator positioned at the first entry with key >=
// the given key.
func (t *Tree[K]) BeginAt(key K) (*Iterator[K], error) {
	return t.iteratorFrom(&key)
}

// iteratorFrom descends to the leaf holding the first entry with key >=
// *target, or the leftmost leaf if target is nil.
func (t *Tree[K]) iteratorFrom(target *K) (*Iterator[K], error) {
	it := &Iterator[K]{tree: t}

	hg, err := guard.FetchPageRead(t.pool, t.headerPageID)
	if err != nil {
		return nil, err
	}
	rootID := headerRootPageID(hg.Data())
	hg.Drop()
	if !rootID.IsValid() {
		it.atEnd = true
		it.started = true
		return it, nil
	}

	cur, err := guard.FetchPageRead(t.pool, rootID)
	if err != nil {
		return nil, err
	}
	for pageKind(cur.Data()) == kindInternal {
		in := newInternalNode(cur.Data(), t.codec)
		childIdx := 0
		if target != nil {
			childIdx = in.findChild(t.cmp, *target)
		}
		next, err := guard.FetchPageRead(t.pool, in.ChildAt(childIdx))
		if err != nil {
			cur.Drop()
			return nil, err
		}
		cur.Drop()
		cur = next
	}

	leaf := newLeafNode(cur.Data(), t.codec)
	pos := 0
	if target != nil {
		pos = leaf.lowerBound(t.cmp, *target)
	}
	it.started = true
	if err := it.loadAt(cur, pos); err != nil {
		cur.Drop()
		return nil, err
	}
	cur.Drop()
	return it, nil
}

// loadAt materializes the (key, value) at idx within an already-fetched
// leaf page, advancing to the next leaf page(s) if idx is past the end —
// skipping empty leaves left behind by a delete that hasn't rebalanced
// them away yet.
func (it *Iterator[K]) loadAt(leafGuard *guard.ReadPageGuard, idx int) error {
	owned := false
	for {
		leaf := newLeafNode(leafGuard.Data(), it.tree.codec)
		if idx < leaf.Size() {
			it.pageID = leafGuard.PageID()
			it.idx = idx
			it.key = leaf.KeyAt(idx)
			it.value = leaf.ValueAt(idx)
			it.atEnd = false
			if owned {
				leafGuard.Drop()
			}
			return nil
		}
		next := leaf.NextPage()
		if owned {
			leafGuard.Drop()
		}
		if !next.IsValid() {
			it.atEnd = true
			return nil
		}
		nextGuard, err := guard.FetchPageRead(it.tree.pool, next)
		if err != nil {
			return err
		}
		leafGuard = nextGuard
		idx = 0
		owned = true
	}
}

// IsEnd reports whether the iterator has advanced past the last entry.
func (it *Iterator[K]) IsEnd() bool { return it.atEnd }

// Key returns the current entry's key. Valid only when !IsEnd().
func (it *Iterator[K]) Key() K { return it.key }

// Value returns the current entry's RID. Valid only when !IsEnd().
func (it *Iterator[K]) Value() RID { return it.value }

// Next advances the iterator by one entry, re-latching the owning leaf
// (and crossing into its right sibling via next_leaf if needed) only for
// the duration of the step.
func (it *Iterator[K]) Next() error {
	if it.atEnd {
		return nil
	}
	leafGuard, err := guard.FetchPageRead(it.tree.pool, it.pageID)
	if err != nil {
		return err
	}
	defer leafGuard.Drop()
	return it.loadAt(leafGuard, it.idx+1)
}
