// Package btree implements a disk-resident B+Tree (C4/C5/C6): fixed-size
// internal/leaf page layouts, latch-crabbing insert/delete over a
// generic, caller-compared key type, and a forward leaf iterator. Every
// node is a frame borrowed from a bufferpool.Pool through package guard;
// the tree itself never touches a frame's bytes without first holding the
// matching guard.
package btree

import (
	"log/slog"

	"github.com/ktnguyen/bptreekv/internal/bufferpool"
	"github.com/ktnguyen/bptreekv/internal/guard"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

var logDebugPrefix = "btree: "

// DefaultLeafMaxSize returns the largest leaf capacity that fits one page
// for the given key codec.
func DefaultLeafMaxSize[K any](codec Codec[K]) int32 {
	return int32((storage.PageSize - headerSize) / (codec.Size() + ridSize))
}

// DefaultInternalMaxSize returns the largest internal capacity that fits
// one page for the given key codec.
func DefaultInternalMaxSize[K any](codec Codec[K]) int32 {
	return int32((storage.PageSize - headerSize) / (codec.Size() + 4))
}

// Tree is a disk-resident B+Tree keyed by K, mapping each key to one RID.
type Tree[K any] struct {
	name         string
	headerPageID storage.PageID
	pool         *bufferpool.Pool
	cmp          Comparator[K]
	codec        Codec[K]
	leafMax      int32
	internalMax  int32
}

// NewTree opens a tree over headerPageID — an already-allocated page id
// the caller owns (typically obtained via pool.NewPage()) — and
// initializes its root-page-id to INVALID. name is opaque to the tree;
// it exists only for callers that want to label an index. leafMax/
// internalMax <= 0 fall back to DefaultLeafMaxSize/DefaultInternalMaxSize.
func NewTree[K any](name string, headerPageID storage.PageID, pool *bufferpool.Pool, cmp Comparator[K], codec Codec[K], leafMax, internalMax int32) (*Tree[K], error) {
	if leafMax <= 0 {
		leafMax = DefaultLeafMaxSize(codec)
	}
	if internalMax <= 0 {
		internalMax = DefaultInternalMaxSize(codec)
	}

	hg, err := guard.FetchPageWrite(pool, headerPageID)
	if err != nil {
		return nil, err
	}
	setHeaderRootPageID(hg.DataMut(), storage.InvalidPageID)
	hg.Drop()

	return &Tree[K]{
		name:         name,
		headerPageID: headerPageID,
		pool:         pool,
		cmp:          cmp,
		codec:        codec,
		leafMax:      leafMax,
		internalMax:  internalMax,
	}, nil
}

// Name returns the opaque index name this tree was opened with.
func (t *Tree[K]) Name() string { return t.name }

// HeaderPageID identifies this tree; it never changes for the tree's
// lifetime.
func (t *Tree[K]) HeaderPageID() storage.PageID { return t.headerPageID }

// IsEmpty reports whether the tree currently has no root.
func (t *Tree[K]) IsEmpty() (bool, error) {
	hg, err := guard.FetchPageRead(t.pool, t.headerPageID)
	if err != nil {
		return false, err
	}
	defer hg.Drop()
	return !headerRootPageID(hg.Data()).IsValid(), nil
}

// GetValue performs a point lookup under read-latch crabbing, returning
// the RID and true iff key is present.
func (t *Tree[K]) GetValue(key K) (RID, bool, error) {
	hg, err := guard.FetchPageRead(t.pool, t.headerPageID)
	if err != nil {
		return RID{}, false, err
	}
	rootID := headerRootPageID(hg.Data())
	if !rootID.IsValid() {
		hg.Drop()
		return RID{}, false, nil
	}

	cur, err := guard.FetchPageRead(t.pool, rootID)
	if err != nil {
		hg.Drop()
		return RID{}, false, err
	}
	hg.Drop()

	for pageKind(cur.Data()) == kindInternal {
		in := newInternalNode(cur.Data(), t.codec)
		idx := in.findChild(t.cmp, key)
		childID := in.ChildAt(idx)

		next, err := guard.FetchPageRead(t.pool, childID)
		if err != nil {
			cur.Drop()
			return RID{}, false, err
		}
		cur.Drop()
		cur = next
	}

	leaf := newLeafNode(cur.Data(), t.codec)
	idx, exact := leaf.find(t.cmp, key)
	var rid RID
	if exact {
		rid = leaf.ValueAt(idx)
	}
	cur.Drop()

	slog.Debug(logDebugPrefix+"GetValue", "found", exact)
	return rid, exact, nil
}

// writeGuardStack tracks ancestor write guards and the child-slot index
// taken at each level, so a split/merge can be propagated to the right
// parent slot without re-descending.
type writeGuardStack struct {
	guards []*guard.WritePageGuard
	slots  []int
}

func (s *writeGuardStack) push(g *guard.WritePageGuard, slot int) {
	s.guards = append(s.guards, g)
	s.slots = append(s.slots, slot)
}

func (s *writeGuardStack) dropAll() {
	for _, g := range s.guards {
		g.Drop()
	}
	s.guards = s.guards[:0]
	s.slots = s.slots[:0]
}

func (s *writeGuardStack) len() int { return len(s.guards) }

func (s *writeGuardStack) top() (*guard.WritePageGuard, int) {
	n := len(s.guards)
	return s.guards[n-1], s.slots[n-1]
}

func (s *writeGuardStack) pop() (*guard.WritePageGuard, int) {
	n := len(s.guards)
	g, slot := s.guards[n-1], s.slots[n-1]
	s.guards = s.guards[:n-1]
	s.slots = s.slots[:n-1]
	return g, slot
}

// Insert places (key, value) if key is not already present. Returns false
// without mutation on a duplicate key.
func (t *Tree[K]) Insert(key K, value RID) (bool, error) {
	hg, err := guard.FetchPageWrite(t.pool, t.headerPageID)
	if err != nil {
		return false, err
	}
	headerHeld := true
	dropHeader := func() {
		if headerHeld {
			hg.Drop()
			headerHeld = false
		}
	}

	rootID := headerRootPageID(hg.Data())
	if !rootID.IsValid() {
		leafID, lg, err := guard.NewPageGuarded(t.pool)
		if err != nil {
			hg.Drop()
			return false, err
		}
		leaf := newLeafNode(lg.DataMut(), t.codec)
		leaf.Init(t.leafMax)
		leaf.InsertAt(0, key, value)
		lg.Drop()

		setHeaderRootPageID(hg.DataMut(), leafID)
		hg.Drop()
		return true, nil
	}

	var ancestors writeGuardStack
	cur, err := guard.FetchPageWrite(t.pool, rootID)
	if err != nil {
		hg.Drop()
		return false, err
	}

	for pageKind(cur.Data()) == kindInternal {
		in := newInternalNode(cur.Data(), t.codec)
		if in.Size() < in.MaxSize() {
			dropHeader()
			ancestors.dropAll()
		}

		idx := in.findChild(t.cmp, key)
		next, err := guard.FetchPageWrite(t.pool, in.ChildAt(idx))
		if err != nil {
			cur.Drop()
			ancestors.dropAll()
			dropHeader()
			return false, err
		}
		ancestors.push(cur, idx)
		cur = next
	}

	leaf := newLeafNode(cur.DataMut(), t.codec)
	if leaf.Size() < leaf.MaxSize() {
		dropHeader()
		ancestors.dropAll()
	}

	_, exact := leaf.find(t.cmp, key)
	if exact {
		cur.Drop()
		ancestors.dropAll()
		dropHeader()
		return false, nil
	}
	insertPos := leaf.lowerBound(t.cmp, key)

	if leaf.Size() < leaf.MaxSize() {
		leaf.InsertAt(insertPos, key, value)
		cur.Drop()
		return true, nil
	}

	splitKey, rightID, err := t.splitLeaf(leaf, insertPos, key, value)
	cur.Drop()
	if err != nil {
		ancestors.dropAll()
		dropHeader()
		return false, err
	}

	for ancestors.len() > 0 {
		anc, slot := ancestors.pop()
		in := newInternalNode(anc.DataMut(), t.codec)
		pos := slot + 1

		if in.Size() < in.MaxSize() {
			in.InsertAt(pos, splitKey, rightID)
			anc.Drop()
			ancestors.dropAll()
			dropHeader()
			return true, nil
		}

		newSplitKey, newRightID, err := t.splitInternal(in, pos, splitKey, rightID)
		anc.Drop()
		if err != nil {
			ancestors.dropAll()
			dropHeader()
			return false, err
		}
		splitKey, rightID = newSplitKey, newRightID
	}

	// Every ancestor (possibly zero of them) split; the root itself grew
	// a new sibling. Allocate a fresh internal root over (old root, right).
	newRootID, rg, err := guard.NewPageGuarded(t.pool)
	if err != nil {
		dropHeader()
		return false, err
	}
	root := newInternalNode(rg.DataMut(), t.codec)
	root.InitRoot(t.internalMax, rootID, rightID, splitKey)
	rg.Drop()

	setHeaderRootPageID(hg.DataMut(), newRootID)
	dropHeader()
	return true, nil
}
