package btree

import (
	"github.com/ktnguyen/bptreekv/internal/storage"
	"github.com/ktnguyen/bptreekv/pkg/bx"
)

// internalNode is a view over an internal page's raw bytes: N child
// pointers and N key slots, where key slot 0 is reserved/unused — child i
// covers keys in [key[i], key[i+1]), and child 0 covers everything below
// key[1].
type internalNode[K any] struct {
	data  []byte
	codec Codec[K]
}

func newInternalNode[K any](data []byte, codec Codec[K]) *internalNode[K] {
	return &internalNode[K]{data: data, codec: codec}
}

func (n *internalNode[K]) entrySize() int { return n.codec.Size() + 4 }

func (n *internalNode[K]) Size() int    { return int(pageSize(n.data)) }
func (n *internalNode[K]) MaxSize() int { return int(pageMaxSize(n.data)) }

func (n *internalNode[K]) Init(maxSize int32) {
	initHeader(n.data, kindInternal, maxSize)
}

func (n *internalNode[K]) entryAt(i int) []byte {
	off := headerSize + i*n.entrySize()
	return n.data[off : off+n.entrySize()]
}

func (n *internalNode[K]) KeyAt(i int) K {
	e := n.entryAt(i)
	return n.codec.Decode(e[:n.codec.Size()])
}

func (n *internalNode[K]) ChildAt(i int) storage.PageID {
	e := n.entryAt(i)
	return storage.PageID(bx.I32(e[n.codec.Size():]))
}

func (n *internalNode[K]) setEntry(i int, k K, child storage.PageID) {
	e := n.entryAt(i)
	n.codec.Encode(e[:n.codec.Size()], k)
	bx.PutI32(e[n.codec.Size():], int32(child))
}

// setChild updates only the child pointer at i, leaving the key bytes
// untouched.
func (n *internalNode[K]) setChild(i int, child storage.PageID) {
	e := n.entryAt(i)
	bx.PutI32(e[n.codec.Size():], int32(child))
}

// setKeyAt updates only the key at i, leaving the child pointer
// untouched — used when a borrow rotates a key into the parent's
// separator slot.
func (n *internalNode[K]) setKeyAt(i int, k K) {
	e := n.entryAt(i)
	n.codec.Encode(e[:n.codec.Size()], k)
}

// InitRoot stamps a brand-new two-child root: key slot 0 unused, slot 1
// holds splitKey, children are (left, right).
func (n *internalNode[K]) InitRoot(maxSize int32, left, right storage.PageID, splitKey K) {
	n.Init(maxSize)
	n.setChild(0, left)
	setPageSize(n.data, 1)
	n.InsertAt(1, splitKey, right)
}

// InsertAt shifts entries [i, Size) right by one slot and places
// (key, child) at i. Slot 0's key is never meaningfully read, so callers
// inserting at index 0 (never done in practice — index 0 is always the
// node's original leftmost child) still encode something.
func (n *internalNode[K]) InsertAt(i int, key K, child storage.PageID) {
	size := n.Size()
	for j := size; j > i; j-- {
		copy(n.entryAt(j), n.entryAt(j-1))
	}
	n.setEntry(i, key, child)
	setPageSize(n.data, int32(size+1))
}

// RemoveAt shifts entries (i, Size) left by one slot, erasing slot i.
func (n *internalNode[K]) RemoveAt(i int) {
	size := n.Size()
	for j := i; j < size-1; j++ {
		copy(n.entryAt(j), n.entryAt(j+1))
	}
	setPageSize(n.data, int32(size-1))
}

// internalEntry is an in-memory (key, child) pair used when rebuilding an
// internal node during split/merge/borrow.
type internalEntry[K any] struct {
	key   K
	child storage.PageID
}

func (n *internalNode[K]) allEntries() []internalEntry[K] {
	out := make([]internalEntry[K], n.Size())
	for i := range out {
		out[i] = internalEntry[K]{n.KeyAt(i), n.ChildAt(i)}
	}
	return out
}

func (n *internalNode[K]) rebuild(entries []internalEntry[K]) {
	for i, e := range entries {
		n.setEntry(i, e.key, e.child)
	}
	setPageSize(n.data, int32(len(entries)))
}

// findChild returns the child-selection index: the greatest i >= 1 with
// KeyAt(i) <= key, or 0 if key < KeyAt(1) or there is only one child.
func (n *internalNode[K]) findChild(cmp Comparator[K], key K) int {
	size := n.Size()
	if size <= 1 {
		return 0
	}
	lo, hi := 1, size
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(n.KeyAt(mid), key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}
