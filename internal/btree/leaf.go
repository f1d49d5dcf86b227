package btree

import "github.com/ktnguyen/bptreekv/internal/storage"

// leafNode is a view over a leaf page's raw bytes: a header (§4.4) plus a
// contiguous array of (key, RID) entries, sorted by key. All accessors
// read/write in place; nothing here allocates.
type leafNode[K any] struct {
	data  []byte
	codec Codec[K]
}

func newLeafNode[K any](data []byte, codec Codec[K]) *leafNode[K] {
	return &leafNode[K]{data: data, codec: codec}
}

func (n *leafNode[K]) entrySize() int { return n.codec.Size() + ridSize }

func (n *leafNode[K]) Size() int    { return int(pageSize(n.data)) }
func (n *leafNode[K]) MaxSize() int { return int(pageMaxSize(n.data)) }

func (n *leafNode[K]) NextPage() storage.PageID     { return leafNextPage(n.data) }
func (n *leafNode[K]) SetNextPage(id storage.PageID) { setLeafNextPage(n.data, id) }

func (n *leafNode[K]) Init(maxSize int32) {
	initHeader(n.data, kindLeaf, maxSize)
}

func (n *leafNode[K]) entryAt(i int) []byte {
	off := headerSize + i*n.entrySize()
	return n.data[off : off+n.entrySize()]
}

func (n *leafNode[K]) KeyAt(i int) K {
	e := n.entryAt(i)
	return n.codec.Decode(e[:n.codec.Size()])
}

func (n *leafNode[K]) ValueAt(i int) RID {
	e := n.entryAt(i)
	return decodeRID(e[n.codec.Size():])
}

func (n *leafNode[K]) setEntry(i int, k K, v RID) {
	e := n.entryAt(i)
	n.codec.Encode(e[:n.codec.Size()], k)
	encodeRID(e[n.codec.Size():], v)
}

// InsertAt shifts entries [i, Size) right by one slot and places (k, v)
// at i. Caller must have already checked there is room.
func (n *leafNode[K]) InsertAt(i int, k K, v RID) {
	size := n.Size()
	for j := size; j > i; j-- {
		copy(n.entryAt(j), n.entryAt(j-1))
	}
	n.setEntry(i, k, v)
	setPageSize(n.data, int32(size+1))
}

// RemoveAt shifts entries (i, Size) left by one slot, erasing slot i.
func (n *leafNode[K]) RemoveAt(i int) {
	size := n.Size()
	for j := i; j < size-1; j++ {
		copy(n.entryAt(j), n.entryAt(j+1))
	}
	setPageSize(n.data, int32(size-1))
}

// leafEntry is an in-memory (key, value) pair used when rebuilding a leaf
// during split/merge/borrow — the only times a leaf's full contents are
// materialized at once.
type leafEntry[K any] struct {
	key   K
	value RID
}

func (n *leafNode[K]) allEntries() []leafEntry[K] {
	out := make([]leafEntry[K], n.Size())
	for i := range out {
		out[i] = leafEntry[K]{n.KeyAt(i), n.ValueAt(i)}
	}
	return out
}

func (n *leafNode[K]) rebuild(entries []leafEntry[K]) {
	for i, e := range entries {
		n.setEntry(i, e.key, e.value)
	}
	setPageSize(n.data, int32(len(entries)))
}

// lowerBound returns the smallest index i with KeyAt(i) >= key, or Size()
// if every key is smaller.
func (n *leafNode[K]) lowerBound(cmp Comparator[K], key K) int {
	lo, hi := 0, n.Size()
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(n.KeyAt(mid), key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// find returns the greatest index i with KeyAt(i) <= key, or -1 if
// key < KeyAt(0) or the leaf is empty — the §4.5 "binary search
// conventions" floor index — plus whether that index is an exact match.
func (n *leafNode[K]) find(cmp Comparator[K], key K) (idx int, exact bool) {
	lb := n.lowerBound(cmp, key)
	if lb < n.Size() && cmp(n.KeyAt(lb), key) == 0 {
		return lb, true
	}
	return lb - 1, false
}
