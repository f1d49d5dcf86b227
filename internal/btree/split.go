package btree

import (
	"github.com/ktnguyen/bptreekv/internal/guard"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

// splitLeaf materializes leaf's entries plus the new (key, value), and
// rebuilds leaf in place as the left half while allocating a fresh leaf
// page for the right half — the "virtual array" technique. It returns the
// promoted split key (the right half's first key) and the new page's id.
func (t *Tree[K]) splitLeaf(leaf *leafNode[K], insertPos int, key K, value RID) (K, storage.PageID, error) {
	var zero K
	entries := leaf.allEntries()
	entries = append(entries, leafEntry[K]{})
	copy(entries[insertPos+1:], entries[insertPos:])
	entries[insertPos] = leafEntry[K]{key, value}

	leftCount := minSize(leaf.MaxSize())
	left, right := entries[:leftCount], entries[leftCount:]

	rightID, rg, err := guard.NewPageGuarded(t.pool)
	if err != nil {
		return zero, storage.InvalidPageID, err
	}
	rightNode := newLeafNode(rg.DataMut(), t.codec)
	rightNode.Init(int32(leaf.MaxSize()))
	rightNode.rebuild(right)
	rightNode.SetNextPage(leaf.NextPage())

	leaf.rebuild(left)
	leaf.SetNextPage(rightID)
	rg.Drop()

	return right[0].key, rightID, nil
}

// splitInternal materializes in's entries plus the new (key, child) pair,
// and rebuilds in place as the left half while allocating a fresh internal
// page for the right half. The key at the left/right boundary is promoted
// to the parent rather than kept in either half, since an internal node's
// slot-0 key is always unused.
func (t *Tree[K]) splitInternal(in *internalNode[K], insertPos int, key K, child storage.PageID) (K, storage.PageID, error) {
	var zero K
	entries := in.allEntries()
	entries = append(entries, internalEntry[K]{})
	copy(entries[insertPos+1:], entries[insertPos:])
	entries[insertPos] = internalEntry[K]{key, child}

	leftCount := minSize(in.MaxSize())
	left, right := entries[:leftCount], entries[leftCount:]
	splitKey := right[0].key

	rightID, rg, err := guard.NewPageGuarded(t.pool)
	if err != nil {
		return zero, storage.InvalidPageID, err
	}
	rightNode := newInternalNode(rg.DataMut(), t.codec)
	rightNode.Init(int32(in.MaxSize()))
	rightNode.rebuild(right)
	rg.Drop()

	in.rebuild(left)

	return splitKey, rightID, nil
}
