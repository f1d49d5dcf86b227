package btree

import (
	"github.com/ktnguyen/bptreekv/internal/guard"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

// Remove deletes key if present. Returns false without mutation if key is
// absent.
func (t *Tree[K]) Remove(key K) (bool, error) {
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
		hg.Drop()
		return false, nil
	}

	var ancestors writeGuardStack
	cur, err := guard.FetchPageWrite(t.pool, rootID)
	if err != nil {
		hg.Drop()
		return false, err
	}

	for pageKind(cur.Data()) == kindInternal {
		in := newInternalNode(cur.Data(), t.codec)
		isRoot := ancestors.len() == 0
		safe := in.Size() > minSize(in.MaxSize())
		if isRoot {
			safe = in.Size() > 2
		}
		if safe {
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
	idx, exact := leaf.find(t.cmp, key)
	if !exact {
		cur.Drop()
		ancestors.dropAll()
		dropHeader()
		return false, nil
	}
	leaf.RemoveAt(idx)

	if ancestors.len() == 0 {
		// Leaf is the root.
		if leaf.Size() == 0 {
			leafID := cur.PageID()
			cur.Drop()
			if err := t.pool.DeletePage(leafID); err != nil {
				dropHeader()
				return false, err
			}
			setHeaderRootPageID(hg.DataMut(), storage.InvalidPageID)
		} else {
			cur.Drop()
		}
		dropHeader()
		return true, nil
	}

	if leaf.Size() >= minSize(leaf.MaxSize()) {
		cur.Drop()
		ancestors.dropAll()
		dropHeader()
		return true, nil
	}

	parent, pos := ancestors.pop()
	merged, err := t.rebalanceLeaf(cur, parent, pos)
	if err != nil {
		parent.Drop()
		ancestors.dropAll()
		dropHeader()
		return false, err
	}
	if !merged {
		parent.Drop()
		ancestors.dropAll()
		dropHeader()
		return true, nil
	}

	// Leaf-level merge shrank parent by one entry; cascade upward through
	// the remaining ancestor stack.
	cur = parent
	for {
		in := newInternalNode(cur.Data(), t.codec)
		isRoot := ancestors.len() == 0

		if isRoot {
			if in.Size() == 1 {
				newRootID := in.ChildAt(0)
				oldRootID := cur.PageID()
				cur.Drop()
				if err := t.pool.DeletePage(oldRootID); err != nil {
					dropHeader()
					return false, err
				}
				setHeaderRootPageID(hg.DataMut(), newRootID)
			} else {
				cur.Drop()
			}
			dropHeader()
			return true, nil
		}

		if in.Size() > minSize(in.MaxSize()) {
			cur.Drop()
			ancestors.dropAll()
			dropHeader()
			return true, nil
		}

		parent, pos := ancestors.pop()
		merged, err := t.rebalanceInternal(cur, parent, pos)
		if err != nil {
			parent.Drop()
			ancestors.dropAll()
			dropHeader()
			return false, err
		}
		if !merged {
			parent.Drop()
			ancestors.dropAll()
			dropHeader()
			return true, nil
		}
		cur = parent
	}
}

// rebalanceLeaf restores leaf's minimum occupancy by borrowing from a
// sibling (preferring the right one) or, failing that, merging with it.
// merged reports whether parent lost an entry and may itself now need
// rebalancing.
func (t *Tree[K]) rebalanceLeaf(node, parent *guard.WritePageGuard, pos int) (merged bool, err error) {
	nodeLeaf := newLeafNode(node.DataMut(), t.codec)
	parentInt := newInternalNode(parent.DataMut(), t.codec)

	useRight := pos < parentInt.Size()-1
	var sibPos int
	if useRight {
		sibPos = pos + 1
	} else {
		sibPos = pos - 1
	}

	sib, err := guard.FetchPageWrite(t.pool, parentInt.ChildAt(sibPos))
	if err != nil {
		node.Drop()
		return false, err
	}
	sibLeaf := newLeafNode(sib.DataMut(), t.codec)

	if useRight {
		if sibLeaf.Size() > minSize(sibLeaf.MaxSize()) {
			entries := sibLeaf.allEntries()
			nodeLeaf.InsertAt(nodeLeaf.Size(), entries[0].key, entries[0].value)
			sibLeaf.RemoveAt(0)
			parentInt.setKeyAt(sibPos, sibLeaf.KeyAt(0))
			node.Drop()
			sib.Drop()
			return false, nil
		}
		merge := append(nodeLeaf.allEntries(), sibLeaf.allEntries()...)
		nodeLeaf.rebuild(merge)
		nodeLeaf.SetNextPage(sibLeaf.NextPage())
		sibID := sib.PageID()
		sib.Drop()
		if err := t.pool.DeletePage(sibID); err != nil {
			node.Drop()
			return false, err
		}
		parentInt.RemoveAt(sibPos)
		node.Drop()
		return true, nil
	}

	if sibLeaf.Size() > minSize(sibLeaf.MaxSize()) {
		entries := sibLeaf.allEntries()
		last := entries[len(entries)-1]
		nodeLeaf.InsertAt(0, last.key, last.value)
		sibLeaf.RemoveAt(len(entries) - 1)
		parentInt.setKeyAt(pos, last.key)
		node.Drop()
		sib.Drop()
		return false, nil
	}
	merge := append(sibLeaf.allEntries(), nodeLeaf.allEntries()...)
	sibLeaf.rebuild(merge)
	sibLeaf.SetNextPage(nodeLeaf.NextPage())
	nodeID := node.PageID()
	node.Drop()
	if err := t.pool.DeletePage(nodeID); err != nil {
		sib.Drop()
		return false, err
	}
	parentInt.RemoveAt(pos)
	sib.Drop()
	return true, nil
}

// rebalanceInternal is rebalanceLeaf's internal-node counterpart. Because
// an internal node's slot-0 key is never meaningful, a borrow or merge
// across the parent boundary must "pull down" the parent's separator key
// into the slot that crosses it.
func (t *Tree[K]) rebalanceInternal(node, parent *guard.WritePageGuard, pos int) (merged bool, err error) {
	nodeInt := newInternalNode(node.DataMut(), t.codec)
	parentInt := newInternalNode(parent.DataMut(), t.codec)

	useRight := pos < parentInt.Size()-1
	var sibPos int
	if useRight {
		sibPos = pos + 1
	} else {
		sibPos = pos - 1
	}

	sib, err := guard.FetchPageWrite(t.pool, parentInt.ChildAt(sibPos))
	if err != nil {
		node.Drop()
		return false, err
	}
	sibInt := newInternalNode(sib.DataMut(), t.codec)

	if useRight {
		if sibInt.Size() > minSize(sibInt.MaxSize()) {
			sep := parentInt.KeyAt(sibPos)
			borrowed := sibInt.ChildAt(0)
			nodeInt.InsertAt(nodeInt.Size(), sep, borrowed)

			sibEntries := sibInt.allEntries()[1:]
			newSeparator := sibEntries[0].key
			sibInt.rebuild(sibEntries)
			parentInt.setKeyAt(sibPos, newSeparator)

			node.Drop()
			sib.Drop()
			return false, nil
		}

		sep := parentInt.KeyAt(sibPos)
		sibEntries := sibInt.allEntries()
		sibEntries[0] = internalEntry[K]{sep, sibEntries[0].child}
		merge := append(nodeInt.allEntries(), sibEntries...)
		nodeInt.rebuild(merge)

		sibID := sib.PageID()
		sib.Drop()
		if err := t.pool.DeletePage(sibID); err != nil {
			node.Drop()
			return false, err
		}
		parentInt.RemoveAt(sibPos)
		node.Drop()
		return true, nil
	}

	if sibInt.Size() > minSize(sibInt.MaxSize()) {
		lastIdx := sibInt.Size() - 1
		sep := parentInt.KeyAt(pos)
		borrowed := sibInt.ChildAt(lastIdx)
		borrowedKey := sibInt.KeyAt(lastIdx)
		sibInt.RemoveAt(lastIdx)

		nodeEntries := nodeInt.allEntries()
		newEntries := make([]internalEntry[K], 0, len(nodeEntries)+1)
		newEntries = append(newEntries, internalEntry[K]{nodeEntries[0].key, borrowed})
		newEntries = append(newEntries, internalEntry[K]{sep, nodeEntries[0].child})
		newEntries = append(newEntries, nodeEntries[1:]...)
		nodeInt.rebuild(newEntries)
		parentInt.setKeyAt(pos, borrowedKey)

		node.Drop()
		sib.Drop()
		return false, nil
	}

	sep := parentInt.KeyAt(pos)
	nodeEntries := nodeInt.allEntries()
	nodeEntries[0] = internalEntry[K]{sep, nodeEntries[0].child}
	merge := append(sibInt.allEntries(), nodeEntries...)
	sibInt.rebuild(merge)

	nodeID := node.PageID()
	node.Drop()
	if err := t.pool.DeletePage(nodeID); err != nil {
		sib.Drop()
		return false, err
	}
	parentInt.RemoveAt(pos)
	sib.Drop()
	return true, nil
}
