package btree

import (
	"fmt"
	"strings"

	"github.com/ktnguyen/bptreekv/internal/guard"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

// Dump renders the tree's structure as indented text, one node per line,
// for use in tests and ad-hoc debugging. It is not part of the external
// interface and takes no latches longer than one node at a time.
func (t *Tree[K]) Dump() (string, error) {
	hg, err := guard.FetchPageRead(t.pool, t.headerPageID)
	if err != nil {
		return "", err
	}
	rootID := headerRootPageID(hg.Data())
	hg.Drop()

	var sb strings.Builder
	if !rootID.IsValid() {
		sb.WriteString("<empty>\n")
		return sb.String(), nil
	}
	if err := t.dumpNode(&sb, rootID, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (t *Tree[K]) dumpNode(sb *strings.Builder, pageID storage.PageID, depth int) error {
	g, err := guard.FetchPageRead(t.pool, pageID)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)

	if pageKind(g.Data()) == kindLeaf {
		leaf := newLeafNode(g.Data(), t.codec)
		keys := make([]string, leaf.Size())
		for i := range keys {
			keys[i] = fmt.Sprintf("%v", leaf.KeyAt(i))
		}
		fmt.Fprintf(sb, "%sleaf(page=%d, next=%d): [%s]\n", indent, pageID, leaf.NextPage(), strings.Join(keys, " "))
		g.Drop()
		return nil
	}

	in := newInternalNode(g.Data(), t.codec)
	keys := make([]string, in.Size())
	children := make([]storage.PageID, in.Size())
	for i := 0; i < in.Size(); i++ {
		children[i] = in.ChildAt(i)
		if i == 0 {
			keys[i] = "-"
		} else {
			keys[i] = fmt.Sprintf("%v", in.KeyAt(i))
		}
	}
	fmt.Fprintf(sb, "%sinternal(page=%d): keys=[%s]\n", indent, pageID, strings.Join(keys, " "))
	g.Drop()

	for _, child := range children {
		if err := t.dumpNode(sb, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
