package btree

import (
	"github.com/ktnguyen/bptreekv/internal/storage"
	"github.com/ktnguyen/bptreekv/pkg/bx"
)

// Every internal/leaf page starts with a small fixed header, mirroring
// bustub's BPlusTreePage base class (page_type_, size_, max_size_) plus a
// next_leaf field folded into the same slot for leaves. Internal pages
// leave that field unused.
const (
	offKind     = 0 // 1 byte: nodeKind
	offSize     = 4 // int32: current number of entries
	offMaxSize  = 8 // int32: capacity, fixed at init(max_size)
	offNextLeaf = 12
	headerSize  = 16
)

type nodeKind uint8

const (
	kindUninitialized nodeKind = 0
	kindLeaf          nodeKind = 1
	kindInternal      nodeKind = 2
)

func pageKind(data []byte) nodeKind { return nodeKind(data[offKind]) }

func pageSize(data []byte) int32    { return bx.I32At(data, offSize) }
func setPageSize(data []byte, n int32) { bx.PutI32At(data, offSize, n) }

func pageMaxSize(data []byte) int32 { return bx.I32At(data, offMaxSize) }

func leafNextPage(data []byte) storage.PageID {
	return storage.PageID(bx.I32At(data, offNextLeaf))
}

func setLeafNextPage(data []byte, id storage.PageID) {
	bx.PutI32At(data, offNextLeaf, int32(id))
}

// initHeader stamps a freshly allocated page's fixed header. maxSize is
// immutable thereafter.
func initHeader(data []byte, kind nodeKind, maxSize int32) {
	data[offKind] = byte(kind)
	setPageSize(data, 0)
	bx.PutI32At(data, offMaxSize, maxSize)
	setLeafNextPage(data, storage.InvalidPageID)
}

// minSize is ceil(maxSize/2), the standard B+Tree lower bound used by
// every non-root node.
func minSize(maxSize int) int {
	return (maxSize + 1) / 2
}
