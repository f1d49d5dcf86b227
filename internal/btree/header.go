package btree

import (
	"github.com/ktnguyen/bptreekv/internal/storage"
	"github.com/ktnguyen/bptreekv/pkg/bx"
)

// The header page's entire payload is a single root-page-id field.
const offRootPageID = 0

func headerRootPageID(data []byte) storage.PageID {
	return storage.PageID(bx.I32At(data, offRootPageID))
}

func setHeaderRootPageID(data []byte, id storage.PageID) {
	bx.PutI32At(data, offRootPageID, int32(id))
}
