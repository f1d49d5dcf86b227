package btree

import (
	"github.com/ktnguyen/bptreekv/internal/storage"
	"github.com/ktnguyen/bptreekv/pkg/bx"
)

// RID (record identifier) is the externally-meaningful value a leaf maps
// a key to: which page and which slot within it holds the real record.
// The B+Tree itself never interprets these bytes beyond storing them.
type RID struct {
	PageID storage.PageID
	Slot   uint16
}

// ridSize is the fixed on-disk width of an RID: 4 bytes page id + 2 bytes
// slot.
const ridSize = 4 + 2

func encodeRID(buf []byte, r RID) {
	bx.PutI32(buf[0:4], int32(r.PageID))
	bx.PutU16(buf[4:6], r.Slot)
}

func decodeRID(buf []byte) RID {
	return RID{
		PageID: storage.PageID(bx.I32(buf[0:4])),
		Slot:   bx.U16(buf[4:6]),
	}
}
