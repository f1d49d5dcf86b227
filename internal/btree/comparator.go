package btree

import "github.com/ktnguyen/bptreekv/pkg/bx"

// Comparator is a caller-supplied total order on keys: negative, zero, or
// positive as a < b, a == b, a > b. Only the sign is ever observed.
type Comparator[K any] func(a, b K) int

// Codec encodes/decodes a fixed-width key into the in-place bytes of a
// page; Size() is immutable once a tree is constructed. No codec performs
// allocation on Encode/Decode beyond what the caller-provided buffer
// already holds.
type Codec[K any] interface {
	Size() int
	Encode(buf []byte, k K)
	Decode(buf []byte) K
}

// Int64Comparator orders int64 keys numerically.
func Int64Comparator(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Int64Codec encodes int64 keys as 8 little-endian bytes.
type Int64Codec struct{}

func (Int64Codec) Size() int { return 8 }

func (Int64Codec) Encode(buf []byte, k int64) {
	bx.PutI64(buf, k)
}

func (Int64Codec) Decode(buf []byte) int64 {
	return bx.I64(buf)
}
