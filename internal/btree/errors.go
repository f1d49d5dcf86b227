package btree

import "errors"

var (
	// ErrKeyExists is returned (not wrapped in a bool) by callers that
	// prefer an error over the raw false the core Insert returns.
	ErrKeyExists = errors.New("btree: key already exists")

	// ErrTreeCorrupt signals an internal invariant violation — e.g. an
	// internal node with zero children — which should never happen
	// through the public API and indicates a bug rather than bad input.
	ErrTreeCorrupt = errors.New("btree: corrupt tree structure")
)
