package guard

import (
	"github.com/ktnguyen/bptreekv/internal/bufferpool"
	"github.com/ktnguyen/bptreekv/internal/storage"
)

// fetcher is the subset of *bufferpool.Pool used to obtain frames; guards
// then wrap whatever frame comes back.
type fetcher interface {
	pool
	NewPage() (storage.PageID, *bufferpool.Frame, error)
	FetchPage(pageID storage.PageID) (*bufferpool.Frame, error)
}

// NewPageGuarded allocates a fresh page and returns it already wrapped in
// a BasicPageGuard.
func NewPageGuarded(p fetcher) (storage.PageID, *BasicPageGuard, error) {
	pageID, f, err := p.NewPage()
	if err != nil {
		return storage.InvalidPageID, nil, err
	}
	return pageID, NewBasicPageGuard(p, f), nil
}

// FetchPageBasic fetches pageID and returns it wrapped in a BasicPageGuard.
func FetchPageBasic(p fetcher, pageID storage.PageID) (*BasicPageGuard, error) {
	f, err := p.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	return NewBasicPageGuard(p, f), nil
}

// FetchPageRead fetches pageID and returns it already holding the shared
// latch.
func FetchPageRead(p fetcher, pageID storage.PageID) (*ReadPageGuard, error) {
	f, err := p.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	return NewReadPageGuard(p, f), nil
}

// FetchPageWrite fetches pageID and returns it already holding the
// exclusive latch.
func FetchPageWrite(p fetcher, pageID storage.PageID) (*WritePageGuard, error) {
	f, err := p.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	return NewWritePageGuard(p, f), nil
}
