package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSet abstracts "the file(s) backing one index/tree" so the
// StorageManager never hard-codes a path. LocalFileSet is the only
// implementation; tests and callers key a buffer pool off of it.
type FileSet interface {
	OpenSegment(segNo int32) (*os.File, error)
}

var _ FileSet = (*LocalFileSet)(nil)

// LocalFileSet is a directory + base file name. Segments beyond the first
// are stored as Base.1, Base.2, ... alongside Base.
type LocalFileSet struct {
	Dir  string
	Base string
}

func (lfs LocalFileSet) OpenSegment(segNo int32) (*os.File, error) {
	name := SegFileName(lfs.Base, segNo)
	path := filepath.Join(lfs.Dir, name)
	if err := os.MkdirAll(lfs.Dir, FileMode0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
}

// Key returns a stable identity for fsKey-style maps (used when several
// FileSets are ever pooled behind one shared buffer pool).
func (lfs LocalFileSet) Key() string {
	return filepath.Clean(lfs.Dir) + "|" + lfs.Base
}

// StorageManager is the synchronous block I/O collaborator required by §6:
// it exposes exactly ReadPage/WritePage over a fixed block size and assigns
// no meaning to the bytes it moves.
type StorageManager struct{}

func NewStorageManager() *StorageManager {
	return &StorageManager{}
}

func (sm *StorageManager) pagesPerSegment() int {
	return SegmentSize / PageSize
}

func (sm *StorageManager) locate(pageID PageID) (segNo int32, offset int64) {
	pps := int32(sm.pagesPerSegment())
	id := int32(pageID)
	segNo = id / pps
	pageInSeg := id % pps
	offset = int64(pageInSeg) * PageSize
	return segNo, offset
}

// ReadPage reads exactly one page into dst. A file shorter than the
// requested offset is treated as containing zero-filled pages that simply
// haven't been written yet; the higher layers (btree) decide whether an
// all-zero page means "uninitialized".
func (sm *StorageManager) ReadPage(fs FileSet, pageID PageID, dst []byte) error {
	if len(dst) != PageSize {
		return ErrReadExceedPageSize
	}
	segNo, off := sm.locate(pageID)
	f, err := fs.OpenSegment(segNo)
	if err != nil {
		return err
	}
	defer closeQuietly(f)

	n, err := f.ReadAt(dst, off)
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < PageSize; i++ {
		dst[i] = 0
	}
	return nil
}

// WritePage writes exactly one page from src to the computed on-disk
// location.
func (sm *StorageManager) WritePage(fs FileSet, pageID PageID, src []byte) error {
	if len(src) != PageSize {
		return ErrWriteExceedPageSize
	}
	segNo, off := sm.locate(pageID)
	f, err := fs.OpenSegment(segNo)
	if err != nil {
		return err
	}
	defer closeQuietly(f)

	n, err := f.WriteAt(src, off)
	if err != nil {
		return err
	}
	if n != PageSize {
		return ErrShortWrite
	}
	return nil
}

// CountPages scans every segment backing fs and returns the total number of
// pages currently materialized on disk. Used to restore a monotonic page-id
// counter when reopening an index.
//
// OpenSegment always creates its backing file (O_CREATE), so a missing
// segment never surfaces as an error to stop on here. Page ids are handed
// out in monotonic order and segments fill in order too, so the first
// segment with no bytes in it (freshly created by the probe above, or
// genuinely never written) marks the end of the scan.
func (sm *StorageManager) CountPages(fs FileSet) (uint32, error) {
	var total uint32
	for segNo := int32(0); ; segNo++ {
		f, err := fs.OpenSegment(segNo)
		if err != nil {
			return 0, err
		}
		info, statErr := f.Stat()
		_ = f.Close()
		if statErr != nil {
			return 0, statErr
		}
		if info.Size() <= 0 {
			break
		}
		total += uint32(info.Size() / PageSize)
	}
	return total, nil
}

func closeQuietly(f *os.File) {
	if err := f.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "storage: close segment:", err)
	}
}
