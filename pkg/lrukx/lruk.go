// Package lrukx implements the LRU-K frame replacement policy: the victim
// is the tracked, evictable frame with the greatest backward K-distance
// (current tick minus the timestamp of its Kth-most-recent access, or +inf
// if it has fewer than K recorded accesses).
package lrukx

import "sync"

// node mirrors bustub's LRUKNode: a bounded FIFO of up to K access
// timestamps plus an evictable flag. history[0] is the oldest kept tick.
type node struct {
	history   []uint64
	evictable bool
	present   bool
}

// less implements the §4.1 ordering relation: smaller sorts first for
// eviction. Frames with fewer than K accesses are "newcomers" and are
// always evicted before any frame that has reached K accesses.
func less(a, b *node, k int) bool {
	aNew := len(a.history) < k
	bNew := len(b.history) < k

	switch {
	case aNew && bNew:
		return a.history[len(a.history)-1] < b.history[len(b.history)-1]
	case aNew:
		return true
	case bNew:
		return false
	default:
		return a.history[0] < b.history[0]
	}
}

// LRUK tracks up to a fixed number of frame slots, identified by small
// contiguous integers [0, capacity) — the same indices the buffer pool
// uses for its frame array.
type LRUK struct {
	mu        sync.Mutex
	k         int
	nodes     []node
	size      int
	timestamp uint64
}

func New(capacity, k int) *LRUK {
	if capacity <= 0 {
		capacity = 1
	}
	if k <= 0 {
		k = 1
	}
	return &LRUK{
		k:     k,
		nodes: make([]node, capacity),
	}
}

func (r *LRUK) Capacity() int { return len(r.nodes) }

// RecordAccess appends a tick to frame's history, creating the node
// (initially non-evictable) on first sight. Out-of-range ids are ignored.
func (r *LRUK) RecordAccess(frame int) {
	if frame < 0 || frame >= len(r.nodes) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timestamp++
	n := &r.nodes[frame]
	if !n.present {
		n.present = true
		n.history = append(n.history[:0], r.timestamp)
		return
	}
	if len(n.history) == r.k {
		n.history = append(n.history[:0], n.history[1:]...)
	}
	n.history = append(n.history, r.timestamp)
}

// SetEvictable toggles frame's evictable flag. frame must already be
// tracked (via RecordAccess); violating that precondition is a contract
// breach and panics rather than silently no-opping.
func (r *LRUK) SetEvictable(frame int, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.mustNode(frame)
	if n.evictable == evictable {
		return
	}
	n.evictable = evictable
	if evictable {
		r.size++
	} else {
		r.size--
	}
}

// Evict returns and untracks the victim frame per the §4.1 ordering, or
// ok=false if no evictable frame exists.
func (r *LRUK) Evict() (frame int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return 0, false
	}

	victim := -1
	for i := range r.nodes {
		n := &r.nodes[i]
		if !n.present || !n.evictable {
			continue
		}
		if victim == -1 || less(n, &r.nodes[victim], r.k) {
			victim = i
		}
	}
	if victim == -1 {
		return 0, false
	}

	r.nodes[victim] = node{}
	r.size--
	return victim, true
}

// Remove drops frame from tracking. frame must be currently tracked and
// evictable; violating either precondition is a contract breach and
// panics rather than silently no-opping.
func (r *LRUK) Remove(frame int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.mustNode(frame)
	if !n.evictable {
		panic("lrukx: Remove on a non-evictable frame")
	}
	r.nodes[frame] = node{}
	r.size--
}

func (r *LRUK) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

func (r *LRUK) mustNode(frame int) *node {
	if frame < 0 || frame >= len(r.nodes) || !r.nodes[frame].present {
		panic("lrukx: operation on an untracked frame")
	}
	return &r.nodes[frame]
}
