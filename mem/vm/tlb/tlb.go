// Package tlb provides a translation lookaside buffer that caches
// page-to-frame translations.
package tlb

import "github.com/sarchlab/memsim/mem/vm/tlb/internal"

// An Entry is one cached page-to-frame translation.
type Entry = internal.Entry

// A TLB is a fully associative cache of translations with a fixed number of
// entries. When full, the entry inserted earliest is evicted, regardless of
// the replacement policy the frames use.
type TLB struct {
	numEntries int
	set        internal.Set
}

// Lookup returns the frame that caches the page, if any.
func (t *TLB) Lookup(pageNumber int) (frameNumber int, found bool) {
	entry, found := t.set.Lookup(pageNumber)
	if !found {
		return 0, false
	}

	return entry.FrameNumber, true
}

// Insert caches the translation. Any entry that points to the same frame
// under another page is dropped first, so that a reused frame can never be
// reached through the page that used to own it.
func (t *TLB) Insert(pageNumber, frameNumber int) {
	if stale, found := t.set.LookupFrame(frameNumber); found &&
		stale.PageNumber != pageNumber {
		t.set.Remove(stale.PageNumber)
	}

	t.set.Add(Entry{PageNumber: pageNumber, FrameNumber: frameNumber})

	for t.set.Len() > t.numEntries {
		t.set.Evict()
	}
}

// Len returns the number of cached translations.
func (t *TLB) Len() int {
	return t.set.Len()
}

// Capacity returns the maximum number of cached translations.
func (t *TLB) Capacity() int {
	return t.numEntries
}

// Entries returns the cached translations from oldest to newest.
func (t *TLB) Entries() []Entry {
	return t.set.Entries()
}
