package vm

import "sort"

// A PageTableEntry records where a page lives. Entries are never removed; an
// entry becomes invalid when its frame is handed to another page.
type PageTableEntry struct {
	PageNumber  int
	FrameNumber int
	Valid       bool
}

// A PageTable maps every page number ever loaded to the frame that holds it.
type PageTable interface {
	// Insert maps the page to the frame, invalidating any other page that
	// currently owns the frame.
	Insert(pageNumber, frameNumber int)

	// Find returns the frame of the page if the page has a valid entry.
	Find(pageNumber int) (frameNumber int, found bool)

	// Entry returns the raw entry, valid or not.
	Entry(pageNumber int) (PageTableEntry, bool)

	// ValidEntries returns all valid entries, ordered by page number.
	ValidEntries() []PageTableEntry

	// Len returns the number of entries, valid or not.
	Len() int
}

// NewPageTable creates a new PageTable.
func NewPageTable() PageTable {
	return &pageTableImpl{
		entries:    make(map[int]*PageTableEntry),
		frameOwner: make(map[int]int),
	}
}

// pageTableImpl is the default implementation of a Page Table
type pageTableImpl struct {
	entries map[int]*PageTableEntry

	// frameOwner maps a frame to the page holding a valid entry for it.
	frameOwner map[int]int
}

func (pt *pageTableImpl) Insert(pageNumber, frameNumber int) {
	if owner, found := pt.frameOwner[frameNumber]; found && owner != pageNumber {
		pt.entries[owner].Valid = false
	}

	entry, found := pt.entries[pageNumber]
	if !found {
		entry = &PageTableEntry{PageNumber: pageNumber}
		pt.entries[pageNumber] = entry
	}

	if entry.Valid && entry.FrameNumber != frameNumber {
		delete(pt.frameOwner, entry.FrameNumber)
	}

	entry.FrameNumber = frameNumber
	entry.Valid = true
	pt.frameOwner[frameNumber] = pageNumber
}

func (pt *pageTableImpl) Find(pageNumber int) (int, bool) {
	entry, found := pt.entries[pageNumber]
	if !found || !entry.Valid {
		return 0, false
	}

	return entry.FrameNumber, true
}

func (pt *pageTableImpl) Entry(pageNumber int) (PageTableEntry, bool) {
	entry, found := pt.entries[pageNumber]
	if !found {
		return PageTableEntry{}, false
	}

	return *entry, true
}

func (pt *pageTableImpl) ValidEntries() []PageTableEntry {
	valid := make([]PageTableEntry, 0, len(pt.frameOwner))
	for _, page := range pt.frameOwner {
		valid = append(valid, *pt.entries[page])
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].PageNumber < valid[j].PageNumber
	})

	return valid
}

func (pt *pageTableImpl) Len() int {
	return len(pt.entries)
}
