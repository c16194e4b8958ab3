// Package internal provides the storage behind a TLB.
package internal

import "container/list"

// An Entry is one cached translation.
type Entry struct {
	PageNumber  int
	FrameNumber int
}

// A Set holds TLB entries in insertion order. It can be searched by page
// and by frame.
type Set interface {
	Lookup(pageNumber int) (Entry, bool)
	LookupFrame(frameNumber int) (Entry, bool)
	Add(entry Entry)
	Remove(pageNumber int)
	Evict() (Entry, bool)
	Len() int
	Entries() []Entry
}

// NewSet creates a new, empty set.
func NewSet() Set {
	return &setImpl{
		order:   list.New(),
		byPage:  make(map[int]*list.Element),
		byFrame: make(map[int]*list.Element),
	}
}

type setImpl struct {
	order   *list.List
	byPage  map[int]*list.Element
	byFrame map[int]*list.Element
}

func (s *setImpl) Lookup(pageNumber int) (Entry, bool) {
	elem, found := s.byPage[pageNumber]
	if !found {
		return Entry{}, false
	}

	return elem.Value.(Entry), true
}

func (s *setImpl) LookupFrame(frameNumber int) (Entry, bool) {
	elem, found := s.byFrame[frameNumber]
	if !found {
		return Entry{}, false
	}

	return elem.Value.(Entry), true
}

// Add puts the entry at the newest position. An existing entry for the same
// page is replaced.
func (s *setImpl) Add(entry Entry) {
	s.Remove(entry.PageNumber)

	elem := s.order.PushBack(entry)
	s.byPage[entry.PageNumber] = elem
	s.byFrame[entry.FrameNumber] = elem
}

func (s *setImpl) Remove(pageNumber int) {
	elem, found := s.byPage[pageNumber]
	if !found {
		return
	}

	s.unlink(elem)
}

// Evict removes and returns the oldest entry.
func (s *setImpl) Evict() (Entry, bool) {
	elem := s.order.Front()
	if elem == nil {
		return Entry{}, false
	}

	s.unlink(elem)

	return elem.Value.(Entry), true
}

func (s *setImpl) unlink(elem *list.Element) {
	entry := elem.Value.(Entry)

	s.order.Remove(elem)
	delete(s.byPage, entry.PageNumber)

	if s.byFrame[entry.FrameNumber] == elem {
		delete(s.byFrame, entry.FrameNumber)
	}
}

func (s *setImpl) Len() int {
	return s.order.Len()
}

// Entries returns the entries from oldest to newest.
func (s *setImpl) Entries() []Entry {
	entries := make([]Entry, 0, s.order.Len())
	for e := s.order.Front(); e != nil; e = e.Next() {
		entries = append(entries, e.Value.(Entry))
	}

	return entries
}
