package replacement

// LRUVictimFinder evicts the least recently used frame.
type LRUVictimFinder struct {
	lruQueue queue
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the least recently used frame.
func (e *LRUVictimFinder) FindVictim(_ VictimContext) int {
	if len(e.lruQueue) == 0 {
		panic("no frame has been used")
	}

	return e.lruQueue[0]
}

// Visit moves the frame to the end of the LRU queue.
func (e *LRUVictimFinder) Visit(frameNumber int) {
	e.lruQueue = e.lruQueue.moveToBack(frameNumber)
}

// Fill counts as a use of the frame.
func (e *LRUVictimFinder) Fill(frameNumber int) {
	e.Visit(frameNumber)
}
