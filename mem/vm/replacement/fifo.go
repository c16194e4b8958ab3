package replacement

// FIFOVictimFinder evicts the frame that was filled earliest.
type FIFOVictimFinder struct {
	fillQueue queue
}

// NewFIFOVictimFinder returns a newly constructed FIFO victim finder.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the frame at the head of the fill queue.
func (e *FIFOVictimFinder) FindVictim(_ VictimContext) int {
	if len(e.fillQueue) == 0 {
		panic("no frame has been filled")
	}

	return e.fillQueue[0]
}

// Visit does nothing, as hits do not change the fill order.
func (e *FIFOVictimFinder) Visit(_ int) {}

// Fill moves the frame to the tail of the fill queue.
func (e *FIFOVictimFinder) Fill(frameNumber int) {
	e.fillQueue = e.fillQueue.moveToBack(frameNumber)
}
