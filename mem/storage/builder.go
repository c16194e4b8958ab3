package storage

import (
	"log"

	"github.com/sarchlab/memsim/mem/vm/replacement"
)

// A Builder can build frame stores.
type Builder struct {
	numFrames    int
	victimFinder replacement.VictimFinder
	backingStore BackingStore
	logger       *log.Logger
}

// MakeBuilder returns a Builder with 256 frames, FIFO replacement, and the
// default backing store file.
func MakeBuilder() Builder {
	return Builder{
		numFrames: 256,
	}
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithVictimFinder sets the replacement policy.
func (b Builder) WithVictimFinder(f replacement.VictimFinder) Builder {
	b.victimFinder = f
	return b
}

// WithBackingStore sets where pages are loaded from.
func (b Builder) WithBackingStore(s BackingStore) Builder {
	b.backingStore = s
	return b
}

// WithLogger makes the frame store log every load and eviction.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build creates a new FrameStore.
func (b Builder) Build() *FrameStore {
	if b.numFrames <= 0 {
		panic("the number of frames must be positive")
	}

	if b.victimFinder == nil {
		b.victimFinder = replacement.NewFIFOVictimFinder()
	}

	if b.backingStore == nil {
		b.backingStore = NewFileBackingStore(DefaultBackingStorePath)
	}

	return &FrameStore{
		numFrames:    b.numFrames,
		frames:       make([][]byte, 0, b.numFrames),
		residents:    make([]int, 0, b.numFrames),
		victimFinder: b.victimFinder,
		backingStore: b.backingStore,
		logger:       b.logger,
	}
}
