package addresstranslator

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/memsim/mem/storage"
	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/mem/vm/replacement"
	"github.com/sarchlab/memsim/mem/vm/tlb"
	"github.com/sarchlab/memsim/sim"
)

// ErrInvalidConfig is returned by Build when the configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// A Builder can create address translators
type Builder struct {
	numFrames     int
	numTLBEntries int
	policy        replacement.Policy
	backingStore  storage.BackingStore
	logger        *log.Logger
}

// MakeBuilder creates a new builder with 256 frames, a 16-entry TLB, FIFO
// replacement, and the default backing store file.
func MakeBuilder() Builder {
	return Builder{
		numFrames:     256,
		numTLBEntries: 16,
		policy:        replacement.FIFO,
	}
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithNumTLBEntries sets the capacity of the TLB.
func (b Builder) WithNumTLBEntries(n int) Builder {
	b.numTLBEntries = n
	return b
}

// WithPolicy sets the page replacement policy.
func (b Builder) WithPolicy(p replacement.Policy) Builder {
	b.policy = p
	return b
}

// WithBackingStore sets where pages are loaded from on a page fault.
func (b Builder) WithBackingStore(s storage.BackingStore) Builder {
	b.backingStore = s
	return b
}

// WithLogger makes the frame store log loads and evictions.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build validates the configuration and creates a translator.
func (b Builder) Build(name string) (*Comp, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
	}

	if b.numFrames <= 0 {
		return nil, fmt.Errorf("%w: frame count must be positive, got %d",
			ErrInvalidConfig, b.numFrames)
	}

	if b.numTLBEntries <= 0 {
		return nil, fmt.Errorf("%w: TLB entries must be positive, got %d",
			ErrInvalidConfig, b.numTLBEntries)
	}

	victimFinder, err := replacement.New(b.policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	backingStore := b.backingStore
	if backingStore == nil {
		backingStore = storage.NewFileBackingStore(
			storage.DefaultBackingStorePath)
	}

	c := &Comp{
		HookableBase: sim.NewHookableBase(),
		NamedBase:    sim.MakeNamedBase(name),
		tlb:          tlb.MakeBuilder().WithNumEntries(b.numTLBEntries).Build(),
		pageTable:    vm.NewPageTable(),
		frameStore: storage.MakeBuilder().
			WithNumFrames(b.numFrames).
			WithVictimFinder(victimFinder).
			WithBackingStore(backingStore).
			WithLogger(b.logger).
			Build(),
	}

	return c, nil
}
