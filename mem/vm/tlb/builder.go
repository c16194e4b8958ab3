package tlb

import "github.com/sarchlab/memsim/mem/vm/tlb/internal"

// A Builder can build TLBs
type Builder struct {
	numEntries int
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{
		numEntries: 16,
	}
}

// WithNumEntries sets the number of translations the TLB can hold.
func (b Builder) WithNumEntries(n int) Builder {
	b.numEntries = n
	return b
}

// Build creates a new TLB
func (b Builder) Build() *TLB {
	if b.numEntries <= 0 {
		panic("the number of TLB entries must be positive")
	}

	return &TLB{
		numEntries: b.numEntries,
		set:        internal.NewSet(),
	}
}
