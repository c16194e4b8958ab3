// Package replacement provides the page replacement policies that decide
// which frame to reuse once all frames are occupied.
package replacement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/memsim/mem/vm"
)

// ErrUnknownPolicy is returned when a policy name cannot be parsed.
var ErrUnknownPolicy = errors.New("unknown replacement policy")

// A VictimContext describes the state a victim is chosen from.
type VictimContext struct {
	// Residents holds, for every occupied frame, the page that occupies it.
	// The index is the frame number.
	Residents []int

	// Lookahead is the part of the address stream that has not been
	// translated yet, starting with the next address.
	Lookahead []vm.LogicalAddress
}

// A VictimFinder decides which frame should be evicted.
type VictimFinder interface {
	// FindVictim returns the frame to reuse. It is only called when every
	// frame is occupied.
	FindVictim(ctx VictimContext) int

	// Visit records a hit on the frame.
	Visit(frameNumber int)

	// Fill records that a page has just been loaded into the frame.
	Fill(frameNumber int)
}

// Policy names a replacement policy.
type Policy string

// The supported policies.
const (
	FIFO Policy = "FIFO"
	LRU  Policy = "LRU"
	OPT  Policy = "OPT"
)

// ParsePolicy converts a case-insensitive name into a Policy.
func ParsePolicy(name string) (Policy, error) {
	p := Policy(strings.ToUpper(strings.TrimSpace(name)))

	switch p {
	case FIFO, LRU, OPT:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// New creates the VictimFinder that implements the policy.
func New(p Policy) (VictimFinder, error) {
	switch p {
	case FIFO:
		return NewFIFOVictimFinder(), nil
	case LRU:
		return NewLRUVictimFinder(), nil
	case OPT:
		return NewOptimalVictimFinder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p))
	}
}

// queue is an ordering of frame numbers, oldest first.
type queue []int

func (q queue) moveToBack(frameNumber int) queue {
	newQueue := make(queue, 0, len(q)+1)

	for _, f := range q {
		if f != frameNumber {
			newQueue = append(newQueue, f)
		}
	}

	return append(newQueue, frameNumber)
}
