// Package addresstranslator translates logical addresses into the values they
// point to, going through a TLB, a page table, and a frame store.
package addresstranslator

import (
	"context"
	"fmt"

	"github.com/sarchlab/memsim/mem/storage"
	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/mem/vm/tlb"
	"github.com/sarchlab/memsim/sim"
)

// HookPosRunStart is triggered before the first address of a run. The item is
// the number of addresses in the run.
var HookPosRunStart = &sim.HookPos{Name: "RunStart"}

// HookPosAfterTranslation is triggered after every translated address. The
// item is the Result and the detail is the Statistics after the address.
var HookPosAfterTranslation = &sim.HookPos{Name: "AfterTranslation"}

// HookPosRunEnd is triggered after the last address of a run. The item is the
// final Statistics.
var HookPosRunEnd = &sim.HookPos{Name: "RunEnd"}

// ResultKind tells where a translation was resolved.
type ResultKind int

// The places a translation can be resolved.
const (
	TLBHit ResultKind = iota
	PageTableHit
	PageFault
)

func (k ResultKind) String() string {
	switch k {
	case TLBHit:
		return "TLBHit"
	case PageTableHit:
		return "PageTableHit"
	case PageFault:
		return "PageFault"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// A Result is the outcome of translating one address.
type Result struct {
	Address     vm.LogicalAddress
	PageNumber  int
	Offset      int
	FrameNumber int
	Value       int
	Frame       []byte
	Kind        ResultKind
}

// Comp is an AddressTranslator. It owns the TLB, the page table, and the
// frame store for the whole run.
type Comp struct {
	*sim.HookableBase
	sim.NamedBase

	tlb        *tlb.TLB
	pageTable  vm.PageTable
	frameStore *storage.FrameStore
	stats      Statistics
}

// TLB returns the translation lookaside buffer.
func (c *Comp) TLB() *tlb.TLB {
	return c.tlb
}

// PageTable returns the page table.
func (c *Comp) PageTable() vm.PageTable {
	return c.pageTable
}

// FrameStore returns the physical frames.
func (c *Comp) FrameStore() *storage.FrameStore {
	return c.frameStore
}

// Stats returns the counters accumulated so far.
func (c *Comp) Stats() Statistics {
	return c.stats
}

// Run translates the addresses in order. It stops at the first error or when
// the context is cancelled.
func (c *Comp) Run(ctx context.Context, addresses []vm.LogicalAddress) error {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosRunStart,
		Item:   len(addresses),
	})

	for i, addr := range addresses {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := c.Translate(addr, addresses[i+1:])
		if err != nil {
			return fmt.Errorf("translate address %d: %w", addr, err)
		}
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosRunEnd,
		Item:   c.stats,
	})

	return nil
}

// Translate resolves one address. The lookahead holds the addresses that will
// be translated after this one, and is only consulted by the optimal policy.
func (c *Comp) Translate(
	addr vm.LogicalAddress,
	lookahead []vm.LogicalAddress,
) (Result, error) {
	pageNumber, offset := vm.Decode(addr)

	kind, frameNumber, err := c.resolveFrame(pageNumber, lookahead)
	if err != nil {
		return Result{}, err
	}

	frame, value, err := c.frameStore.Read(frameNumber, offset)
	if err != nil {
		return Result{}, err
	}

	c.count(kind)

	result := Result{
		Address:     addr,
		PageNumber:  pageNumber,
		Offset:      offset,
		FrameNumber: frameNumber,
		Value:       value,
		Frame:       frame,
		Kind:        kind,
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosAfterTranslation,
		Item:   result,
		Detail: c.stats,
	})

	return result, nil
}

func (c *Comp) resolveFrame(
	pageNumber int,
	lookahead []vm.LogicalAddress,
) (ResultKind, int, error) {
	if frameNumber, found := c.tlb.Lookup(pageNumber); found {
		c.frameStore.Touch(frameNumber)
		return TLBHit, frameNumber, nil
	}

	if frameNumber, found := c.pageTable.Find(pageNumber); found {
		c.frameStore.Touch(frameNumber)
		c.tlb.Insert(pageNumber, frameNumber)

		return PageTableHit, frameNumber, nil
	}

	frameNumber, err := c.frameStore.Fault(pageNumber, lookahead)
	if err != nil {
		return PageFault, 0, fmt.Errorf("page fault on page %d: %w",
			pageNumber, err)
	}

	c.pageTable.Insert(pageNumber, frameNumber)
	c.tlb.Insert(pageNumber, frameNumber)

	return PageFault, frameNumber, nil
}

func (c *Comp) count(kind ResultKind) {
	c.stats.NumAddresses++

	switch kind {
	case TLBHit:
		c.stats.TLBHits++
	case PageTableHit:
		c.stats.TLBMisses++
	case PageFault:
		c.stats.TLBMisses++
		c.stats.PageFaults++
	}
}
