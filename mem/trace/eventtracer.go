package trace

import (
	"fmt"
	"io"

	"github.com/sarchlab/memsim/mem/vm/addresstranslator"
	"github.com/sarchlab/memsim/sim"
)

// An EventTracer writes one CSV line per translation, telling whether the TLB,
// the page table, or a page fault resolved it.
type EventTracer struct {
	writer   io.Writer
	sequence uint64
}

// NewEventTracer produces a new EventTracer, injecting the dependency of a
// writer.
func NewEventTracer(w io.Writer) *EventTracer {
	t := new(EventTracer)
	t.writer = w

	return t
}

// Func prints the translation event as
// "sequence,translator,kind,page,frame".
func (t *EventTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != addresstranslator.HookPosAfterTranslation {
		return
	}

	result, ok := ctx.Item.(addresstranslator.Result)
	if !ok {
		return
	}

	name := ""
	if named, ok := ctx.Domain.(sim.Named); ok {
		name = named.Name()
	}

	_, err := fmt.Fprintf(t.writer,
		"%d,%s,%s,%d,%d\n",
		t.sequence,
		name,
		result.Kind,
		result.PageNumber,
		result.FrameNumber)
	if err != nil {
		panic(err)
	}

	t.sequence++
}
