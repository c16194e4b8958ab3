// Package trace provides hooks that trace every translated address.
package trace

import (
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/mem/vm/addresstranslator"
	"github.com/sarchlab/memsim/sim"
)

// translationEntry represents a translated address in the database
type translationEntry struct {
	ID          string `json:"id"`
	RunID       string `json:"run_id"`
	Sequence    int64  `json:"sequence"`
	Address     int64  `json:"address"`
	PageNumber  int64  `json:"page_number"`
	PageOffset  int64  `json:"page_offset"`
	FrameNumber int64  `json:"frame_number"`
	Value       int64  `json:"value"`
	Kind        string `json:"kind"`
}

// summaryEntry represents the final counters of a run in the database
type summaryEntry struct {
	ID            string  `json:"id"`
	Translator    string  `json:"translator"`
	NumAddresses  int64   `json:"num_addresses"`
	PageFaults    int64   `json:"page_faults"`
	PageFaultRate float64 `json:"page_fault_rate"`
	TLBHits       int64   `json:"tlb_hits"`
	TLBMisses     int64   `json:"tlb_misses"`
	TLBHitRate    float64 `json:"tlb_hit_rate"`
}

// Table names used by the database tracer.
const (
	TranslationTable = "translations"
	SummaryTable     = "summaries"
)

// A tracer is a hook that prints one line per translated address.
type tracer struct {
	sim.LogHookBase
}

// NewTracer creates a hook that prints "address, value, frame, bytes" for
// every translated address, where bytes is the whole frame in uppercase hex.
func NewTracer(logger *log.Logger) sim.Hook {
	return &tracer{LogHookBase: sim.NewLogHookBase(logger)}
}

// Func prints the result of a translation.
func (t *tracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != addresstranslator.HookPosAfterTranslation {
		return
	}

	result, ok := ctx.Item.(addresstranslator.Result)
	if !ok {
		return
	}

	t.Printf("%d, %d, %d, %s\n",
		result.Address,
		result.Value,
		result.FrameNumber,
		strings.ToUpper(hex.EncodeToString(result.Frame)),
	)
}

// A DBTracer is a hook that records every translation and the summary of each
// run into a database using the data recorder.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
	idGenerator  sim.IDGenerator
	runID        string
	sequence     int64
	err          error
}

// NewDBTracer creates a database tracer and the tables it writes to.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	idGenerator sim.IDGenerator,
) (*DBTracer, error) {
	t := &DBTracer{
		dataRecorder: dataRecorder,
		idGenerator:  idGenerator,
	}

	err := t.dataRecorder.CreateTable(TranslationTable, translationEntry{})
	if err != nil {
		return nil, err
	}

	err = t.dataRecorder.CreateTable(SummaryTable, summaryEntry{})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Err returns the first error met while recording. Recording stops after it.
func (t *DBTracer) Err() error {
	return t.err
}

// Func records the run start, each translation, and the run summary.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	if t.err != nil {
		return
	}

	switch ctx.Pos {
	case addresstranslator.HookPosRunStart:
		t.runID = t.idGenerator.Generate()
		t.sequence = 0
	case addresstranslator.HookPosAfterTranslation:
		t.recordTranslation(ctx)
	case addresstranslator.HookPosRunEnd:
		t.recordSummary(ctx)
	}
}

func (t *DBTracer) recordTranslation(ctx sim.HookCtx) {
	result, ok := ctx.Item.(addresstranslator.Result)
	if !ok {
		return
	}

	entry := translationEntry{
		ID:          t.idGenerator.Generate(),
		RunID:       t.runID,
		Sequence:    t.sequence,
		Address:     int64(result.Address),
		PageNumber:  int64(result.PageNumber),
		PageOffset:  int64(result.Offset),
		FrameNumber: int64(result.FrameNumber),
		Value:       int64(result.Value),
		Kind:        result.Kind.String(),
	}
	t.sequence++

	t.setErr(t.dataRecorder.InsertData(TranslationTable, entry))
}

func (t *DBTracer) recordSummary(ctx sim.HookCtx) {
	stats, ok := ctx.Item.(addresstranslator.Statistics)
	if !ok {
		return
	}

	entry := summaryEntry{
		ID:           t.runID,
		NumAddresses: int64(stats.NumAddresses),
		PageFaults:   int64(stats.PageFaults),
		TLBHits:      int64(stats.TLBHits),
		TLBMisses:    int64(stats.TLBMisses),
	}
	entry.PageFaultRate, _ = stats.PageFaultRate()
	entry.TLBHitRate, _ = stats.TLBHitRate()

	if named, ok := ctx.Domain.(sim.Named); ok {
		entry.Translator = named.Name()
	}

	t.setErr(t.dataRecorder.InsertData(SummaryTable, entry))
	if t.err == nil {
		t.setErr(t.dataRecorder.Flush())
	}
}

func (t *DBTracer) setErr(err error) {
	if err != nil && t.err == nil {
		t.err = fmt.Errorf("record translation: %w", err)
	}
}
