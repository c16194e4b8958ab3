package addresstranslator

import (
	"fmt"
	"io"
)

// Statistics are the running counters of a translator.
type Statistics struct {
	NumAddresses uint64 `json:"num_addresses"`
	TLBHits      uint64 `json:"tlb_hits"`
	TLBMisses    uint64 `json:"tlb_misses"`
	PageFaults   uint64 `json:"page_faults"`
}

// PageFaultRate returns faults per translated address. The bool is false when
// no address has been translated.
func (s Statistics) PageFaultRate() (float64, bool) {
	return s.rate(s.PageFaults)
}

// TLBHitRate returns TLB hits per translated address. The bool is false when
// no address has been translated.
func (s Statistics) TLBHitRate() (float64, bool) {
	return s.rate(s.TLBHits)
}

func (s Statistics) rate(n uint64) (float64, bool) {
	if s.NumAddresses == 0 {
		return 0, false
	}

	return float64(n) / float64(s.NumAddresses), true
}

// WriteSummary prints the counters and the rates with three decimals.
func (s Statistics) WriteSummary(w io.Writer) error {
	if s.NumAddresses == 0 {
		_, err := fmt.Fprintln(w, "No addresses translated.")
		return err
	}

	faultRate, _ := s.PageFaultRate()
	hitRate, _ := s.TLBHitRate()

	_, err := fmt.Fprintf(w,
		"Number of Translated Addresses = %d\n"+
			"Page Faults = %d\n"+
			"Page Fault Rate = %.3f\n"+
			"TLB Hits = %d\n"+
			"TLB Misses = %d\n"+
			"TLB Hit Rate = %.3f\n",
		s.NumAddresses,
		s.PageFaults,
		faultRate,
		s.TLBHits,
		s.TLBMisses,
		hitRate,
	)

	return err
}
