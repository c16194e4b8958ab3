// Package vm provides the virtual memory building blocks of the simulator:
// logical addresses and the page table.
package vm

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Log2PageSize is the number of offset bits in a logical address.
	Log2PageSize = 8

	// PageSize is the number of bytes in a page and in a frame.
	PageSize = 1 << Log2PageSize

	// NumPages is the number of pages a 16-bit logical address can name.
	NumPages = 1 << (16 - Log2PageSize)
)

// A LogicalAddress is a 16-bit virtual address. The high byte selects the
// page and the low byte is the offset within the page.
type LogicalAddress uint16

// PageNumber returns the page that the address falls in.
func (a LogicalAddress) PageNumber() int {
	return int(a>>Log2PageSize) & (NumPages - 1)
}

// Offset returns the byte offset within the page.
func (a LogicalAddress) Offset() int {
	return int(a) & (PageSize - 1)
}

// Decode splits an address into its page number and offset.
func Decode(addr LogicalAddress) (pageNumber, offset int) {
	return addr.PageNumber(), addr.Offset()
}

// ParseLogicalAddress converts a base-10 token into a LogicalAddress. Tokens
// that are not integers or that do not fit in 16 bits are rejected.
func ParseLogicalAddress(token string) (LogicalAddress, error) {
	token = strings.TrimSpace(token)

	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", token, err)
	}

	if n < 0 || n > 0xFFFF {
		return 0, fmt.Errorf("address %d out of range [0, 65535]", n)
	}

	return LogicalAddress(n), nil
}
