// Package addresslist reads the logical addresses to translate.
package addresslist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/memsim/mem/vm"
)

// Load reads every address in the file. See Parse for the format.
func Load(path string) ([]vm.LogicalAddress, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open address list: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads one base-10 address per line. Lines that are blank, that are not
// integers, or that fall outside [0, 65535] are skipped. The whole list is
// materialized because the optimal policy needs to see the future.
func Parse(r io.Reader) ([]vm.LogicalAddress, error) {
	addresses := []vm.LogicalAddress{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		addr, err := vm.ParseLogicalAddress(scanner.Text())
		if err != nil {
			continue
		}

		addresses = append(addresses, addr)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read address list: %w", err)
	}

	return addresses, nil
}
