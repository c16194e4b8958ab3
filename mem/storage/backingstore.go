// Package storage provides the physical side of the simulator: the backing
// store that pages are loaded from and the frame store that holds them.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/memsim/mem/vm"
)

// DefaultBackingStorePath is the backing store used when none is configured.
const DefaultBackingStorePath = "BACKING_STORE.bin"

// ErrPageOutOfRange is returned when the backing store ends before the end of
// the requested page.
var ErrPageOutOfRange = errors.New("page beyond the end of the backing store")

// A BackingStore is the secondary storage that holds every page.
type BackingStore interface {
	// ReadPage returns the PageSize bytes of the page.
	ReadPage(pageNumber int) ([]byte, error)
}

// FileBackingStore reads pages from a flat binary file in which page P
// occupies bytes [P*PageSize, (P+1)*PageSize). The file is opened and closed
// on every read.
type FileBackingStore struct {
	path string
}

// NewFileBackingStore creates a backing store reading from path.
func NewFileBackingStore(path string) *FileBackingStore {
	return &FileBackingStore{path: path}
}

// Path returns the file the pages are read from.
func (s *FileBackingStore) Path() string {
	return s.path
}

// ReadPage reads one page from the file.
func (s *FileBackingStore) ReadPage(pageNumber int) ([]byte, error) {
	if pageNumber < 0 {
		return nil, fmt.Errorf("page %d: %w", pageNumber, ErrPageOutOfRange)
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open backing store: %w", err)
	}
	defer file.Close()

	data := make([]byte, vm.PageSize)

	_, err = file.ReadAt(data, int64(pageNumber)*vm.PageSize)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("page %d of %s: %w",
			pageNumber, s.path, ErrPageOutOfRange)
	}

	if err != nil {
		return nil, fmt.Errorf("read page %d of %s: %w", pageNumber, s.path, err)
	}

	return data, nil
}
