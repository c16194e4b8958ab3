package storage

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/mem/vm/replacement"
)

// ErrFrameNotPopulated is returned when reading a frame that no page has ever
// been loaded into.
var ErrFrameNotPopulated = errors.New("frame not populated")

// A FrameStore owns the physical frames. It fills free frames in order and,
// once all frames are occupied, asks its VictimFinder which frame to reuse.
type FrameStore struct {
	numFrames    int
	frames       [][]byte
	residents    []int
	victimFinder replacement.VictimFinder
	backingStore BackingStore
	logger       *log.Logger
}

// A Frame is a copy of one occupied frame.
type Frame struct {
	FrameNumber int    `json:"frame"`
	PageNumber  int    `json:"page"`
	Data        []byte `json:"-"`
}

// SignedValue reinterprets a byte as a two's-complement signed value.
func SignedValue(b byte) int {
	return (int(b)+128)%256 - 128
}

// NumFrames returns the number of physical frames.
func (s *FrameStore) NumFrames() int {
	return s.numFrames
}

// NumOccupied returns the number of frames holding a page.
func (s *FrameStore) NumOccupied() int {
	return len(s.residents)
}

// Resident returns the page held by the frame.
func (s *FrameStore) Resident(frameNumber int) (pageNumber int, ok bool) {
	if frameNumber < 0 || frameNumber >= len(s.residents) {
		return 0, false
	}

	return s.residents[frameNumber], true
}

// Read returns a copy of the frame and the signed byte at the offset.
func (s *FrameStore) Read(frameNumber, offset int) ([]byte, int, error) {
	if frameNumber < 0 || frameNumber >= len(s.frames) {
		return nil, 0, fmt.Errorf("frame %d: %w", frameNumber, ErrFrameNotPopulated)
	}

	if offset < 0 || offset >= vm.PageSize {
		return nil, 0, fmt.Errorf("offset %d out of range [0, %d)",
			offset, vm.PageSize)
	}

	data := make([]byte, vm.PageSize)
	copy(data, s.frames[frameNumber])

	return data, SignedValue(data[offset]), nil
}

// Touch tells the replacement policy that the frame has been accessed without
// a fault.
func (s *FrameStore) Touch(frameNumber int) {
	s.victimFinder.Visit(frameNumber)
}

// Fault loads the page into a frame and returns the frame number. The
// lookahead is the part of the address stream that comes after the faulting
// address.
func (s *FrameStore) Fault(
	pageNumber int,
	lookahead []vm.LogicalAddress,
) (int, error) {
	frameNumber := s.nextFrame(lookahead)

	data, err := s.backingStore.ReadPage(pageNumber)
	if err != nil {
		return 0, err
	}

	if len(data) != vm.PageSize {
		return 0, fmt.Errorf("backing store returned %d bytes for page %d",
			len(data), pageNumber)
	}

	if frameNumber == len(s.frames) {
		s.frames = append(s.frames, data)
		s.residents = append(s.residents, pageNumber)
		s.logf("page %d loaded into free frame %d", pageNumber, frameNumber)
	} else {
		s.logf("page %d loaded into frame %d, evicting page %d",
			pageNumber, frameNumber, s.residents[frameNumber])
		s.frames[frameNumber] = data
		s.residents[frameNumber] = pageNumber
	}

	s.victimFinder.Fill(frameNumber)

	return frameNumber, nil
}

func (s *FrameStore) nextFrame(lookahead []vm.LogicalAddress) int {
	if len(s.frames) < s.numFrames {
		return len(s.frames)
	}

	victim := s.victimFinder.FindVictim(replacement.VictimContext{
		Residents: s.residents,
		Lookahead: lookahead,
	})

	if victim < 0 || victim >= s.numFrames {
		panic(fmt.Sprintf("victim finder chose frame %d out of %d",
			victim, s.numFrames))
	}

	return victim
}

// Snapshot returns a copy of every occupied frame, ordered by frame number.
func (s *FrameStore) Snapshot() []Frame {
	snapshot := make([]Frame, 0, len(s.frames))
	for i, data := range s.frames {
		f := Frame{
			FrameNumber: i,
			PageNumber:  s.residents[i],
			Data:        make([]byte, len(data)),
		}
		copy(f.Data, data)
		snapshot = append(snapshot, f)
	}

	return snapshot
}

func (s *FrameStore) logf(format string, v ...interface{}) {
	if s.logger == nil {
		return
	}

	s.logger.Printf(format, v...)
}
