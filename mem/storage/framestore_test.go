package storage

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/mem/vm/replacement"
)

var _ = Describe("FrameStore", func() {
	var (
		mockCtrl     *gomock.Controller
		backingStore *MockBackingStore
		victimFinder *MockVictimFinder
		fs           *FrameStore
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backingStore = NewMockBackingStore(mockCtrl)
		victimFinder = NewMockVictimFinder(mockCtrl)

		fs = MakeBuilder().
			WithNumFrames(2).
			WithBackingStore(backingStore).
			WithVictimFinder(victimFinder).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic when built with no frames", func() {
		Expect(func() { MakeBuilder().WithNumFrames(0).Build() }).To(Panic())
	})

	It("should fill free frames in order", func() {
		backingStore.EXPECT().ReadPage(5).Return(pageOf(1), nil)
		backingStore.EXPECT().ReadPage(9).Return(pageOf(2), nil)
		victimFinder.EXPECT().Fill(0)
		victimFinder.EXPECT().Fill(1)

		frame, err := fs.Fault(5, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame).To(Equal(0))

		frame, err = fs.Fault(9, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame).To(Equal(1))

		Expect(fs.NumOccupied()).To(Equal(2))
		page, ok := fs.Resident(1)
		Expect(ok).To(BeTrue())
		Expect(page).To(Equal(9))
	})

	It("should ask the victim finder once all frames are occupied", func() {
		lookahead := []vm.LogicalAddress{0x0500}

		backingStore.EXPECT().ReadPage(gomock.Any()).Return(pageOf(0), nil).Times(3)
		victimFinder.EXPECT().Fill(gomock.Any()).Times(3)
		victimFinder.EXPECT().
			FindVictim(replacement.VictimContext{
				Residents: []int{5, 9},
				Lookahead: lookahead,
			}).
			Return(1)

		_, _ = fs.Fault(5, nil)
		_, _ = fs.Fault(9, nil)
		frame, err := fs.Fault(7, lookahead)

		Expect(err).NotTo(HaveOccurred())
		Expect(frame).To(Equal(1))
		Expect(fs.NumOccupied()).To(Equal(2))
		page, _ := fs.Resident(1)
		Expect(page).To(Equal(7))
	})

	It("should return backing store errors without changing frames", func() {
		readErr := errors.New("read failed")
		backingStore.EXPECT().ReadPage(5).Return(nil, readErr)

		_, err := fs.Fault(5, nil)

		Expect(err).To(MatchError(readErr))
		Expect(fs.NumOccupied()).To(Equal(0))
	})

	It("should reject short pages", func() {
		backingStore.EXPECT().ReadPage(5).Return([]byte{1, 2, 3}, nil)

		_, err := fs.Fault(5, nil)

		Expect(err).To(HaveOccurred())
	})

	It("should read signed values from a frame", func() {
		data := pageOf(0)
		data[3] = 0xFF
		data[4] = 0x7F
		data[5] = 0x80
		backingStore.EXPECT().ReadPage(1).Return(data, nil)
		victimFinder.EXPECT().Fill(0)
		_, _ = fs.Fault(1, nil)

		frame, value, err := fs.Read(0, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal(-1))
		Expect(frame).To(Equal(data))

		_, value, _ = fs.Read(0, 4)
		Expect(value).To(Equal(127))

		_, value, _ = fs.Read(0, 5)
		Expect(value).To(Equal(-128))
	})

	It("should fail to read a frame that was never populated", func() {
		_, _, err := fs.Read(0, 0)

		Expect(err).To(MatchError(ErrFrameNotPopulated))
	})

	It("should forward touches to the victim finder", func() {
		victimFinder.EXPECT().Visit(1)

		fs.Touch(1)
	})

	It("should return copies in snapshots", func() {
		backingStore.EXPECT().ReadPage(4).Return(pageOf(7), nil)
		victimFinder.EXPECT().Fill(0)
		_, _ = fs.Fault(4, nil)

		snapshot := fs.Snapshot()
		snapshot[0].Data[0] = 99

		Expect(snapshot).To(HaveLen(1))
		Expect(snapshot[0].PageNumber).To(Equal(4))
		data, _, _ := fs.Read(0, 0)
		Expect(data[0]).To(Equal(byte(7)))
	})
})

var _ = Describe("FrameStore with real policies", func() {
	It("should never hold more pages than frames", func() {
		for _, p := range []replacement.Policy{
			replacement.FIFO, replacement.LRU, replacement.OPT,
		} {
			mockCtrl := gomock.NewController(GinkgoT())
			backingStore := NewMockBackingStore(mockCtrl)
			backingStore.EXPECT().ReadPage(gomock.Any()).
				Return(pageOf(0), nil).AnyTimes()

			finder, err := replacement.New(p)
			Expect(err).NotTo(HaveOccurred())

			fs := MakeBuilder().
				WithNumFrames(3).
				WithBackingStore(backingStore).
				WithVictimFinder(finder).
				Build()

			for page := 0; page < 20; page++ {
				_, err := fs.Fault(page, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(fs.NumOccupied()).To(BeNumerically("<=", 3))
			}

			mockCtrl.Finish()
		}
	})
})

var _ = Describe("SignedValue", func() {
	It("should map [0, 255] onto [-128, 127] one to one", func() {
		seen := map[int]bool{}
		for b := 0; b < 256; b++ {
			v := SignedValue(byte(b))
			Expect(v).To(BeNumerically(">=", -128))
			Expect(v).To(BeNumerically("<=", 127))
			Expect(seen).NotTo(HaveKey(v))
			seen[v] = true
		}

		Expect(seen).To(HaveLen(256))
	})

	It("should agree with two's complement", func() {
		for b := 0; b < 256; b++ {
			Expect(SignedValue(byte(b))).To(Equal(int(int8(byte(b)))))
		}
	})
})
