package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageTable", func() {
	var pt PageTable

	BeforeEach(func() {
		pt = NewPageTable()
	})

	It("should not find a page that was never inserted", func() {
		_, found := pt.Find(3)

		Expect(found).To(BeFalse())
	})

	It("should find an inserted page", func() {
		pt.Insert(3, 7)

		frame, found := pt.Find(3)

		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(7))
	})

	It("should invalidate the previous owner of a frame", func() {
		pt.Insert(3, 0)
		pt.Insert(9, 0)

		_, found := pt.Find(3)
		Expect(found).To(BeFalse())

		entry, exists := pt.Entry(3)
		Expect(exists).To(BeTrue())
		Expect(entry.Valid).To(BeFalse())
		Expect(entry.FrameNumber).To(Equal(0))

		frame, found := pt.Find(9)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(0))
		Expect(pt.Len()).To(Equal(2))
	})

	It("should revalidate an invalid entry on reinsert", func() {
		pt.Insert(3, 0)
		pt.Insert(9, 0)
		pt.Insert(3, 1)

		frame, found := pt.Find(3)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(1))
		Expect(pt.Len()).To(Equal(2))
	})

	It("should release the old frame when a page moves", func() {
		pt.Insert(3, 0)
		pt.Insert(3, 1)
		pt.Insert(9, 0)

		frame, found := pt.Find(3)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(1))
	})

	It("should keep at most one valid entry per frame", func() {
		for page := 0; page < 40; page++ {
			pt.Insert(page, page%4)
		}

		owners := map[int]int{}
		for _, e := range pt.ValidEntries() {
			owners[e.FrameNumber]++
		}

		Expect(owners).To(HaveLen(4))
		for _, n := range owners {
			Expect(n).To(Equal(1))
		}
	})

	It("should list valid entries by page number", func() {
		pt.Insert(5, 1)
		pt.Insert(2, 0)
		pt.Insert(7, 1)

		Expect(pt.ValidEntries()).To(Equal([]PageTableEntry{
			{PageNumber: 2, FrameNumber: 0, Valid: true},
			{PageNumber: 7, FrameNumber: 1, Valid: true},
		}))
	})
})
