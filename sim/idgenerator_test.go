package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should generate sequential ids", func() {
		g := NewSequentialIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
		Expect(g.Generate()).To(Equal("3"))
	})

	It("should generate distinct parallel ids", func() {
		g := NewParallelIDGenerator()

		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			id := g.Generate()
			Expect(seen).NotTo(HaveKey(id))
			seen[id] = true
		}
	})

	It("should keep returning the same shared generator", func() {
		Expect(GetIDGenerator()).To(BeIdenticalTo(GetIDGenerator()))
	})
})
