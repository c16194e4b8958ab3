package sim

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NamedBase", func() {
	It("should return the name", func() {
		var n Named = MakeNamedBase("Translator")

		Expect(n.Name()).To(Equal("Translator"))
	})

	It("should panic on an empty name", func() {
		Expect(func() { MakeNamedBase("") }).To(Panic())
	})
})

var _ = Describe("LogHookBase", func() {
	It("should write to the logger", func() {
		buf := new(bytes.Buffer)
		h := NewLogHookBase(log.New(buf, "", 0))

		h.Printf("page %d", 3)

		Expect(buf.String()).To(Equal("page 3\n"))
	})

	It("should panic without a logger", func() {
		Expect(func() { NewLogHookBase(nil) }).To(Panic())
	})
})
