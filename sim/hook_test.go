package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HookableBase", func() {
	var (
		domain *HookableBase
		pos    *HookPos
	)

	BeforeEach(func() {
		domain = NewHookableBase()
		pos = &HookPos{Name: "Test"}
	})

	It("should start without hooks", func() {
		Expect(domain.NumHooks()).To(Equal(0))
	})

	It("should invoke hooks in registration order", func() {
		calls := []string{}
		domain.AcceptHook(HookFunc(func(ctx HookCtx) {
			calls = append(calls, "first:"+ctx.Item.(string))
		}))
		domain.AcceptHook(HookFunc(func(ctx HookCtx) {
			calls = append(calls, "second:"+ctx.Item.(string))
		}))

		domain.InvokeHook(HookCtx{Domain: domain, Pos: pos, Item: "x"})

		Expect(domain.NumHooks()).To(Equal(2))
		Expect(calls).To(Equal([]string{"first:x", "second:x"}))
	})

	It("should pass the context through unchanged", func() {
		var received HookCtx
		domain.AcceptHook(HookFunc(func(ctx HookCtx) {
			received = ctx
		}))

		domain.InvokeHook(HookCtx{
			Domain: domain,
			Pos:    pos,
			Item:   42,
			Detail: "detail",
		})

		Expect(received.Pos).To(BeIdenticalTo(pos))
		Expect(received.Item).To(Equal(42))
		Expect(received.Detail).To(Equal("detail"))
	})
})
