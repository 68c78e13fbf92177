package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	positions []string
}

func (h *countingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos.Name)
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  = &HookPos{Name: "Somewhere"}
	)

	BeforeEach(func() {
		base = NewHookableBase()
	})

	It("should invoke hooks in registration order", func() {
		order := []int{}
		base.AcceptHook(HookFunc(func(HookCtx) { order = append(order, 1) }))
		base.AcceptHook(HookFunc(func(HookCtx) { order = append(order, 2) }))

		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(order).To(Equal([]int{1, 2}))
		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should pass the context through", func() {
		hook := &countingHook{}
		base.AcceptHook(hook)

		base.InvokeHook(HookCtx{Domain: base, Pos: pos, Item: 42})

		Expect(hook.positions).To(Equal([]string{"Somewhere"}))
		Expect(base.Hooks()).To(ConsistOf(hook))
	})

	It("should panic when the same hook is registered twice", func() {
		hook := &countingHook{}
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})
})
