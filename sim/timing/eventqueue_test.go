package timing

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueue", func() {
	var queue *EventQueueImpl

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should return nil when empty", func() {
		Expect(queue.Pop()).To(BeNil())
		Expect(queue.Peek()).To(BeNil())
		Expect(queue.Len()).To(Equal(0))
	})

	It("should pop in time order", func() {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 100; i++ {
			queue.Push(newStringEvent("e", at(rng.Intn(1000)), nil))
		}

		Expect(queue.Len()).To(Equal(100))

		last := queue.Pop().Time()
		for queue.Len() > 0 {
			next := queue.Pop().Time()
			Expect(next.Before(last)).To(BeFalse())
			last = next
		}
	})

	It("should keep push order among same-time events", func() {
		queue.Push(newStringEvent("a", at(5), nil))
		queue.Push(newStringEvent("b", at(1), nil))
		queue.Push(newStringEvent("c", at(5), nil))
		queue.Push(newStringEvent("d", at(5), nil))

		labels := []string{}
		for queue.Len() > 0 {
			labels = append(labels, queue.Pop().(stringEvent).label)
		}

		Expect(labels).To(Equal([]string{"b", "a", "c", "d"}))
	})
})
