package tracing

import (
	"fmt"

	"github.com/sarchlab/framesched/sim/hooking"
)

// CollectTrace hands the tasks of a scheduler or host to tracer. A tracer
// can be attached to a source only once.
func CollectTrace(source Traceable, tracer Tracer) {
	for _, hook := range source.Hooks() {
		if h, ok := hook.(*tracerHook); ok && h.tracer == tracer {
			panic(fmt.Sprintf("tracing: %s already traced by %T",
				source.Name(), tracer))
		}
	}

	source.AcceptHook(&tracerHook{tracer: tracer})
}

type tracerHook struct {
	tracer Tracer
}

func (h *tracerHook) Func(ctx hooking.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskStep:
		h.tracer.StepTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}
