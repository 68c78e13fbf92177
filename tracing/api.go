// Package tracing turns the frames of schedulers and the main frames of
// hosts into tasks with steps, and collects them with tracers.
package tracing

import (
	"fmt"

	"github.com/sarchlab/framesched/sim/hooking"
)

// Traceable is a scheduler or a host. Its name is the location of the tasks
// it reports.
type Traceable interface {
	hooking.Hookable
	Name() string
}

// Where tracers are called in the life of a task.
var (
	HookPosTaskStart = &hooking.HookPos{Name: "HookPosTaskStart"}
	HookPosTaskStep  = &hooking.HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &hooking.HookPos{Name: "HookPosTaskEnd"}
)

// StartTask opens a task on source, for example a "frame" that starts at a
// BeginImplFrame. Nothing is built when no tracer listens to source.
func StartTask(
	id string,
	parentID string,
	source Traceable,
	kind string,
	what string,
	detail any,
) {
	if source == nil {
		panic("tracing: task source must not be nil")
	}

	if source.NumHooks() == 0 {
		return
	}

	location := source.Name()
	mustBeComplete(id, location, kind, what)

	notify(source, HookPosTaskStart, Task{
		ID:       id,
		ParentID: parentID,
		Kind:     kind,
		What:     what,
		Location: location,
		Detail:   detail,
	})
}

func mustBeComplete(id, location, kind, what string) {
	for _, field := range []struct{ name, value string }{
		{"id", id},
		{"source name", location},
		{"kind", kind},
		{"what", what},
	} {
		if field.value == "" {
			panic(fmt.Sprintf("tracing: task %s must not be empty", field.name))
		}
	}
}

// AddTaskStep marks a step of an open task, such as an action performed
// inside a frame.
func AddTaskStep(id string, source Traceable, what string) {
	if source.NumHooks() == 0 {
		return
	}

	notify(source, HookPosTaskStep, Task{
		ID:    id,
		Steps: []TaskStep{{What: what}},
	})
}

// EndTask closes a task.
func EndTask(id string, source Traceable) {
	if source.NumHooks() == 0 {
		return
	}

	notify(source, HookPosTaskEnd, Task{ID: id})
}

func notify(source Traceable, pos *hooking.HookPos, task Task) {
	source.InvokeHook(hooking.HookCtx{
		Domain: source,
		Pos:    pos,
		Item:   task,
	})
}
