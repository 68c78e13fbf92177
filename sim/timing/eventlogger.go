package timing

import (
	"log"
	"reflect"
	"time"

	"github.com/sarchlab/framesched/sim/hooking"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)

	h.logger = logger

	return h
}

type named interface {
	Name() string
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	handlerName := "-"
	if n, ok := evt.Handler().(named); ok {
		handlerName = n.Name()
	}

	h.logger.Printf("%s, %s -> %s",
		evt.Time().Format(time.StampMicro), reflect.TypeOf(evt), handlerName)
}
