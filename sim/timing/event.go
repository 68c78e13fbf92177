package timing

import (
	"time"

	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/id"
)

// An Event is something going to happen in the future.
type Event interface {
	// Return the time that the event should happen
	Time() time.Time

	// Returns the handler that can should handle the event
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary event are
	// handled after all same-time primary events are handled.
	IsSecondary() bool
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID        string
	time      time.Time
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase
func NewEventBase(t time.Time, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = id.Generate()
	e.time = t
	e.handler = handler
	e.secondary = false

	return e
}

// NewSecondaryEventBase creates an EventBase that is handled after all the
// primary events of the same time.
func NewSecondaryEventBase(t time.Time, handler Handler) *EventBase {
	e := NewEventBase(t, handler)
	e.secondary = true

	return e
}

// Time return the time that the event is going to happen
func (e EventBase) Time() time.Time {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// CallbackEvent carries a function to run at a given time. It is how work
// that is not owned by a Handler gets onto the engine's thread.
type CallbackEvent struct {
	*EventBase
	fn func()
}

// NewCallbackEvent creates an event that runs fn at time t.
func NewCallbackEvent(t time.Time, fn func()) *CallbackEvent {
	evt := &CallbackEvent{fn: fn}
	evt.EventBase = NewEventBase(t, callbackHandler{})

	return evt
}

type callbackHandler struct{}

func (callbackHandler) Handle(e Event) error {
	e.(*CallbackEvent).fn()
	return nil
}

// PostNow runs fn on the engine at the engine's current time.
func PostNow(engine EventScheduler, fn func()) {
	engine.Schedule(NewCallbackEvent(engine.Now(), fn))
}

// PostDelayed runs fn on the engine after delay. Negative delays are
// clamped to zero.
func PostDelayed(engine EventScheduler, delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}

	engine.Schedule(NewCallbackEvent(engine.Now().Add(delay), fn))
}
