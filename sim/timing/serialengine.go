package timing

import (
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/sarchlab/framesched/sim/hooking"
)

// A SerialEngine is an Engine that always run events one after another on
// virtual time. Time only moves when an event is handled or when RunUntil
// advances it.
type SerialEngine struct {
	hooking.HookableBase

	timeLock       sync.RWMutex
	time           time.Time
	queue          EventQueue
	secondaryQueue EventQueue

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine that starts at DefaultEpoch.
func NewSerialEngine() *SerialEngine {
	return NewSerialEngineAt(DefaultEpoch)
}

// NewSerialEngineAt creates a SerialEngine that starts at the given time.
func NewSerialEngineAt(start time.Time) *SerialEngine {
	e := new(SerialEngine)

	e.time = start
	e.queue = NewEventQueue()
	e.secondaryQueue = NewEventQueue()

	return e
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "SerialEngine"
}

// Schedule register an event to be happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time().Before(now) {
		log.Panicf(
			"scheduling an event earlier than current time, evt %s @ %s, now %s",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)

		return
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) readNow() time.Time {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t time.Time) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine. A source that
// keeps ticking never lets Run return; use RunUntil or RunWhile for those.
func (e *SerialEngine) Run() error {
	return e.RunWhile(func() bool { return true })
}

// RunUntil processes every event due at or before t and then moves the
// clock to t.
func (e *SerialEngine) RunUntil(t time.Time) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		next := e.peekNext()
		if next == nil || next.Time().After(t) {
			break
		}

		e.runOne()
	}

	if t.After(e.readNow()) {
		e.writeNow(t)
	}

	return nil
}

// RunFor is RunUntil(Now() + d).
func (e *SerialEngine) RunFor(d time.Duration) error {
	return e.RunUntil(e.Now().Add(d))
}

// RunWhile processes events in order for as long as cond holds before each
// event and there are events left.
func (e *SerialEngine) RunWhile(cond func() bool) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if e.noMoreEvent() || !cond() {
			return nil
		}

		e.runOne()
	}
}

// Step handles exactly one event. It returns false if there was nothing to
// do.
func (e *SerialEngine) Step() bool {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	if e.noMoreEvent() {
		return false
	}

	e.runOne()

	return true
}

// NextEventTime returns the time of the next event and false if the engine
// is idle.
func (e *SerialEngine) NextEventTime() (time.Time, bool) {
	next := e.peekNext()
	if next == nil {
		return time.Time{}, false
	}

	return next.Time(), true
}

// PendingEvents returns the number of events waiting to be handled.
func (e *SerialEngine) PendingEvents() int {
	return e.queue.Len() + e.secondaryQueue.Len()
}

func (e *SerialEngine) runOne() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt := e.nextEvent()
	now := e.readNow()

	if evt.Time().Before(now) {
		log.Panicf(
			"cannot run event in the past, evt %s @ %s, now %s",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	e.writeNow(evt.Time())

	hookCtx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	handler := evt.Handler()
	if handler != nil {
		_ = handler.Handle(evt)
	}

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

func (e *SerialEngine) noMoreEvent() bool {
	return e.queue.Len() == 0 && e.secondaryQueue.Len() == 0
}

func (e *SerialEngine) peekNext() Event {
	primary := e.queue.Peek()
	secondary := e.secondaryQueue.Peek()

	switch {
	case primary == nil:
		return secondary
	case secondary == nil:
		return primary
	case !secondary.Time().Before(primary.Time()):
		return primary
	default:
		return secondary
	}
}

func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if !secondaryEvt.Time().Before(primaryEvt.Time()) {
		e.queue.Pop()
		return primaryEvt
	}

	e.secondaryQueue.Pop()

	return secondaryEvt
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// Now returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) Now() time.Time {
	return e.readNow()
}
