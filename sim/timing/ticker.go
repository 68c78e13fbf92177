package timing

import (
	"log"
	"sync"
	"time"
)

// Period describes a train of ticks at Timebase + k*Interval.
type Period struct {
	Timebase time.Time
	Interval time.Duration
}

// ThisTick returns the tick time at or after now.
//
//	               Input
//	               (          ]
//	    |----------|----------|----------|----->
//	                          |
//	                          Output
func (p Period) ThisTick(now time.Time) time.Time {
	p.mustBeValid()

	elapsed := now.Sub(p.Timebase)
	n := floorDiv(elapsed, p.Interval)
	tick := p.Timebase.Add(time.Duration(n) * p.Interval)

	if tick.Before(now) {
		tick = tick.Add(p.Interval)
	}

	return tick
}

// NextTick returns the first tick time strictly after now.
//
//	               Input
//	               [          )
//	    |----------|----------|----------|----->
//	                          |
//	                          Output
func (p Period) NextTick(now time.Time) time.Time {
	return p.LastTick(now).Add(p.Interval)
}

// LastTick returns the latest tick time at or before now.
func (p Period) LastTick(now time.Time) time.Time {
	p.mustBeValid()

	n := floorDiv(now.Sub(p.Timebase), p.Interval)

	return p.Timebase.Add(time.Duration(n) * p.Interval)
}

func (p Period) mustBeValid() {
	if p.Interval <= 0 {
		log.Panic("period interval must be positive")
	}
}

func floorDiv(a, b time.Duration) int64 {
	q := int64(a / b)
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}

// TickEvent is a generic event that a ticking handler uses to update its
// status.
type TickEvent struct {
	*EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, t time.Time) TickEvent {
	return TickEvent{EventBase: NewEventBase(t, handler)}
}

// TickScheduler can help schedule tick events on a Period. It never keeps
// more than one tick in flight.
type TickScheduler struct {
	lock      sync.Mutex
	handler   Handler
	Period    Period
	Engine    EventScheduler
	secondary bool

	hasNextTick  bool
	nextTickTime time.Time
	nextTickID   string
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(
	handler Handler,
	engine EventScheduler,
	period Period,
) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.Period = period

	return ticker
}

// NewSecondaryTickScheduler creates a scheduler that always schedule secondary
// tick events.
func NewSecondaryTickScheduler(
	handler Handler,
	engine EventScheduler,
	period Period,
) *TickScheduler {
	ticker := NewTickScheduler(handler, engine, period)
	ticker.secondary = true

	return ticker
}

// TickNow schedules a tick at the tick time at or after now.
func (t *TickScheduler) TickNow() {
	t.scheduleAt(t.Period.ThisTick(t.Engine.Now()))
}

// TickLater schedules a tick at the first tick time after now.
func (t *TickScheduler) TickLater() {
	t.scheduleAt(t.Period.NextTick(t.Engine.Now()))
}

// Reset forgets the tick in flight so that the next TickNow or TickLater
// schedules a fresh one. The old event still fires, but Fired reports it as
// stale.
func (t *TickScheduler) Reset() {
	t.lock.Lock()
	t.hasNextTick = false
	t.lock.Unlock()
}

// ScheduledTickTime returns the time of the tick in flight.
func (t *TickScheduler) ScheduledTickTime() (time.Time, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.nextTickTime, t.hasNextTick
}

// Fired must be called when a tick event is handled. It returns false if the
// event is not the tick in flight.
func (t *TickScheduler) Fired(evt TickEvent) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.hasNextTick || evt.ID != t.nextTickID {
		return false
	}

	t.hasNextTick = false

	return true
}

func (t *TickScheduler) scheduleAt(tickTime time.Time) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.hasNextTick {
		return
	}

	t.hasNextTick = true
	t.nextTickTime = tickTime

	tick := MakeTickEvent(t.handler, tickTime)
	tick.secondary = t.secondary
	t.nextTickID = tick.ID

	t.Engine.Schedule(tick)
}
