// Package timing provides the event engines that give the frame scheduler a
// single designated thread and a clock.
package timing

import (
	"time"

	"github.com/sarchlab/framesched/sim/hooking"
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() time.Time
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// Run will process all the events until there is nothing left to do.
	Run() error

	// Pause will pause the engine until continue is called.
	Pause()

	// Continue will continue the paused engine.
	Continue()
}

// DefaultEpoch is the time a SerialEngine starts at unless told otherwise.
// It is far enough from the zero time that "now minus an interval" is
// always a meaningful timestamp.
var DefaultEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
