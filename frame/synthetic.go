package frame

import (
	"time"

	"github.com/sarchlab/framesched/sim/timing"
)

// SyntheticSource ticks at Timebase + k*Interval, imitating vsync.
type SyntheticSource struct {
	*SourceBase

	engine timing.EventScheduler
	ticks  *timing.TickScheduler

	hasDelivered  bool
	lastDelivered time.Time
	missedPosted  bool
}

// NewSyntheticSource creates a source ticking every interval starting at
// timebase. A non-positive interval means DefaultInterval.
func NewSyntheticSource(
	engine timing.EventScheduler,
	timebase time.Time,
	interval time.Duration,
) *SyntheticSource {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s := &SyntheticSource{engine: engine}
	s.SourceBase = NewSourceBase(s.onNeedsChange)
	s.ticks = timing.NewTickScheduler(s, engine,
		timing.Period{Timebase: timebase, Interval: interval})

	return s
}

// Period returns the tick train of the source.
func (s *SyntheticSource) Period() timing.Period {
	return s.ticks.Period
}

// OnUpdateVSyncParameters moves the tick train. A tick in flight is replaced
// by one on the new train.
func (s *SyntheticSource) OnUpdateVSyncParameters(
	timebase time.Time,
	interval time.Duration,
) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.ticks.Period = timing.Period{Timebase: timebase, Interval: interval}

	if s.NeedsBeginFrames() {
		s.ticks.Reset()
		s.ticks.TickLater()
	}
}

// Handle handles the tick events of the source.
func (s *SyntheticSource) Handle(e timing.Event) error {
	tick, ok := e.(timing.TickEvent)
	if !ok || !s.ticks.Fired(tick) {
		return nil
	}

	if !s.NeedsBeginFrames() {
		return nil
	}

	s.deliver(tick.Time(), Normal)
	s.ticks.TickLater()

	return nil
}

func (s *SyntheticSource) onNeedsChange(needs bool) {
	if !needs {
		s.ticks.Reset()
		return
	}

	missed := s.ticks.Period.LastTick(s.engine.Now())
	if (!s.hasDelivered || s.lastDelivered.Before(missed)) && !s.missedPosted {
		s.missedPosted = true

		timing.PostNow(s.engine, func() {
			s.missedPosted = false

			if !s.NeedsBeginFrames() {
				return
			}

			if s.hasDelivered && !s.lastDelivered.Before(missed) {
				return
			}

			s.deliver(missed, Missed)
		})
	}

	s.ticks.TickLater()
}

func (s *SyntheticSource) deliver(frameTime time.Time, t ArgsType) {
	interval := s.ticks.Period.Interval

	s.hasDelivered = true
	s.lastDelivered = frameTime

	s.CallOnBeginFrame(
		NewTypedArgs(frameTime, frameTime.Add(interval), interval, t))
}
