// Package frame defines BeginFrame arguments and the sources that produce
// them.
package frame

import (
	"fmt"
	"time"
)

// ArgsType tells how a BeginFrame was produced.
type ArgsType int

// The kinds of BeginFrame.
const (
	// Normal frames come from a source ticking on time.
	Normal ArgsType = iota

	// Synchronous frames come from an embedder that draws in lock step.
	Synchronous

	// Missed frames are ticks that already passed when the source was
	// turned on. They are always handled retroactively.
	Missed
)

func (t ArgsType) String() string {
	switch t {
	case Normal:
		return "NORMAL"
	case Synchronous:
		return "SYNCHRONOUS"
	case Missed:
		return "MISSED"
	default:
		return fmt.Sprintf("ArgsType(%d)", int(t))
	}
}

// DefaultInterval is the frame interval used when no vsync information is
// available.
const DefaultInterval = 16666 * time.Microsecond

// BackgroundInterval is the frame interval of the slow source used while the
// compositor is not visible.
const BackgroundInterval = time.Second

// Args are the parameters of one BeginFrame. Args are values; every change
// produces a copy.
type Args struct {
	FrameTime time.Time
	Deadline  time.Time
	Interval  time.Duration
	Type      ArgsType
}

// NewArgs creates Normal args.
func NewArgs(frameTime, deadline time.Time, interval time.Duration) Args {
	return NewTypedArgs(frameTime, deadline, interval, Normal)
}

// NewTypedArgs creates args of the given type.
func NewTypedArgs(
	frameTime, deadline time.Time,
	interval time.Duration,
	t ArgsType,
) Args {
	return Args{
		FrameTime: frameTime,
		Deadline:  deadline,
		Interval:  interval,
		Type:      t,
	}
}

// InvalidArgs returns args that fail IsValid. Observers start with them.
func InvalidArgs() Args {
	return Args{Interval: -1}
}

// IsValid reports whether the args carry a usable interval.
func (a Args) IsValid() bool {
	return a.Interval >= 0
}

// WithDeadlineReducedBy returns a copy whose deadline is d earlier.
func (a Args) WithDeadlineReducedBy(d time.Duration) Args {
	a.Deadline = a.Deadline.Add(-d)
	return a
}

// WithType returns a copy of the args with another type.
func (a Args) WithType(t ArgsType) Args {
	a.Type = t
	return a
}

func (a Args) String() string {
	if !a.IsValid() {
		return "Args{invalid}"
	}

	return fmt.Sprintf("Args{%s frame=%s deadline=+%s interval=%s}",
		a.Type,
		a.FrameTime.Format("15:04:05.000000"),
		a.Deadline.Sub(a.FrameTime),
		a.Interval)
}

// ArgsState is a flat view of Args for diagnostics. Times are milliseconds
// since the Unix epoch.
type ArgsState struct {
	Type        string  `json:"type"`
	FrameTimeMs float64 `json:"frame_time_ms"`
	DeadlineMs  float64 `json:"deadline_ms"`
	IntervalMs  float64 `json:"interval_ms"`
}

// Snapshot returns the diagnostic view of the args.
func (a Args) Snapshot() ArgsState {
	return ArgsState{
		Type:        a.Type.String(),
		FrameTimeMs: toMs(a.FrameTime),
		DeadlineMs:  toMs(a.Deadline),
		IntervalMs:  float64(a.Interval) / float64(time.Millisecond),
	}
}

func toMs(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}

	return float64(t.UnixNano()) / float64(time.Millisecond)
}
