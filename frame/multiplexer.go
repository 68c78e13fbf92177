package frame

import (
	"log"
	"time"
)

// A Multiplexer is a Source that forwards the frames of one of several
// child sources. It is also the Observer of the active child.
type Multiplexer struct {
	*SourceBase

	sources         []Source
	active          Source
	minimumInterval time.Duration
}

// NewMultiplexer creates a Multiplexer with no sources.
func NewMultiplexer() *Multiplexer {
	m := &Multiplexer{}
	m.SourceBase = NewSourceBase(m.onNeedsChange)

	return m
}

// AddSource registers a child source.
func (m *Multiplexer) AddSource(s Source) {
	if m.HasSource(s) {
		log.Panic("source already added to multiplexer")
	}

	m.sources = append(m.sources, s)
}

// RemoveSource unregisters a child source. The active source cannot be
// removed.
func (m *Multiplexer) RemoveSource(s Source) {
	if s == m.active {
		log.Panic("cannot remove the active source")
	}

	for i, src := range m.sources {
		if src == s {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return
		}
	}

	log.Panic("source not in multiplexer")
}

// HasSource tells if s is a registered child.
func (m *Multiplexer) HasSource(s Source) bool {
	for _, src := range m.sources {
		if src == s {
			return true
		}
	}

	return false
}

// ActiveSource returns the child whose frames are forwarded.
func (m *Multiplexer) ActiveSource() Source {
	return m.active
}

// SetActiveSource switches the forwarded child. The needs flag moves from
// the old child to the new one.
func (m *Multiplexer) SetActiveSource(s Source) {
	if s != nil && !m.HasSource(s) {
		log.Panic("activating a source not in multiplexer")
	}

	if s == m.active {
		return
	}

	if m.active != nil {
		if m.NeedsBeginFrames() {
			m.active.SetNeedsBeginFrames(false)
		}

		m.active.RemoveObserver(m)
	}

	m.active = s

	if s != nil {
		s.AddObserver(m)

		if m.NeedsBeginFrames() {
			s.SetNeedsBeginFrames(true)
		}
	}
}

// SetMinimumInterval sets the smallest frame time step forwarded.
func (m *Multiplexer) SetMinimumInterval(d time.Duration) {
	if d < 0 {
		log.Panic("minimum interval cannot be negative")
	}

	m.minimumInterval = d
}

// OnBeginFrame forwards args from the active child when they move frame
// time forward by at least the minimum interval.
func (m *Multiplexer) OnBeginFrame(args Args) {
	if !m.NeedsBeginFrames() || !m.isIncreasing(args) {
		return
	}

	m.CallOnBeginFrame(args)
}

func (m *Multiplexer) isIncreasing(args Args) bool {
	last := m.LastUsedBeginFrameArgs()
	if !last.IsValid() {
		return true
	}

	return !args.FrameTime.Before(last.FrameTime.Add(m.minimumInterval))
}

// DidFinishFrame passes the notification to the active child.
func (m *Multiplexer) DidFinishFrame(remainingFrames int) {
	if m.active != nil {
		m.active.DidFinishFrame(remainingFrames)
	}
}

func (m *Multiplexer) onNeedsChange(needs bool) {
	if m.active != nil {
		m.active.SetNeedsBeginFrames(needs)
	}
}

var (
	_ Source   = (*Multiplexer)(nil)
	_ Observer = (*Multiplexer)(nil)
)
