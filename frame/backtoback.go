package frame

import (
	"github.com/sarchlab/framesched/sim/timing"
)

// BackToBackSource issues a new BeginFrame as soon as the observer finished
// the previous one. It is the source used when frame production is not
// throttled.
type BackToBackSource struct {
	*SourceBase

	engine       timing.EventScheduler
	framePosted  bool
	framesIssued int
}

// NewBackToBackSource creates a BackToBackSource that posts its frames on the
// engine.
func NewBackToBackSource(engine timing.EventScheduler) *BackToBackSource {
	s := &BackToBackSource{engine: engine}
	s.SourceBase = NewSourceBase(s.onNeedsChange)

	return s
}

func (s *BackToBackSource) onNeedsChange(needs bool) {
	if needs {
		s.postBeginFrame()
	}
}

// DidFinishFrame issues the next frame once the observer has nothing
// queued.
func (s *BackToBackSource) DidFinishFrame(remainingFrames int) {
	if remainingFrames == 0 {
		s.postBeginFrame()
	}
}

// FramesIssued returns how many BeginFrames the source produced.
func (s *BackToBackSource) FramesIssued() int {
	return s.framesIssued
}

func (s *BackToBackSource) postBeginFrame() {
	if !s.NeedsBeginFrames() || s.framePosted {
		return
	}

	s.framePosted = true
	timing.PostNow(s.engine, s.beginFrame)
}

func (s *BackToBackSource) beginFrame() {
	s.framePosted = false

	if !s.NeedsBeginFrames() {
		return
	}

	now := s.engine.Now()
	s.framesIssued++
	s.CallOnBeginFrame(NewArgs(now, now.Add(DefaultInterval), DefaultInterval))
}
