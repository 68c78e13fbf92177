package frame

// ManualSource only produces the frames it is told to. Embedders that own
// their vsync signal, and tests, drive it with Tick.
type ManualSource struct {
	*SourceBase

	needsHistory   []bool
	finishedFrames []int
}

// NewManualSource creates a ManualSource.
func NewManualSource() *ManualSource {
	s := &ManualSource{}
	s.SourceBase = NewSourceBase(func(needs bool) {
		s.needsHistory = append(s.needsHistory, needs)
	})

	return s
}

// Tick forwards args to the observer if frames are needed. It reports
// whether the args were forwarded.
func (s *ManualSource) Tick(args Args) bool {
	if !s.NeedsBeginFrames() {
		return false
	}

	s.CallOnBeginFrame(args)

	return true
}

// TestOnBeginFrame forwards args regardless of the needs flag.
func (s *ManualSource) TestOnBeginFrame(args Args) {
	s.CallOnBeginFrame(args)
}

// DidFinishFrame records the remaining frame count.
func (s *ManualSource) DidFinishFrame(remainingFrames int) {
	s.finishedFrames = append(s.finishedFrames, remainingFrames)
}

// NeedsHistory returns every value the needs flag flipped to, in order.
func (s *ManualSource) NeedsHistory() []bool {
	return s.needsHistory
}

// FinishedFrames returns the remaining counts passed to DidFinishFrame.
func (s *ManualSource) FinishedFrames() []int {
	return s.finishedFrames
}
