package scheduler

import (
	"time"

	"github.com/sarchlab/framesched/frame"
)

// Client performs the actions the scheduler decides on. All calls happen on
// the engine's thread. The client may call back into the scheduler from
// inside an action; such calls are queued behind the current action.
type Client interface {
	WillBeginImplFrame(args frame.Args)
	ScheduledActionAnimate()
	ScheduledActionSendBeginMainFrame()
	ScheduledActionCommit()
	ScheduledActionUpdateVisibleTiles()
	ScheduledActionActivateSyncTree()
	ScheduledActionDrawAndSwapIfPossible() DrawResult
	ScheduledActionDrawAndSwapForced() DrawResult
	ScheduledActionBeginOutputSurfaceCreation()
	ScheduledActionManageTiles()
	DidAnticipatedDrawTimeChange(t time.Time)
	DidBeginImplFrameDeadline()

	DrawDurationEstimate() time.Duration
	BeginMainFrameToCommitDurationEstimate() time.Duration
	CommitToActivateDurationEstimate() time.Duration
}

// ExternalSourceProvider is implemented by clients that own the primary
// BeginFrame source, for example a browser-side vsync signal.
type ExternalSourceProvider interface {
	ExternalBeginFrameSource() frame.Source
}
