package scheduler

import "fmt"

// OutputSurfaceState is the lifecycle of the surface drawn into.
type OutputSurfaceState int

// The output surface states.
const (
	OutputSurfaceLost OutputSurfaceState = iota
	OutputSurfaceCreating
	OutputSurfaceWaitingForFirstCommit
	OutputSurfaceWaitingForFirstActivation
	OutputSurfaceActive
)

func (s OutputSurfaceState) String() string {
	switch s {
	case OutputSurfaceLost:
		return "OUTPUT_SURFACE_LOST"
	case OutputSurfaceCreating:
		return "OUTPUT_SURFACE_CREATING"
	case OutputSurfaceWaitingForFirstCommit:
		return "OUTPUT_SURFACE_WAITING_FOR_FIRST_COMMIT"
	case OutputSurfaceWaitingForFirstActivation:
		return "OUTPUT_SURFACE_WAITING_FOR_FIRST_ACTIVATION"
	case OutputSurfaceActive:
		return "OUTPUT_SURFACE_ACTIVE"
	default:
		return fmt.Sprintf("OutputSurfaceState(%d)", int(s))
	}
}

// BeginImplFrameState cycles once per BeginFrame.
type BeginImplFrameState int

// The begin-impl-frame states, in cycle order.
const (
	BeginImplFrameIdle BeginImplFrameState = iota
	BeginImplFrameStarting
	BeginImplFrameInsideBeginFrame
	BeginImplFrameInsideDeadline
)

func (s BeginImplFrameState) String() string {
	switch s {
	case BeginImplFrameIdle:
		return "BEGIN_IMPL_FRAME_STATE_IDLE"
	case BeginImplFrameStarting:
		return "BEGIN_IMPL_FRAME_STATE_BEGIN_FRAME_STARTING"
	case BeginImplFrameInsideBeginFrame:
		return "BEGIN_IMPL_FRAME_STATE_INSIDE_BEGIN_FRAME"
	case BeginImplFrameInsideDeadline:
		return "BEGIN_IMPL_FRAME_STATE_INSIDE_DEADLINE"
	default:
		return fmt.Sprintf("BeginImplFrameState(%d)", int(s))
	}
}

// CommitState tracks the main-thread frame in flight.
type CommitState int

// The commit states.
const (
	CommitIdle CommitState = iota
	CommitBeginMainFrameSent
	CommitBeginMainFrameStarted
	CommitReadyToCommit
	CommitWaitingForActivation
)

func (s CommitState) String() string {
	switch s {
	case CommitIdle:
		return "COMMIT_STATE_IDLE"
	case CommitBeginMainFrameSent:
		return "COMMIT_STATE_BEGIN_MAIN_FRAME_SENT"
	case CommitBeginMainFrameStarted:
		return "COMMIT_STATE_BEGIN_MAIN_FRAME_STARTED"
	case CommitReadyToCommit:
		return "COMMIT_STATE_READY_TO_COMMIT"
	case CommitWaitingForActivation:
		return "COMMIT_STATE_WAITING_FOR_ACTIVATION"
	default:
		return fmt.Sprintf("CommitState(%d)", int(s))
	}
}

// ForcedRedrawState tracks the recovery after repeated checkerboarded draws.
type ForcedRedrawState int

// The forced redraw states.
const (
	ForcedRedrawIdle ForcedRedrawState = iota
	ForcedRedrawWaitingForCommit
	ForcedRedrawWaitingForActivation
	ForcedRedrawWaitingForDraw
)

func (s ForcedRedrawState) String() string {
	switch s {
	case ForcedRedrawIdle:
		return "FORCED_REDRAW_STATE_IDLE"
	case ForcedRedrawWaitingForCommit:
		return "FORCED_REDRAW_STATE_WAITING_FOR_COMMIT"
	case ForcedRedrawWaitingForActivation:
		return "FORCED_REDRAW_STATE_WAITING_FOR_ACTIVATION"
	case ForcedRedrawWaitingForDraw:
		return "FORCED_REDRAW_STATE_WAITING_FOR_DRAW"
	default:
		return fmt.Sprintf("ForcedRedrawState(%d)", int(s))
	}
}
