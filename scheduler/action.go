package scheduler

import "fmt"

// Action is the single piece of work the state machine wants done next.
type Action int

// The actions, in no particular order. Priority lives in the rule table of
// the state machine.
const (
	ActionNone Action = iota
	ActionAnimate
	ActionSendBeginMainFrame
	ActionCommit
	ActionUpdateVisibleTiles
	ActionActivateSyncTree
	ActionDrawAndSwapIfPossible
	ActionDrawAndSwapForced
	ActionDrawAndSwapAbort
	ActionBeginOutputSurfaceCreation
	ActionManageTiles
)

var actionNames = map[Action]string{
	ActionNone:                       "ACTION_NONE",
	ActionAnimate:                    "ACTION_ANIMATE",
	ActionSendBeginMainFrame:         "ACTION_SEND_BEGIN_MAIN_FRAME",
	ActionCommit:                     "ACTION_COMMIT",
	ActionUpdateVisibleTiles:         "ACTION_UPDATE_VISIBLE_TILES",
	ActionActivateSyncTree:           "ACTION_ACTIVATE_SYNC_TREE",
	ActionDrawAndSwapIfPossible:      "ACTION_DRAW_AND_SWAP_IF_POSSIBLE",
	ActionDrawAndSwapForced:          "ACTION_DRAW_AND_SWAP_FORCED",
	ActionDrawAndSwapAbort:           "ACTION_DRAW_AND_SWAP_ABORT",
	ActionBeginOutputSurfaceCreation: "ACTION_BEGIN_OUTPUT_SURFACE_CREATION",
	ActionManageTiles:                "ACTION_MANAGE_TILES",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}

	return fmt.Sprintf("Action(%d)", int(a))
}

// IsDraw tells if the action is one of the three draw actions.
func (a Action) IsDraw() bool {
	return a == ActionDrawAndSwapIfPossible ||
		a == ActionDrawAndSwapForced ||
		a == ActionDrawAndSwapAbort
}

// DrawResult is what the client reports after a draw attempt.
type DrawResult int

// The draw results.
const (
	InvalidResult DrawResult = iota
	DrawSuccess
	DrawAbortedCheckerboardAnimations
	DrawAbortedMissingHighResContent
	DrawAbortedCantDraw
	DrawAbortedContextLost
)

var drawResultNames = map[DrawResult]string{
	InvalidResult:                     "INVALID_RESULT",
	DrawSuccess:                       "DRAW_SUCCESS",
	DrawAbortedCheckerboardAnimations: "DRAW_ABORTED_CHECKERBOARD_ANIMATIONS",
	DrawAbortedMissingHighResContent:  "DRAW_ABORTED_MISSING_HIGH_RES_CONTENT",
	DrawAbortedCantDraw:               "DRAW_ABORTED_CANT_DRAW",
	DrawAbortedContextLost:            "DRAW_ABORTED_CONTEXT_LOST",
}

func (r DrawResult) String() string {
	if name, ok := drawResultNames[r]; ok {
		return name
	}

	return fmt.Sprintf("DrawResult(%d)", int(r))
}
