package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/sarchlab/framesched/frame"
)

// StateMachine holds the pipeline state of one compositor and decides the
// next action. It never performs work itself and it is not safe for
// concurrent use.
type StateMachine struct {
	spec Spec

	outputSurfaceState  OutputSurfaceState
	beginImplFrameState BeginImplFrameState
	commitState         CommitState
	forcedRedrawState   ForcedRedrawState

	beginImplFrameArgs frame.Args

	commitCount        int
	currentFrameNumber int

	lastFrameNumberAnimatePerformed            int
	lastFrameNumberSwapPerformed               int
	lastFrameNumberSwapRequested               int
	lastFrameNumberBeginMainFrameSent          int
	lastFrameNumberUpdateVisibleTilesWasCalled int

	// manageTilesFunnel is filled by DidManageTiles and drained by one per
	// frame, so that on average at most one ManageTiles runs per frame.
	manageTilesFunnel int

	// consecutiveCheckerboardAnimations is the current streak of draws that
	// aborted with checkerboarded animations.
	consecutiveCheckerboardAnimations int

	maxPendingSwaps int
	pendingSwaps    int

	needsRedraw                              bool
	needsAnimate                             bool
	needsManageTiles                         bool
	swapUsedIncompleteTile                   bool
	needsCommit                              bool
	insidePollForAnticipatedDrawTriggers     bool
	visible                                  bool
	canStart                                 bool
	canDraw                                  bool
	hasPendingTree                           bool
	pendingTreeIsReadyForActivation          bool
	activeTreeNeedsFirstDraw                 bool
	didCommitAfterAnimating                  bool
	didCreateAndInitializeFirstOutputSurface bool
	implLatencyTakesPriority                 bool
	skipNextBeginMainFrameToReduceLatency    bool
	skipBeginMainFrameToReduceLatency        bool
	continuousPainting                       bool
	implLatencyTakesPriorityOnBattery        bool
}

// NewStateMachine creates a state machine with a lost output surface and
// everything else idle.
func NewStateMachine(spec Spec) *StateMachine {
	m := &StateMachine{
		spec:                spec,
		outputSurfaceState:  OutputSurfaceLost,
		beginImplFrameState: BeginImplFrameIdle,
		commitState:         CommitIdle,
		forcedRedrawState:   ForcedRedrawIdle,
		beginImplFrameArgs:  frame.InvalidArgs(),
		maxPendingSwaps:     1,
	}

	m.lastFrameNumberAnimatePerformed = -1
	m.lastFrameNumberSwapPerformed = -1
	m.lastFrameNumberSwapRequested = -1
	m.lastFrameNumberBeginMainFrameSent = -1
	m.lastFrameNumberUpdateVisibleTilesWasCalled = -1

	return m
}

func (m *StateMachine) mustBe(cond bool, format string, args ...any) {
	if cond {
		return
	}

	log.Panicf("scheduler state machine: %s [%s]",
		fmt.Sprintf(format, args...), m.DebugString())
}

// nextActionRules is evaluated in order; the first rule whose predicate
// holds picks the action.
var nextActionRules = []struct {
	should func(m *StateMachine) bool
	action func(m *StateMachine) Action
}{
	{(*StateMachine).ShouldUpdateVisibleTiles, always(ActionUpdateVisibleTiles)},
	{(*StateMachine).ShouldActivatePendingTree, always(ActionActivateSyncTree)},
	{(*StateMachine).ShouldCommit, always(ActionCommit)},
	{(*StateMachine).ShouldAnimate, always(ActionAnimate)},
	{(*StateMachine).ShouldDraw, (*StateMachine).drawAction},
	{(*StateMachine).ShouldManageTiles, always(ActionManageTiles)},
	{(*StateMachine).ShouldSendBeginMainFrame, always(ActionSendBeginMainFrame)},
	{
		(*StateMachine).ShouldBeginOutputSurfaceCreation,
		always(ActionBeginOutputSurfaceCreation),
	},
}

func always(a Action) func(m *StateMachine) Action {
	return func(*StateMachine) Action { return a }
}

// NextAction returns the most important action to perform now. It does not
// change the state.
func (m *StateMachine) NextAction() Action {
	for _, r := range nextActionRules {
		if r.should(m) {
			return r.action(m)
		}
	}

	return ActionNone
}

func (m *StateMachine) drawAction() Action {
	switch {
	case m.PendingDrawsShouldBeAborted():
		return ActionDrawAndSwapAbort
	case m.forcedRedrawState == ForcedRedrawWaitingForDraw:
		return ActionDrawAndSwapForced
	default:
		return ActionDrawAndSwapIfPossible
	}
}

// UpdateState records that action was performed. The action must be the
// one NextAction returns.
func (m *StateMachine) UpdateState(action Action) {
	if action == ActionNone {
		return
	}

	next := m.NextAction()
	m.mustBe(action == next,
		"updating state for %s while next action is %s", action, next)

	switch action {
	case ActionUpdateVisibleTiles:
		m.lastFrameNumberUpdateVisibleTilesWasCalled = m.currentFrameNumber

	case ActionActivateSyncTree:
		m.updateStateOnActivation()

	case ActionAnimate:
		m.lastFrameNumberAnimatePerformed = m.currentFrameNumber
		m.needsAnimate = false
		m.didCommitAfterAnimating = false
		m.SetNeedsRedraw()

	case ActionSendBeginMainFrame:
		m.mustBe(!m.hasPendingTree || m.spec.MainFrameBeforeActivationEnabled,
			"sending a main frame while a pending tree exists")
		m.mustBe(m.visible, "sending a main frame while invisible")
		m.commitState = CommitBeginMainFrameSent
		m.needsCommit = false
		m.lastFrameNumberBeginMainFrameSent = m.currentFrameNumber

	case ActionCommit:
		m.updateStateOnCommit(false)

	case ActionDrawAndSwapForced, ActionDrawAndSwapIfPossible:
		m.updateStateOnDraw(true)

	case ActionDrawAndSwapAbort:
		m.updateStateOnDraw(false)

	case ActionBeginOutputSurfaceCreation:
		m.outputSurfaceState = OutputSurfaceCreating

		m.mustBe(m.commitState == CommitIdle,
			"creating an output surface with a commit in flight")
		m.mustBe(!m.hasPendingTree,
			"creating an output surface with a pending tree")
		m.mustBe(!m.activeTreeNeedsFirstDraw,
			"creating an output surface before the active tree is drawn")

	case ActionManageTiles:
		m.needsManageTiles = false

	default:
		log.Panicf("unknown action %s", action)
	}
}

func (m *StateMachine) updateStateOnCommit(commitWasAborted bool) {
	m.commitCount++

	if !commitWasAborted && m.hasAnimatedThisFrame() {
		m.didCommitAfterAnimating = true
	}

	switch {
	case commitWasAborted || m.spec.MainFrameBeforeActivationEnabled:
		m.commitState = CommitIdle
	case m.spec.ImplSidePainting:
		m.commitState = CommitWaitingForActivation
	default:
		m.commitState = CommitIdle
	}

	// Without a pending tree an aborted impl-side commit behaves like a
	// commit without impl-side painting.
	m.hasPendingTree = m.spec.ImplSidePainting && !commitWasAborted

	if m.forcedRedrawState == ForcedRedrawWaitingForCommit {
		if m.hasPendingTree {
			m.forcedRedrawState = ForcedRedrawWaitingForActivation
		} else {
			m.forcedRedrawState = ForcedRedrawWaitingForDraw
		}
	}

	m.mustBe(m.outputSurfaceState != OutputSurfaceWaitingForFirstActivation,
		"committing while the first activation is outstanding")

	if m.outputSurfaceState == OutputSurfaceWaitingForFirstCommit {
		if m.hasPendingTree {
			m.outputSurfaceState = OutputSurfaceWaitingForFirstActivation
		} else {
			m.outputSurfaceState = OutputSurfaceActive
			m.needsRedraw = true
		}
	}

	if !m.hasPendingTree &&
		(!commitWasAborted ||
			m.forcedRedrawState == ForcedRedrawWaitingForDraw) {
		m.needsRedraw = true
		m.activeTreeNeedsFirstDraw = true
	}

	m.pendingTreeIsReadyForActivation = false

	if m.continuousPainting {
		m.needsCommit = true
	}
}

func (m *StateMachine) updateStateOnActivation() {
	m.mustBe(m.hasPendingTree, "activating without a pending tree")

	if m.commitState == CommitWaitingForActivation {
		m.commitState = CommitIdle
	}

	if m.outputSurfaceState == OutputSurfaceWaitingForFirstActivation {
		m.outputSurfaceState = OutputSurfaceActive
	}

	if m.forcedRedrawState == ForcedRedrawWaitingForActivation {
		m.forcedRedrawState = ForcedRedrawWaitingForDraw
	}

	m.hasPendingTree = false
	m.pendingTreeIsReadyForActivation = false
	m.activeTreeNeedsFirstDraw = true
	m.needsRedraw = true
}

func (m *StateMachine) updateStateOnDraw(didRequestSwap bool) {
	if m.forcedRedrawState == ForcedRedrawWaitingForDraw {
		m.forcedRedrawState = ForcedRedrawIdle
	}

	m.needsRedraw = false
	m.activeTreeNeedsFirstDraw = false

	if didRequestSwap {
		m.lastFrameNumberSwapRequested = m.currentFrameNumber
	}
}

func (m *StateMachine) advanceCurrentFrameNumber() {
	m.currentFrameNumber++

	if m.manageTilesFunnel > 0 {
		m.manageTilesFunnel--
	}

	m.skipBeginMainFrameToReduceLatency =
		m.skipNextBeginMainFrameToReduceLatency
	m.skipNextBeginMainFrameToReduceLatency = false
}

func (m *StateMachine) hasAnimatedThisFrame() bool {
	return m.lastFrameNumberAnimatePerformed == m.currentFrameNumber
}

func (m *StateMachine) hasSentBeginMainFrameThisFrame() bool {
	return m.lastFrameNumberBeginMainFrameSent == m.currentFrameNumber
}

func (m *StateMachine) hasUpdatedVisibleTilesThisFrame() bool {
	return m.lastFrameNumberUpdateVisibleTilesWasCalled == m.currentFrameNumber
}

func (m *StateMachine) hasSwappedThisFrame() bool {
	return m.lastFrameNumberSwapPerformed == m.currentFrameNumber
}

func (m *StateMachine) hasRequestedSwapThisFrame() bool {
	return m.lastFrameNumberSwapRequested == m.currentFrameNumber
}

// PendingDrawsShouldBeAborted tells if draws must be aborted to keep the
// pipeline moving. It covers every case of PendingActivationsShouldBeForced.
func (m *StateMachine) PendingDrawsShouldBeAborted() bool {
	return m.PendingActivationsShouldBeForced() || !m.canDraw
}

// PendingActivationsShouldBeForced tells if the pending tree must activate
// without waiting for raster.
func (m *StateMachine) PendingActivationsShouldBeForced() bool {
	return m.outputSurfaceState == OutputSurfaceLost || !m.visible
}

// ShouldBeginOutputSurfaceCreation requires a lost surface and a drained
// pipeline.
func (m *StateMachine) ShouldBeginOutputSurfaceCreation() bool {
	if !m.canStart {
		return false
	}

	if m.commitState != CommitIdle {
		return false
	}

	if m.beginImplFrameState != BeginImplFrameIdle {
		return false
	}

	if m.activeTreeNeedsFirstDraw || m.hasPendingTree {
		return false
	}

	return m.outputSurfaceState == OutputSurfaceLost
}

// ShouldDraw tells if one of the draw actions is due.
func (m *StateMachine) ShouldDraw() bool {
	// An aborted draw of a tree that was never drawn unblocks activation and
	// surface creation.
	if m.PendingDrawsShouldBeAborted() {
		return m.activeTreeNeedsFirstDraw
	}

	if m.didCommitAfterAnimating {
		return false
	}

	if m.hasRequestedSwapThisFrame() {
		return false
	}

	if m.pendingSwaps >= m.maxPendingSwaps {
		return false
	}

	if m.beginImplFrameState != BeginImplFrameInsideDeadline {
		return false
	}

	if m.forcedRedrawState == ForcedRedrawWaitingForDraw {
		return true
	}

	return m.needsRedraw
}

// ShouldActivatePendingTree tells if the pending tree should become active.
func (m *StateMachine) ShouldActivatePendingTree() bool {
	if !m.hasPendingTree {
		return false
	}

	// The active tree is drawn, or draw-aborted, before a second tree
	// activates.
	if m.activeTreeNeedsFirstDraw {
		return false
	}

	if m.PendingActivationsShouldBeForced() {
		return true
	}

	return m.pendingTreeIsReadyForActivation
}

// ShouldUpdateVisibleTiles tells if tiles should be checked once more
// because the last swap was incomplete.
func (m *StateMachine) ShouldUpdateVisibleTiles() bool {
	if !m.spec.ImplSidePainting {
		return false
	}

	if m.hasUpdatedVisibleTilesThisFrame() {
		return false
	}

	if m.hasRequestedSwapThisFrame() {
		return false
	}

	if !m.HasInitializedOutputSurface() {
		return false
	}

	if m.beginImplFrameState != BeginImplFrameInsideDeadline {
		return false
	}

	return m.swapUsedIncompleteTile
}

// ShouldAnimate tells if animations should tick for this frame.
func (m *StateMachine) ShouldAnimate() bool {
	if !m.canDraw {
		return false
	}

	if m.hasAnimatedThisFrame() && !m.didCommitAfterAnimating {
		return false
	}

	if m.beginImplFrameState != BeginImplFrameStarting &&
		m.beginImplFrameState != BeginImplFrameInsideDeadline {
		return false
	}

	return m.needsRedraw || m.needsAnimate
}

func (m *StateMachine) couldSendBeginMainFrame() bool {
	return m.needsCommit && m.visible
}

// ShouldSendBeginMainFrame tells if the main thread should start a frame.
func (m *StateMachine) ShouldSendBeginMainFrame() bool {
	if !m.couldSendBeginMainFrame() {
		return false
	}

	if m.commitState != CommitIdle {
		return false
	}

	if m.implLatencyTakesPriority &&
		(m.hasPendingTree || m.activeTreeNeedsFirstDraw) {
		return false
	}

	if m.outputSurfaceState == OutputSurfaceWaitingForFirstCommit {
		return true
	}

	// Input may still arrive before the next BeginFrame.
	if m.beginImplFrameState == BeginImplFrameIdle && m.BeginFrameNeeded() {
		return false
	}

	if m.forcedRedrawState == ForcedRedrawWaitingForCommit {
		return true
	}

	if m.hasSentBeginMainFrameThisFrame() {
		return false
	}

	if !m.HasInitializedOutputSurface() {
		return false
	}

	justSwappedInDeadline :=
		m.beginImplFrameState == BeginImplFrameInsideDeadline &&
			m.hasSwappedThisFrame()
	if m.pendingSwaps >= m.maxPendingSwaps && !justSwappedInDeadline {
		return false
	}

	return !m.skipBeginMainFrameToReduceLatency
}

// ShouldCommit tells if the ready main frame should be committed. It never
// holds while a pending tree occupies the slot.
func (m *StateMachine) ShouldCommit() bool {
	if m.commitState != CommitReadyToCommit {
		return false
	}

	if m.hasPendingTree {
		m.mustBe(m.spec.MainFrameBeforeActivationEnabled,
			"ready to commit while a pending tree exists")
		return false
	}

	return !m.activeTreeNeedsFirstDraw
}

// ShouldManageTiles tells if tile priorities should be updated.
func (m *StateMachine) ShouldManageTiles() bool {
	if m.manageTilesFunnel > 0 {
		return false
	}

	if m.beginImplFrameState != BeginImplFrameInsideDeadline &&
		!m.insidePollForAnticipatedDrawTriggers {
		return false
	}

	return m.needsManageTiles
}

// SetSkipNextBeginMainFrameToReduceLatency skips sending a main frame in
// the next BeginFrame.
func (m *StateMachine) SetSkipNextBeginMainFrameToReduceLatency() {
	m.skipNextBeginMainFrameToReduceLatency = true
}

// BeginFrameNeeded tells if the frame source should keep ticking.
func (m *StateMachine) BeginFrameNeeded() bool {
	if !m.SupportsProactiveBeginFrame() {
		return m.BeginFrameNeededToAnimateOrDraw()
	}

	return m.BeginFrameNeededToAnimateOrDraw() || m.ProactiveBeginFrameWanted()
}

// ShouldPollForAnticipatedDrawTriggers replaces proactive BeginFrames for
// the synchronous compositor, which must draw on every BeginFrame.
func (m *StateMachine) ShouldPollForAnticipatedDrawTriggers() bool {
	if !m.SupportsProactiveBeginFrame() {
		return !m.BeginFrameNeededToAnimateOrDraw() &&
			m.ProactiveBeginFrameWanted()
	}

	return false
}

// SupportsProactiveBeginFrame is false for the synchronous compositor.
func (m *StateMachine) SupportsProactiveBeginFrame() bool {
	return !m.spec.UsingSynchronousRendererCompositor
}

// BeginFrameNeededToAnimateOrDraw tells if there is definite work for the
// next BeginFrame.
func (m *StateMachine) BeginFrameNeededToAnimateOrDraw() bool {
	if !m.HasInitializedOutputSurface() {
		return false
	}

	if !m.canDraw {
		return false
	}

	if m.forcedRedrawState == ForcedRedrawWaitingForDraw {
		return true
	}

	if !m.visible {
		return false
	}

	return m.swapUsedIncompleteTile || m.needsAnimate || m.needsRedraw
}

// ProactiveBeginFrameWanted tells if a draw is likely soon, so asking for a
// BeginFrame early hides the round trip to the source.
func (m *StateMachine) ProactiveBeginFrameWanted() bool {
	if !m.HasInitializedOutputSurface() {
		return false
	}

	if !m.visible {
		return false
	}

	if m.needsCommit || m.commitState != CommitIdle {
		return true
	}

	if m.hasPendingTree {
		return true
	}

	if m.needsManageTiles {
		return true
	}

	return m.hasRequestedSwapThisFrame()
}

// OnBeginImplFrame starts a new frame.
func (m *StateMachine) OnBeginImplFrame(args frame.Args) {
	m.advanceCurrentFrameNumber()
	m.beginImplFrameArgs = args

	m.mustBe(m.beginImplFrameState == BeginImplFrameIdle,
		"begin impl frame while %s", m.beginImplFrameState)
	m.beginImplFrameState = BeginImplFrameStarting
}

// OnBeginImplFrameDeadlinePending marks the frame as waiting for its
// deadline.
func (m *StateMachine) OnBeginImplFrameDeadlinePending() {
	m.mustBe(m.beginImplFrameState == BeginImplFrameStarting,
		"deadline pending while %s", m.beginImplFrameState)
	m.beginImplFrameState = BeginImplFrameInsideBeginFrame
}

// OnBeginImplFrameDeadline enters the deadline.
func (m *StateMachine) OnBeginImplFrameDeadline() {
	m.mustBe(m.beginImplFrameState == BeginImplFrameInsideBeginFrame,
		"deadline while %s", m.beginImplFrameState)
	m.beginImplFrameState = BeginImplFrameInsideDeadline
}

// OnBeginImplFrameIdle ends the frame.
func (m *StateMachine) OnBeginImplFrameIdle() {
	m.mustBe(m.beginImplFrameState == BeginImplFrameInsideDeadline,
		"idle while %s", m.beginImplFrameState)
	m.beginImplFrameState = BeginImplFrameIdle
}

// ShouldTriggerBeginImplFrameDeadlineEarly tells if the deadline can run
// now because waiting would not change what gets drawn.
func (m *StateMachine) ShouldTriggerBeginImplFrameDeadlineEarly() bool {
	if m.beginImplFrameState != BeginImplFrameInsideBeginFrame {
		return false
	}

	if m.outputSurfaceState == OutputSurfaceLost {
		return true
	}

	if m.pendingSwaps >= m.maxPendingSwaps {
		return false
	}

	if m.activeTreeNeedsFirstDraw {
		return true
	}

	if !m.needsRedraw {
		return false
	}

	// The main thread has nothing coming.
	if m.commitState == CommitIdle && !m.hasPendingTree {
		return true
	}

	return m.implLatencyTakesPriority || m.implLatencyTakesPriorityOnBattery
}

// CommitPending tells if a main frame is between being sent and committed.
func (m *StateMachine) CommitPending() bool {
	return m.commitState == CommitBeginMainFrameSent ||
		m.commitState == CommitBeginMainFrameStarted ||
		m.commitState == CommitReadyToCommit
}

// MainThreadIsInHighLatencyMode tells if the main thread is a frame or more
// behind the impl thread.
func (m *StateMachine) MainThreadIsInHighLatencyMode() bool {
	if m.CommitPending() && (m.activeTreeNeedsFirstDraw || m.hasPendingTree) {
		return true
	}

	if m.hasSentBeginMainFrameThisFrame() &&
		(m.beginImplFrameState == BeginImplFrameStarting ||
			m.beginImplFrameState == BeginImplFrameInsideBeginFrame) {
		return false
	}

	if m.CommitPending() {
		return true
	}

	if m.hasPendingTree {
		return true
	}

	if m.beginImplFrameState == BeginImplFrameInsideDeadline {
		return (m.activeTreeNeedsFirstDraw || m.hasSwappedThisFrame()) &&
			!m.hasSentBeginMainFrameThisFrame()
	}

	return m.activeTreeNeedsFirstDraw
}

// DidEnterPollForAnticipatedDrawTriggers starts a poll, which counts as a
// frame.
func (m *StateMachine) DidEnterPollForAnticipatedDrawTriggers() {
	m.advanceCurrentFrameNumber()
	m.insidePollForAnticipatedDrawTriggers = true
}

// DidLeavePollForAnticipatedDrawTriggers ends a poll.
func (m *StateMachine) DidLeavePollForAnticipatedDrawTriggers() {
	m.insidePollForAnticipatedDrawTriggers = false
}

// SetVisible sets whether the compositor is visible.
func (m *StateMachine) SetVisible(visible bool) { m.visible = visible }

// SetCanStart allows output surface creation.
func (m *StateMachine) SetCanStart() { m.canStart = true }

// SetCanDraw sets whether drawing is possible at all.
func (m *StateMachine) SetCanDraw(canDraw bool) { m.canDraw = canDraw }

// SetNeedsRedraw requests a draw.
func (m *StateMachine) SetNeedsRedraw() { m.needsRedraw = true }

// SetNeedsAnimate requests an animation tick.
func (m *StateMachine) SetNeedsAnimate() { m.needsAnimate = true }

// SetNeedsCommit requests a main frame.
func (m *StateMachine) SetNeedsCommit() { m.needsCommit = true }

// SetNeedsManageTiles requests a tile priority update.
func (m *StateMachine) SetNeedsManageTiles() { m.needsManageTiles = true }

// SetContinuousPainting re-requests a commit after every commit.
func (m *StateMachine) SetContinuousPainting(continuous bool) {
	m.continuousPainting = continuous
}

// SetMaxSwapsPending sets how many swaps may wait for their ack. Lowering
// it below the swaps already pending keeps them; no draw is proposed until
// enough acks bring the count under the new max.
func (m *StateMachine) SetMaxSwapsPending(max int) {
	m.mustBe(max >= 1, "max pending swaps %d is less than 1", max)
	m.maxPendingSwaps = max
}

// DidSwapBuffers records a swap that waits for its ack.
func (m *StateMachine) DidSwapBuffers() {
	m.pendingSwaps++
	m.mustBe(m.pendingSwaps <= m.maxPendingSwaps,
		"pending swaps %d above max %d", m.pendingSwaps, m.maxPendingSwaps)

	m.lastFrameNumberSwapPerformed = m.currentFrameNumber
}

// DidSwapBuffersComplete records a swap ack.
func (m *StateMachine) DidSwapBuffersComplete() {
	m.mustBe(m.pendingSwaps > 0, "swap ack without a pending swap")
	m.pendingSwaps--
}

// SetSwapUsedIncompleteTile records whether the last swap checkerboarded.
func (m *StateMachine) SetSwapUsedIncompleteTile(usedIncompleteTile bool) {
	m.swapUsedIncompleteTile = usedIncompleteTile
}

// SetImplLatencyTakesPriority favours impl-thread draws over main frames.
func (m *StateMachine) SetImplLatencyTakesPriority(priority bool) {
	m.implLatencyTakesPriority = priority
}

// SetImplLatencyTakesPriorityOnBattery favours early deadlines while on
// battery.
func (m *StateMachine) SetImplLatencyTakesPriorityOnBattery(priority bool) {
	m.implLatencyTakesPriorityOnBattery = priority
}

// DidDrawIfPossibleCompleted folds the result of a draw attempt into the
// checkerboard streak and the forced redraw recovery.
func (m *StateMachine) DidDrawIfPossibleCompleted(result DrawResult) {
	switch result {
	case DrawSuccess:
		m.consecutiveCheckerboardAnimations = 0
		m.forcedRedrawState = ForcedRedrawIdle

	case DrawAbortedCheckerboardAnimations:
		m.needsRedraw = true

		if m.forcedRedrawState != ForcedRedrawIdle {
			return
		}

		m.needsCommit = true
		m.consecutiveCheckerboardAnimations++

		if m.spec.TimeoutAndDrawWhenAnimationCheckerboards &&
			m.consecutiveCheckerboardAnimations >=
				m.spec.MaximumNumberOfFailedDrawsBeforeDrawIsForced {
			m.consecutiveCheckerboardAnimations = 0
			m.forcedRedrawState = ForcedRedrawWaitingForCommit
		}

	case DrawAbortedMissingHighResContent:
		// The content may be missing for lack of pictures or of memory;
		// only a commit fixes the former.
		m.needsCommit = true

	default:
		m.mustBe(false, "invalid draw result %s", result)
	}
}

// NotifyBeginMainFrameStarted records that the main thread picked up the
// main frame.
func (m *StateMachine) NotifyBeginMainFrameStarted() {
	m.mustBe(m.commitState == CommitBeginMainFrameSent,
		"main frame started while %s", m.commitState)
	m.commitState = CommitBeginMainFrameStarted
}

// NotifyReadyToCommit records that the main frame is ready.
func (m *StateMachine) NotifyReadyToCommit() {
	m.mustBe(m.commitState == CommitBeginMainFrameStarted,
		"ready to commit while %s", m.commitState)
	m.commitState = CommitReadyToCommit
}

// BeginMainFrameAborted records that the main thread gave up on the main
// frame. didHandle means the main thread consumed the request.
func (m *StateMachine) BeginMainFrameAborted(didHandle bool) {
	m.mustBe(m.commitState == CommitBeginMainFrameSent,
		"main frame aborted while %s", m.commitState)

	if didHandle {
		m.updateStateOnCommit(true)
		return
	}

	m.commitState = CommitIdle
	m.SetNeedsCommit()
}

// NotifyReadyToActivate records that the pending tree finished raster.
func (m *StateMachine) NotifyReadyToActivate() {
	if m.hasPendingTree {
		m.pendingTreeIsReadyForActivation = true
	}
}

// DidManageTiles records a tile priority update done outside of
// ActionManageTiles.
func (m *StateMachine) DidManageTiles() {
	m.needsManageTiles = false
	m.manageTilesFunnel++
}

// DidLoseOutputSurface records the loss of the output surface.
func (m *StateMachine) DidLoseOutputSurface() {
	if m.outputSurfaceState == OutputSurfaceLost ||
		m.outputSurfaceState == OutputSurfaceCreating {
		return
	}

	m.outputSurfaceState = OutputSurfaceLost
	m.needsRedraw = false
}

// DidCreateAndInitializeOutputSurface records a new output surface.
func (m *StateMachine) DidCreateAndInitializeOutputSurface() {
	m.mustBe(m.outputSurfaceState == OutputSurfaceCreating,
		"output surface initialized while %s", m.outputSurfaceState)
	m.outputSurfaceState = OutputSurfaceWaitingForFirstCommit

	if m.didCreateAndInitializeFirstOutputSurface {
		m.needsCommit = true
	}

	m.didCreateAndInitializeFirstOutputSurface = true
	m.pendingSwaps = 0
}

// HasInitializedOutputSurface tells if there is a surface to draw into.
func (m *StateMachine) HasInitializedOutputSurface() bool {
	switch m.outputSurfaceState {
	case OutputSurfaceActive,
		OutputSurfaceWaitingForFirstCommit,
		OutputSurfaceWaitingForFirstActivation:
		return true
	default:
		return false
	}
}

// OutputSurfaceState returns the output surface phase.
func (m *StateMachine) OutputSurfaceState() OutputSurfaceState {
	return m.outputSurfaceState
}

// BeginImplFrameState returns the begin-impl-frame phase.
func (m *StateMachine) BeginImplFrameState() BeginImplFrameState {
	return m.beginImplFrameState
}

// CommitState returns the commit phase.
func (m *StateMachine) CommitState() CommitState {
	return m.commitState
}

// ForcedRedrawState returns the forced redraw phase.
func (m *StateMachine) ForcedRedrawState() ForcedRedrawState {
	return m.forcedRedrawState
}

// BeginImplFrameArgs returns the args of the current frame.
func (m *StateMachine) BeginImplFrameArgs() frame.Args {
	return m.beginImplFrameArgs
}

// CommitCount returns the number of commits, aborted ones included.
func (m *StateMachine) CommitCount() int { return m.commitCount }

// CurrentFrameNumber returns the frame counter.
func (m *StateMachine) CurrentFrameNumber() int { return m.currentFrameNumber }

// NeedsCommit tells if a main frame is requested.
func (m *StateMachine) NeedsCommit() bool { return m.needsCommit }

// NeedsAnimate tells if an animation tick is requested.
func (m *StateMachine) NeedsAnimate() bool { return m.needsAnimate }

// RedrawPending tells if a draw is requested.
func (m *StateMachine) RedrawPending() bool { return m.needsRedraw }

// ManageTilesPending tells if a tile priority update is requested.
func (m *StateMachine) ManageTilesPending() bool { return m.needsManageTiles }

// HasPendingTree tells if a committed tree waits for activation.
func (m *StateMachine) HasPendingTree() bool { return m.hasPendingTree }

// ActiveTreeNeedsFirstDraw tells if the active tree was never drawn.
func (m *StateMachine) ActiveTreeNeedsFirstDraw() bool {
	return m.activeTreeNeedsFirstDraw
}

// Visible tells if the compositor is visible.
func (m *StateMachine) Visible() bool { return m.visible }

// CanDraw tells if drawing is possible.
func (m *StateMachine) CanDraw() bool { return m.canDraw }

// PendingSwaps returns the number of swaps waiting for their ack.
func (m *StateMachine) PendingSwaps() int { return m.pendingSwaps }

// MaxPendingSwaps returns the swap throttle.
func (m *StateMachine) MaxPendingSwaps() int { return m.maxPendingSwaps }

// ImplLatencyTakesPriority tells if impl-thread draws are favoured.
func (m *StateMachine) ImplLatencyTakesPriority() bool {
	return m.implLatencyTakesPriority
}

// ConsecutiveCheckerboardAnimations returns the current checkerboard
// streak.
func (m *StateMachine) ConsecutiveCheckerboardAnimations() int {
	return m.consecutiveCheckerboardAnimations
}

// DebugString returns a one-line summary of the major state.
func (m *StateMachine) DebugString() string {
	return fmt.Sprintf("%c %d %d %d %c %c %c %d %d",
		tf(m.needsCommit),
		int(m.outputSurfaceState),
		int(m.beginImplFrameState),
		int(m.commitState),
		tf(m.hasPendingTree),
		tf(m.pendingTreeIsReadyForActivation),
		tf(m.activeTreeNeedsFirstDraw),
		m.maxPendingSwaps,
		m.pendingSwaps)
}

func tf(b bool) byte {
	if b {
		return 'T'
	}

	return 'F'
}

// MachineState is a read-only view of the state machine for diagnostics.
type MachineState struct {
	Major      MajorState      `json:"major_state"`
	Timestamps TimestampsState `json:"major_timestamps_in_ms"`
	Minor      MinorState      `json:"minor_state"`
}

// MajorState holds the phases and the next action.
type MajorState struct {
	NextAction          string `json:"next_action"`
	BeginImplFrameState string `json:"begin_impl_frame_state"`
	CommitState         string `json:"commit_state"`
	OutputSurfaceState  string `json:"output_surface_state"`
	ForcedRedrawState   string `json:"forced_redraw_state"`
}

// TimestampsState holds the timing of the current BeginImplFrame.
type TimestampsState struct {
	Interval        float64 `json:"0_interval"`
	NowToDeadline   float64 `json:"1_now_to_deadline"`
	FrameToDeadline float64 `json:"2_frame_to_deadline"`
	FrameToNow      float64 `json:"3_frame_to_now"`
	Now             float64 `json:"4_now"`
	FrameTime       float64 `json:"5_frame_time"`
	Deadline        float64 `json:"6_deadline"`
}

// MinorState holds the flags and counters.
type MinorState struct {
	CommitCount                           int  `json:"commit_count"`
	CurrentFrameNumber                    int  `json:"current_frame_number"`
	LastFrameNumberAnimatePerformed       int  `json:"last_frame_number_animate_performed"`
	LastFrameNumberSwapPerformed          int  `json:"last_frame_number_swap_performed"`
	LastFrameNumberSwapRequested          int  `json:"last_frame_number_swap_requested"`
	LastFrameNumberBeginMainFrameSent     int  `json:"last_frame_number_begin_main_frame_sent"`
	LastFrameNumberUpdateVisibleTiles     int  `json:"last_frame_number_update_visible_tiles_was_called"`
	ManageTilesFunnel                     int  `json:"manage_tiles_funnel"`
	ConsecutiveCheckerboardAnimations     int  `json:"consecutive_checkerboard_animations_count"`
	MaxPendingSwaps                       int  `json:"max_pending_swaps"`
	PendingSwaps                          int  `json:"pending_swaps"`
	NeedsRedraw                           bool `json:"needs_redraw"`
	NeedsAnimate                          bool `json:"needs_animate"`
	NeedsManageTiles                      bool `json:"needs_manage_tiles"`
	SwapUsedIncompleteTile                bool `json:"swap_used_incomplete_tile"`
	NeedsCommit                           bool `json:"needs_commit"`
	Visible                               bool `json:"visible"`
	CanStart                              bool `json:"can_start"`
	CanDraw                               bool `json:"can_draw"`
	HasPendingTree                        bool `json:"has_pending_tree"`
	PendingTreeIsReadyForActivation       bool `json:"pending_tree_is_ready_for_activation"`
	ActiveTreeNeedsFirstDraw              bool `json:"active_tree_needs_first_draw"`
	DidCommitAfterAnimating               bool `json:"did_commit_after_animating"`
	DidCreateAndInitializeFirstSurface    bool `json:"did_create_and_initialize_first_output_surface"`
	ImplLatencyTakesPriority              bool `json:"impl_latency_takes_priority"`
	MainThreadIsInHighLatencyMode         bool `json:"main_thread_is_in_high_latency_mode"`
	SkipBeginMainFrameToReduceLatency     bool `json:"skip_begin_main_frame_to_reduce_latency"`
	SkipNextBeginMainFrameToReduceLatency bool `json:"skip_next_begin_main_frame_to_reduce_latency"`
	ContinuousPainting                    bool `json:"continuous_painting"`
	ImplLatencyTakesPriorityOnBattery     bool `json:"impl_latency_takes_priority_on_battery"`
}

// Snapshot returns the current state. It does not change anything.
func (m *StateMachine) Snapshot(now time.Time) MachineState {
	args := m.beginImplFrameArgs

	return MachineState{
		Major: MajorState{
			NextAction:          m.NextAction().String(),
			BeginImplFrameState: m.beginImplFrameState.String(),
			CommitState:         m.commitState.String(),
			OutputSurfaceState:  m.outputSurfaceState.String(),
			ForcedRedrawState:   m.forcedRedrawState.String(),
		},
		Timestamps: TimestampsState{
			Interval:        durationMs(args.Interval),
			NowToDeadline:   betweenMs(now, args.Deadline),
			FrameToDeadline: betweenMs(args.FrameTime, args.Deadline),
			FrameToNow:      betweenMs(args.FrameTime, now),
			Now:             timeMs(now),
			FrameTime:       timeMs(args.FrameTime),
			Deadline:        timeMs(args.Deadline),
		},
		Minor: MinorState{
			CommitCount:                           m.commitCount,
			CurrentFrameNumber:                    m.currentFrameNumber,
			LastFrameNumberAnimatePerformed:       m.lastFrameNumberAnimatePerformed,
			LastFrameNumberSwapPerformed:          m.lastFrameNumberSwapPerformed,
			LastFrameNumberSwapRequested:          m.lastFrameNumberSwapRequested,
			LastFrameNumberBeginMainFrameSent:     m.lastFrameNumberBeginMainFrameSent,
			LastFrameNumberUpdateVisibleTiles:     m.lastFrameNumberUpdateVisibleTilesWasCalled,
			ManageTilesFunnel:                     m.manageTilesFunnel,
			ConsecutiveCheckerboardAnimations:     m.consecutiveCheckerboardAnimations,
			MaxPendingSwaps:                       m.maxPendingSwaps,
			PendingSwaps:                          m.pendingSwaps,
			NeedsRedraw:                           m.needsRedraw,
			NeedsAnimate:                          m.needsAnimate,
			NeedsManageTiles:                      m.needsManageTiles,
			SwapUsedIncompleteTile:                m.swapUsedIncompleteTile,
			NeedsCommit:                           m.needsCommit,
			Visible:                               m.visible,
			CanStart:                              m.canStart,
			CanDraw:                               m.canDraw,
			HasPendingTree:                        m.hasPendingTree,
			PendingTreeIsReadyForActivation:       m.pendingTreeIsReadyForActivation,
			ActiveTreeNeedsFirstDraw:              m.activeTreeNeedsFirstDraw,
			DidCommitAfterAnimating:               m.didCommitAfterAnimating,
			DidCreateAndInitializeFirstSurface:    m.didCreateAndInitializeFirstOutputSurface,
			ImplLatencyTakesPriority:              m.implLatencyTakesPriority,
			MainThreadIsInHighLatencyMode:         m.MainThreadIsInHighLatencyMode(),
			SkipBeginMainFrameToReduceLatency:     m.skipBeginMainFrameToReduceLatency,
			SkipNextBeginMainFrameToReduceLatency: m.skipNextBeginMainFrameToReduceLatency,
			ContinuousPainting:                    m.continuousPainting,
			ImplLatencyTakesPriorityOnBattery:     m.implLatencyTakesPriorityOnBattery,
		},
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// betweenMs returns to - from in milliseconds, or 0 if either time is
// unset.
func betweenMs(from, to time.Time) float64 {
	if from.IsZero() || to.IsZero() {
		return 0
	}

	return durationMs(to.Sub(from))
}

func timeMs(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}

	return float64(t.UnixNano()) / float64(time.Millisecond)
}
