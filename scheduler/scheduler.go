// Package scheduler decides when a compositor animates, commits, activates
// and draws. The StateMachine makes every decision; the Scheduler feeds it
// BeginFrames and timers and carries out the actions through a Client.
package scheduler

import (
	"log"
	"time"

	"github.com/sarchlab/framesched/frame"
	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/id"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/sarchlab/framesched/tracing"
)

// VSyncParameterObserver is a frame source that follows the display's vsync
// timebase and interval.
type VSyncParameterObserver interface {
	OnUpdateVSyncParameters(timebase time.Time, interval time.Duration)
}

// Scheduler drives a StateMachine from BeginFrames and deferred tasks on a
// single engine. All methods must be called on the engine's thread.
type Scheduler struct {
	*hooking.HookableBase
	*frame.ObserverBase

	name         string
	spec         Spec
	engine       timing.EventScheduler
	client       Client
	powerMonitor PowerMonitor

	state *StateMachine

	frameSource      *frame.Multiplexer
	primarySource    frame.Source
	backgroundSource frame.Source
	vsyncObserver    VSyncParameterObserver

	tasks *taskSet

	retroFrames        []frame.Args
	droppedRetroFrames int

	beginImplFrameArgs      frame.Args
	estimatedParentDrawTime time.Duration

	insideProcessScheduledActions bool
	insideAction                  Action

	frameTaskID string
}

// Name returns the name of the scheduler.
func (s *Scheduler) Name() string {
	return s.name
}

// Handle runs the deferred tasks of the scheduler.
func (s *Scheduler) Handle(e timing.Event) error {
	evt, ok := e.(taskEvent)
	if !ok {
		log.Panicf("scheduler %s cannot handle event %T", s.name, e)
	}

	if !s.tasks.fired(evt) {
		return nil
	}

	switch evt.kind {
	case taskDeadline:
		s.onBeginImplFrameDeadline()
	case taskPollForDrawTriggers:
		s.pollForAnticipatedDrawTriggers()
	case taskAdvanceCommitState:
		s.pollToAdvanceCommitState()
	case taskBeginRetroFrame:
		s.beginRetroFrame()
	}

	return nil
}

func (s *Scheduler) setupPowerMonitoring() {
	if !s.spec.DisableHiResTimerTasksOnBattery {
		return
	}

	s.powerMonitor.AddObserver(s)
	s.state.SetImplLatencyTakesPriorityOnBattery(
		s.powerMonitor.IsOnBatteryPower())
}

// Teardown detaches the scheduler from the power monitor and stops frame
// production. The scheduler must not be used afterwards.
func (s *Scheduler) Teardown() {
	if s.spec.DisableHiResTimerTasksOnBattery {
		s.powerMonitor.RemoveObserver(s)
	}

	if s.frameSource.NeedsBeginFrames() {
		s.setNeedsBeginFrames(false)
	}

	for k := taskKind(0); k < numTaskKinds; k++ {
		s.tasks.cancel(k)
	}

	s.retroFrames = nil
}

// OnPowerStateChange is called by the power monitor.
func (s *Scheduler) OnPowerStateChange(onBatteryPower bool) {
	if !s.spec.DisableHiResTimerTasksOnBattery {
		log.Panicf("scheduler %s is not monitoring power", s.name)
	}

	s.state.SetImplLatencyTakesPriorityOnBattery(onBatteryPower)
}

// CommitVSyncParameters moves the vsync train of the synthetic primary
// source. A zero interval means the default interval.
func (s *Scheduler) CommitVSyncParameters(
	timebase time.Time,
	interval time.Duration,
) {
	if interval == 0 {
		interval = frame.DefaultInterval
	}

	if s.vsyncObserver != nil {
		s.vsyncObserver.OnUpdateVSyncParameters(timebase, interval)
	}
}

// SetEstimatedParentDrawTime sets how much of each deadline the embedding
// compositor keeps for itself.
func (s *Scheduler) SetEstimatedParentDrawTime(drawTime time.Duration) {
	if drawTime < 0 {
		log.Panicf("negative parent draw time %s", drawTime)
	}

	s.estimatedParentDrawTime = drawTime
}

// SetCanStart allows the scheduler to create the first output surface.
func (s *Scheduler) SetCanStart() {
	s.state.SetCanStart()
	s.processScheduledActions()
}

// SetVisible switches between the primary and the background source.
func (s *Scheduler) SetVisible(visible bool) {
	s.state.SetVisible(visible)

	if visible {
		s.frameSource.SetActiveSource(s.primarySource)
	} else {
		s.frameSource.SetActiveSource(s.backgroundSource)
	}

	s.processScheduledActions()
}

// SetCanDraw tells if the compositor has what it needs to draw.
func (s *Scheduler) SetCanDraw(canDraw bool) {
	s.state.SetCanDraw(canDraw)
	s.processScheduledActions()
}

// NotifyReadyToActivate tells that the pending tree finished rasterizing.
func (s *Scheduler) NotifyReadyToActivate() {
	s.state.NotifyReadyToActivate()
	s.processScheduledActions()
}

// SetNeedsCommit requests a main frame.
func (s *Scheduler) SetNeedsCommit() {
	s.state.SetNeedsCommit()
	s.processScheduledActions()
}

// SetNeedsRedraw requests a draw.
func (s *Scheduler) SetNeedsRedraw() {
	s.state.SetNeedsRedraw()
	s.processScheduledActions()
}

// SetNeedsAnimate requests an animation tick.
func (s *Scheduler) SetNeedsAnimate() {
	s.state.SetNeedsAnimate()
	s.processScheduledActions()
}

// SetNeedsManageTiles requests a tile management pass. It must not be called
// from inside ScheduledActionManageTiles.
func (s *Scheduler) SetNeedsManageTiles() {
	if s.IsInsideAction(ActionManageTiles) {
		log.Panic("SetNeedsManageTiles called while managing tiles")
	}

	s.state.SetNeedsManageTiles()
	s.processScheduledActions()
}

// SetContinuousPainting makes every commit request the next one.
func (s *Scheduler) SetContinuousPainting(continuous bool) {
	s.state.SetContinuousPainting(continuous)
	s.processScheduledActions()
}

// SetMaxSwapsPending sets how many swaps may wait for an ack.
func (s *Scheduler) SetMaxSwapsPending(max int) {
	s.state.SetMaxSwapsPending(max)
}

// DidSwapBuffers records a swap. Swapping never triggers new actions.
func (s *Scheduler) DidSwapBuffers() {
	s.state.DidSwapBuffers()

	if !s.insideProcessScheduledActions &&
		s.state.NextAction() != ActionNone {
		log.Panicf("swap outside of a draw left action %s pending",
			s.state.NextAction())
	}
}

// SetSwapUsedIncompleteTile tells if the last swap showed incomplete tiles.
func (s *Scheduler) SetSwapUsedIncompleteTile(usedIncompleteTile bool) {
	s.state.SetSwapUsedIncompleteTile(usedIncompleteTile)
	s.processScheduledActions()
}

// DidSwapBuffersComplete records a swap ack.
func (s *Scheduler) DidSwapBuffersComplete() {
	s.state.DidSwapBuffersComplete()
	s.processScheduledActions()
}

// SetImplLatencyTakesPriority favours impl-thread draws over main frames.
func (s *Scheduler) SetImplLatencyTakesPriority(priority bool) {
	s.state.SetImplLatencyTakesPriority(priority)
	s.processScheduledActions()
}

// NotifyReadyToCommit tells that the main thread finished its frame.
func (s *Scheduler) NotifyReadyToCommit() {
	s.state.NotifyReadyToCommit()
	s.processScheduledActions()
}

// BeginMainFrameAborted tells that the main thread had nothing to commit.
func (s *Scheduler) BeginMainFrameAborted(didHandle bool) {
	s.state.BeginMainFrameAborted(didHandle)
	s.processScheduledActions()
}

// DidManageTiles records a tile management pass done by the client.
func (s *Scheduler) DidManageTiles() {
	s.state.DidManageTiles()
}

// DidLoseOutputSurface stops frames and forgets queued retro frames.
func (s *Scheduler) DidLoseOutputSurface() {
	s.state.DidLoseOutputSurface()

	if s.frameSource.NeedsBeginFrames() {
		s.setNeedsBeginFrames(false)
	}

	s.retroFrames = nil
	s.processScheduledActions()
}

// DidCreateAndInitializeOutputSurface tells that a new surface is ready.
func (s *Scheduler) DidCreateAndInitializeOutputSurface() {
	if s.frameSource.NeedsBeginFrames() {
		log.Panic("frame source still running while creating a surface")
	}

	if s.tasks.isPending(taskDeadline) {
		log.Panic("deadline pending while creating a surface")
	}

	s.state.DidCreateAndInitializeOutputSurface()
	s.processScheduledActions()
}

// NotifyBeginMainFrameStarted tells that the main thread picked up the
// BeginMainFrame.
func (s *Scheduler) NotifyBeginMainFrameStarted() {
	s.state.NotifyBeginMainFrameStarted()
}

// CommitPending tells if a main frame is in flight.
func (s *Scheduler) CommitPending() bool {
	return s.state.CommitPending()
}

// RedrawPending tells if a redraw was requested.
func (s *Scheduler) RedrawPending() bool {
	return s.state.RedrawPending()
}

// ManageTilesPending tells if tile management was requested.
func (s *Scheduler) ManageTilesPending() bool {
	return s.state.ManageTilesPending()
}

// MainThreadIsInHighLatencyMode tells if the main thread is a frame behind.
func (s *Scheduler) MainThreadIsInHighLatencyMode() bool {
	return s.state.MainThreadIsInHighLatencyMode()
}

// BeginImplFrameDeadlinePending tells if a deadline task is scheduled.
func (s *Scheduler) BeginImplFrameDeadlinePending() bool {
	return s.tasks.isPending(taskDeadline)
}

// WillDrawIfNeeded tells if a requested draw would not be aborted.
func (s *Scheduler) WillDrawIfNeeded() bool {
	return !s.state.PendingDrawsShouldBeAborted()
}

// IsInsideAction tells if the client is currently performing action.
func (s *Scheduler) IsInsideAction(action Action) bool {
	return s.insideAction == action
}

// LastBeginImplFrameTime returns the frame time of the current or last
// BeginImplFrame.
func (s *Scheduler) LastBeginImplFrameTime() time.Time {
	return s.beginImplFrameArgs.FrameTime
}

// DroppedRetroFrames returns how many queued BeginFrames expired before the
// scheduler could use them.
func (s *Scheduler) DroppedRetroFrames() int {
	return s.droppedRetroFrames
}

// PendingRetroFrames returns how many BeginFrames are queued.
func (s *Scheduler) PendingRetroFrames() int {
	return len(s.retroFrames)
}

// BeginImplFrameState returns the frame phase of the state machine.
func (s *Scheduler) BeginImplFrameState() BeginImplFrameState {
	return s.state.BeginImplFrameState()
}

// CommitState returns the commit phase of the state machine.
func (s *Scheduler) CommitState() CommitState {
	return s.state.CommitState()
}

// OutputSurfaceState returns the surface phase of the state machine.
func (s *Scheduler) OutputSurfaceState() OutputSurfaceState {
	return s.state.OutputSurfaceState()
}

// NeedsBeginFrames tells if the scheduler currently asks for BeginFrames.
func (s *Scheduler) NeedsBeginFrames() bool {
	return s.frameSource.NeedsBeginFrames()
}

// AnticipatedDrawTime estimates when the next draw happens. It is the zero
// time when no BeginFrames are expected.
func (s *Scheduler) AnticipatedDrawTime() time.Time {
	args := s.beginImplFrameArgs
	if !s.frameSource.NeedsBeginFrames() || args.Interval <= 0 {
		return time.Time{}
	}

	now := s.engine.Now()

	timebase := args.FrameTime
	if args.Deadline.After(timebase) {
		timebase = args.Deadline
	}

	intervals := 1 + int64(now.Sub(timebase)/args.Interval)

	return timebase.Add(time.Duration(intervals) * args.Interval)
}

func (s *Scheduler) setNeedsBeginFrames(needs bool) {
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosNeedsBeginFrames,
		Item:   needs,
	})

	s.frameSource.SetNeedsBeginFrames(needs)
}

func (s *Scheduler) setupNextBeginFrameIfNeeded() {
	needsBeginFrame := s.state.BeginFrameNeeded()
	atEndOfDeadline :=
		s.state.BeginImplFrameState() == BeginImplFrameInsideDeadline

	sourceNeeds := s.frameSource.NeedsBeginFrames()
	if (needsBeginFrame && !sourceNeeds) ||
		(!needsBeginFrame && sourceNeeds && atEndOfDeadline) {
		s.setNeedsBeginFrames(needsBeginFrame)
	}

	if atEndOfDeadline {
		s.frameSource.DidFinishFrame(len(s.retroFrames))
	}

	s.postBeginRetroFrameIfNeeded()
	s.setupPollingMechanisms(needsBeginFrame)
}

// setupPollingMechanisms keeps the state moving when no BeginFrame is
// expected to do it.
func (s *Scheduler) setupPollingMechanisms(needsBeginFrame bool) {
	needsAdvanceCommitStateTimer := false

	if s.state.ShouldPollForAnticipatedDrawTriggers() {
		if s.state.SupportsProactiveBeginFrame() || needsBeginFrame {
			log.Panic("polling for draw triggers while frames are expected")
		}

		if !s.tasks.isPending(taskPollForDrawTriggers) {
			delay := frame.DefaultInterval
			if s.beginImplFrameArgs.IsValid() {
				delay = s.beginImplFrameArgs.Interval
			}

			s.tasks.post(taskPollForDrawTriggers, delay)
		}
	} else {
		s.tasks.cancel(taskPollForDrawTriggers)

		// The swap ack may be held on the commit, so do not rely on the
		// source to deliver the BeginFrame that completes it.
		if s.isBeginMainFrameSentOrStarted() &&
			!s.spec.UsingSynchronousRendererCompositor {
			needsAdvanceCommitStateTimer = true
		}
	}

	if !needsAdvanceCommitStateTimer {
		s.tasks.cancel(taskAdvanceCommitState)
		return
	}

	if !s.tasks.isPending(taskAdvanceCommitState) &&
		s.beginImplFrameArgs.IsValid() {
		s.tasks.post(taskAdvanceCommitState, 2*s.beginImplFrameArgs.Interval)
	}
}

// onBeginFrame is the delegate of the embedded ObserverBase. Frames that
// cannot start right away are queued as retro frames.
func (s *Scheduler) onBeginFrame(args frame.Args) bool {
	if args.Type == frame.Missed {
		s.retroFrames = append(s.retroFrames, args)
		s.postBeginRetroFrameIfNeeded()

		return true
	}

	adjusted := args.WithDeadlineReducedBy(s.estimatedParentDrawTime)

	shouldDefer := false
	if !s.spec.UsingSynchronousRendererCompositor {
		shouldDefer = len(s.retroFrames) > 0 ||
			s.tasks.isPending(taskBeginRetroFrame) ||
			!s.frameSource.NeedsBeginFrames() ||
			s.state.BeginImplFrameState() != BeginImplFrameIdle
	}

	if shouldDefer {
		s.retroFrames = append(s.retroFrames, adjusted)
	} else {
		s.beginImplFrame(adjusted)
	}

	return true
}

func (s *Scheduler) beginRetroFrame() {
	if s.spec.UsingSynchronousRendererCompositor {
		log.Panic("retro frames are not used by the synchronous compositor")
	}

	// An empty queue means the output surface was lost.
	if len(s.retroFrames) == 0 {
		return
	}

	now := s.engine.Now()
	drawEstimate := s.client.DrawDurationEstimate()

	for len(s.retroFrames) > 0 {
		front := s.retroFrames[0]
		if !now.After(s.adjustedBeginImplFrameDeadline(front, drawEstimate)) {
			break
		}

		s.retroFrames = s.retroFrames[1:]
		s.droppedRetroFrames++

		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosRetroFrameDropped,
			Item:   front,
		})

		s.frameSource.DidFinishFrame(len(s.retroFrames))
	}

	if len(s.retroFrames) == 0 {
		return
	}

	front := s.retroFrames[0]
	s.retroFrames = s.retroFrames[1:]
	s.beginImplFrame(front)
}

// postBeginRetroFrameIfNeeded keeps retro frames and fresh BeginFrames in
// FIFO order: a fresh frame is queued while a retro frame is posted.
func (s *Scheduler) postBeginRetroFrameIfNeeded() {
	if !s.frameSource.NeedsBeginFrames() {
		return
	}

	if len(s.retroFrames) == 0 || s.tasks.isPending(taskBeginRetroFrame) {
		return
	}

	if s.spec.UsingSynchronousRendererCompositor {
		log.Panic("retro frames queued for the synchronous compositor")
	}

	if s.state.BeginImplFrameState() != BeginImplFrameIdle {
		return
	}

	s.tasks.post(taskBeginRetroFrame, 0)
}

// beginImplFrame starts a compositor frame. It waits up to a deadline for
// a new active tree before it draws what it has.
func (s *Scheduler) beginImplFrame(args frame.Args) {
	highLatency := s.state.MainThreadIsInHighLatencyMode()

	if s.state.BeginImplFrameState() != BeginImplFrameIdle {
		log.Panicf("BeginImplFrame while in %s", s.state.BeginImplFrameState())
	}

	if !s.state.HasInitializedOutputSurface() {
		log.Panic("BeginImplFrame without an output surface")
	}

	s.tasks.cancel(taskAdvanceCommitState)

	drawEstimate := s.client.DrawDurationEstimate()
	s.beginImplFrameArgs = args.WithDeadlineReducedBy(drawEstimate)

	if !s.state.ImplLatencyTakesPriority() &&
		highLatency &&
		s.canCommitAndActivateBeforeDeadline() {
		s.state.SetSkipNextBeginMainFrameToReduceLatency()
	}

	s.startFrameTask()
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosBeginImplFrame,
		Item:   s.beginImplFrameArgs,
		Detail: highLatency,
	})

	s.client.WillBeginImplFrame(s.beginImplFrameArgs)
	s.state.OnBeginImplFrame(s.beginImplFrameArgs)

	s.processScheduledActions()

	s.state.OnBeginImplFrameDeadlinePending()
	s.scheduleBeginImplFrameDeadline(
		s.adjustedBeginImplFrameDeadline(args, drawEstimate))
}

func (s *Scheduler) adjustedBeginImplFrameDeadline(
	args frame.Args,
	drawEstimate time.Duration,
) time.Time {
	switch {
	case s.spec.UsingSynchronousRendererCompositor:
		return time.Time{}
	case s.state.ShouldTriggerBeginImplFrameDeadlineEarly():
		return time.Time{}
	case s.state.RedrawPending():
		return args.Deadline.Add(-drawEstimate)
	default:
		// Nothing to draw yet; wait until the next frame would start so a new
		// active tree can still be drawn in this one.
		return args.FrameTime.Add(args.Interval)
	}
}

func (s *Scheduler) scheduleBeginImplFrameDeadline(deadline time.Time) {
	if s.spec.UsingSynchronousRendererCompositor {
		s.onBeginImplFrameDeadline()
		return
	}

	s.tasks.post(taskDeadline, deadline.Sub(s.engine.Now()))
}

func (s *Scheduler) onBeginImplFrameDeadline() {
	s.tasks.cancel(taskDeadline)

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosDeadline,
		Item:   s.beginImplFrameArgs,
	})

	// Sending BeginMainFrame is not allowed inside the deadline, and surface
	// creation waits until after it.
	s.state.OnBeginImplFrameDeadline()
	s.processScheduledActions()
	s.state.OnBeginImplFrameIdle()
	s.processScheduledActions()

	s.endFrameTask()

	s.client.DidBeginImplFrameDeadline()
}

func (s *Scheduler) pollForAnticipatedDrawTriggers() {
	s.tasks.cancel(taskPollForDrawTriggers)
	s.state.DidEnterPollForAnticipatedDrawTriggers()
	s.processScheduledActions()
	s.state.DidLeavePollForAnticipatedDrawTriggers()
}

func (s *Scheduler) pollToAdvanceCommitState() {
	s.tasks.cancel(taskAdvanceCommitState)
	s.processScheduledActions()
}

func (s *Scheduler) drawAndSwapIfPossible() {
	result := s.client.ScheduledActionDrawAndSwapIfPossible()
	s.state.DidDrawIfPossibleCompleted(result)
}

// processScheduledActions performs actions until the state machine has
// nothing left to do. Calls made by the client from inside an action land
// here and return at once; the outer loop picks up their effect.
func (s *Scheduler) processScheduledActions() {
	if s.insideProcessScheduledActions {
		return
	}

	s.insideProcessScheduledActions = true
	defer func() { s.insideProcessScheduledActions = false }()

	for {
		action := s.state.NextAction()
		s.state.UpdateState(action)

		if action == ActionNone {
			break
		}

		s.performAction(action)
	}

	s.setupNextBeginFrameIfNeeded()
	s.client.DidAnticipatedDrawTimeChange(s.AnticipatedDrawTime())

	if s.state.ShouldTriggerBeginImplFrameDeadlineEarly() {
		if s.spec.UsingSynchronousRendererCompositor {
			log.Panic("early deadline for the synchronous compositor")
		}

		s.scheduleBeginImplFrameDeadline(time.Time{})
	}
}

func (s *Scheduler) performAction(action Action) {
	s.insideAction = action
	defer func() { s.insideAction = ActionNone }()

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosAction,
		Item:   action,
	})

	if s.frameTaskID != "" {
		tracing.AddTaskStep(s.frameTaskID, s, action.String())
	}

	switch action {
	case ActionAnimate:
		s.client.ScheduledActionAnimate()
	case ActionSendBeginMainFrame:
		s.client.ScheduledActionSendBeginMainFrame()
	case ActionCommit:
		s.client.ScheduledActionCommit()
	case ActionUpdateVisibleTiles:
		s.client.ScheduledActionUpdateVisibleTiles()
	case ActionActivateSyncTree:
		s.client.ScheduledActionActivateSyncTree()
	case ActionDrawAndSwapIfPossible:
		s.drawAndSwapIfPossible()
	case ActionDrawAndSwapForced:
		s.client.ScheduledActionDrawAndSwapForced()
	case ActionDrawAndSwapAbort:
		// Nothing to do; the state machine leaves its waiting-to-draw state.
	case ActionBeginOutputSurfaceCreation:
		s.client.ScheduledActionBeginOutputSurfaceCreation()
	case ActionManageTiles:
		s.client.ScheduledActionManageTiles()
	default:
		log.Panicf("unknown action %s", action)
	}
}

func (s *Scheduler) canCommitAndActivateBeforeDeadline() bool {
	estimatedDrawTime := s.beginImplFrameArgs.FrameTime.
		Add(s.client.BeginMainFrameToCommitDurationEstimate()).
		Add(s.client.CommitToActivateDurationEstimate())

	return estimatedDrawTime.Before(s.beginImplFrameArgs.Deadline)
}

func (s *Scheduler) isBeginMainFrameSentOrStarted() bool {
	cs := s.state.CommitState()
	return cs == CommitBeginMainFrameSent || cs == CommitBeginMainFrameStarted
}

func (s *Scheduler) startFrameTask() {
	s.frameTaskID = id.Generate()
	tracing.StartTask(s.frameTaskID, "", s, "frame", "BeginImplFrame",
		s.beginImplFrameArgs)
}

func (s *Scheduler) endFrameTask() {
	if s.frameTaskID == "" {
		return
	}

	tracing.EndTask(s.frameTaskID, s)
	s.frameTaskID = ""
}

var (
	_ frame.Observer = (*Scheduler)(nil)
	_ timing.Handler = (*Scheduler)(nil)
	_ PowerObserver  = (*Scheduler)(nil)
)
