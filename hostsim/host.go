// Package hostsim simulates the renderer that a scheduler drives. The main
// thread, raster workers and the display are events on the engine.
package hostsim

import (
	"log"
	"time"

	"github.com/sarchlab/framesched/frame"
	"github.com/sarchlab/framesched/scheduler"
	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/id"
	"github.com/sarchlab/framesched/sim/timing"
)

// Scheduler is the part of a scheduler the host reports back to.
type Scheduler interface {
	SetCanStart()
	SetVisible(visible bool)
	SetCanDraw(canDraw bool)
	SetNeedsCommit()
	SetNeedsAnimate()
	NotifyBeginMainFrameStarted()
	NotifyReadyToCommit()
	BeginMainFrameAborted(didHandle bool)
	NotifyReadyToActivate()
	DidSwapBuffers()
	DidSwapBuffersComplete()
	DidLoseOutputSurface()
	DidCreateAndInitializeOutputSurface()
}

// Stats counts what the host was asked to do.
type Stats struct {
	BeginImplFrames      int `json:"begin_impl_frames"`
	Deadlines            int `json:"deadlines"`
	Animations           int `json:"animations"`
	MainFrames           int `json:"main_frames"`
	AbortedMainFrames    int `json:"aborted_main_frames"`
	Commits              int `json:"commits"`
	Activations          int `json:"activations"`
	UpdateVisibleTiles   int `json:"update_visible_tiles"`
	Draws                int `json:"draws"`
	ForcedDraws          int `json:"forced_draws"`
	CheckerboardedDraws  int `json:"checkerboarded_draws"`
	Swaps                int `json:"swaps"`
	SwapAcks             int `json:"swap_acks"`
	ManageTiles          int `json:"manage_tiles"`
	SurfacesCreated      int `json:"surfaces_created"`
	SurfacesLost         int `json:"surfaces_lost"`
	CommitRequests       int `json:"commit_requests"`
	AnticipatedDrawTimes int `json:"anticipated_draw_times"`
}

// Host is a scheduler.Client that answers every action after the latencies
// in its Config.
type Host struct {
	*hooking.HookableBase

	name      string
	engine    timing.EventScheduler
	config    Config
	scheduler Scheduler

	ticks *timing.TickScheduler

	stats               Stats
	lastFrame           frame.Args
	anticipatedDrawTime time.Time

	// Swap acks of an older surface are dropped.
	surfaceGeneration int
	mainFrameTaskID   string
	stopped           bool
}

// Name returns the name of the host.
func (h *Host) Name() string {
	return h.name
}

// Attach sets the scheduler the host reports to. It must be called before
// Start.
func (h *Host) Attach(s Scheduler) {
	h.scheduler = s
}

// Start makes the renderer visible and ready to draw, and starts requesting
// commits if a CommitRequestInterval is set. A commit request that falls on
// the same instant as a frame event is made after it.
func (h *Host) Start() {
	h.mustBeAttached()

	h.scheduler.SetCanStart()
	h.scheduler.SetVisible(true)
	h.scheduler.SetCanDraw(true)

	if h.config.CommitRequestInterval > 0 {
		h.ticks = timing.NewSecondaryTickScheduler(h, h.engine, timing.Period{
			Timebase: h.engine.Now(),
			Interval: h.config.CommitRequestInterval,
		})
		h.ticks.TickNow()
	}
}

// Stop drops every reply still in flight. The scheduler is not called
// anymore.
func (h *Host) Stop() {
	h.stopped = true

	if h.ticks != nil {
		h.ticks.Reset()
	}

	h.endMainFrameTask("stopped")
}

// Handle requests a commit on each tick.
func (h *Host) Handle(e timing.Event) error {
	tick, ok := e.(timing.TickEvent)
	if !ok {
		log.Panicf("host %s cannot handle event %T", h.name, e)
	}

	if h.stopped || !h.ticks.Fired(tick) {
		return nil
	}

	h.RequestCommit()
	h.ticks.TickLater()

	return nil
}

// RequestCommit asks for a main frame, as a page change would.
func (h *Host) RequestCommit() {
	h.stats.CommitRequests++
	h.scheduler.SetNeedsCommit()
}

// LoseOutputSurface drops the surface, as a GPU process crash would.
func (h *Host) LoseOutputSurface() {
	h.surfaceGeneration++
	h.stats.SurfacesLost++
	h.scheduler.DidLoseOutputSurface()
}

// SetVisible shows or hides the renderer.
func (h *Host) SetVisible(visible bool) {
	h.scheduler.SetVisible(visible)
}

// Stats returns the counters of the host.
func (h *Host) Stats() Stats {
	return h.stats
}

// LastFrame returns the args of the last BeginImplFrame.
func (h *Host) LastFrame() frame.Args {
	return h.lastFrame
}

// AnticipatedDrawTime returns the last draw time the scheduler announced.
func (h *Host) AnticipatedDrawTime() time.Time {
	return h.anticipatedDrawTime
}

// WillBeginImplFrame records the frame.
func (h *Host) WillBeginImplFrame(args frame.Args) {
	h.stats.BeginImplFrames++
	h.lastFrame = args
}

// ScheduledActionAnimate ticks animations. A continuously animating page
// asks for the next tick right away.
func (h *Host) ScheduledActionAnimate() {
	h.stats.Animations++

	if h.config.ContinuousAnimation {
		h.scheduler.SetNeedsAnimate()
	}
}

// ScheduledActionSendBeginMainFrame starts a main frame. The main thread
// picks it up after MainThreadLatency and is ready to commit CommitLatency
// later, unless the frame is one to abort.
func (h *Host) ScheduledActionSendBeginMainFrame() {
	h.stats.MainFrames++
	n := h.stats.MainFrames

	h.mainFrameTaskID = id.Generate()
	tracingStartMainFrame(h, h.mainFrameTaskID)

	h.post(h.config.MainThreadLatency, func() {
		if h.config.AbortMainFrameEvery > 0 &&
			n%h.config.AbortMainFrameEvery == 0 {
			h.stats.AbortedMainFrames++
			h.endMainFrameTask("aborted")
			h.scheduler.BeginMainFrameAborted(true)

			return
		}

		h.stepMainFrameTask("started")
		h.scheduler.NotifyBeginMainFrameStarted()

		h.post(h.config.CommitLatency, func() {
			h.stepMainFrameTask("ready_to_commit")
			h.scheduler.NotifyReadyToCommit()
		})
	})
}

// ScheduledActionCommit commits the main frame. With impl-side painting
// the new pending tree is ready to activate after RasterLatency.
func (h *Host) ScheduledActionCommit() {
	h.stats.Commits++
	h.endMainFrameTask("commit")

	if !h.config.ImplSidePainting {
		return
	}

	commit := h.stats.Commits
	h.post(h.config.RasterLatency, func() {
		// A newer commit replaced the tree being rasterized.
		if commit != h.stats.Commits {
			return
		}

		h.scheduler.NotifyReadyToActivate()
	})
}

// ScheduledActionUpdateVisibleTiles counts the call.
func (h *Host) ScheduledActionUpdateVisibleTiles() {
	h.stats.UpdateVisibleTiles++
}

// ScheduledActionActivateSyncTree counts the call.
func (h *Host) ScheduledActionActivateSyncTree() {
	h.stats.Activations++
}

// ScheduledActionDrawAndSwapIfPossible draws unless this draw is one that
// checkerboards.
func (h *Host) ScheduledActionDrawAndSwapIfPossible() scheduler.DrawResult {
	h.stats.Draws++

	if h.config.CheckerboardEvery > 0 &&
		h.stats.Draws%h.config.CheckerboardEvery == 0 {
		h.stats.CheckerboardedDraws++
		return scheduler.DrawAbortedCheckerboardAnimations
	}

	h.swap()

	return scheduler.DrawSuccess
}

// ScheduledActionDrawAndSwapForced always draws.
func (h *Host) ScheduledActionDrawAndSwapForced() scheduler.DrawResult {
	h.stats.ForcedDraws++
	h.swap()

	return scheduler.DrawSuccess
}

func (h *Host) swap() {
	h.stats.Swaps++
	h.scheduler.DidSwapBuffers()

	generation := h.surfaceGeneration
	h.post(h.config.SwapAckLatency, func() {
		if generation != h.surfaceGeneration {
			return
		}

		h.stats.SwapAcks++
		h.scheduler.DidSwapBuffersComplete()
	})
}

// ScheduledActionBeginOutputSurfaceCreation creates a surface after
// SurfaceCreationLatency.
func (h *Host) ScheduledActionBeginOutputSurfaceCreation() {
	h.post(h.config.SurfaceCreationLatency, func() {
		h.stats.SurfacesCreated++
		h.scheduler.DidCreateAndInitializeOutputSurface()
	})
}

// ScheduledActionManageTiles counts the call.
func (h *Host) ScheduledActionManageTiles() {
	h.stats.ManageTiles++
}

// DidAnticipatedDrawTimeChange records the announced draw time.
func (h *Host) DidAnticipatedDrawTimeChange(t time.Time) {
	h.stats.AnticipatedDrawTimes++
	h.anticipatedDrawTime = t
}

// DidBeginImplFrameDeadline counts the deadline.
func (h *Host) DidBeginImplFrameDeadline() {
	h.stats.Deadlines++
}

// DrawDurationEstimate returns DrawDuration.
func (h *Host) DrawDurationEstimate() time.Duration {
	return h.config.DrawDuration
}

// BeginMainFrameToCommitDurationEstimate returns the main thread latency
// plus the commit latency.
func (h *Host) BeginMainFrameToCommitDurationEstimate() time.Duration {
	return h.config.MainThreadLatency + h.config.CommitLatency
}

// CommitToActivateDurationEstimate returns RasterLatency.
func (h *Host) CommitToActivateDurationEstimate() time.Duration {
	return h.config.RasterLatency
}

func (h *Host) post(delay time.Duration, fn func()) {
	timing.PostDelayed(h.engine, delay, func() {
		if h.stopped {
			return
		}

		fn()
	})
}

func (h *Host) mustBeAttached() {
	if h.scheduler == nil {
		log.Panicf("host %s is not attached to a scheduler", h.name)
	}
}

var (
	_ scheduler.Client = (*Host)(nil)
	_ timing.Handler   = (*Host)(nil)
)
