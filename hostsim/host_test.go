package hostsim

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/framesched/scheduler"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/sarchlab/framesched/tracing"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Builder", func() {
	It("should require an engine", func() {
		_, err := MakeBuilder().Build("Host")

		Expect(err).To(MatchError(ErrNoEngine))
	})

	It("should reject negative latencies", func() {
		config := DefaultConfig()
		config.SwapAckLatency = -time.Millisecond

		_, err := MakeBuilder().
			WithEngine(timing.NewSerialEngine()).
			WithConfig(config).
			Build("Host")

		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("Host", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *timing.SerialEngine
		sched    *MockScheduler
		config   Config
		h        *Host
	)

	build := func() {
		var err error

		h, err = MakeBuilder().
			WithEngine(engine).
			WithConfig(config).
			Build("Host")
		Expect(err).NotTo(HaveOccurred())

		h.Attach(sched)
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = timing.NewSerialEngine()
		sched = NewMockScheduler(mockCtrl)
		config = DefaultConfig()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not start without a scheduler", func() {
		h, _ = MakeBuilder().WithEngine(engine).Build("Host")

		Expect(func() { h.Start() }).To(Panic())
	})

	It("should make the renderer visible on start", func() {
		build()

		gomock.InOrder(
			sched.EXPECT().SetCanStart(),
			sched.EXPECT().SetVisible(true),
			sched.EXPECT().SetCanDraw(true),
		)

		h.Start()

		Expect(engine.PendingEvents()).To(Equal(0))
	})

	It("should create the output surface after a delay", func() {
		build()

		var createdAt time.Time
		sched.EXPECT().DidCreateAndInitializeOutputSurface().
			Do(func() { createdAt = engine.Now() })

		h.ScheduledActionBeginOutputSurfaceCreation()
		Expect(engine.Run()).To(Succeed())

		Expect(createdAt).To(Equal(
			timing.DefaultEpoch.Add(config.SurfaceCreationLatency)))
		Expect(h.Stats().SurfacesCreated).To(Equal(1))
	})

	It("should run the main frame and become ready to commit", func() {
		build()

		var startedAt, readyAt time.Time
		gomock.InOrder(
			sched.EXPECT().NotifyBeginMainFrameStarted().
				Do(func() { startedAt = engine.Now() }),
			sched.EXPECT().NotifyReadyToCommit().
				Do(func() { readyAt = engine.Now() }),
		)

		h.ScheduledActionSendBeginMainFrame()
		Expect(engine.Run()).To(Succeed())

		Expect(startedAt).To(Equal(
			timing.DefaultEpoch.Add(config.MainThreadLatency)))
		Expect(readyAt).To(Equal(timing.DefaultEpoch.Add(
			config.MainThreadLatency + config.CommitLatency)))
		Expect(h.BeginMainFrameToCommitDurationEstimate()).
			To(Equal(config.MainThreadLatency + config.CommitLatency))
	})

	It("should abort every other main frame", func() {
		config.AbortMainFrameEvery = 2
		build()

		sched.EXPECT().NotifyBeginMainFrameStarted()
		sched.EXPECT().NotifyReadyToCommit()
		sched.EXPECT().BeginMainFrameAborted(true)

		h.ScheduledActionSendBeginMainFrame()
		Expect(engine.Run()).To(Succeed())

		h.ScheduledActionSendBeginMainFrame()
		Expect(engine.Run()).To(Succeed())

		Expect(h.Stats().MainFrames).To(Equal(2))
		Expect(h.Stats().AbortedMainFrames).To(Equal(1))
	})

	It("should trace main frames", func() {
		build()

		tracer := tracing.NewStepCountTracer(tracing.KindIs("main_frame"))
		tracing.CollectTrace(h, tracer)

		sched.EXPECT().NotifyBeginMainFrameStarted()
		sched.EXPECT().NotifyReadyToCommit()

		h.ScheduledActionSendBeginMainFrame()
		Expect(engine.Run()).To(Succeed())
		h.ScheduledActionCommit()

		Expect(tracer.GetStepNames()).
			To(Equal([]string{"started", "ready_to_commit", "commit"}))
		Expect(h.mainFrameTaskID).To(BeEmpty())
	})

	It("should not raster without impl-side painting", func() {
		build()

		h.ScheduledActionCommit()
		Expect(engine.Run()).To(Succeed())

		Expect(h.Stats().Commits).To(Equal(1))
	})

	It("should only activate the latest committed tree", func() {
		config.ImplSidePainting = true
		build()

		var readyAt time.Time
		sched.EXPECT().NotifyReadyToActivate().
			Do(func() { readyAt = engine.Now() })

		h.ScheduledActionCommit()
		timing.PostDelayed(engine, time.Millisecond, h.ScheduledActionCommit)
		Expect(engine.Run()).To(Succeed())

		Expect(readyAt).To(Equal(timing.DefaultEpoch.
			Add(time.Millisecond + config.RasterLatency)))
	})

	It("should swap and receive the ack", func() {
		build()

		var ackedAt time.Time
		gomock.InOrder(
			sched.EXPECT().DidSwapBuffers(),
			sched.EXPECT().DidSwapBuffersComplete().
				Do(func() { ackedAt = engine.Now() }),
		)

		Expect(h.ScheduledActionDrawAndSwapIfPossible()).
			To(Equal(scheduler.DrawSuccess))
		Expect(engine.Run()).To(Succeed())

		Expect(ackedAt).To(Equal(
			timing.DefaultEpoch.Add(config.SwapAckLatency)))
		Expect(h.Stats().Swaps).To(Equal(1))
		Expect(h.Stats().SwapAcks).To(Equal(1))
	})

	It("should checkerboard every other draw", func() {
		config.CheckerboardEvery = 2
		build()

		sched.EXPECT().DidSwapBuffers().Times(2)
		sched.EXPECT().DidSwapBuffersComplete().Times(2)

		Expect(h.ScheduledActionDrawAndSwapIfPossible()).
			To(Equal(scheduler.DrawSuccess))
		Expect(h.ScheduledActionDrawAndSwapIfPossible()).
			To(Equal(scheduler.DrawAbortedCheckerboardAnimations))
		Expect(h.ScheduledActionDrawAndSwapForced()).
			To(Equal(scheduler.DrawSuccess))
		Expect(engine.Run()).To(Succeed())

		Expect(h.Stats().CheckerboardedDraws).To(Equal(1))
		Expect(h.Stats().ForcedDraws).To(Equal(1))
	})

	It("should drop the swap acks of a lost surface", func() {
		build()

		sched.EXPECT().DidSwapBuffers()
		sched.EXPECT().DidLoseOutputSurface()

		h.ScheduledActionDrawAndSwapIfPossible()
		h.LoseOutputSurface()
		Expect(engine.Run()).To(Succeed())

		Expect(h.Stats().SurfacesLost).To(Equal(1))
		Expect(h.Stats().SwapAcks).To(Equal(0))
	})

	It("should keep animating when animation is continuous", func() {
		config.ContinuousAnimation = true
		build()

		sched.EXPECT().SetNeedsAnimate()

		h.ScheduledActionAnimate()

		Expect(h.Stats().Animations).To(Equal(1))
	})

	It("should request commits periodically", func() {
		config.CommitRequestInterval = 10 * time.Millisecond
		build()

		sched.EXPECT().SetCanStart()
		sched.EXPECT().SetVisible(true)
		sched.EXPECT().SetCanDraw(true)
		sched.EXPECT().SetNeedsCommit().Times(3)

		h.Start()
		Expect(engine.RunFor(25 * time.Millisecond)).To(Succeed())

		h.Stop()
		Expect(engine.RunFor(50 * time.Millisecond)).To(Succeed())

		Expect(h.Stats().CommitRequests).To(Equal(3))
	})

	It("should request commits after frame events at the same time", func() {
		config.CommitRequestInterval = 10 * time.Millisecond
		build()

		var order []string

		sched.EXPECT().SetCanStart()
		sched.EXPECT().SetVisible(true)
		sched.EXPECT().SetCanDraw(true)
		sched.EXPECT().SetNeedsCommit().Do(func() {
			order = append(order, "commit")
		})

		h.Start()
		timing.PostNow(engine, func() { order = append(order, "frame") })
		Expect(engine.RunFor(5 * time.Millisecond)).To(Succeed())

		Expect(order).To(Equal([]string{"frame", "commit"}))
	})

	It("should drop replies after stopping", func() {
		build()

		h.ScheduledActionSendBeginMainFrame()
		h.ScheduledActionBeginOutputSurfaceCreation()
		h.Stop()
		Expect(engine.Run()).To(Succeed())

		Expect(h.Stats().SurfacesCreated).To(Equal(0))
	})

	It("should record what the scheduler reports", func() {
		build()
		drawTime := timing.DefaultEpoch.Add(16 * time.Millisecond)

		h.DidAnticipatedDrawTimeChange(drawTime)
		h.DidBeginImplFrameDeadline()
		h.ScheduledActionManageTiles()
		h.ScheduledActionActivateSyncTree()
		h.ScheduledActionUpdateVisibleTiles()

		Expect(h.AnticipatedDrawTime()).To(Equal(drawTime))
		Expect(h.Stats()).To(Equal(Stats{
			Deadlines:            1,
			Activations:          1,
			UpdateVisibleTiles:   1,
			ManageTiles:          1,
			AnticipatedDrawTimes: 1,
		}))
		Expect(h.DrawDurationEstimate()).To(Equal(config.DrawDuration))
		Expect(h.CommitToActivateDurationEstimate()).
			To(Equal(config.RasterLatency))
	})
})

var _ = Describe("Host driving a scheduler", func() {
	var (
		engine *timing.SerialEngine
		config Config
		h      *Host
		s      *scheduler.Scheduler
	)

	build := func(spec scheduler.Spec) {
		var err error

		h, err = MakeBuilder().
			WithEngine(engine).
			WithConfig(config).
			Build("Host")
		Expect(err).NotTo(HaveOccurred())

		s, err = scheduler.MakeBuilder().
			WithEngine(engine).
			WithClient(h).
			WithSpec(spec).
			Build("Scheduler")
		Expect(err).NotTo(HaveOccurred())

		h.Attach(s)
	}

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		config = DefaultConfig()
		config.CommitRequestInterval = 16 * time.Millisecond
	})

	It("should produce frames", func() {
		build(scheduler.Defaults())

		h.Start()
		Expect(engine.RunFor(200 * time.Millisecond)).To(Succeed())
		h.Stop()

		stats := h.Stats()
		Expect(stats.SurfacesCreated).To(Equal(1))
		Expect(stats.BeginImplFrames).To(BeNumerically(">", 0))
		Expect(stats.MainFrames).To(BeNumerically(">", 1))
		Expect(stats.Commits).To(BeNumerically(">", 1))
		Expect(stats.Draws).To(BeNumerically(">", 1))
		Expect(stats.SwapAcks).To(BeNumerically("<=", stats.Swaps))
		Expect(h.LastFrame().IsValid()).To(BeTrue())
		Expect(s.OutputSurfaceState()).To(Equal(scheduler.OutputSurfaceActive))
	})

	It("should activate with impl-side painting", func() {
		config.ImplSidePainting = true
		spec := scheduler.Defaults()
		spec.ImplSidePainting = true
		build(spec)

		h.Start()
		Expect(engine.RunFor(200 * time.Millisecond)).To(Succeed())
		h.Stop()

		stats := h.Stats()
		Expect(stats.Commits).To(BeNumerically(">", 1))
		Expect(stats.Activations).To(BeNumerically(">", 0))
		Expect(stats.Draws).To(BeNumerically(">", 0))
	})

	It("should recover from a lost output surface", func() {
		build(scheduler.Defaults())

		h.Start()
		Expect(engine.RunFor(50 * time.Millisecond)).To(Succeed())

		h.LoseOutputSurface()
		Expect(engine.RunFor(100 * time.Millisecond)).To(Succeed())
		h.Stop()

		Expect(h.Stats().SurfacesCreated).To(Equal(2))
		Expect(s.OutputSurfaceState()).To(Equal(scheduler.OutputSurfaceActive))
	})
})
