package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/sarchlab/framesched/frame"
	"github.com/sarchlab/framesched/hostsim"
	"github.com/sarchlab/framesched/monitoring"
	"github.com/sarchlab/framesched/scheduler"
	"github.com/sarchlab/framesched/simulation"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/sarchlab/framesched/tracing"
	"github.com/spf13/cobra"
)

// ErrInvalidOptions is wrapped by every option validation error.
var ErrInvalidOptions = errors.New("invalid options")

type runOptions struct {
	frames           int
	implSidePainting bool
	synchronous      bool
	unthrottled      bool
	minFrameInterval time.Duration
	host             hostsim.Config
	loseSurfaceAt    time.Duration
	realtime         bool

	record    bool
	output    string
	jsonTrace bool
	monitor   bool
	port      int
	browser   bool
	verbose   bool
	logEvents bool
}

func newRunCmd() *cobra.Command {
	o := runOptions{host: hostsim.DefaultConfig()}
	o.host.CommitRequestInterval = frame.DefaultInterval

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler for a number of frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := simulate(o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			summary.Print(cmd.OutOrStdout())

			return nil
		},
	}

	o.bindFlags(runCmd)

	return runCmd
}

func (o *runOptions) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	d := o.host

	f.IntVar(&o.frames, "frames", 60, "number of vsync intervals to run")
	f.BoolVar(&o.implSidePainting, "impl-side-painting", false,
		"commit into a pending tree that is activated after raster")
	f.BoolVar(&o.synchronous, "synchronous", false,
		"run as a synchronous renderer compositor")
	f.BoolVar(&o.unthrottled, "unthrottled", false,
		"produce frames back to back instead of on vsync")
	f.DurationVar(&o.minFrameInterval, "min-frame-interval", 0,
		"drop BeginFrames that come sooner than this after the last one")
	f.DurationVar(&o.loseSurfaceAt, "lose-surface-at", 0,
		"lose the output surface after this much time, 0 to never")
	f.BoolVar(&o.realtime, "realtime", false,
		"run on wall-clock time instead of virtual time")

	f.DurationVar(&o.host.MainThreadLatency, "main-latency",
		d.MainThreadLatency, "delay before the main thread starts a main frame")
	f.DurationVar(&o.host.CommitLatency, "commit-latency",
		d.CommitLatency, "main thread work before a main frame is ready to commit")
	f.DurationVar(&o.host.CommitRequestInterval, "commit-interval",
		d.CommitRequestInterval, "how often the page asks for a commit, 0 to never")
	f.IntVar(&o.host.AbortMainFrameEvery, "abort-every",
		d.AbortMainFrameEvery, "abort every Nth main frame, 0 to never")
	f.DurationVar(&o.host.RasterLatency, "raster-latency",
		d.RasterLatency, "delay between a commit and the tree being ready to activate")
	f.DurationVar(&o.host.DrawDuration, "draw-duration",
		d.DrawDuration, "estimated draw duration reported to the scheduler")
	f.DurationVar(&o.host.SwapAckLatency, "swap-latency",
		d.SwapAckLatency, "delay between a swap and its ack")
	f.DurationVar(&o.host.SurfaceCreationLatency, "surface-latency",
		d.SurfaceCreationLatency, "time to create an output surface")
	f.IntVar(&o.host.CheckerboardEvery, "checkerboard-every",
		d.CheckerboardEvery, "checkerboard every Nth draw, 0 to never")
	f.BoolVar(&o.host.ContinuousAnimation, "animate",
		d.ContinuousAnimation, "animate on every frame")

	f.BoolVar(&o.record, "record", false, "record the trace into SQLite")
	f.StringVar(&o.output, "output", "",
		"database name for --record, without the .sqlite3 suffix")
	f.BoolVar(&o.jsonTrace, "json-trace", false, "write the trace as JSON")
	f.BoolVar(&o.monitor, "monitor", false, "serve the monitor while running")
	f.IntVar(&o.port, "port", 0, "port of the monitor, 0 for a random one")
	f.BoolVar(&o.browser, "browser", false, "open the monitor in a browser")
	f.BoolVarP(&o.verbose, "verbose", "v", false,
		"log every action and dump unfinished tasks")
	f.BoolVar(&o.logEvents, "log-events", false, "log every engine event")
}

func (o runOptions) validate() error {
	if o.frames < 1 {
		return fmt.Errorf("%w: frames must be positive", ErrInvalidOptions)
	}

	if o.loseSurfaceAt < 0 {
		return fmt.Errorf("%w: lose-surface-at must not be negative",
			ErrInvalidOptions)
	}

	if !o.record && o.output != "" {
		return fmt.Errorf("%w: output requires record", ErrInvalidOptions)
	}

	if !o.monitor && (o.port != 0 || o.browser) {
		return fmt.Errorf("%w: port and browser require monitor",
			ErrInvalidOptions)
	}

	if o.minFrameInterval < 0 {
		return fmt.Errorf("%w: min-frame-interval must not be negative",
			ErrInvalidOptions)
	}

	return o.hostConfig().Validate()
}

// hostConfig is the host side of the run. Impl-side painting is set on both
// the scheduler and the host, or trees are never activated.
func (o runOptions) hostConfig() hostsim.Config {
	c := o.host
	c.ImplSidePainting = o.implSidePainting

	return c
}

func (o runOptions) spec() scheduler.Spec {
	spec := scheduler.Defaults()
	spec.ImplSidePainting = o.implSidePainting
	spec.MinimumFrameInterval = o.minFrameInterval
	spec.UsingSynchronousRendererCompositor = o.synchronous
	spec.ThrottleFrameProduction = !o.unthrottled

	return spec
}

func (o runOptions) buildSimulation() (*simulation.Simulation, error) {
	b := simulation.MakeBuilder()

	if o.realtime {
		b = b.WithRealTimeEngine()
	}

	if o.monitor {
		if o.port > 0 {
			b = b.WithMonitorPort(o.port)
		}

		if o.browser {
			b = b.WithBrowser()
		}
	} else {
		b = b.WithoutMonitoring()
	}

	if !o.record {
		b = b.WithoutRecording()
	} else if o.output != "" {
		b = b.WithOutputFileName(o.output)
	}

	return b.Build()
}

func (o runOptions) recordSettings(sim *simulation.Simulation) {
	sim.AddExecProperty("Frames", strconv.Itoa(o.frames))
	sim.AddExecProperty("Impl-Side Painting",
		strconv.FormatBool(o.implSidePainting))
	sim.AddExecProperty("Synchronous", strconv.FormatBool(o.synchronous))
	sim.AddExecProperty("Realtime", strconv.FormatBool(o.realtime))
	sim.AddExecProperty("Main Thread Latency", o.host.MainThreadLatency.String())
	sim.AddExecProperty("Raster Latency", o.host.RasterLatency.String())
	sim.AddExecProperty("Swap Ack Latency", o.host.SwapAckLatency.String())
}

// instruments are the hooks a run reports from.
type instruments struct {
	dropped       *scheduler.DroppedFrameCounter
	frameTime     *tracing.AverageTimeTracer
	frameTotal    *tracing.TotalTimeTracer
	mainFrameTime *tracing.AverageTimeTracer
	mainThread    *tracing.BusyTimeTracer
	actions       *tracing.StepCountTracer
	backTrace     *tracing.BackTraceTracer
}

func (o runOptions) instrument(
	engine timing.Engine,
	s *scheduler.Scheduler,
	h *hostsim.Host,
	logOut io.Writer,
) (*instruments, error) {
	frameKind := tracing.KindIs("frame")
	mainFrameKind := tracing.KindIs("main_frame")

	in := &instruments{
		dropped:       scheduler.NewDroppedFrameCounter(),
		frameTime:     tracing.NewAverageTimeTracer(engine, frameKind),
		frameTotal:    tracing.NewTotalTimeTracer(engine, frameKind),
		mainFrameTime: tracing.NewAverageTimeTracer(engine, mainFrameKind),
		mainThread:    tracing.NewBusyTimeTracer(engine, mainFrameKind),
		actions:       tracing.NewStepCountTracer(frameKind),
	}

	s.AcceptHook(in.dropped)
	tracing.CollectTrace(s, in.frameTime)
	tracing.CollectTrace(s, in.frameTotal)
	tracing.CollectTrace(s, in.actions)
	tracing.CollectTrace(h, in.mainFrameTime)
	tracing.CollectTrace(h, in.mainThread)

	if o.jsonTrace {
		jsonTracer, err := tracing.NewJSONFileTracer(engine)
		if err != nil {
			return nil, err
		}

		tracing.CollectTrace(s, jsonTracer)
		tracing.CollectTrace(h, jsonTracer)
	}

	if o.verbose {
		s.AcceptHook(scheduler.NewActionLogger(log.New(logOut, "", 0), engine))

		in.backTrace = tracing.NewBackTraceTracer(
			tracing.NewWriterTaskPrinter(logOut))
		tracing.CollectTrace(s, in.backTrace)
		tracing.CollectTrace(h, in.backTrace)
	}

	if o.logEvents {
		engine.AcceptHook(timing.NewEventLogger(log.New(logOut, "", 0)))
	}

	return in, nil
}

// actionCounts lists the actions performed inside frames in the order they
// were first seen.
func (in *instruments) actionCounts() []ActionCount {
	names := in.actions.GetStepNames()
	counts := make([]ActionCount, 0, len(names))

	for _, name := range names {
		counts = append(counts, ActionCount{
			Action: name,
			Count:  in.actions.GetStepCount(name),
			Frames: in.actions.GetTaskCount(name),
		})
	}

	return counts
}

// simulate runs the scheduler for o.frames vsync intervals, of virtual time
// or of wall-clock time with o.realtime.
func simulate(o runOptions, logOut io.Writer) (Summary, error) {
	if err := o.validate(); err != nil {
		return Summary{}, err
	}

	sim, err := o.buildSimulation()
	if err != nil {
		return Summary{}, err
	}

	engine := sim.GetEngine()
	start := engine.Now()

	h, err := hostsim.MakeBuilder().
		WithEngine(engine).
		WithConfig(o.hostConfig()).
		Build("Host")
	if err != nil {
		return Summary{}, err
	}

	s, err := scheduler.MakeBuilder().
		WithEngine(engine).
		WithClient(h).
		WithSpec(o.spec()).
		Build("Scheduler")
	if err != nil {
		return Summary{}, err
	}

	h.Attach(s)
	sim.RegisterScheduler(s)
	sim.RegisterHost(h)
	o.recordSettings(sim)

	in, err := o.instrument(engine, s, h, logOut)
	if err != nil {
		return Summary{}, err
	}

	if err := o.run(sim, h); err != nil {
		return Summary{}, err
	}

	in.mainThread.TerminateAllTasks(engine.Now())
	if in.backTrace != nil {
		in.backTrace.DumpInflightTasks()
	}

	summary := Summary{
		Frames:           o.frames,
		ImplSidePainting: o.implSidePainting,
		Synchronous:      o.synchronous,
		Realtime:         o.realtime,
		VirtualTime:      engine.Now().Sub(start),
		Host:             h.Stats(),
		DroppedFrames:    in.dropped.Dropped(),
		AvgFrameTime:     in.frameTime.AverageTime(),
		MaxFrameTime:     in.frameTime.MaxTime(),
		TimeInFrames:     in.frameTotal.TotalTime(),
		AvgMainFrameTime: in.mainFrameTime.AverageTime(),
		MainThreadBusy:   in.mainThread.BusyTime(),
		Actions:          in.actionCounts(),
	}

	if err := sim.Terminate(); err != nil {
		return summary, err
	}

	return summary, nil
}

func (o runOptions) run(sim *simulation.Simulation, h *hostsim.Host) error {
	engine := sim.GetEngine()
	start := engine.Now()

	var bar *monitoring.ProgressBar
	if m := sim.GetMonitor(); m != nil {
		bar = m.CreateProgressBar("Frames", uint64(o.frames))
		defer m.CompleteProgressBar(bar)
	}

	h.Start()
	defer h.Stop()

	if o.loseSurfaceAt > 0 {
		timing.PostDelayed(engine, o.loseSurfaceAt, h.LoseOutputSurface)
	}

	switch e := engine.(type) {
	case *timing.SerialEngine:
		return o.runVirtual(e, start, bar)
	case *timing.RealTimeEngine:
		return o.runRealTime(e, start, bar)
	default:
		return fmt.Errorf("cannot run on engine %T", e)
	}
}

func (o runOptions) runVirtual(
	engine *timing.SerialEngine,
	start time.Time,
	bar *monitoring.ProgressBar,
) error {
	for i := 1; i <= o.frames; i++ {
		end := start.Add(time.Duration(i) * frame.DefaultInterval)
		if err := engine.RunUntil(end); err != nil {
			return err
		}

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	return nil
}

// runRealTime handles events until o.frames intervals of wall-clock time
// have passed since start.
func (o runOptions) runRealTime(
	engine *timing.RealTimeEngine,
	start time.Time,
	bar *monitoring.ProgressBar,
) error {
	if bar != nil {
		for i := 1; i <= o.frames; i++ {
			delay := start.Add(time.Duration(i) * frame.DefaultInterval).
				Sub(engine.Now())
			timing.PostDelayed(engine, delay, func() {
				bar.IncrementFinished(1)
			})
		}
	}

	end := start.Add(time.Duration(o.frames) * frame.DefaultInterval)

	ctx, cancel := context.WithDeadline(context.Background(), end)
	defer cancel()

	err := engine.RunContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}

	return err
}
