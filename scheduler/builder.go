package scheduler

import (
	"fmt"

	"github.com/sarchlab/framesched/frame"
	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/timing"
)

// Builder can build Schedulers.
type Builder struct {
	engine        timing.EventScheduler
	client        Client
	spec          Spec
	primarySource frame.Source
	powerMonitor  PowerMonitor
}

// MakeBuilder creates a Builder with the default Spec.
func MakeBuilder() Builder {
	return Builder{
		spec: Defaults(),
	}
}

// WithEngine sets the engine that runs the scheduler's tasks.
func (b Builder) WithEngine(e timing.EventScheduler) Builder {
	b.engine = e
	return b
}

// WithClient sets the client that performs the actions.
func (b Builder) WithClient(c Client) Builder {
	b.client = c
	return b
}

// WithSpec sets the configuration of the scheduler.
func (b Builder) WithSpec(s Spec) Builder {
	b.spec = s
	return b
}

// WithPrimarySource overrides the primary BeginFrame source that would be
// picked from the Spec.
func (b Builder) WithPrimarySource(s frame.Source) Builder {
	b.primarySource = s
	return b
}

// WithPowerMonitor sets the power monitor used when
// DisableHiResTimerTasksOnBattery is set. Without one, the machine is
// assumed to be on AC power.
func (b Builder) WithPowerMonitor(m PowerMonitor) Builder {
	b.powerMonitor = m
	return b
}

// Build creates a Scheduler. The scheduler starts invisible with a lost
// output surface and does not ask for BeginFrames.
func (b Builder) Build(name string) (*Scheduler, error) {
	if b.engine == nil {
		return nil, ErrNoEngine
	}

	if b.client == nil {
		return nil, ErrNoClient
	}

	if err := b.spec.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		HookableBase:       hooking.NewHookableBase(),
		name:               name,
		spec:               b.spec,
		engine:             b.engine,
		client:             b.client,
		powerMonitor:       b.powerMonitor,
		state:              NewStateMachine(b.spec),
		beginImplFrameArgs: frame.InvalidArgs(),
		insideAction:       ActionNone,
	}
	s.ObserverBase = frame.NewObserverBase(s.onBeginFrame)
	s.tasks = newTaskSet(b.engine, s)

	if err := b.setupFrameSources(s); err != nil {
		return nil, err
	}

	if s.spec.DisableHiResTimerTasksOnBattery && s.powerMonitor == nil {
		s.powerMonitor = NewManualPowerMonitor(false)
	}

	s.setupPowerMonitoring()

	return s, nil
}

func (b Builder) setupFrameSources(s *Scheduler) error {
	primary, err := b.primaryFrameSource()
	if err != nil {
		return fmt.Errorf("scheduler %s: %w", s.name, err)
	}

	if vsync, ok := primary.(VSyncParameterObserver); ok {
		s.vsyncObserver = vsync
	}

	s.primarySource = primary
	s.backgroundSource = frame.NewSyntheticSource(
		b.engine, b.engine.Now(), b.spec.BackgroundFrameInterval)

	s.frameSource = frame.NewMultiplexer()
	s.frameSource.SetMinimumInterval(b.spec.MinimumFrameInterval)
	s.frameSource.AddObserver(s)
	s.frameSource.AddSource(s.primarySource)
	s.frameSource.AddSource(s.backgroundSource)

	return nil
}

func (b Builder) primaryFrameSource() (frame.Source, error) {
	if b.primarySource != nil {
		return b.primarySource, nil
	}

	switch {
	case !b.spec.ThrottleFrameProduction:
		return frame.NewBackToBackSource(b.engine), nil
	case b.spec.BeginFrameSchedulingEnabled:
		provider, ok := b.client.(ExternalSourceProvider)
		if !ok || provider.ExternalBeginFrameSource() == nil {
			return nil, ErrNoExternalSource
		}

		return provider.ExternalBeginFrameSource(), nil
	default:
		return frame.NewSyntheticSource(
			b.engine, b.engine.Now(), frame.DefaultInterval), nil
	}
}
