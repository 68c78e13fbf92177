package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/sarchlab/framesched/frame"
)

var (
	// ErrInvalidSpec is wrapped by every Spec validation error.
	ErrInvalidSpec = errors.New("invalid scheduler spec")

	// ErrNoExternalSource means BeginFrameSchedulingEnabled is set but the
	// client does not provide a frame source.
	ErrNoExternalSource = errors.New("client provides no external frame source")

	// ErrNoEngine means the builder was not given an engine.
	ErrNoEngine = errors.New("scheduler needs an engine")

	// ErrNoClient means the builder was not given a client.
	ErrNoClient = errors.New("scheduler needs a client")
)

// Spec holds immutable configuration values for the scheduler.
type Spec struct {
	// Frame source selection
	BeginFrameSchedulingEnabled bool // Client supplies the primary source
	ThrottleFrameProduction     bool // False means back-to-back frames
	BackgroundFrameInterval     time.Duration
	MinimumFrameInterval        time.Duration // Closer frames are dropped

	// Pipeline shape
	ImplSidePainting                   bool
	MainFrameBeforeActivationEnabled   bool
	UsingSynchronousRendererCompositor bool

	// Checkerboard recovery
	TimeoutAndDrawWhenAnimationCheckerboards     bool
	MaximumNumberOfFailedDrawsBeforeDrawIsForced int

	// Power
	DisableHiResTimerTasksOnBattery bool
}

// Defaults returns a Spec with sane defaults.
func Defaults() Spec {
	return Spec{
		BeginFrameSchedulingEnabled:                  false,
		ThrottleFrameProduction:                      true,
		BackgroundFrameInterval:                      frame.BackgroundInterval,
		TimeoutAndDrawWhenAnimationCheckerboards:     true,
		MaximumNumberOfFailedDrawsBeforeDrawIsForced: 3,
	}
}

// Validate checks the spec for values the scheduler cannot run with.
func (s Spec) Validate() error {
	if s.MaximumNumberOfFailedDrawsBeforeDrawIsForced < 1 {
		return fmt.Errorf("%w: failed draws before forced draw must be >= 1",
			ErrInvalidSpec)
	}

	if s.BackgroundFrameInterval <= 0 {
		return fmt.Errorf("%w: background frame interval must be > 0",
			ErrInvalidSpec)
	}

	if s.MinimumFrameInterval < 0 {
		return fmt.Errorf("%w: minimum frame interval must not be negative",
			ErrInvalidSpec)
	}

	if s.MainFrameBeforeActivationEnabled && !s.ImplSidePainting {
		return fmt.Errorf(
			"%w: main frame before activation requires impl-side painting",
			ErrInvalidSpec)
	}

	return nil
}
