package hostsim

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidConfig is wrapped by every Config validation error.
	ErrInvalidConfig = errors.New("invalid host config")

	// ErrNoEngine means the builder was not given an engine.
	ErrNoEngine = errors.New("host needs an engine")
)

// Config sets how long the simulated threads of a renderer take.
type Config struct {
	// Main thread
	MainThreadLatency     time.Duration // BeginMainFrame sent to started
	CommitLatency         time.Duration // Started to ready to commit
	CommitRequestInterval time.Duration // Zero means commits are requested by hand
	AbortMainFrameEvery   int           // Every Nth main frame has nothing to commit

	// Impl thread
	ImplSidePainting       bool
	RasterLatency          time.Duration // Commit to ready to activate
	DrawDuration           time.Duration
	SwapAckLatency         time.Duration
	SurfaceCreationLatency time.Duration
	CheckerboardEvery      int // Every Nth draw checkerboards
	ContinuousAnimation    bool
}

// DefaultConfig returns a host that keeps up with a 60 Hz display.
func DefaultConfig() Config {
	return Config{
		MainThreadLatency:      2 * time.Millisecond,
		CommitLatency:          4 * time.Millisecond,
		RasterLatency:          3 * time.Millisecond,
		DrawDuration:           2 * time.Millisecond,
		SwapAckLatency:         8 * time.Millisecond,
		SurfaceCreationLatency: time.Millisecond,
	}
}

// Validate checks for values the host cannot run with.
func (c Config) Validate() error {
	latencies := []struct {
		name  string
		value time.Duration
	}{
		{"main thread latency", c.MainThreadLatency},
		{"commit latency", c.CommitLatency},
		{"commit request interval", c.CommitRequestInterval},
		{"raster latency", c.RasterLatency},
		{"draw duration", c.DrawDuration},
		{"swap ack latency", c.SwapAckLatency},
		{"surface creation latency", c.SurfaceCreationLatency},
	}

	for _, l := range latencies {
		if l.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig,
				l.name)
		}
	}

	if c.AbortMainFrameEvery < 0 || c.CheckerboardEvery < 0 {
		return fmt.Errorf("%w: every-N counts must not be negative",
			ErrInvalidConfig)
	}

	return nil
}
