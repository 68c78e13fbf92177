package hostsim

import (
	"github.com/sarchlab/framesched/frame"
	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/timing"
)

// Builder can build Hosts.
type Builder struct {
	engine timing.EventScheduler
	config Config
}

// MakeBuilder creates a Builder with the DefaultConfig.
func MakeBuilder() Builder {
	return Builder{
		config: DefaultConfig(),
	}
}

// WithEngine sets the engine the host posts its replies on.
func (b Builder) WithEngine(e timing.EventScheduler) Builder {
	b.engine = e
	return b
}

// WithConfig sets the latencies of the host.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// Build creates a Host. Attach a scheduler before starting it.
func (b Builder) Build(name string) (*Host, error) {
	if b.engine == nil {
		return nil, ErrNoEngine
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	h := &Host{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		engine:       b.engine,
		config:       b.config,
		lastFrame:    frame.InvalidArgs(),
	}

	return h, nil
}
