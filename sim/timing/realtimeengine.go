package timing

import (
	"context"
	"sync"
	"time"

	"github.com/sarchlab/framesched/sim/hooking"
)

// A RealTimeEngine runs events on wall-clock time. The goroutine that calls
// RunContext is the only one that handles events; any goroutine may call
// Schedule, which is how notifications from other threads reach the
// scheduler.
type RealTimeEngine struct {
	hooking.HookableBase

	clock          func() time.Time
	queue          EventQueue
	secondaryQueue EventQueue
	wakeup         chan struct{}

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewRealTimeEngine creates a RealTimeEngine driven by time.Now.
func NewRealTimeEngine() *RealTimeEngine {
	return &RealTimeEngine{
		clock:          time.Now,
		queue:          NewEventQueue(),
		secondaryQueue: NewEventQueue(),
		wakeup:         make(chan struct{}, 1),
	}
}

// Name returns the name of the engine.
func (e *RealTimeEngine) Name() string {
	return "RealTimeEngine"
}

// Now returns the wall-clock time.
func (e *RealTimeEngine) Now() time.Time {
	return e.clock()
}

// Schedule registers an event. Events that are already late run as soon as
// the loop gets to them.
func (e *RealTimeEngine) Schedule(evt Event) {
	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
	} else {
		e.queue.Push(evt)
	}

	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// Run handles events until the queues are empty.
func (e *RealTimeEngine) Run() error {
	return e.run(context.Background(), false)
}

// RunContext handles events until ctx is done, waiting for new events when
// the queues are empty.
func (e *RealTimeEngine) RunContext(ctx context.Context) error {
	return e.run(ctx, true)
}

func (e *RealTimeEngine) run(ctx context.Context, waitForEvents bool) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		next := e.peekNext()
		if next == nil {
			if !waitForEvents {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.wakeup:
				continue
			}
		}

		delay := next.Time().Sub(e.Now())
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-e.wakeup:
				timer.Stop()
			case <-timer.C:
			}

			continue
		}

		e.runOne()
	}
}

func (e *RealTimeEngine) runOne() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt := e.popNext()
	if evt == nil {
		return
	}

	hookCtx := hooking.HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	if handler := evt.Handler(); handler != nil {
		_ = handler.Handle(evt)
	}

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

func (e *RealTimeEngine) peekNext() Event {
	primary := e.queue.Peek()
	secondary := e.secondaryQueue.Peek()

	switch {
	case primary == nil:
		return secondary
	case secondary == nil:
		return primary
	case !secondary.Time().Before(primary.Time()):
		return primary
	default:
		return secondary
	}
}

func (e *RealTimeEngine) popNext() Event {
	primary := e.queue.Peek()
	secondary := e.secondaryQueue.Peek()

	if secondary == nil ||
		(primary != nil && !secondary.Time().Before(primary.Time())) {
		return e.queue.Pop()
	}

	return e.secondaryQueue.Pop()
}

// Pause prevents the engine from handling more events.
func (e *RealTimeEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the engine to handle events again.
func (e *RealTimeEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}
