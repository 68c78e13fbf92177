package scheduler

import (
	"log"
	"time"

	"github.com/sarchlab/framesched/frame"
	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/timing"
)

// ActionLogger is a hook that prints every action a scheduler performs,
// together with the state it was decided in.
type ActionLogger struct {
	*log.Logger
	timeTeller timing.TimeTeller
}

// NewActionLogger creates an ActionLogger writing into logger.
func NewActionLogger(
	logger *log.Logger,
	timeTeller timing.TimeTeller,
) *ActionLogger {
	return &ActionLogger{
		Logger:     logger,
		timeTeller: timeTeller,
	}
}

// Func logs actions, BeginImplFrames and deadlines.
func (l *ActionLogger) Func(ctx hooking.HookCtx) {
	now := l.timeTeller.Now().Format(time.StampMicro)

	name := "-"
	if s, ok := ctx.Domain.(*Scheduler); ok {
		name = s.Name()
	}

	switch ctx.Pos {
	case HookPosAction:
		detail := ""
		if s, ok := ctx.Domain.(*Scheduler); ok {
			detail = s.state.DebugString()
		}

		l.Printf("%s, %s, %s [%s]", now, name, ctx.Item.(Action), detail)
	case HookPosBeginImplFrame:
		l.Printf("%s, %s, BeginImplFrame %s", now, name, ctx.Item.(frame.Args))
	case HookPosDeadline:
		l.Printf("%s, %s, Deadline", now, name)
	case HookPosRetroFrameDropped:
		l.Printf("%s, %s, dropped %s", now, name, ctx.Item.(frame.Args))
	}
}

// DroppedFrameCounter is a hook that counts the BeginFrames a scheduler
// threw away because they expired in its retro queue.
type DroppedFrameCounter struct {
	dropped  int
	lastTime time.Time
}

// NewDroppedFrameCounter creates a DroppedFrameCounter.
func NewDroppedFrameCounter() *DroppedFrameCounter {
	return &DroppedFrameCounter{}
}

// Func counts HookPosRetroFrameDropped.
func (c *DroppedFrameCounter) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosRetroFrameDropped {
		return
	}

	c.dropped++
	c.lastTime = ctx.Item.(frame.Args).FrameTime
}

// Dropped returns the number of dropped frames.
func (c *DroppedFrameCounter) Dropped() int {
	return c.dropped
}

// LastDroppedFrameTime returns the frame time of the last dropped frame.
func (c *DroppedFrameCounter) LastDroppedFrameTime() time.Time {
	return c.lastTime
}
