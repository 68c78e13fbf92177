package scheduler

import (
	"time"

	"github.com/sarchlab/framesched/sim/timing"
)

type taskKind int

const (
	taskDeadline taskKind = iota
	taskPollForDrawTriggers
	taskAdvanceCommitState
	taskBeginRetroFrame
	numTaskKinds
)

func (k taskKind) String() string {
	switch k {
	case taskDeadline:
		return "BeginImplFrameDeadline"
	case taskPollForDrawTriggers:
		return "PollForAnticipatedDrawTriggers"
	case taskAdvanceCommitState:
		return "PollToAdvanceCommitState"
	case taskBeginRetroFrame:
		return "BeginRetroFrame"
	default:
		return "UnknownTask"
	}
}

// taskEvent is a deferred scheduler task on the engine. It only runs if its
// token is still the current one for its kind.
type taskEvent struct {
	*timing.EventBase
	kind  taskKind
	token uint64
}

// taskSet owns at most one pending task per kind. Posting a kind again
// supersedes the pending one; cancelling makes it a no-op when it fires.
type taskSet struct {
	engine  timing.EventScheduler
	handler timing.Handler

	nextToken uint64
	tokens    [numTaskKinds]uint64
	pending   [numTaskKinds]bool
	due       [numTaskKinds]time.Time
}

func newTaskSet(engine timing.EventScheduler, handler timing.Handler) *taskSet {
	return &taskSet{
		engine:  engine,
		handler: handler,
	}
}

func (s *taskSet) post(kind taskKind, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	s.nextToken++
	s.tokens[kind] = s.nextToken
	s.pending[kind] = true
	s.due[kind] = s.engine.Now().Add(delay)

	s.engine.Schedule(taskEvent{
		EventBase: timing.NewEventBase(s.due[kind], s.handler),
		kind:      kind,
		token:     s.nextToken,
	})
}

func (s *taskSet) cancel(kind taskKind) {
	s.pending[kind] = false
}

func (s *taskSet) isPending(kind taskKind) bool {
	return s.pending[kind]
}

func (s *taskSet) dueTime(kind taskKind) (time.Time, bool) {
	return s.due[kind], s.pending[kind]
}

// fired tells if evt is the live task of its kind. A live task stops being
// pending as it fires.
func (s *taskSet) fired(evt taskEvent) bool {
	if !s.pending[evt.kind] || s.tokens[evt.kind] != evt.token {
		return false
	}

	s.pending[evt.kind] = false

	return true
}
