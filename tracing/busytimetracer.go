package tracing

import (
	"time"

	"github.com/sarchlab/framesched/sim/timing"
)

type busySpan struct {
	start, end time.Time
	done       bool
}

// BusyTimeTracer measures how long a thread is occupied by a kind of task,
// usually the main thread by main frames. Main frames that overlap, such as
// one still committing while the next begins, count their shared time once.
type BusyTimeTracer struct {
	clock  timing.TimeTeller
	filter TaskFilter

	open  map[string]*busySpan
	spans []*busySpan // Start order, not counted yet
	busy  time.Duration
}

// NewBusyTimeTracer creates a BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(
	clock timing.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		clock:  clock,
		filter: filter,
		open:   make(map[string]*busySpan),
	}
}

// BusyTime returns the time counted so far. Tasks still open, and tasks
// overlapping an open one, are not counted until it ends.
func (t *BusyTimeTracer) BusyTime() time.Duration {
	return t.busy
}

// TerminateAllTasks ends every open task at now, so that a run cut short
// still counts its last main frame.
func (t *BusyTimeTracer) TerminateAllTasks(now time.Time) {
	for _, span := range t.open {
		span.end = now
		span.done = true
	}

	t.open = make(map[string]*busySpan)
	t.settle(now)
}

// StartTask opens a span.
func (t *BusyTimeTracer) StartTask(task Task) {
	now := t.clock.Now()

	if t.filter != nil && !t.filter(task) {
		return
	}

	span := &busySpan{start: now}
	t.spans = append(t.spans, span)
	t.open[task.ID] = span
}

// StepTask does nothing. Steps do not change how long a thread is busy.
func (t *BusyTimeTracer) StepTask(_ Task) {}

// EndTask closes the span of the task.
func (t *BusyTimeTracer) EndTask(task Task) {
	now := t.clock.Now()

	span, ok := t.open[task.ID]
	if !ok {
		return
	}

	span.end = now
	span.done = true
	delete(t.open, task.ID)

	t.settle(now)
}

// settle counts the leading closed spans once no open span started before
// now.
func (t *BusyTimeTracer) settle(now time.Time) {
	for _, span := range t.open {
		if span.start.Before(now) {
			return
		}
	}

	n := 0
	for n < len(t.spans) && t.spans[n].done && !t.spans[n].end.After(now) {
		n++
	}

	t.busy += unionLength(t.spans[:n])
	t.spans = t.spans[n:]
}

// unionLength returns the time covered by spans sorted by start.
func unionLength(spans []*busySpan) time.Duration {
	if len(spans) == 0 {
		return 0
	}

	total := time.Duration(0)
	start, end := spans[0].start, spans[0].end

	for _, s := range spans[1:] {
		if !s.start.After(end) {
			if s.end.After(end) {
				end = s.end
			}

			continue
		}

		total += end.Sub(start)
		start, end = s.start, s.end
	}

	return total + end.Sub(start)
}
