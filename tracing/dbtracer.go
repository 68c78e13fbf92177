package tracing

import (
	"sync"
	"time"

	"github.com/sarchlab/framesched/datarecording"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/tebeka/atexit"
)

// TaskRecord is a row of the trace table. Times are milliseconds since the
// Unix epoch.
type TaskRecord struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
}

// StepRecord is a row of the trace_steps table.
type StepRecord struct {
	TaskID string
	Time   float64
	What   string
}

// DBTracer stores finished frames and main frames, with their steps, into
// the trace and trace_steps tables of a DataRecorder. A TraceReader reads
// them back.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller timing.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime time.Time

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer. The tables are created right away and
// the in-flight tasks are written when the program exits.
func NewDBTracer(
	timeTeller timing.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable("trace", TaskRecord{})
	dataRecorder.CreateTable("trace_steps", StepRecord{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits tracing to tasks overlapping [startTime, endTime]. A
// zero time means unbounded.
func (t *DBTracer) SetTimeRange(startTime, endTime time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	task.StartTime = t.timeTeller.Now()
	if !t.endTime.IsZero() && task.StartTime.After(t.endTime) {
		return
	}

	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Location == "" {
		panic("task location must be set")
	}
}

// StepTask records a step of a traced task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	now := t.timeTeller.Now()
	for _, step := range task.Steps {
		step.Time = now
		original.Steps = append(original.Steps, step)
	}

	t.tracingTasks[task.ID] = original
}

// EndTask writes the task and its steps.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	original.EndTime = t.timeTeller.Now()
	if !t.startTime.IsZero() && original.EndTime.Before(t.startTime) {
		return
	}

	t.write(original)
}

// Terminate writes the tasks that have not ended, with the current time as
// their end time, and flushes the backend.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.timeTeller.Now()
	for _, task := range t.tracingTasks {
		task.EndTime = now
		t.write(task)
	}

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}

func (t *DBTracer) write(task Task) {
	t.backend.InsertData("trace", TaskRecord{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Location,
		StartTime: toMs(task.StartTime),
		EndTime:   toMs(task.EndTime),
	})

	for _, step := range task.Steps {
		t.backend.InsertData("trace_steps", StepRecord{
			TaskID: task.ID,
			Time:   toMs(step.Time),
			What:   step.What,
		})
	}
}

func toMs(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}

	return float64(t.UnixNano()) / float64(time.Millisecond)
}
