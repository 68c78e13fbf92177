package tracing

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/tebeka/atexit"
)

// JSONTracer writes completed tasks as a JSON array.
type JSONTracer struct {
	w             io.Writer
	timeTeller    timing.TimeTeller
	lock          sync.Mutex
	firstTask     bool
	finished      bool
	inflightTasks map[string]Task
}

// NewJSONTracer creates a JSONTracer writing into w. Finish must be called
// to close the array.
func NewJSONTracer(w io.Writer, timeTeller timing.TimeTeller) *JSONTracer {
	t := &JSONTracer{
		w:             w,
		timeTeller:    timeTeller,
		firstTask:     true,
		inflightTasks: make(map[string]Task),
	}

	t.mustWrite([]byte("[\n"))

	return t
}

// NewJSONFileTracer creates a JSONTracer writing into a uniquely named file
// that is closed when the program exits.
func NewJSONFileTracer(timeTeller timing.TimeTeller) (*JSONTracer, error) {
	filename := xid.New().String() + ".json"

	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Recording tasks in %s\n", filename)

	t := NewJSONTracer(f, timeTeller)

	atexit.Register(func() {
		t.Finish()
		f.Close()
	})

	return t, nil
}

// StartTask records the start of a task
func (t *JSONTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.Now()

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask records the moment that a task reaches a milestone
func (t *JSONTracer) StepTask(task Task) {
	now := t.timeTeller.Now()

	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	for _, step := range task.Steps {
		step.Time = now
		original.Steps = append(original.Steps, step)
	}

	t.inflightTasks[task.ID] = original
}

// EndTask writes the task.
func (t *JSONTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok || t.finished {
		return
	}

	originalTask.EndTime = t.timeTeller.Now()
	delete(t.inflightTasks, task.ID)

	if t.firstTask {
		t.firstTask = false
	} else {
		t.mustWrite([]byte(",\n"))
	}

	b, err := json.Marshal(originalTask)
	if err != nil {
		panic(err)
	}

	t.mustWrite(b)
}

// Finish closes the JSON array. Tasks ending afterwards are ignored.
func (t *JSONTracer) Finish() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.finished {
		return
	}

	t.finished = true
	t.mustWrite([]byte("\n]"))
}

func (t *JSONTracer) mustWrite(b []byte) {
	_, err := t.w.Write(b)
	if err != nil {
		panic(err)
	}
}
