package tracing

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// TaskPrinter can print tasks with a format.
type TaskPrinter interface {
	Print(task Task)
}

type defaultTaskPrinter struct {
	w io.Writer
}

func (p *defaultTaskPrinter) Print(task Task) {
	steps := make([]string, 0, len(task.Steps))
	for _, s := range task.Steps {
		steps = append(steps, s.What)
	}

	fmt.Fprintf(p.w, "%s-%s@%s [%s]\n",
		task.Kind, task.What, task.Location, strings.Join(steps, " "))
}

// NewWriterTaskPrinter creates a TaskPrinter writing one line per task.
func NewWriterTaskPrinter(w io.Writer) TaskPrinter {
	return &defaultTaskPrinter{w: w}
}

// BackTraceTracer keeps the tasks that have not ended, with their steps, so
// that they can be dumped when something goes wrong.
type BackTraceTracer struct {
	printer      TaskPrinter
	tracingTasks map[string]Task
	lock         sync.Mutex
}

// NewBackTraceTracer creates a new BackTraceTracer. A nil printer prints to
// stderr.
func NewBackTraceTracer(printer TaskPrinter) *BackTraceTracer {
	t := &BackTraceTracer{
		printer:      printer,
		tracingTasks: make(map[string]Task),
	}

	if t.printer == nil {
		t.printer = NewWriterTaskPrinter(os.Stderr)
	}

	return t
}

// StartTask remembers the task.
func (t *BackTraceTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.tracingTasks[task.ID] = task
}

// StepTask appends the step to the remembered task.
func (t *BackTraceTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	original.Steps = append(original.Steps, task.Steps...)
	t.tracingTasks[task.ID] = original
}

// EndTask forgets the task.
func (t *BackTraceTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.tracingTasks, task.ID)
}

// InflightTasks returns the tasks that have not ended, ordered by ID.
func (t *BackTraceTracer) InflightTasks() []Task {
	t.lock.Lock()
	defer t.lock.Unlock()

	tasks := make([]Task, 0, len(t.tracingTasks))
	for _, task := range t.tracingTasks {
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})

	return tasks
}

// DumpBackTrace prints the task and all its known ancestors.
func (t *BackTraceTracer) DumpBackTrace(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.dump(task)
}

func (t *BackTraceTracer) dump(task Task) {
	if known, ok := t.tracingTasks[task.ID]; ok {
		task = known
	}

	t.printer.Print(task)

	if task.ParentID == "" {
		return
	}

	parentTask, ok := t.tracingTasks[task.ParentID]
	if !ok {
		return
	}

	t.dump(parentTask)
}

// DumpInflightTasks prints every task that has not ended.
func (t *BackTraceTracer) DumpInflightTasks() {
	for _, task := range t.InflightTasks() {
		t.printer.Print(task)
	}
}
