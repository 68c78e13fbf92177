package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecInfo is one property of a program run.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how and when the program ran, next to the data it
// produced.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []ExecInfo
}

// NewExecRecorder creates an ExecRecorder writing into the exec_info table
// of recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
	}

	e.recorder.CreateTable(e.tableName, ExecInfo{})

	return e
}

// Start records the start time, the command line and the working
// directory.
func (e *ExecRecorder) Start() {
	e.AddProperty("Start Time", now())
	e.AddProperty("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	e.AddProperty("Working Directory", cwd)
}

// AddProperty records an extra property, such as a setting of the run.
func (e *ExecRecorder) AddProperty(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes all the properties along with the end time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(e.tableName, entry)
	}

	e.recorder.InsertData(e.tableName, ExecInfo{"End Time", now()})
	e.entries = nil

	e.recorder.Flush()
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}

var _ DataRecorder = (*sqliteWriter)(nil)
