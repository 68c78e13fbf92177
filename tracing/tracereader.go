package tracing

import (
	"context"
	"time"

	"github.com/sarchlab/framesched/datarecording"
)

// KindStat summarizes the recorded tasks of one kind.
type KindStat struct {
	Kind    string
	Count   int
	AvgMs   float64
	MaxMs   float64
	TotalMs float64
}

// AvgTime returns the average task duration.
func (s KindStat) AvgTime() time.Duration {
	return msToDuration(s.AvgMs)
}

// MaxTime returns the longest task duration.
func (s KindStat) MaxTime() time.Duration {
	return msToDuration(s.MaxMs)
}

// TotalTime returns the sum of the task durations.
func (s KindStat) TotalTime() time.Duration {
	return msToDuration(s.TotalMs)
}

// StepCount tells how often a step was reached, and in how many tasks.
type StepCount struct {
	What  string
	Count int
	Tasks int
}

// A TraceReader reads back what a DBTracer stored: frames of schedulers and
// main frames of hosts.
type TraceReader struct {
	reader *datarecording.Reader
}

// NewTraceReader creates a TraceReader on a recording.
func NewTraceReader(reader *datarecording.Reader) *TraceReader {
	return &TraceReader{reader: reader}
}

// KindStats returns one KindStat per task kind, sorted by kind.
func (t *TraceReader) KindStats(ctx context.Context) ([]KindStat, error) {
	var stats []KindStat

	err := t.reader.Select(ctx, &stats, `
		SELECT Kind,
			COUNT(*) AS Count,
			AVG(EndTime - StartTime) AS AvgMs,
			MAX(EndTime - StartTime) AS MaxMs,
			SUM(EndTime - StartTime) AS TotalMs
		FROM trace
		GROUP BY Kind
		ORDER BY Kind`)

	return stats, err
}

// StepCounts returns the steps of the tasks of a kind, most frequent first.
// For frames, the steps are the actions the scheduler performed.
func (t *TraceReader) StepCounts(
	ctx context.Context,
	kind string,
) ([]StepCount, error) {
	var counts []StepCount

	err := t.reader.Select(ctx, &counts, `
		SELECT s.What AS What,
			COUNT(*) AS Count,
			COUNT(DISTINCT s.TaskID) AS Tasks
		FROM trace_steps s JOIN trace t ON s.TaskID = t.ID
		WHERE t.Kind = ?
		GROUP BY s.What
		ORDER BY Count DESC, What`,
		kind)

	return counts, err
}

// Tasks returns up to limit tasks of a kind in start order. A limit of 0
// returns all of them.
func (t *TraceReader) Tasks(
	ctx context.Context,
	kind string,
	limit int,
) ([]TaskRecord, error) {
	var tasks []TaskRecord

	query := `SELECT * FROM trace WHERE Kind = ? ORDER BY StartTime, rowid`
	args := []any{kind}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	err := t.reader.Select(ctx, &tasks, query, args...)

	return tasks, err
}

// Steps returns the steps of a task in the order they were reached.
func (t *TraceReader) Steps(
	ctx context.Context,
	taskID string,
) ([]StepRecord, error) {
	var steps []StepRecord

	err := t.reader.Select(ctx, &steps,
		`SELECT * FROM trace_steps WHERE TaskID = ? ORDER BY Time, rowid`,
		taskID)

	return steps, err
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
