package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sarchlab/framesched/datarecording"
	"github.com/sarchlab/framesched/tracing"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	kind  string
	tasks int
}

func newReportCmd() *cobra.Command {
	o := reportOptions{}

	reportCmd := &cobra.Command{
		Use:   "report <recording>",
		Short: "Summarize a run recorded with run --record",
		Long: `Summarize a run recorded with run --record. The recording is ` +
			`named as in --output, without the .sqlite3 suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd.Context(), args[0], o, cmd.OutOrStdout())
		},
	}

	f := reportCmd.Flags()
	f.StringVar(&o.kind, "kind", "frame",
		"kind of task to count the steps of, frame or main_frame")
	f.IntVar(&o.tasks, "tasks", 0, "also list the first N tasks of the kind")

	return reportCmd
}

func report(
	ctx context.Context,
	path string,
	o reportOptions,
	w io.Writer,
) error {
	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	info, err := reader.ExecInfo(ctx)
	if err != nil {
		return err
	}

	for _, p := range info {
		fmt.Fprintf(w, "%-22s %s\n", p.Property+":", p.Value)
	}

	traces := tracing.NewTraceReader(reader)

	stats, err := traces.KindStats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Tasks:")

	for _, k := range stats {
		fmt.Fprintf(w, "  %-12s %6d  avg %-10v max %-10v total %v\n",
			k.Kind, k.Count, k.AvgTime(), k.MaxTime(), k.TotalTime())
	}

	steps, err := traces.StepCounts(ctx, o.kind)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Steps in %s:\n", o.kind)

	for _, c := range steps {
		fmt.Fprintf(w, "  %-36s %d in %d tasks\n", c.What, c.Count, c.Tasks)
	}

	if o.tasks <= 0 {
		return nil
	}

	return printTasks(ctx, traces, o, w)
}

func printTasks(
	ctx context.Context,
	traces *tracing.TraceReader,
	o reportOptions,
	w io.Writer,
) error {
	tasks, err := traces.Tasks(ctx, o.kind, o.tasks)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		steps, err := traces.Steps(ctx, t.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s %s %s (%.3fms)\n",
			t.Location, t.What, t.ID, t.EndTime-t.StartTime)

		for _, s := range steps {
			fmt.Fprintf(w, "  +%.3fms %s\n", s.Time-t.StartTime, s.What)
		}
	}

	return nil
}
