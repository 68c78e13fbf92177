package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/sarchlab/framesched/hostsim"
)

// Summary is what a run reports.
type Summary struct {
	Frames           int
	ImplSidePainting bool
	Synchronous      bool
	Realtime         bool
	VirtualTime      time.Duration
	Host             hostsim.Stats
	DroppedFrames    int
	AvgFrameTime     time.Duration
	MaxFrameTime     time.Duration
	TimeInFrames     time.Duration
	AvgMainFrameTime time.Duration
	MainThreadBusy   time.Duration
	Actions          []ActionCount
}

// ActionCount tells how often the scheduler performed an action, and in how
// many frames.
type ActionCount struct {
	Action string
	Count  uint64
	Frames uint64
}

// Print writes the summary as aligned lines.
func (s Summary) Print(w io.Writer) {
	line := func(name string, value any) {
		fmt.Fprintf(w, "%-22s %v\n", name+":", value)
	}

	line("Frames", s.Frames)
	line("Impl-side painting", s.ImplSidePainting)
	line("Synchronous", s.Synchronous)
	if s.Realtime {
		line("Wall time", s.VirtualTime)
	} else {
		line("Virtual time", s.VirtualTime)
	}

	line("BeginImplFrames", s.Host.BeginImplFrames)
	line("Dropped frames", s.DroppedFrames)
	line("Main frames", s.Host.MainFrames)
	line("Aborted main frames", s.Host.AbortedMainFrames)
	line("Commits", s.Host.Commits)
	line("Activations", s.Host.Activations)
	line("Draws", s.Host.Draws)
	line("Forced draws", s.Host.ForcedDraws)
	line("Checkerboarded draws", s.Host.CheckerboardedDraws)
	line("Swaps", s.Host.Swaps)
	line("Surfaces lost", s.Host.SurfacesLost)
	line("Avg frame time", s.AvgFrameTime)
	line("Max frame time", s.MaxFrameTime)
	line("Time in frames", s.TimeInFrames)
	line("Avg main frame time", s.AvgMainFrameTime)
	line("Main thread busy", s.MainThreadBusy)

	if len(s.Actions) == 0 {
		return
	}

	fmt.Fprintln(w, "Actions in frames:")

	for _, a := range s.Actions {
		fmt.Fprintf(w, "  %-36s %d in %d frames\n", a.Action, a.Count, a.Frames)
	}
}
