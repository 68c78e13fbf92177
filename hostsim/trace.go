package hostsim

import "github.com/sarchlab/framesched/tracing"

// Each main frame is a "main_frame" task from BeginMainFrame to its commit
// or abort.
func tracingStartMainFrame(h *Host, taskID string) {
	tracing.StartTask(taskID, "", h, "main_frame", "BeginMainFrame", nil)
}

func (h *Host) stepMainFrameTask(what string) {
	if h.mainFrameTaskID == "" {
		return
	}

	tracing.AddTaskStep(h.mainFrameTaskID, h, what)
}

func (h *Host) endMainFrameTask(what string) {
	if h.mainFrameTaskID == "" {
		return
	}

	tracing.AddTaskStep(h.mainFrameTaskID, h, what)
	tracing.EndTask(h.mainFrameTaskID, h)
	h.mainFrameTaskID = ""
}
