package scheduler

import "github.com/sarchlab/framesched/frame"

// State is a read-only view of a scheduler for diagnostics and monitoring.
type State struct {
	Name      string         `json:"name"`
	Machine   MachineState   `json:"state_machine"`
	Scheduler SchedulerState `json:"scheduler_state"`
	Client    ClientState    `json:"client_state"`
}

// SchedulerState holds what the scheduler adds on top of the state machine.
type SchedulerState struct {
	TimeUntilAnticipatedDrawTimeMs float64         `json:"time_until_anticipated_draw_time_ms"`
	EstimatedParentDrawTimeMs      float64         `json:"estimated_parent_draw_time_ms"`
	NeedsBeginFrames               bool            `json:"last_set_needs_begin_frame"`
	BeginRetroFramePosted          bool            `json:"begin_retro_frame_posted"`
	RetroFrames                    int             `json:"begin_retro_frame_args"`
	DroppedRetroFrames             int             `json:"dropped_retro_frames"`
	DeadlineTaskPending            bool            `json:"begin_impl_frame_deadline_task"`
	PollForDrawTriggersPending     bool            `json:"poll_for_draw_triggers_task"`
	AdvanceCommitStatePending      bool            `json:"advance_commit_state_task"`
	BeginImplFrameArgs             frame.ArgsState `json:"begin_impl_frame_args"`
}

// ClientState holds the duration estimates reported by the client.
type ClientState struct {
	DrawDurationEstimateMs                   float64 `json:"draw_duration_estimate_ms"`
	BeginMainFrameToCommitDurationEstimateMs float64 `json:"begin_main_frame_to_commit_duration_estimate_ms"`
	CommitToActivateDurationEstimateMs       float64 `json:"commit_to_activate_duration_estimate_ms"`
}

// Snapshot returns the current state of the scheduler. It does not change
// anything.
func (s *Scheduler) Snapshot() State {
	now := s.engine.Now()

	return State{
		Name:    s.name,
		Machine: s.state.Snapshot(now),
		Scheduler: SchedulerState{
			TimeUntilAnticipatedDrawTimeMs: betweenMs(
				now, s.AnticipatedDrawTime()),
			EstimatedParentDrawTimeMs:  durationMs(s.estimatedParentDrawTime),
			NeedsBeginFrames:           s.frameSource.NeedsBeginFrames(),
			BeginRetroFramePosted:      s.tasks.isPending(taskBeginRetroFrame),
			RetroFrames:                len(s.retroFrames),
			DroppedRetroFrames:         s.droppedRetroFrames,
			DeadlineTaskPending:        s.tasks.isPending(taskDeadline),
			PollForDrawTriggersPending: s.tasks.isPending(taskPollForDrawTriggers),
			AdvanceCommitStatePending:  s.tasks.isPending(taskAdvanceCommitState),
			BeginImplFrameArgs:         s.beginImplFrameArgs.Snapshot(),
		},
		Client: ClientState{
			DrawDurationEstimateMs: durationMs(
				s.client.DrawDurationEstimate()),
			BeginMainFrameToCommitDurationEstimateMs: durationMs(
				s.client.BeginMainFrameToCommitDurationEstimate()),
			CommitToActivateDurationEstimateMs: durationMs(
				s.client.CommitToActivateDurationEstimate()),
		},
	}
}
