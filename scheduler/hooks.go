package scheduler

import "github.com/sarchlab/framesched/sim/hooking"

// HookPosAction fires before the client performs an action. The item is the
// Action.
var HookPosAction = &hooking.HookPos{Name: "Action"}

// HookPosBeginImplFrame fires when a BeginImplFrame starts. The item is the
// adjusted frame.Args.
var HookPosBeginImplFrame = &hooking.HookPos{Name: "BeginImplFrame"}

// HookPosDeadline fires when the BeginImplFrame deadline runs. The item is
// the frame.Args of the frame.
var HookPosDeadline = &hooking.HookPos{Name: "BeginImplFrameDeadline"}

// HookPosRetroFrameDropped fires for each expired retro frame discarded. The
// item is the dropped frame.Args.
var HookPosRetroFrameDropped = &hooking.HookPos{Name: "RetroFrameDropped"}

// HookPosNeedsBeginFrames fires when the scheduler turns its frame source
// on or off. The item is the new bool value.
var HookPosNeedsBeginFrames = &hooking.HookPos{Name: "SchedulerNeedsBeginFrames"}
