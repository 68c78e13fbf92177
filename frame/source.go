package frame

import (
	"log"

	"github.com/sarchlab/framesched/sim/hooking"
)

// HookPosBeginFrame fires when a source hands args to its observer. The
// item is the Args.
var HookPosBeginFrame = &hooking.HookPos{Name: "BeginFrame"}

// HookPosNeedsBeginFrames fires when a source is turned on or off. The item
// is the new bool value.
var HookPosNeedsBeginFrames = &hooking.HookPos{Name: "NeedsBeginFrames"}

// An Observer receives BeginFrames from a Source.
type Observer interface {
	// OnBeginFrame delivers a BeginFrame.
	OnBeginFrame(args Args)

	// LastUsedBeginFrameArgs returns the most recent args the observer
	// acted on, or InvalidArgs.
	LastUsedBeginFrameArgs() Args
}

// A Source produces BeginFrames for at most one Observer.
type Source interface {
	// NeedsBeginFrames tells if the source is producing frames.
	NeedsBeginFrames() bool

	// SetNeedsBeginFrames turns the source on or off.
	SetNeedsBeginFrames(needs bool)

	// DidFinishFrame tells the source that the observer finished a frame
	// and still holds remainingFrames undelivered ones.
	DidFinishFrame(remainingFrames int)

	// AddObserver attaches the single observer.
	AddObserver(obs Observer)

	// RemoveObserver detaches the observer.
	RemoveObserver(obs Observer)
}

// ObserverBase filters incoming args and remembers what was used. Embedders
// pass in the function that acts on the args.
type ObserverBase struct {
	delegate    func(args Args) bool
	lastUsed    Args
	droppedArgs int
}

// NewObserverBase creates an ObserverBase that calls delegate for each
// acceptable BeginFrame. The delegate returns true when it used the args.
func NewObserverBase(delegate func(args Args) bool) *ObserverBase {
	return &ObserverBase{
		delegate: delegate,
		lastUsed: InvalidArgs(),
	}
}

// OnBeginFrame delivers args to the delegate unless they are older than the
// last used args.
func (o *ObserverBase) OnBeginFrame(args Args) {
	if !args.IsValid() {
		log.Panicf("observer received invalid args %s", args)
	}

	if o.lastUsed.IsValid() && args.FrameTime.Before(o.lastUsed.FrameTime) {
		o.droppedArgs++
		return
	}

	if o.delegate(args) {
		o.lastUsed = args
		return
	}

	o.droppedArgs++
}

// LastUsedBeginFrameArgs returns the last args the delegate used.
func (o *ObserverBase) LastUsedBeginFrameArgs() Args {
	return o.lastUsed
}

// DroppedBeginFrameArgs returns how many args were not used.
func (o *ObserverBase) DroppedBeginFrameArgs() int {
	return o.droppedArgs
}

// SourceBase keeps the observer and the needs flag common to all sources.
type SourceBase struct {
	*hooking.HookableBase

	observer         Observer
	needsBeginFrames bool
	onNeedsChange    func(needs bool)
}

// NewSourceBase creates a SourceBase. onNeedsChange is called every time the
// needs flag flips and may be nil.
func NewSourceBase(onNeedsChange func(needs bool)) *SourceBase {
	return &SourceBase{
		HookableBase:  hooking.NewHookableBase(),
		onNeedsChange: onNeedsChange,
	}
}

// NeedsBeginFrames tells if the source is producing frames.
func (s *SourceBase) NeedsBeginFrames() bool {
	return s.needsBeginFrames
}

// SetNeedsBeginFrames turns the source on or off.
func (s *SourceBase) SetNeedsBeginFrames(needs bool) {
	if needs == s.needsBeginFrames {
		return
	}

	s.needsBeginFrames = needs

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosNeedsBeginFrames,
		Item:   needs,
	})

	if s.onNeedsChange != nil {
		s.onNeedsChange(needs)
	}
}

// DidFinishFrame does nothing by default.
func (s *SourceBase) DidFinishFrame(remainingFrames int) {}

// AddObserver attaches the observer. A source only has one.
func (s *SourceBase) AddObserver(obs Observer) {
	if s.observer != nil {
		log.Panic("source already has an observer")
	}

	s.observer = obs
}

// RemoveObserver detaches the observer.
func (s *SourceBase) RemoveObserver(obs Observer) {
	if s.observer != obs {
		log.Panic("removing an observer that is not attached")
	}

	s.observer = nil
}

// HasObserver tells if an observer is attached.
func (s *SourceBase) HasObserver() bool {
	return s.observer != nil
}

// CallOnBeginFrame hands args to the observer, if any.
func (s *SourceBase) CallOnBeginFrame(args Args) {
	if s.observer == nil {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosBeginFrame,
		Item:   args,
	})

	s.observer.OnBeginFrame(args)
}

// LastUsedBeginFrameArgs returns what the observer used last.
func (s *SourceBase) LastUsedBeginFrameArgs() Args {
	if s.observer == nil {
		return InvalidArgs()
	}

	return s.observer.LastUsedBeginFrameArgs()
}
