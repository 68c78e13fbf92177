// Package simulation bundles the engine, the recorder, the tracer and the
// monitor that a run of schedulers shares.
package simulation

import (
	"github.com/sarchlab/framesched/datarecording"
	"github.com/sarchlab/framesched/hostsim"
	"github.com/sarchlab/framesched/monitoring"
	"github.com/sarchlab/framesched/scheduler"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/sarchlab/framesched/tracing"
)

// A Simulation provides the services a run of schedulers needs.
type Simulation struct {
	id     string
	engine timing.Engine

	dataRecorder datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	monitor      *monitoring.Monitor
	visTracer    *tracing.DBTracer

	schedulers         []*scheduler.Scheduler
	schedulerNameIndex map[string]int
	hosts              []*hostsim.Host
	hostNameIndex      map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation, a SerialEngine unless
// the simulation was built WithRealTimeEngine.
func (s *Simulation) GetEngine() timing.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation. It is
// nil when recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the tracer used in the simulation.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// AddExecProperty records a setting of the run next to its trace.
func (s *Simulation) AddExecProperty(property, value string) {
	if s.execRecorder == nil {
		return
	}

	s.execRecorder.AddProperty(property, value)
}

// RegisterScheduler makes a scheduler visible to the monitor and traces its
// frames.
func (s *Simulation) RegisterScheduler(sched *scheduler.Scheduler) {
	name := sched.Name()
	if _, found := s.schedulerNameIndex[name]; found {
		panic("scheduler " + name + " already registered")
	}

	s.schedulers = append(s.schedulers, sched)
	s.schedulerNameIndex[name] = len(s.schedulers) - 1

	if s.monitor != nil {
		s.monitor.RegisterScheduler(sched)
	}

	if s.visTracer != nil {
		tracing.CollectTrace(sched, s.visTracer)
	}
}

// RegisterHost traces the main frames of a host.
func (s *Simulation) RegisterHost(h *hostsim.Host) {
	name := h.Name()
	if _, found := s.hostNameIndex[name]; found {
		panic("host " + name + " already registered")
	}

	s.hosts = append(s.hosts, h)
	s.hostNameIndex[name] = len(s.hosts) - 1

	if s.visTracer != nil {
		tracing.CollectTrace(h, s.visTracer)
	}
}

// GetSchedulerByName returns the scheduler with the given name.
func (s *Simulation) GetSchedulerByName(name string) (*scheduler.Scheduler, bool) {
	i, found := s.schedulerNameIndex[name]
	if !found {
		return nil, false
	}

	return s.schedulers[i], true
}

// GetHostByName returns the host with the given name.
func (s *Simulation) GetHostByName(name string) (*hostsim.Host, bool) {
	i, found := s.hostNameIndex[name]
	if !found {
		return nil, false
	}

	return s.hosts[i], true
}

// Schedulers returns all the registered schedulers.
func (s *Simulation) Schedulers() []*scheduler.Scheduler {
	return append([]*scheduler.Scheduler(nil), s.schedulers...)
}

// Terminate writes the tasks still in flight and closes the recorder.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	s.visTracer.Terminate()
	s.execRecorder.End()

	return s.dataRecorder.Close()
}
