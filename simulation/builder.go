package simulation

import (
	"github.com/rs/xid"
	"github.com/sarchlab/framesched/datarecording"
	"github.com/sarchlab/framesched/monitoring"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/sarchlab/framesched/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	realTime       bool
	monitorOn      bool
	recordOn       bool
	openBrowser    bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
		recordOn:  true,
	}
}

// WithRealTimeEngine runs the simulation on wall-clock time instead of
// virtual time.
func (b Builder) WithRealTimeEngine() Builder {
	b.realTime = true
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithoutRecording sets the simulation to not write a database.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitor in a browser once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		panic("monitor options cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		schedulerNameIndex: make(map[string]int),
		hostNameIndex:      make(map[string]int),
	}

	s.id = xid.New().String()
	if b.realTime {
		s.engine = timing.NewRealTimeEngine()
	} else {
		s.engine = timing.NewSerialEngine()
	}

	if b.recordOn {
		if err := b.buildRecorder(s); err != nil {
			return nil, err
		}
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.WithBrowser(b.openBrowser)
		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer()
	}

	return s, nil
}

func (b Builder) buildRecorder(s *Simulation) error {
	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "framesched_sim_" + s.id
	}

	recorder, err := datarecording.New(outputPath)
	if err != nil {
		return err
	}

	s.dataRecorder = recorder
	s.execRecorder = datarecording.NewExecRecorder(recorder)
	s.execRecorder.Start()
	s.execRecorder.AddProperty("Simulation ID", s.id)

	s.visTracer = tracing.NewDBTracer(s.engine, recorder)

	return nil
}
