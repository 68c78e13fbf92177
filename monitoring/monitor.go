// Package monitoring serves the state of running schedulers over HTTP so a
// simulation can be watched and paused from a browser.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/framesched/monitoring/web"
	"github.com/sarchlab/framesched/scheduler"
	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/id"
	"github.com/sarchlab/framesched/sim/timing"
	"github.com/sarchlab/framesched/tracing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Scheduler is what the monitor needs from a scheduler.
type Scheduler interface {
	tracing.Traceable
	Snapshot() scheduler.State
}

// Monitor turns a simulation into a server. Scheduler states are captured
// on the engine thread after every event, so the handlers never touch a
// running scheduler.
type Monitor struct {
	engine      timing.Engine
	schedulers  []Scheduler
	portNumber  int
	openBrowser bool

	statesLock sync.RWMutex
	states     map[string]scheduler.State

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		states: make(map[string]scheduler.State),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the dashboard in a browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterEngine registers the engine that runs the schedulers.
func (m *Monitor) RegisterEngine(e timing.Engine) {
	m.engine = e
	e.AcceptHook(m)
}

// RegisterScheduler registers a scheduler to be monitored.
func (m *Monitor) RegisterScheduler(s Scheduler) {
	if _, found := m.findScheduler(s.Name()); found {
		log.Panicf("scheduler %s already registered", s.Name())
	}

	m.schedulers = append(m.schedulers, s)
	m.capture(s)
}

// Func captures the scheduler states after each event.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosAfterEvent {
		return
	}

	for _, s := range m.schedulers {
		m.capture(s)
	}
}

func (m *Monitor) capture(s Scheduler) {
	state := s.Snapshot()

	m.statesLock.Lock()
	m.states[s.Name()] = state
	m.statesLock.Unlock()
}

func (m *Monitor) state(name string) (scheduler.State, bool) {
	m.statesLock.RLock()
	defer m.statesLock.RUnlock()

	state, ok := m.states[name]

	return state, ok
}

func (m *Monitor) findScheduler(name string) (Scheduler, bool) {
	for _, s := range m.schedulers {
		if s.Name() == name {
			return s, true
		}
	}

	return nil, false
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        id.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler of all the monitor routes.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_schedulers", m.listSchedulers)
	r.HandleFunc("/api/scheduler/{name}", m.schedulerState)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return port
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type nowRsp struct {
	Now   string  `json:"now"`
	NowMs float64 `json:"now_ms"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.Now()

	writeJSON(w, nowRsp{
		Now:   now.Format(time.RFC3339Nano),
		NowMs: float64(now.UnixNano()) / float64(time.Millisecond),
	})
}

func (m *Monitor) listSchedulers(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.schedulers))
	for _, s := range m.schedulers {
		names = append(names, s.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) schedulerState(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	state, ok := m.stateOr404(w, name)
	if !ok {
		return
	}

	writeJSON(w, state)
}

type fieldReq struct {
	SchedulerName string `json:"scheduler_name,omitempty"`
	FieldName     string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	state, ok := m.stateOr404(w, req.SchedulerName)
	if !ok {
		return
	}

	fields := strings.Split(req.FieldName, ".")
	if _, err := walkFields(&state, fields); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&state)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(fields)
	dieOnErr(err)

	err = serializer.Serialize(w)
	dieOnErr(err)
}

var errFieldNotFound = errors.New("field not found")

// walkFields follows a dotted path of struct field names and slice indices
// from root.
func walkFields(root any, fields []string) (reflect.Value, error) {
	elem := reflect.ValueOf(root)

	for len(fields) > 0 {
		switch elem.Kind() {
		case reflect.Ptr, reflect.Interface:
			elem = elem.Elem()
		case reflect.Struct:
			elem = elem.FieldByName(fields[0])
			if !elem.IsValid() {
				return elem, fmt.Errorf("%w: %s", errFieldNotFound, fields[0])
			}

			fields = fields[1:]
		case reflect.Slice:
			index, err := strconv.Atoi(fields[0])
			if err != nil {
				return elem, fmt.Errorf("%w: %s is not an index",
					errFieldNotFound, fields[0])
			}

			if index < 0 || index >= elem.Len() {
				return elem, fmt.Errorf("%w: index %d out of range",
					errFieldNotFound, index)
			}

			elem = elem.Index(index)
			fields = fields[1:]
		default:
			return elem, fmt.Errorf("%w: cannot walk into %s with %s",
				errFieldNotFound, elem.Kind(), fields[0])
		}
	}

	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	return elem, nil
}

func (m *Monitor) stateOr404(
	w http.ResponseWriter,
	name string,
) (scheduler.State, bool) {
	state, ok := m.state(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Scheduler not found"))
		dieOnErr(err)
	}

	return state, ok
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarState, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.State())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
