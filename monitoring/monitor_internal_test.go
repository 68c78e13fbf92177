package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/framesched/scheduler"
	"github.com/sarchlab/framesched/sim/hooking"
	"github.com/sarchlab/framesched/sim/timing"
)

type sampleStruct struct {
	Field1 int
	Field2 string
	Field3 *sampleStruct
	Field4 []sampleStruct
}

type fakeScheduler struct {
	*hooking.HookableBase
	name      string
	snapshots int
}

func newFakeScheduler(name string) *fakeScheduler {
	return &fakeScheduler{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
	}
}

func (s *fakeScheduler) Name() string {
	return s.name
}

func (s *fakeScheduler) Snapshot() scheduler.State {
	s.snapshots++

	return scheduler.State{
		Name: s.name,
		Scheduler: scheduler.SchedulerState{
			DroppedRetroFrames: s.snapshots,
		},
	}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *timing.SerialEngine
		s      *fakeScheduler
		router http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()
		engine = timing.NewSerialEngine()
		s = newFakeScheduler("Scheduler")

		m.RegisterEngine(engine)
		m.RegisterScheduler(s)

		router = m.Router()
	})

	It("should capture the state on registration", func() {
		Expect(s.snapshots).To(Equal(1))

		state, ok := m.state("Scheduler")
		Expect(ok).To(BeTrue())
		Expect(state.Scheduler.DroppedRetroFrames).To(Equal(1))
	})

	It("should not register a name twice", func() {
		Expect(func() { m.RegisterScheduler(newFakeScheduler("Scheduler")) }).
			To(Panic())
	})

	It("should capture the state after each event", func() {
		timing.PostNow(engine, func() {})
		timing.PostDelayed(engine, time.Millisecond, func() {})

		Expect(engine.Run()).To(Succeed())

		Expect(s.snapshots).To(Equal(3))
	})

	It("should list schedulers", func() {
		rec := get(router, "/api/list_schedulers")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["Scheduler"]`))
	})

	It("should serve the state of a scheduler", func() {
		rec := get(router, "/api/scheduler/Scheduler")

		Expect(rec.Code).To(Equal(http.StatusOK))

		state := scheduler.State{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &state)).To(Succeed())
		Expect(state.Name).To(Equal("Scheduler"))
		Expect(state.Scheduler.DroppedRetroFrames).To(Equal(1))
	})

	It("should return 404 for unknown schedulers", func() {
		rec := get(router, "/api/scheduler/Other")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should tell the engine time", func() {
		Expect(engine.RunFor(5 * time.Millisecond)).To(Succeed())

		rec := get(router, "/api/now")

		rsp := nowRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Now).To(Equal(
			timing.DefaultEpoch.Add(5 * time.Millisecond).Format(time.RFC3339Nano)))
	})

	It("should pause and continue the engine", func() {
		timing.PostNow(engine, func() {})

		Expect(get(router, "/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get(router, "/api/continue").Code).To(Equal(http.StatusOK))

		Expect(engine.Step()).To(BeTrue())
	})

	It("should reject invalid field paths", func() {
		req := url.PathEscape(
			`{"scheduler_name":"Scheduler","field_name":"Scheduler.NoSuchField"}`)

		rec := get(router, "/api/field/"+req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject malformed field requests", func() {
		rec := get(router, "/api/field/"+url.PathEscape("{"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Frames", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		other := m.CreateProgressBar("Other", 1)
		m.CompleteProgressBar(other)

		rec := get(router, "/api/progress")

		bars := []ProgressBarState{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Frames"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))
	})

	It("should report process resources", func() {
		rec := get(router, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})

	It("should serve the dashboard", func() {
		rec := get(router, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("framesched monitor"))
	})

	It("should fall back to a random port for reserved ports", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})
})

var _ = Describe("ProgressBar", func() {
	It("should not move more than what is in progress", func() {
		bar := &ProgressBar{Total: 5}
		bar.IncrementInProgress(1)

		bar.MoveInProgressToFinished(3)

		state := bar.State()
		Expect(state.InProgress).To(Equal(uint64(0)))
		Expect(state.Finished).To(Equal(uint64(1)))
	})
})

var _ = Describe("walkFields", func() {
	It("should walk int fields", func() {
		s := &sampleStruct{
			Field1: 1,
		}

		elem, err := walkFields(s, []string{"Field1"})

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk string fields", func() {
		s := &sampleStruct{
			Field2: "abc",
		}

		elem, err := walkFields(s, []string{"Field2"})

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk struct", func() {
		s := &sampleStruct{
			Field3: &sampleStruct{},
		}

		elem, err := walkFields(s, []string{"Field3"})

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Struct))
		Expect(elem.Type().Name()).To(Equal("sampleStruct"))
	})

	It("should walk slice recursively", func() {
		s := &sampleStruct{
			Field4: []sampleStruct{{
				Field4: []sampleStruct{
					{Field1: 1},
				},
			}, {}},
		}

		elem, err := walkFields(s, []string{"Field4", "0", "Field4", "0", "Field1"})

		Expect(err).To(BeNil())
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should fail on unknown fields", func() {
		_, err := walkFields(&sampleStruct{}, []string{"Field9"})

		Expect(err).To(MatchError(errFieldNotFound))
	})

	It("should fail on bad indices", func() {
		s := &sampleStruct{Field4: []sampleStruct{{}}}

		_, err := walkFields(s, []string{"Field4", "x"})
		Expect(err).To(MatchError(errFieldNotFound))

		_, err = walkFields(s, []string{"Field4", "3"})
		Expect(err).To(MatchError(errFieldNotFound))
	})

	It("should fail when walking into a scalar", func() {
		_, err := walkFields(&sampleStruct{}, []string{"Field1", "X"})

		Expect(err).To(MatchError(errFieldNotFound))
	})

	It("should walk a scheduler state", func() {
		state := &scheduler.State{
			Machine: scheduler.MachineState{
				Major: scheduler.MajorState{CommitState: "COMMIT_STATE_IDLE"},
			},
		}

		elem, err := walkFields(state, []string{"Machine", "Major", "CommitState"})

		Expect(err).To(BeNil())
		Expect(elem.String()).To(Equal("COMMIT_STATE_IDLE"))
	})
})
