package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/framesched/datarecording"
	"github.com/sarchlab/framesched/frame"
	"github.com/sarchlab/framesched/hostsim"
)

func defaultOptions() runOptions {
	o := runOptions{
		frames: 30,
		host:   hostsim.DefaultConfig(),
	}
	o.host.CommitRequestInterval = frame.DefaultInterval

	return o
}

func execute(args ...string) (string, error) {
	out := new(bytes.Buffer)

	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

var _ = Describe("simulate", func() {
	It("should produce frames", func() {
		summary, err := simulate(defaultOptions(), io.Discard)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.VirtualTime).To(Equal(30 * frame.DefaultInterval))
		Expect(summary.Host.BeginImplFrames).To(BeNumerically(">", 0))
		Expect(summary.Host.Commits).To(BeNumerically(">", 1))
		Expect(summary.Host.Draws).To(BeNumerically(">", 1))
		Expect(summary.AvgFrameTime).To(BeNumerically(">", 0))
		Expect(summary.TimeInFrames).To(BeNumerically(">=", summary.MaxFrameTime))
		Expect(summary.AvgMainFrameTime).To(BeNumerically(">", 0))
		Expect(summary.MainThreadBusy).To(BeNumerically(">", 0))
	})

	It("should activate trees with impl-side painting", func() {
		o := defaultOptions()
		o.implSidePainting = true

		summary, err := simulate(o, io.Discard)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.ImplSidePainting).To(BeTrue())
		Expect(summary.Host.Activations).To(BeNumerically(">", 0))
		Expect(summary.Host.Draws).To(BeNumerically(">", 0))
	})

	It("should count the actions performed in frames", func() {
		summary, err := simulate(defaultOptions(), io.Discard)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Actions).To(ContainElement(And(
			HaveField("Action", "ACTION_SEND_BEGIN_MAIN_FRAME"),
			HaveField("Count", BeNumerically(">", 0)),
		)))
		Expect(summary.Actions).To(ContainElement(
			HaveField("Action", "ACTION_DRAW_AND_SWAP_IF_POSSIBLE")))

		for _, a := range summary.Actions {
			Expect(a.Frames).To(BeNumerically("<=", a.Count))
		}
	})

	It("should drop BeginFrames closer than the minimum interval", func() {
		every, err := simulate(defaultOptions(), io.Discard)
		Expect(err).NotTo(HaveOccurred())

		o := defaultOptions()
		o.minFrameInterval = 2 * frame.DefaultInterval

		halved, err := simulate(o, io.Discard)

		Expect(err).NotTo(HaveOccurred())
		Expect(halved.Host.BeginImplFrames).To(BeNumerically(">", 0))
		Expect(halved.Host.BeginImplFrames).
			To(BeNumerically("<", every.Host.BeginImplFrames))
	})

	It("should run on wall-clock time", func() {
		o := defaultOptions()
		o.frames = 6
		o.realtime = true

		summary, err := simulate(o, io.Discard)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Realtime).To(BeTrue())
		Expect(summary.VirtualTime).
			To(BeNumerically(">=", 6*frame.DefaultInterval))
		Expect(summary.Host.BeginImplFrames).To(BeNumerically(">", 0))
	})

	It("should recover from a lost surface", func() {
		o := defaultOptions()
		o.loseSurfaceAt = 100 * time.Millisecond

		summary, err := simulate(o, io.Discard)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Host.SurfacesLost).To(Equal(1))
		Expect(summary.Host.SurfacesCreated).To(Equal(2))
	})

	It("should log actions when verbose", func() {
		o := defaultOptions()
		o.frames = 3
		o.verbose = true
		logs := new(bytes.Buffer)

		_, err := simulate(o, logs)

		Expect(err).NotTo(HaveOccurred())
		Expect(logs.String()).To(ContainSubstring("Scheduler, BeginImplFrame"))
	})

	It("should log engine events", func() {
		o := defaultOptions()
		o.frames = 2
		o.logEvents = true
		logs := new(bytes.Buffer)

		_, err := simulate(o, logs)

		Expect(err).NotTo(HaveOccurred())
		Expect(logs.String()).To(ContainSubstring("-> Scheduler"))
	})

	It("should record into SQLite", func() {
		o := defaultOptions()
		o.frames = 5
		o.record = true
		o.output = filepath.Join(GinkgoT().TempDir(), "run")

		_, err := simulate(o, io.Discard)

		Expect(err).NotTo(HaveOccurred())
		Expect(o.output + ".sqlite3").To(BeAnExistingFile())
	})

	It("should reject invalid options", func() {
		o := defaultOptions()
		o.frames = 0

		_, err := simulate(o, io.Discard)
		Expect(errors.Is(err, ErrInvalidOptions)).To(BeTrue())

		o = defaultOptions()
		o.output = "run"

		_, err = simulate(o, io.Discard)
		Expect(errors.Is(err, ErrInvalidOptions)).To(BeTrue())

		o = defaultOptions()
		o.minFrameInterval = -time.Millisecond

		_, err = simulate(o, io.Discard)
		Expect(errors.Is(err, ErrInvalidOptions)).To(BeTrue())

		o = defaultOptions()
		o.host.RasterLatency = -time.Millisecond

		_, err = simulate(o, io.Discard)
		Expect(errors.Is(err, hostsim.ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("framesim run", func() {
	It("should print a summary", func() {
		out, err := execute("run", "--frames", "4")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`(?m)^Frames:\s+4$`))
		Expect(out).To(ContainSubstring("Draws:"))
	})

	It("should draw activated trees with impl-side painting", func() {
		out, err := execute("run", "--frames", "30", "--impl-side-painting")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`(?m)^Impl-side painting:\s+true$`))
		Expect(out).To(MatchRegexp(`(?m)^Activations:\s+[1-9]\d*$`))
		Expect(out).To(MatchRegexp(`(?m)^Draws:\s+[1-9]\d*$`))
		Expect(out).To(ContainSubstring("Actions in frames:"))
	})

	It("should take defaults from the environment", func() {
		GinkgoT().Setenv("FRAMESIM_FRAMES", "7")
		GinkgoT().Setenv("FRAMESIM_IMPL_SIDE_PAINTING", "true")

		out, err := execute("run")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`(?m)^Frames:\s+7$`))
		Expect(out).To(MatchRegexp(`(?m)^Impl-side painting:\s+true$`))
	})

	It("should prefer flags over the environment", func() {
		GinkgoT().Setenv("FRAMESIM_FRAMES", "7")

		out, err := execute("run", "--frames", "2")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`(?m)^Frames:\s+2$`))
	})

	It("should read an env file", func() {
		// Overload writes into the environment, so the test owns the key.
		GinkgoT().Setenv("FRAMESIM_FRAMES", "1")

		envFile := filepath.Join(GinkgoT().TempDir(), "framesim.env")
		Expect(os.WriteFile(envFile,
			[]byte("FRAMESIM_FRAMES=3\n"), 0o600)).To(Succeed())

		out, err := execute("run", "--env-file", envFile)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`(?m)^Frames:\s+3$`))
	})

	It("should fail on a missing env file", func() {
		_, err := execute("run", "--env-file",
			filepath.Join(GinkgoT().TempDir(), "missing.env"))

		Expect(err).To(HaveOccurred())
	})

	It("should fail on malformed environment values", func() {
		GinkgoT().Setenv("FRAMESIM_MAIN_LATENCY", "soon")

		_, err := execute("run")

		Expect(err).To(MatchError(ContainSubstring("FRAMESIM_MAIN_LATENCY")))
	})

	It("should map flag names to variables", func() {
		Expect(envName("checkerboard-every")).
			To(Equal("FRAMESIM_CHECKERBOARD_EVERY"))
	})
})

var _ = Describe("framesim report", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "run")

		_, err := execute("run", "--frames", "5", "--record", "--output", path)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should summarize a recording", func() {
		out, err := execute("report", path)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchRegexp(`(?m)^Simulation ID:\s+\S+$`))
		Expect(out).To(MatchRegexp(`(?m)^Frames:\s+5$`))
		Expect(out).To(MatchRegexp(`(?m)^Realtime:\s+false$`))
		Expect(out).To(MatchRegexp(`(?m)^  frame\s+[1-9]\d*\s+avg `))
		Expect(out).To(MatchRegexp(`(?m)^  main_frame\s+[1-9]\d*\s+avg `))
		Expect(out).To(ContainSubstring("Steps in frame:"))
		Expect(out).To(MatchRegexp(
			`(?m)^  ACTION_SEND_BEGIN_MAIN_FRAME\s+\d+ in \d+ tasks$`))
	})

	It("should count the steps of main frames", func() {
		out, err := execute("report", path, "--kind", "main_frame")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Steps in main_frame:"))
		Expect(out).NotTo(ContainSubstring("ACTION_"))
	})

	It("should list the first frames with their steps", func() {
		out := new(bytes.Buffer)

		err := report(context.Background(), path,
			reportOptions{kind: "frame", tasks: 2}, out)

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(MatchRegexp(`(?m)^Scheduler BeginImplFrame \S+ `))
		Expect(out.String()).To(MatchRegexp(`(?m)^  \+\d+\.\d{3}ms ACTION_`))
	})

	It("should fail without a recording", func() {
		_, err := execute("report",
			filepath.Join(GinkgoT().TempDir(), "missing"))

		Expect(errors.Is(err, datarecording.ErrNoRecording)).To(BeTrue())
	})

	It("should need exactly one recording", func() {
		_, err := execute("report")

		Expect(err).To(HaveOccurred())
	})
})
