package session

import (
	"context"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/morphfield/internal/compute"
	"github.com/san-kum/morphfield/internal/gesture"
	"github.com/san-kum/morphfield/internal/morph"
)

const frameDt = float32(1) / 60

func testOptions() Options {
	opts := DefaultOptions()
	opts.Particles = 300
	opts.Ornaments = 12
	opts.Seed = 7
	opts.Backend = compute.NewSerialBackend()
	return opts
}

func jsonl(results ...gesture.Result) string {
	var b strings.Builder
	for _, r := range results {
		data, err := gesture.EncodeFrame(r)
		Expect(err).NotTo(HaveOccurred())
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String()
}

var _ = Describe("Session", func() {
	var s *Session

	BeforeEach(func() {
		s = New(testOptions())
	})

	It("starts on the tree with the UI visible", func() {
		f := s.Advance(frameDt)
		Expect(f.State).To(Equal(morph.Tree))
		Expect(f.Changed).To(BeFalse())
		Expect(f.UIVisible).To(BeTrue())
		Expect(f.Positions).To(HaveLen(300))
		Expect(f.Colors).To(HaveLen(300))
		Expect(f.Highlights).To(HaveLen(300))
		Expect(f.Ornaments).To(HaveLen(12))
	})

	It("applies a request on the next tick only", func() {
		Expect(s.Request(morph.Scatter)).To(BeTrue())
		Expect(s.Field().State()).To(Equal(morph.Tree))

		f := s.Advance(frameDt)
		Expect(f.State).To(Equal(morph.Scatter))
		Expect(f.Changed).To(BeTrue())
		Expect(f.Progress).To(BeNumerically("~", frameDt*morph.DefaultRate, 1e-6))

		f = s.Advance(frameDt)
		Expect(f.Changed).To(BeFalse())
	})

	It("lets the last request before a tick win", func() {
		s.Request(morph.Scatter)
		s.Request(morph.Love)
		Expect(s.Advance(frameDt).State).To(Equal(morph.Love))
	})

	It("rejects invalid requests", func() {
		Expect(s.Request(morph.State(-1))).To(BeFalse())
		Expect(s.Requested()).To(Equal(morph.Tree))
	})

	It("fires change hooks once per applied change", func() {
		var seen [][2]morph.State
		s.OnChange(func(from, to morph.State) {
			seen = append(seen, [2]morph.State{from, to})
		})

		s.Request(morph.Love)
		for i := 0; i < 10; i++ {
			s.Advance(frameDt)
			s.Request(morph.Love)
		}
		s.Request(morph.Tree)
		s.Advance(frameDt)

		Expect(seen).To(Equal([][2]morph.State{
			{morph.Tree, morph.Love},
			{morph.Love, morph.Tree},
		}))
	})

	It("starts in the configured initial state", func() {
		opts := testOptions()
		opts.Initial = morph.Love
		other := New(opts)
		Expect(other.Advance(frameDt).State).To(Equal(morph.Love))
	})

	It("toggles the UI", func() {
		Expect(s.ToggleUI()).To(BeFalse())
		Expect(s.Advance(frameDt).UIVisible).To(BeFalse())
		Expect(s.ToggleUI()).To(BeTrue())
	})

	It("holds progress at exactly one", func() {
		s.Request(morph.Scatter)
		for i := 0; i < 90; i++ {
			s.Advance(frameDt)
		}
		Expect(s.Advance(frameDt).Progress).To(Equal(float32(1)))
	})

	Describe("gesture input", func() {
		It("turns a pinch into LOVE", func() {
			hand := gesture.SynthHand(gesture.Open, 0, 0)
			hand[gesture.ThumbTip] = gesture.Landmark{X: 0.50, Y: 0.40}
			hand[gesture.IndexTip] = gesture.Landmark{X: 0.52, Y: 0.40}

			src := gesture.NewReplaySource(strings.NewReader(jsonl(gesture.Result{Hands: []gesture.Hand{hand}})), false)
			tr := gesture.NewTracker(src)

			sig, err := tr.Poll(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(sig.Gesture).To(Equal(gesture.Pinch))

			s.Observe(sig)
			f := s.Advance(frameDt)
			Expect(f.State).To(Equal(morph.Love))
			Expect(f.Hand.Detected).To(BeTrue())
		})

		It("keeps the state through 100 frames without a hand", func() {
			s.Request(morph.Scatter)
			s.Advance(frameDt)

			empty := make([]gesture.Result, 100)
			tr := gesture.NewTracker(gesture.NewReplaySource(strings.NewReader(jsonl(empty...)), false))
			for i := 0; i < 100; i++ {
				sig, err := tr.Poll(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(sig.Detected).To(BeFalse())
				s.Observe(sig)
				Expect(s.Advance(frameDt).State).To(Equal(morph.Scatter))
			}
			Expect(tr.Degraded()).To(BeFalse())
		})

		It("keeps running when the camera is unavailable", func() {
			s.Request(morph.Love)
			tr := gesture.NewTracker(gesture.Unavailable{Reason: "permission denied"})
			for i := 0; i < 30; i++ {
				sig, err := tr.Poll(context.Background())
				Expect(err).NotTo(HaveOccurred())
				s.Observe(sig)
				s.Advance(frameDt)
			}
			Expect(tr.Degraded()).To(BeTrue())
			Expect(s.Field().State()).To(Equal(morph.Love))
			Expect(s.Hand().Detected).To(BeFalse())
		})

		It("steers the rig while a hand is present", func() {
			s.Observe(gesture.Signal{X: 1, Y: 0, Gesture: gesture.Open, Detected: true})
			var f Frame
			for i := 0; i < 600; i++ {
				f = s.Advance(frameDt)
			}
			Expect(f.RotY).To(BeNumerically("~", 0.3, 1e-3))
			Expect(f.RotX).To(BeNumerically("~", 0, 1e-3))
		})
	})

	Describe("Run", func() {
		It("drives both loops until cancelled", func() {
			script := gesture.NewScriptSource([]gesture.Step{
				{Gesture: gesture.Fist, Frames: 2},
				{Gesture: gesture.Open, Frames: 1000},
			}, false)
			tr := gesture.NewTracker(script, gesture.WithInterval(time.Millisecond))

			var mu sync.Mutex
			var last Frame
			frames := 0

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- s.Run(ctx, tr, 200, func(f Frame) {
					mu.Lock()
					last, frames = f, frames+1
					mu.Unlock()
				})
			}()

			Eventually(func() morph.State {
				mu.Lock()
				defer mu.Unlock()
				return last.State
			}, 3*time.Second, 5*time.Millisecond).Should(Equal(morph.Scatter))

			cancel()
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))

			mu.Lock()
			defer mu.Unlock()
			Expect(frames).To(BeNumerically(">", 0))
		})

		It("returns immediately with nothing to run", func() {
			Expect(s.Run(context.Background(), nil, 0, nil)).To(Succeed())
		})
	})
})
