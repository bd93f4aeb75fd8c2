package morph

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/morphfield/internal/compute"
	"github.com/san-kum/morphfield/internal/palette"
	"github.com/san-kum/morphfield/internal/shape"
)

const tol = 1e-5

func snapshot(f *Field) (start, target, shown []mgl32.Vec3) {
	n := f.Count()
	start = make([]mgl32.Vec3, n)
	target = make([]mgl32.Vec3, n)
	shown = make([]mgl32.Vec3, n)
	for i := 0; i < n; i++ {
		start[i] = f.Start(i)
		target[i] = f.Target(i)
		shown[i] = f.Interpolated(i)
	}
	return start, target, shown
}

func expectVecsClose(got, want []mgl32.Vec3) {
	ExpectWithOffset(1, got).To(HaveLen(len(want)))
	for i := range want {
		for k := 0; k < 3; k++ {
			ExpectWithOffset(1, float64(got[i][k])).To(BeNumerically("~", float64(want[i][k]), tol),
				"point %d axis %d", i, k)
		}
	}
}

var _ = Describe("Field", func() {
	var f *Field

	BeforeEach(func() {
		f = NewField(512, shape.NewSampler(11), palette.Classic())
	})

	Describe("initial state", func() {
		It("rests on the tree shape", func() {
			Expect(f.State()).To(Equal(Tree))
			Expect(f.Progress()).To(BeZero())
			for i := 0; i < f.Count(); i++ {
				Expect(f.Interpolated(i)).To(Equal(shape.Tree(i, f.Count())))
			}
		})

		It("places four distinct deterministic spiral points", func() {
			small := NewField(4, shape.NewSampler(1), palette.Classic())
			again := NewField(4, shape.NewSampler(2), palette.Classic())
			seen := map[mgl32.Vec3]bool{}
			for i := 0; i < 4; i++ {
				p := small.Interpolated(i)
				Expect(p).To(Equal(again.Interpolated(i)))
				Expect(seen).NotTo(HaveKey(p))
				seen[p] = true
			}
		})

		It("assigns one color per point", func() {
			Expect(f.Colors()).To(HaveLen(f.Count()))
			Expect(f.Attributes()).To(HaveLen(f.Count()))
		})
	})

	Describe("SetState", func() {
		It("ignores the state it is already heading to", func() {
			Expect(f.SetState(Tree)).To(BeFalse())
			Expect(f.Progress()).To(BeZero())

			Expect(f.SetState(Scatter)).To(BeTrue())
			f.Advance(0.3)
			progress := f.Progress()
			start, target, _ := snapshot(f)

			for i := 0; i < 5; i++ {
				Expect(f.SetState(Scatter)).To(BeFalse())
			}
			Expect(f.Progress()).To(Equal(progress))
			s2, t2, _ := snapshot(f)
			Expect(s2).To(Equal(start))
			Expect(t2).To(Equal(target))
		})

		It("ignores invalid states", func() {
			Expect(f.SetState(State(42))).To(BeFalse())
			Expect(f.State()).To(Equal(Tree))
		})

		It("starts the new transition from the displayed positions", func() {
			f.SetState(Scatter)
			f.Advance(0.4)
			_, _, shown := snapshot(f)

			Expect(f.SetState(Love)).To(BeTrue())
			start, _, _ := snapshot(f)
			expectVecsClose(start, shown)
			Expect(f.Progress()).To(BeZero())
		})

		It("does not begin from the unfinished scatter targets", func() {
			f.SetState(Scatter)
			f.Advance(0.5)
			Expect(f.Progress()).To(BeNumerically("~", 0.4, tol))
			_, scatterTargets, shown := snapshot(f)

			f.SetState(Love)
			start, target, _ := snapshot(f)
			expectVecsClose(start, shown)

			differs := 0
			for i := range start {
				if start[i].Sub(scatterTargets[i]).Len() > 1e-3 {
					differs++
				}
			}
			Expect(differs).To(BeNumerically(">", len(start)/2))

			bounds := shape.LoveBounds().Expand(1e-4)
			for _, p := range target {
				Expect(bounds.Contains(p)).To(BeTrue())
			}
		})

		It("draws a fresh scatter cloud on every entry", func() {
			f.SetState(Scatter)
			_, first, _ := snapshot(f)
			f.SetState(Tree)
			f.SetState(Scatter)
			_, second, _ := snapshot(f)
			Expect(second).NotTo(Equal(first))
		})

		It("keeps the continuity on the parallel backend", func() {
			big := NewField(DefaultFieldCount, shape.NewSampler(5), palette.Classic())
			big.Backend = compute.NewCPUBackend()
			big.SetState(Scatter)
			big.Advance(0.2)
			_, _, shown := snapshot(big)
			big.SetState(Love)
			start, _, _ := snapshot(big)
			expectVecsClose(start, shown)
		})
	})

	Describe("Advance", func() {
		It("moves at 0.8 per second", func() {
			f.SetState(Love)
			f.Advance(0.5)
			Expect(f.Progress()).To(BeNumerically("~", 0.4, tol))
		})

		It("clamps at exactly 1", func() {
			f.SetState(Scatter)
			for _, dt := range []float32{0.3, 0.3, 0.3, 0.2, 0.2} {
				f.Advance(dt)
			}
			Expect(f.Progress()).To(Equal(float32(1)))
			f.Advance(10)
			Expect(f.Progress()).To(Equal(float32(1)))
		})

		It("ignores non-positive and NaN deltas", func() {
			f.SetState(Scatter)
			f.Advance(0.1)
			p := f.Progress()
			f.Advance(-1)
			f.Advance(0)
			f.Advance(float32(math.NaN()))
			Expect(f.Progress()).To(Equal(p))
		})

		It("lands exactly on the targets", func() {
			f.SetState(Love)
			f.Advance(2)
			for i := 0; i < f.Count(); i++ {
				Expect(f.Interpolated(i)).To(Equal(f.Target(i)))
			}
			dst := make([]mgl32.Vec3, f.Count())
			f.Positions(dst, 0)
			_, target, _ := snapshot(f)
			for i := range dst {
				Expect(dst[i][1]).To(Equal(target[i][1]))
			}
		})
	})

	Describe("Positions", func() {
		It("matches Position for every point", func() {
			f.SetState(Scatter)
			f.Advance(0.25)
			dst := make([]mgl32.Vec3, f.Count())
			f.Positions(dst, 3.5)
			for i := range dst {
				want := f.Position(i, 3.5)
				for k := 0; k < 3; k++ {
					Expect(float64(dst[i][k])).To(BeNumerically("~", float64(want[k]), tol))
				}
			}
		})

		It("keeps the organic motion small", func() {
			dst := make([]mgl32.Vec3, f.Count())
			f.Positions(dst, 7)
			for i := range dst {
				Expect(dst[i].Sub(f.Interpolated(i)).Len()).To(BeNumerically("<=", 0.15))
			}
		})

		It("breathes in the horizontal plane only", func() {
			f.SetState(Love)
			f.Advance(0.3)
			dst := make([]mgl32.Vec3, f.Count())
			for _, t := range []float32{0, 1.7, 9} {
				f.Positions(dst, t)
				for i := range dst {
					Expect(dst[i][1]).To(BeNumerically("~", f.Interpolated(i)[1], tol))
				}
			}
		})

		It("handles an empty field", func() {
			empty := NewField(0, nil, palette.Classic())
			Expect(empty.SetState(Love)).To(BeTrue())
			empty.Advance(1)
			empty.Positions(nil, 1)
			Expect(empty.Progress()).To(BeNumerically("~", 0.8, tol))
			empty.Advance(0.25)
			Expect(empty.Progress()).To(Equal(float32(1)))
		})
	})

	Describe("Highlight", func() {
		It("stays in [0, 1]", func() {
			for _, y := range []float32{-8, -1, 0, 2, 6} {
				for _, t := range []float32{0, 0.7, 13} {
					h := Highlight(y, t)
					Expect(h).To(BeNumerically(">=", 0))
					Expect(h).To(BeNumerically("<=", 1))
				}
			}
		})
	})
})
