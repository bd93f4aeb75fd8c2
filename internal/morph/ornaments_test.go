package morph

import (
	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/morphfield/internal/palette"
	"github.com/san-kum/morphfield/internal/shape"
)

var _ = Describe("Ornaments", func() {
	var o *Ornaments

	BeforeEach(func() {
		o = NewOrnaments(40, 4000, shape.NewSampler(3), palette.Classic())
	})

	It("draws per-item attributes in range", func() {
		Expect(o.Count()).To(Equal(40))
		for _, it := range o.Items() {
			Expect(it.Weight).To(BeNumerically(">=", 0.5))
			Expect(it.Weight).To(BeNumerically("<", 1.5))
			Expect(it.Scale).To(BeNumerically(">=", 0.1))
			Expect(it.Scale).To(BeNumerically("<", 0.3))
		}
	})

	It("starts at the origin", func() {
		for i := 0; i < o.Count(); i++ {
			Expect(o.Current(i)).To(Equal(mgl32.Vec3{}))
		}
	})

	It("retargets on the tree samples every frame", func() {
		o.Advance(Tree, 1.0/60)
		for i := 0; i < o.Count(); i++ {
			Expect(o.LastTarget(i)).To(Equal(shape.Tree(o.sample(i), 4000)))
		}
	})

	It("closes a weighted fraction of the gap", func() {
		o.Advance(Tree, 0.1)
		for i, it := range o.Items() {
			k := it.Weight * 0.1 * DefaultOrnamentRate
			want := o.LastTarget(i).Mul(k)
			got := o.Current(i)
			for a := 0; a < 3; a++ {
				Expect(float64(got[a])).To(BeNumerically("~", float64(want[a]), tol))
			}
		}
	})

	It("never overshoots on a long frame", func() {
		o.Advance(Love, 5)
		bounds := shape.LoveBounds().Expand(1e-4)
		for i := 0; i < o.Count(); i++ {
			Expect(bounds.Contains(o.Current(i))).To(BeTrue())
		}
	})

	It("converges while the state holds", func() {
		for frame := 0; frame < 600; frame++ {
			o.Advance(Tree, 1.0/60)
		}
		for i := 0; i < o.Count(); i++ {
			Expect(o.Current(i).Sub(o.LastTarget(i)).Len()).To(BeNumerically("<", 1e-3))
		}
	})

	It("stays put on a zero delta", func() {
		o.Advance(Love, 0)
		for i := 0; i < o.Count(); i++ {
			Expect(o.Current(i)).To(Equal(mgl32.Vec3{}))
		}
	})

	It("bobs vertically within the amplitude", func() {
		o.Advance(Tree, 0.5)
		dst := make([]mgl32.Vec3, o.Count())
		o.Positions(dst, 2.25)
		for i := range dst {
			d := dst[i].Sub(o.Current(i))
			Expect(d[0]).To(BeZero())
			Expect(d[2]).To(BeZero())
			Expect(d[1]).To(BeNumerically("<=", BobAmplitude+1e-6))
			Expect(d[1]).To(BeNumerically(">=", -BobAmplitude-1e-6))
		}
	})

	It("tolerates an empty set", func() {
		empty := NewOrnaments(0, 100, nil, palette.Classic())
		empty.Advance(Scatter, 1)
		empty.Positions(make([]mgl32.Vec3, 3), 1)
		Expect(empty.Count()).To(BeZero())
	})
})
