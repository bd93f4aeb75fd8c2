package morph

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/morphfield/internal/compute"
	"github.com/san-kum/morphfield/internal/palette"
	"github.com/san-kum/morphfield/internal/shape"
)

const (
	DefaultOrnamentCount = 120
	// DefaultOrnamentRate scales each ornament's weight into an easing factor per second.
	DefaultOrnamentRate = 2.0
	BobAmplitude        = 0.1
)

// Ornament is a decorative item that eases on its own schedule.
type Ornament struct {
	Weight float32
	Phase  float32
	Scale  float32
	Color  colorful.Color
}

// Ornaments is the small instanced set. There is no shared progress: every
// frame each item recomputes its target and moves a weighted fraction of the
// remaining distance toward it.
type Ornaments struct {
	Rate    float32
	Backend compute.Backend

	items      []Ornament
	weights    []float32
	current    []mgl32.Vec3
	target     []mgl32.Vec3
	fieldCount int
	sampler    *shape.Sampler
}

// NewOrnaments samples its targets from the shapes of a field with fieldCount points.
func NewOrnaments(count, fieldCount int, sampler *shape.Sampler, pal palette.Palette) *Ornaments {
	if count < 0 {
		count = 0
	}
	if sampler == nil {
		sampler = shape.NewSampler(1)
	}

	o := &Ornaments{
		Rate:       DefaultOrnamentRate,
		items:      make([]Ornament, count),
		weights:    make([]float32, count),
		current:    make([]mgl32.Vec3, count),
		target:     make([]mgl32.Vec3, count),
		fieldCount: fieldCount,
		sampler:    sampler,
	}

	for i := range o.items {
		it := Ornament{
			Weight: 0.5 + sampler.Float32(),
			Phase:  sampler.Float32() * 2 * math.Pi,
			Scale:  0.1 + sampler.Float32()*0.2,
			Color:  pal.OrnamentColor(sampler.Float32()),
		}
		o.items[i] = it
		o.weights[i] = it.Weight
	}
	return o
}

func (o *Ornaments) Count() int                  { return len(o.items) }
func (o *Ornaments) Items() []Ornament           { return o.items }
func (o *Ornaments) Current(i int) mgl32.Vec3    { return o.current[i] }
func (o *Ornaments) LastTarget(i int) mgl32.Vec3 { return o.target[i] }

// sample maps ornament i onto a point index of the field shapes.
func (o *Ornaments) sample(i int) int {
	return int(math.Floor(float64(i) / float64(len(o.items)) * float64(o.fieldCount)))
}

// Advance re-targets every ornament toward state and eases it by dt.
func (o *Ornaments) Advance(state State, dt float32) {
	if len(o.items) == 0 {
		return
	}
	gen := For(state, o.sampler)
	for i := range o.items {
		o.target[i] = gen(o.sample(i), o.fieldCount)
	}
	if !(dt > 0) {
		return
	}
	o.backend().Ease(o.current, o.target, o.weights, dt*o.Rate)
}

// Position is the displayed position of ornament i, with its bob.
func (o *Ornaments) Position(i int, elapsed float32) mgl32.Vec3 {
	p := o.current[i]
	p[1] += math32.Sin(elapsed+o.items[i].Phase) * BobAmplitude
	return p
}

// Positions fills dst with every displayed ornament position.
func (o *Ornaments) Positions(dst []mgl32.Vec3, elapsed float32) {
	n := len(dst)
	if n > len(o.items) {
		n = len(o.items)
	}
	for i := 0; i < n; i++ {
		dst[i] = o.Position(i, elapsed)
	}
}

func (o *Ornaments) backend() compute.Backend {
	if o.Backend != nil {
		return o.Backend
	}
	return compute.GetBackend()
}
