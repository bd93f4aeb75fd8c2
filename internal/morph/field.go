package morph

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/morphfield/internal/compute"
	"github.com/san-kum/morphfield/internal/palette"
	"github.com/san-kum/morphfield/internal/shape"
)

const (
	DefaultFieldCount = 15000
	// DefaultRate is the progress gained per second of a transition.
	DefaultRate = 0.8

	BreathAmplitude = 0.1
	BreathSpeed     = 0.5
	HighlightSpeed  = 2.0
)

// Attr is the per-point variation assigned once at creation.
type Attr struct {
	// Pick and Tint are the draws PointColor turned into Color.
	Pick  float32
	Tint  float32
	Color colorful.Color
}

// Field is the dense point set. Each point travels from a start position to a
// target position as the shared progress scalar goes from 0 to 1.
//
// Field is not safe for concurrent use; one render tick owns it.
type Field struct {
	Rate    float32
	Backend compute.Backend

	count    int
	start    []mgl32.Vec3
	target   []mgl32.Vec3
	attrs    []Attr
	colors   []colorful.Color
	progress float32
	applied  State
	sampler  *shape.Sampler
}

// NewField builds a field of count points resting on the tree shape.
func NewField(count int, sampler *shape.Sampler, pal palette.Palette) *Field {
	if count < 0 {
		count = 0
	}
	if sampler == nil {
		sampler = shape.NewSampler(1)
	}

	f := &Field{
		Rate:    DefaultRate,
		count:   count,
		start:   make([]mgl32.Vec3, count),
		target:  make([]mgl32.Vec3, count),
		attrs:   make([]Attr, count),
		colors:  make([]colorful.Color, count),
		applied: Tree,
		sampler: sampler,
	}

	for i := 0; i < count; i++ {
		p := shape.Tree(i, count)
		f.start[i] = p
		f.target[i] = p

		pick, tint := sampler.Float32(), sampler.Float32()
		c := pal.PointColor(pick, tint)
		f.attrs[i] = Attr{Pick: pick, Tint: tint, Color: c}
		f.colors[i] = c
	}
	return f
}

func (f *Field) backend() compute.Backend {
	if f.Backend != nil {
		return f.Backend
	}
	return compute.GetBackend()
}

func (f *Field) Count() int              { return f.count }
func (f *Field) Progress() float32       { return f.progress }
func (f *Field) State() State            { return f.applied }
func (f *Field) Start(i int) mgl32.Vec3  { return f.start[i] }
func (f *Field) Target(i int) mgl32.Vec3 { return f.target[i] }
func (f *Field) Attributes() []Attr      { return f.attrs }

// Colors is the parallel color array. Callers must not modify it.
func (f *Field) Colors() []colorful.Color { return f.colors }

// SetState retargets the field toward s. Every point's displayed position
// becomes its new start so the shape never jumps. Requesting the state the
// field is already heading to is a no-op and reports false.
func (f *Field) SetState(s State) bool {
	if !s.Valid() || s == f.applied {
		return false
	}

	f.backend().Lerp(f.start, f.start, f.target, f.progress)

	gen := For(s, f.sampler)
	for i := 0; i < f.count; i++ {
		f.target[i] = gen(i, f.count)
	}

	f.progress = 0
	f.applied = s
	return true
}

// Advance moves progress forward by dt seconds, holding at 1.
// Non-positive and NaN deltas are ignored.
func (f *Field) Advance(dt float32) {
	if !(dt > 0) {
		return
	}
	f.progress = math32.Min(1, f.progress+dt*f.Rate)
}

// Interpolated is the transition position of point i without organic motion.
func (f *Field) Interpolated(i int) mgl32.Vec3 {
	a, b, t := f.start[i], f.target[i], f.progress
	if t >= 1 {
		return b
	}
	return mgl32.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// Position is the displayed position of point i at elapsed seconds.
func (f *Field) Position(i int, elapsed float32) mgl32.Vec3 {
	return f.Interpolated(i).Add(f.organic(i, elapsed))
}

// Positions fills dst with every displayed position. dst must hold Count points.
func (f *Field) Positions(dst []mgl32.Vec3, elapsed float32) {
	f.backend().Lerp(dst, f.start, f.target, f.progress)
	n := len(dst)
	if n > f.count {
		n = f.count
	}
	for i := 0; i < n; i++ {
		dst[i] = dst[i].Add(f.organic(i, elapsed))
	}
}

// organic is the horizontal breathing offset layered over the transition.
// Height is left alone.
func (f *Field) organic(i int, elapsed float32) mgl32.Vec3 {
	s := f.start[i]
	return mgl32.Vec3{
		math32.Sin(elapsed*BreathSpeed+s[1]) * BreathAmplitude,
		0,
		math32.Cos(elapsed*BreathSpeed+s[0]) * BreathAmplitude,
	}
}

// Highlight is the glow factor in [0, 1] for a point displayed at height y.
func Highlight(y, elapsed float32) float32 {
	return math32.Sin(elapsed*HighlightSpeed+y*0.5)*0.5 + 0.5
}

// For returns the generator for s drawing randomness from sampler.
// A nil sampler uses the process-wide one.
func For(s State, sampler *shape.Sampler) shape.Generator {
	if sampler == nil {
		switch s {
		case Scatter:
			return shape.Scatter
		case Love:
			return shape.Love
		}
		return shape.Tree
	}
	switch s {
	case Scatter:
		return sampler.Scatter
	case Love:
		return sampler.Love
	default:
		return sampler.Tree
	}
}
