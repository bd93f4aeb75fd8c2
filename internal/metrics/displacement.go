package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/morphfield/internal/session"
)

// Displacement is the mean distance a point moves between consecutive frames,
// averaged over the run.
type Displacement struct {
	name    string
	prev    []mgl32.Vec3
	last    float64
	peak    float64
	sum     float64
	samples int
}

func NewDisplacement() *Displacement { return &Displacement{name: "displacement"} }

func (d *Displacement) Name() string { return d.name }

func (d *Displacement) Observe(f session.Frame) {
	if len(d.prev) == len(f.Positions) && len(d.prev) > 0 {
		total := 0.0
		for i, p := range f.Positions {
			total += float64(p.Sub(d.prev[i]).Len())
		}
		d.last = total / float64(len(d.prev))
		d.peak = math.Max(d.peak, d.last)
		d.sum += d.last
		d.samples++
	}
	d.prev = append(d.prev[:0], f.Positions...)
}

func (d *Displacement) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return d.sum / float64(d.samples)
}

// Last is the displacement of the latest frame.
func (d *Displacement) Last() float64 { return d.last }
func (d *Displacement) Peak() float64 { return d.peak }

func (d *Displacement) Reset() {
	d.prev = d.prev[:0]
	d.last, d.peak, d.sum = 0, 0, 0
	d.samples = 0
}
