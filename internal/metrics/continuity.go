package metrics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/morphfield/internal/session"
)

// DefaultJumpThreshold is the largest single-frame move that still reads as motion.
const DefaultJumpThreshold = 2.0

// Continuity is the share of state changes across which no point jumped more
// than the threshold in one frame.
type Continuity struct {
	name       string
	threshold  float64
	prev       []mgl32.Vec3
	violations int
	samples    int
}

func NewContinuity(threshold float64) *Continuity {
	return &Continuity{
		name:      "continuity",
		threshold: threshold,
	}
}

func (c *Continuity) Name() string { return c.name }

func (c *Continuity) Observe(f session.Frame) {
	if f.Changed && len(c.prev) == len(f.Positions) {
		c.samples++
		for i, p := range f.Positions {
			if float64(p.Sub(c.prev[i]).Len()) > c.threshold {
				c.violations++
				break
			}
		}
	}
	c.prev = append(c.prev[:0], f.Positions...)
}

func (c *Continuity) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Continuity) Reset() {
	c.prev = c.prev[:0]
	c.violations = 0
	c.samples = 0
}
