package metrics

import (
	"math"

	"github.com/san-kum/morphfield/internal/session"
)

// Spread is the RMS radius of the field in the latest frame.
type Spread struct {
	name string
	last float64
	max  float64
}

func NewSpread() *Spread { return &Spread{name: "spread"} }

func (s *Spread) Name() string { return s.name }

func (s *Spread) Observe(f session.Frame) {
	s.last = RMSRadius(f.Positions)
	s.max = math.Max(s.max, s.last)
}

func (s *Spread) Value() float64 { return s.last }
func (s *Spread) Max() float64   { return s.max }

func (s *Spread) Reset() {
	s.last = 0
	s.max = 0
}
