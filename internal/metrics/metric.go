// Package metrics summarises a run from the frames it produced.
package metrics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/morphfield/internal/session"
)

type Metric interface {
	Name() string
	Observe(f session.Frame)
	Value() float64
	Reset()
}

// Set observes every frame with each of its metrics.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set { return &Set{metrics: ms} }

// Default is the set recorded for headless runs.
func Default() *Set {
	return NewSet(
		NewSpread(),
		NewDisplacement(),
		NewSettleTime(),
		NewContinuity(DefaultJumpThreshold),
	)
}

func (s *Set) Observe(f session.Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Set) Names() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	sort.Strings(names)
	return names
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

// RMSRadius is the root mean square distance of points from their centroid.
func RMSRadius(points []mgl32.Vec3) float64 {
	if len(points) == 0 {
		return 0
	}
	var c [3]float64
	for _, p := range points {
		c[0] += float64(p[0])
		c[1] += float64(p[1])
		c[2] += float64(p[2])
	}
	n := float64(len(points))
	c[0], c[1], c[2] = c[0]/n, c[1]/n, c[2]/n

	sum := 0.0
	for _, p := range points {
		dx := float64(p[0]) - c[0]
		dy := float64(p[1]) - c[1]
		dz := float64(p[2]) - c[2]
		sum += dx*dx + dy*dy + dz*dz
	}
	return math.Sqrt(sum / n)
}
