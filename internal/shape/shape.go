package shape

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	TreeHeight = 12.0
	TreeRadius = 5.0
	TreeTurns  = 15.0

	ScatterRadius = 15.0

	LoveScale = 0.4
	LoveDepth = 5.0

	twoPi = 2 * math.Pi
)

// Generator maps a point index and the point count to a position.
type Generator func(index, count int) mgl32.Vec3

// Sampler is a random source for the stochastic shapes.
// It is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

var defaultSampler = NewSampler(time.Now().UnixNano())

// Float32 returns a uniform value in [0, 1).
func (s *Sampler) Float32() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float32()
}

// Tree is deterministic, the sampler is not used.
func (s *Sampler) Tree(index, count int) mgl32.Vec3 {
	return Tree(index, count)
}

func (s *Sampler) Scatter(index, count int) mgl32.Vec3 {
	s.mu.Lock()
	u1, u2, u3 := s.rng.Float32(), s.rng.Float32(), s.rng.Float32()
	s.mu.Unlock()

	theta := u1 * twoPi
	phi := math32.Acos(2*u2 - 1)
	r := ScatterRadius * math32.Cbrt(u3)

	sinPhi, cosPhi := math32.Sincos(phi)
	sinTheta, cosTheta := math32.Sincos(theta)
	return mgl32.Vec3{
		r * sinPhi * cosTheta,
		r * sinPhi * sinTheta,
		r * cosPhi,
	}
}

func (s *Sampler) Love(index, count int) mgl32.Vec3 {
	if count <= 0 {
		return mgl32.Vec3{}
	}
	u := s.Float32()

	t := float32(index) / float32(count) * twoPi
	st := math32.Sin(t)
	x := 16 * st * st * st
	y := 13*math32.Cos(t) - 5*math32.Cos(2*t) - 2*math32.Cos(3*t) - math32.Cos(4*t)
	z := (u - 0.5) * LoveDepth

	return mgl32.Vec3{x * LoveScale, y * LoveScale, z * LoveScale}
}

// Tree returns the point on the cone spiral for index.
func Tree(index, count int) mgl32.Vec3 {
	if count <= 0 {
		return mgl32.Vec3{}
	}
	ratio := float32(index) / float32(count)
	h := ratio * TreeHeight
	r := (1 - ratio) * TreeRadius
	angle := ratio * twoPi * TreeTurns

	sin, cos := math32.Sincos(angle)
	return mgl32.Vec3{cos * r, h - TreeHeight/2, sin * r}
}

// Scatter returns a fresh random point inside the scatter sphere.
// index and count only exist to satisfy [Generator].
func Scatter(index, count int) mgl32.Vec3 {
	return defaultSampler.Scatter(index, count)
}

// Love returns the heart point for index with a fresh depth jitter.
func Love(index, count int) mgl32.Vec3 {
	return defaultSampler.Love(index, count)
}

// Box is an axis-aligned bound.
type Box struct {
	Min, Max mgl32.Vec3
}

func (b Box) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Expand grows the box by d on every side.
func (b Box) Expand(d float32) Box {
	m := mgl32.Vec3{d, d, d}
	return Box{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// LoveBounds is the analytic bounding box of the heart.
// x peaks at 16, y spans [-17, 12] before scaling.
func LoveBounds() Box {
	return Box{
		Min: mgl32.Vec3{-16 * LoveScale, -17 * LoveScale, -LoveDepth / 2 * LoveScale},
		Max: mgl32.Vec3{16 * LoveScale, 12 * LoveScale, LoveDepth / 2 * LoveScale},
	}
}

// TreeBounds is the bounding box of the cone spiral.
func TreeBounds() Box {
	return Box{
		Min: mgl32.Vec3{-TreeRadius, -TreeHeight / 2, -TreeRadius},
		Max: mgl32.Vec3{TreeRadius, TreeHeight / 2, TreeRadius},
	}
}
