package shape

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Part names the piece of the companion figure a point belongs to.
type Part int

const (
	Body Part = iota
	Head
	LeftEar
	RightEar
	Gift
)

// The companion stands beside the tree, outside the rotating group.
var (
	CompanionOrigin = mgl32.Vec3{-8, -5, 5}
	CompanionYaw    = float32(0.4)
	CompanionScale  = float32(0.8)
)

const (
	bodyRadius = 1.5
	bodyHalf   = 1.0
	headRadius = 1.3
	earRadius  = 0.3
	earHalf    = 1.0
	earTilt    = 0.2
	giftHalf   = 0.75

	goldenAngle = 2.399963229728653
)

var (
	bodyCenter = mgl32.Vec3{0, 1.5, 0}
	headCenter = mgl32.Vec3{0, 4.2, 0}
	earCenter  = mgl32.Vec3{0.6, 6, 0}
	giftCenter = mgl32.Vec3{0, 1, 1.8}
	partBounds = [...]float32{0.4, 0.65, 0.75, 0.85, 1}
	partsInSeq = [...]Part{Body, Head, LeftEar, RightEar, Gift}
)

func companionTransform() mgl32.Mat4 {
	o := CompanionOrigin
	s := CompanionScale
	return mgl32.Translate3D(o[0], o[1], o[2]).
		Mul4(mgl32.HomogRotate3DY(CompanionYaw)).
		Mul4(mgl32.Scale3D(s, s, s))
}

// CompanionPart is the part point index of count is drawn on. Parts take
// contiguous index ranges in the order body, head, ears, gift.
func CompanionPart(index, count int) Part {
	p, _ := companionSlot(index, count)
	return p
}

func companionSlot(index, count int) (Part, float32) {
	u := (float32(index) + 0.5) / float32(count)
	lo := float32(0)
	for i, hi := range partBounds {
		if u < hi || i == len(partBounds)-1 {
			return partsInSeq[i], math32.Min(1, (u-lo)/(hi-lo))
		}
		lo = hi
	}
	return Gift, 1
}

// Companion is a deterministic surface point of the rabbit-with-gift figure
// in scene coordinates.
func Companion(index, count int) mgl32.Vec3 {
	if count <= 0 || index < 0 {
		return mgl32.Vec3{}
	}
	return mgl32.TransformCoordinate(companionLocal(index, count), companionTransform())
}

// companionLocal is the point before the figure's placement.
func companionLocal(index, count int) mgl32.Vec3 {
	part, v := companionSlot(index, count)
	theta := float32(index) * goldenAngle
	switch part {
	case Body:
		return capsule(v, theta, bodyRadius, bodyHalf).Add(bodyCenter)
	case Head:
		return sphere(v, theta).Mul(headRadius).Add(headCenter)
	case LeftEar:
		p := mgl32.Rotate3DZ(earTilt).Mul3x1(capsule(v, theta, earRadius, earHalf))
		return p.Add(mgl32.Vec3{-earCenter[0], earCenter[1], earCenter[2]})
	case RightEar:
		p := mgl32.Rotate3DZ(-earTilt).Mul3x1(capsule(v, theta, earRadius, earHalf))
		return p.Add(earCenter)
	default:
		return box(index, v).Add(giftCenter)
	}
}

// sphere is a Fibonacci point on the unit sphere, v running pole to pole.
func sphere(v, theta float32) mgl32.Vec3 {
	y := 1 - 2*v
	r := math32.Sqrt(math32.Max(0, 1-y*y))
	return mgl32.Vec3{r * math32.Cos(theta), y, r * math32.Sin(theta)}
}

// capsule stretches a sphere of radius r by half along y.
func capsule(v, theta, r, half float32) mgl32.Vec3 {
	p := sphere(v, theta).Mul(r)
	if p[1] >= 0 {
		p[1] += half
	} else {
		p[1] -= half
	}
	return p
}

// box spreads points over the six faces of the gift cube.
func box(index int, v float32) mgl32.Vec3 {
	a := (2*v - 1) * giftHalf
	_, frac := math32.Modf(float32(index) * 0.618034)
	b := (2*frac - 1) * giftHalf
	side := float32(giftHalf)
	if index%2 == 1 {
		side = -side
	}
	switch (index / 2) % 3 {
	case 0:
		return mgl32.Vec3{side, a, b}
	case 1:
		return mgl32.Vec3{a, side, b}
	default:
		return mgl32.Vec3{a, b, side}
	}
}
