// Package scene holds the view-side state that frames the point sets.
package scene

import (
	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/morphfield/internal/gesture"
)

const (
	// PitchGain and YawGain scale the hand position into a rotation target.
	PitchGain = 0.2
	YawGain   = 0.3
	// AutoRotateSpeed is the idle yaw rate in radians per second.
	AutoRotateSpeed = 0.1

	DefaultFrequency = 2.0
	DefaultDamping   = 1.0
)

// Rig rotates the scene group. A detected hand steers it, otherwise it turns
// slowly around the vertical axis. Both axes follow their target on a
// critically damped spring.
type Rig struct {
	AutoRotate bool

	frequency float64
	damping   float64
	spring    harmonica.Spring
	step      float32

	pitch, pitchVel float64
	yaw, yawVel     float64
}

func NewRig(autoRotate bool) *Rig {
	return &Rig{
		AutoRotate: autoRotate,
		frequency:  DefaultFrequency,
		damping:    DefaultDamping,
	}
}

// Target is the rotation the rig is heading to for hand at elapsed seconds.
func (r *Rig) Target(hand gesture.Signal, elapsed float32) (pitch, yaw float32) {
	if hand.Detected {
		return hand.Y * PitchGain, hand.X * YawGain
	}
	if r.AutoRotate {
		return 0, elapsed * AutoRotateSpeed
	}
	return 0, 0
}

// Update moves the rig dt seconds toward its target.
func (r *Rig) Update(hand gesture.Signal, elapsed, dt float32) {
	if !(dt > 0) {
		return
	}
	if dt != r.step {
		r.spring = harmonica.NewSpring(float64(dt), r.frequency, r.damping)
		r.step = dt
	}

	tp, ty := r.Target(hand, elapsed)
	r.pitch, r.pitchVel = r.spring.Update(r.pitch, r.pitchVel, float64(tp))
	r.yaw, r.yawVel = r.spring.Update(r.yaw, r.yawVel, float64(ty))
}

func (r *Rig) Rotation() (pitch, yaw float32) {
	return float32(r.pitch), float32(r.yaw)
}
