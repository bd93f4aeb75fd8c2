package gesture

import (
	"context"
	"fmt"
	"sync"
)

// Step holds one gesture for a number of frames. X and Y place the wrist in
// signal space, [-1, 1] with Y up.
type Step struct {
	Gesture Gesture `yaml:"gesture" json:"gesture"`
	Frames  int     `yaml:"frames" json:"frames"`
	X       float32 `yaml:"x" json:"x"`
	Y       float32 `yaml:"y" json:"y"`
}

// ScriptSource synthesises landmark frames that follow a schedule of steps.
type ScriptSource struct {
	mu    sync.Mutex
	steps []Step
	loop  bool
	step  int
	frame int
}

func NewScriptSource(steps []Step, loop bool) *ScriptSource {
	return &ScriptSource{steps: steps, loop: loop}
}

func (s *ScriptSource) Next(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.step < len(s.steps) && s.frame >= s.steps[s.step].Frames {
		s.step++
		s.frame = 0
		if s.step == len(s.steps) && s.loop && s.hasFrames() {
			s.step = 0
		}
	}
	if s.step >= len(s.steps) {
		return Result{}, fmt.Errorf("%w: script finished", ErrSourceUnavailable)
	}

	st := s.steps[s.step]
	s.frame++
	if st.Gesture == None {
		return Result{}, nil
	}
	return Result{Hands: []Hand{SynthHand(st.Gesture, st.X, st.Y)}}, nil
}

func (s *ScriptSource) hasFrames() bool {
	for _, st := range s.steps {
		if st.Frames > 0 {
			return true
		}
	}
	return false
}

func (*ScriptSource) Close() error { return nil }

// SynthHand builds a plausible 21-landmark hand making g with its wrist at
// signal coordinates (x, y).
func SynthHand(g Gesture, x, y float32) Hand {
	wx := x/2 + 0.5
	wy := 0.5 - y/2
	cx, cy := wx, wy-0.15

	h := make(Hand, LandmarkCount)
	h[Wrist] = Landmark{X: wx, Y: wy}

	// Fingers 0..3 are index, middle, ring, pinky; landmarks mcp, pip, dip, tip.
	for f := 0; f < 4; f++ {
		fx := cx + (float32(f)-1.5)*0.04
		base := 5 + 4*f
		curled := g == Fist || (g == Pinch && f == 0)
		offsets := [4]float32{0, -0.05, -0.08, -0.11}
		if curled {
			offsets = [4]float32{0, -0.04, -0.01, 0.01}
		}
		for j, dy := range offsets {
			h[base+j] = Landmark{X: fx, Y: cy + dy}
		}
	}

	thumb := Landmark{X: cx - 0.12, Y: cy}
	if g == Fist {
		thumb = Landmark{X: cx - 0.12, Y: cy + 0.06}
	}
	for j := 1; j <= 4; j++ {
		t := float32(j) / 4
		h[j] = Landmark{
			X: wx + (thumb.X-wx)*t,
			Y: wy + (thumb.Y-wy)*t,
		}
	}

	if g == Pinch {
		h[IndexTip] = Landmark{X: h[ThumbTip].X + 0.02, Y: h[ThumbTip].Y}
	}
	return h
}
