package gesture

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/san-kum/morphfield/internal/morph"
)

// Landmark indices used by the classifier.
const (
	LandmarkCount = 21

	Wrist     = 0
	ThumbTip  = 4
	IndexPIP  = 6
	IndexTip  = 8
	MiddlePIP = 10
	MiddleTip = 12
	RingPIP   = 14
	RingTip   = 16
	PinkyPIP  = 18
	PinkyTip  = 20
)

const DefaultPinchThreshold = 0.05

// Landmark is a point in normalized image space, y growing downward.
type Landmark struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Hand is the ordered landmark list of one detected hand.
type Hand []Landmark

// Result is the output of one classifier invocation.
type Result struct {
	Hands []Hand `json:"hands"`
}

type Gesture int

const (
	None Gesture = iota
	Pinch
	Open
	Fist
)

var gestureNames = [...]string{
	None:  "none",
	Pinch: "pinch",
	Open:  "open",
	Fist:  "fist",
}

func (g Gesture) String() string {
	if g < None || g > Fist {
		return fmt.Sprintf("Gesture(%d)", int(g))
	}
	return gestureNames[g]
}

func ParseGesture(name string) (Gesture, error) {
	for g, n := range gestureNames {
		if strings.EqualFold(name, n) {
			return Gesture(g), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownGesture, name)
}

func (g Gesture) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Gesture) UnmarshalText(text []byte) error {
	v, err := ParseGesture(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// State maps a gesture to the morph state it requests.
// None requests nothing.
func (g Gesture) State() (morph.State, bool) {
	switch g {
	case Pinch:
		return morph.Love, true
	case Open:
		return morph.Scatter, true
	case Fist:
		return morph.Tree, true
	}
	return morph.Tree, false
}

// Signal is the per-frame summary of the first hand.
// X and Y are in [-1, 1] with Y pointing up.
type Signal struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Gesture  Gesture `json:"gesture"`
	Detected bool    `json:"detected"`
}

// Request is the state this signal asks for, if any.
func (s Signal) Request() (morph.State, bool) {
	if !s.Detected {
		return morph.Tree, false
	}
	return s.Gesture.State()
}

type Classifier struct {
	// PinchThreshold is the thumb-to-index distance below which a hand pinches.
	PinchThreshold float32
}

func NewClassifier(pinch float32) Classifier {
	if !(pinch > 0) {
		pinch = DefaultPinchThreshold
	}
	return Classifier{PinchThreshold: pinch}
}

// Classify reads the first hand of r. Frames without a complete hand yield
// the zero Signal.
func (c Classifier) Classify(r Result) Signal {
	if len(r.Hands) == 0 || len(r.Hands[0]) < LandmarkCount {
		return Signal{}
	}
	h := r.Hands[0]

	threshold := c.PinchThreshold
	if !(threshold > 0) {
		threshold = DefaultPinchThreshold
	}

	sig := Signal{
		X:        (h[Wrist].X - 0.5) * 2,
		Y:        (h[Wrist].Y - 0.5) * -2,
		Detected: true,
	}

	switch {
	case dist2D(h[ThumbTip], h[IndexTip]) < threshold:
		sig.Gesture = Pinch
	case extended(h) >= 3:
		sig.Gesture = Open
	default:
		sig.Gesture = Fist
	}
	return sig
}

// Classify uses the default pinch threshold.
func Classify(r Result) Signal {
	return NewClassifier(DefaultPinchThreshold).Classify(r)
}

func dist2D(a, b Landmark) float32 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// extended counts the fingers whose tip sits above its middle joint.
func extended(h Hand) int {
	n := 0
	for _, f := range [...][2]int{
		{IndexTip, IndexPIP},
		{MiddleTip, MiddlePIP},
		{RingTip, RingPIP},
		{PinkyTip, PinkyPIP},
	} {
		if h[f[0]].Y < h[f[1]].Y {
			n++
		}
	}
	return n
}
