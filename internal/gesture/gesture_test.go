package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/morphfield/internal/morph"
)

func openHand() Hand { return SynthHand(Open, 0, 0) }

func TestClassifyNoHand(t *testing.T) {
	assert.Equal(t, Signal{}, Classify(Result{}))

	short := Result{Hands: []Hand{make(Hand, 20)}}
	assert.Equal(t, Signal{}, Classify(short), "a hand needs 21 landmarks")
}

func TestClassifyPinchRequestsLove(t *testing.T) {
	h := openHand()
	h[ThumbTip] = Landmark{X: 0.40, Y: 0.30}
	h[IndexTip] = Landmark{X: 0.42, Y: 0.30}

	sig := Classify(Result{Hands: []Hand{h}})
	require.True(t, sig.Detected)
	assert.Equal(t, Pinch, sig.Gesture)

	st, ok := sig.Request()
	require.True(t, ok)
	assert.Equal(t, morph.Love, st)
}

func TestClassifyWristCoordinates(t *testing.T) {
	h := openHand()
	h[Wrist] = Landmark{X: 0.75, Y: 0.25}

	sig := Classify(Result{Hands: []Hand{h}})
	assert.InDelta(t, 0.5, sig.X, 1e-6)
	assert.InDelta(t, 0.5, sig.Y, 1e-6, "image y grows down, signal y grows up")
}

func TestClassifyFingerCount(t *testing.T) {
	h := SynthHand(Fist, 0, 0)
	assert.Equal(t, Fist, Classify(Result{Hands: []Hand{h}}).Gesture)

	// Three extended fingers are enough for an open hand.
	for _, f := range [][2]int{{IndexTip, IndexPIP}, {MiddleTip, MiddlePIP}, {RingTip, RingPIP}} {
		h[f[0]].Y = h[f[1]].Y - 0.05
	}
	assert.Equal(t, Open, Classify(Result{Hands: []Hand{h}}).Gesture)
}

func TestClassifyOnlyFirstHand(t *testing.T) {
	r := Result{Hands: []Hand{SynthHand(Fist, 0, 0), SynthHand(Pinch, 0, 0)}}
	assert.Equal(t, Fist, Classify(r).Gesture)
}

func TestPinchThreshold(t *testing.T) {
	h := openHand()
	h[ThumbTip] = Landmark{X: 0.40, Y: 0.30}
	h[IndexTip] = Landmark{X: 0.47, Y: 0.30}
	r := Result{Hands: []Hand{h}}

	assert.Equal(t, Open, Classify(r).Gesture)
	assert.Equal(t, Pinch, NewClassifier(0.1).Classify(r).Gesture)
	assert.Equal(t, Open, Classifier{}.Classify(r).Gesture, "zero threshold falls back to the default")
}

func TestSynthHandGestures(t *testing.T) {
	for _, g := range []Gesture{Pinch, Open, Fist} {
		for _, pos := range [][2]float32{{0, 0}, {-0.6, 0.4}, {0.8, -0.5}} {
			sig := Classify(Result{Hands: []Hand{SynthHand(g, pos[0], pos[1])}})
			assert.Equal(t, g, sig.Gesture, "gesture %v at %v", g, pos)
			assert.InDelta(t, pos[0], sig.X, 1e-5)
			assert.InDelta(t, pos[1], sig.Y, 1e-5)
		}
	}
}

func TestGestureState(t *testing.T) {
	tests := []struct {
		g    Gesture
		want morph.State
		ok   bool
	}{
		{Pinch, morph.Love, true},
		{Open, morph.Scatter, true},
		{Fist, morph.Tree, true},
		{None, morph.Tree, false},
	}
	for _, tt := range tests {
		got, ok := tt.g.State()
		assert.Equal(t, tt.ok, ok, tt.g.String())
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.g.String())
		}
	}

	_, ok := Signal{Gesture: Pinch}.Request()
	assert.False(t, ok, "undetected signals request nothing")
}

func TestParseGesture(t *testing.T) {
	g, err := ParseGesture("PINCH")
	require.NoError(t, err)
	assert.Equal(t, Pinch, g)

	_, err = ParseGesture("wave")
	assert.ErrorIs(t, err, ErrUnknownGesture)

	var bad Gesture
	assert.ErrorIs(t, bad.UnmarshalText([]byte("thumbs")), ErrUnknownGesture)

	var back Gesture
	require.NoError(t, back.UnmarshalText([]byte("fist")))
	assert.Equal(t, Fist, back)
}
