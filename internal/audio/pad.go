package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

// Gm7 add9, G2 to A3.
var padChord = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

const (
	padBaseCutoff  = 300.0
	padCutoffRange = 900.0
	padVolume      = 0.25
	padDelay       = 0.6
	padFeedback    = 0.7
)

// Pad is an endless ambient chord. Motion opens its low-pass filter: set it
// from the transition state every tick and the sound brightens while the
// points travel and settles once they land.
type Pad struct {
	mu     sync.Mutex
	motion float64

	rate   beep.SampleRate
	time   float64
	smooth float64
	filter [2]float64
	delay  [2][]float64
	head   int
}

func NewPad(rate beep.SampleRate) *Pad {
	n := rate.N(time.Duration(padDelay * float64(time.Second)))
	return &Pad{
		rate:  rate,
		delay: [2][]float64{make([]float64, n), make([]float64, n)},
	}
}

// SetMotion sets the target brightness in [0, 1].
func (p *Pad) SetMotion(v float64) {
	v = math.Max(0, math.Min(1, v))
	p.mu.Lock()
	p.motion = v
	p.mu.Unlock()
}

// Motion maps a transition progress to pad brightness: loudest mid flight.
func Motion(progress float32) float64 {
	return math.Sin(float64(progress) * math.Pi)
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4*math.Abs(p-0.5) - 1
}

// lpf is a one-pole low-pass step.
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1 / (2 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

func (p *Pad) Stream(samples [][2]float64) (n int, ok bool) {
	p.mu.Lock()
	target := p.motion
	p.mu.Unlock()

	dt := 1 / float64(p.rate)
	g := 1 / float64(len(padChord))

	for i := range samples {
		p.smooth = p.smooth*0.9995 + target*0.0005
		cutoff := padBaseCutoff + p.smooth*padCutoffRange

		var l, r float64
		for j, f := range padChord {
			lfo := math.Sin(p.time*0.2 + float64(j))
			l += triangle(p.time*f*0.999) * g * (0.7 + 0.3*lfo)
			r += triangle(p.time*f*1.001) * g * (0.7 + 0.3*lfo)
		}

		p.filter[0] = lpf(l, cutoff, dt, p.filter[0])
		p.filter[1] = lpf(r, cutoff, dt, p.filter[1])

		dl, dr := p.delay[0][p.head], p.delay[1][p.head]
		mixL := p.filter[0] + dl*0.3 + dr*0.1
		mixR := p.filter[1] + dr*0.3 + dl*0.1
		p.delay[0][p.head] = mixL * padFeedback
		p.delay[1][p.head] = mixR * padFeedback
		p.head = (p.head + 1) % len(p.delay[0])

		samples[i][0] = mixL * padVolume
		samples[i][1] = mixR * padVolume
		p.time += dt
	}
	return len(samples), true
}

func (p *Pad) Err() error { return nil }
