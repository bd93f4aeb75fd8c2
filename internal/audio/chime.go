package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/san-kum/morphfield/internal/morph"
)

const SampleRate = beep.SampleRate(44100)

const (
	chimeDuration = 600 * time.Millisecond
	chimeAttack   = 8 * time.Millisecond
	chimeRelease  = 450 * time.Millisecond
)

type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
	WaveNoise
)

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator streams duration of a mono waveform on both channels.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rand.New(rand.NewSource(int64(freq*1000) + 1)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveTriangle:
			val = triangle(o.phase)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	releaseStart := e.total - e.release
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.position >= releaseStart && e.release > 0 {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// volume scales linearly; zero is silent.
func volume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func note(freq float64, d time.Duration, wave WaveType) beep.Streamer {
	osc := NewOscillator(freq, d, wave, SampleRate)
	return NewEnvelope(osc, d, chimeAttack, chimeRelease, SampleRate)
}

// Chime is the cue played when the field starts moving toward s.
func Chime(s morph.State, vol float64) beep.Streamer {
	var mixed beep.Streamer
	switch s {
	case morph.Scatter:
		// A bright airy burst.
		mixed = beep.Mix(
			volume(note(1174.66, chimeDuration, WaveSine), 0.5),
			volume(NewEnvelope(NewOscillator(0, 250*time.Millisecond, WaveNoise, SampleRate),
				250*time.Millisecond, 5*time.Millisecond, 200*time.Millisecond, SampleRate), 0.15),
		)
	case morph.Love:
		// Two rising notes, a major third apart.
		mixed = beep.Seq(
			volume(note(659.25, chimeDuration/2, WaveSine), 0.6),
			volume(note(830.61, chimeDuration, WaveSine), 0.6),
		)
	default:
		// Bell on G4 with an octave overtone.
		mixed = beep.Mix(
			volume(note(392.00, chimeDuration, WaveSine), 0.7),
			volume(note(784.00, chimeDuration, WaveTriangle), 0.2),
		)
	}
	return volume(mixed, vol)
}

// Render drains s into a buffer of at most max frames.
func Render(s beep.Streamer, max int) [][2]float64 {
	out := make([][2]float64, 0, 4096)
	buf := make([][2]float64, 512)
	for len(out) < max {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}
