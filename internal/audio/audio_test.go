package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/san-kum/morphfield/internal/morph"
)

func peak(buf [][2]float64) float64 {
	p := 0.0
	for _, s := range buf {
		p = math.Max(p, math.Max(math.Abs(s[0]), math.Abs(s[1])))
	}
	return p
}

func TestOscillatorLength(t *testing.T) {
	osc := NewOscillator(440, 100*time.Millisecond, WaveSine, SampleRate)
	buf := Render(osc, SampleRate.N(time.Second))
	if len(buf) != SampleRate.N(100*time.Millisecond) {
		t.Errorf("expected %d samples, got %d", SampleRate.N(100*time.Millisecond), len(buf))
	}
	if p := peak(buf); p < 0.99 || p > 1 {
		t.Errorf("unexpected sine peak %f", p)
	}
}

func TestEnvelopeFadesOut(t *testing.T) {
	d := 200 * time.Millisecond
	env := NewEnvelope(NewOscillator(440, d, WaveTriangle, SampleRate), d, 10*time.Millisecond, 50*time.Millisecond, SampleRate)
	buf := Render(env, SampleRate.N(time.Second))
	if len(buf) == 0 {
		t.Fatal("no samples")
	}
	if math.Abs(buf[0][0]) > 1e-9 {
		t.Errorf("attack should start silent, got %f", buf[0][0])
	}
	tail := buf[len(buf)-10:]
	if p := peak(tail); p > 0.01 {
		t.Errorf("release should end near silence, got %f", p)
	}
}

func TestChimes(t *testing.T) {
	limit := SampleRate.N(2 * time.Second)
	for _, s := range morph.States() {
		buf := Render(Chime(s, 0.8), limit)
		if len(buf) == 0 || len(buf) >= limit {
			t.Errorf("%v: unexpected length %d", s, len(buf))
		}
		p := peak(buf)
		if p <= 0.05 || p > 1 {
			t.Errorf("%v: peak %f out of range", s, p)
		}
	}
}

func TestChimeSilentAtZeroVolume(t *testing.T) {
	buf := Render(Chime(morph.Love, 0), SampleRate.N(time.Second))
	if p := peak(buf); p != 0 {
		t.Errorf("expected silence, got peak %f", p)
	}
}

func TestPadBrightensWithMotion(t *testing.T) {
	n := SampleRate.N(500 * time.Millisecond)

	still := NewPad(SampleRate)
	moving := NewPad(SampleRate)
	moving.SetMotion(1)

	a := Render(beep.Take(n, still), n)
	b := Render(beep.Take(n, moving), n)
	if len(a) != n || len(b) != n {
		t.Fatalf("pad should stream without end, got %d and %d", len(a), len(b))
	}
	if peak(a) > 1 || peak(b) > 1 {
		t.Error("pad clips")
	}
	if moving.smooth <= still.smooth {
		t.Error("motion should open the filter")
	}
}

func TestMotion(t *testing.T) {
	if Motion(0) != 0 {
		t.Error("no motion at rest")
	}
	if math.Abs(Motion(0.5)-1) > 1e-9 {
		t.Error("full motion mid flight")
	}
	if Motion(1) > 1e-6 {
		t.Error("no motion once landed")
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAV(f, Chime(morph.Tree, 0.5)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 44 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Errorf("not a wav file: % x", data[:12])
	}
}

func TestPlayerClosedIsSilent(t *testing.T) {
	p := NewPlayer(0.5, nil)
	p.OnChange(morph.Tree, morph.Love)
	p.SetMotion(0.3)
	p.Close()
}
