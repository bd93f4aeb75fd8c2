package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"

	"github.com/san-kum/morphfield/internal/morph"
)

// Player mixes chimes and the pad onto the default output device.
type Player struct {
	mu     sync.Mutex
	volume float64
	mixer  *beep.Mixer
	pad    *Pad
	log    *zap.Logger
	open   bool
}

func NewPlayer(vol float64, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		volume: vol,
		mixer:  &beep.Mixer{},
		pad:    NewPad(SampleRate),
		log:    log,
	}
}

// Open starts the speaker. Without an output device it returns an error and
// the player stays silent.
func (p *Player) Open(withPad bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: speaker: %w", err)
	}
	if withPad {
		p.mixer.Add(volume(p.pad, p.volume*0.5))
	}
	speaker.Play(p.mixer)
	p.open = true
	return nil
}

// OnChange plays the chime for the new state. It matches the session hook signature.
func (p *Player) OnChange(from, to morph.State) {
	p.mu.Lock()
	open := p.open
	p.mu.Unlock()
	if !open {
		return
	}
	speaker.Lock()
	p.mixer.Add(Chime(to, p.volume))
	speaker.Unlock()
	p.log.Debug("chime", zap.Stringer("state", to))
}

// SetMotion forwards the transition state to the pad.
func (p *Player) SetMotion(progress float32) {
	p.pad.SetMotion(Motion(progress))
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	speaker.Close()
	p.open = false
}

// WriteWAV encodes s as 16-bit stereo.
func WriteWAV(w io.WriteSeeker, s beep.Streamer) error {
	format := beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}
	return wav.Encode(w, s, format)
}
