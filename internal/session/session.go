// Package session owns one running visualization: the point sets, the
// requested state, the latest hand signal and the camera rig. Advance is the
// single tick function; whoever calls it owns scheduling.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/morphfield/internal/compute"
	"github.com/san-kum/morphfield/internal/gesture"
	"github.com/san-kum/morphfield/internal/morph"
	"github.com/san-kum/morphfield/internal/palette"
	"github.com/san-kum/morphfield/internal/scene"
	"github.com/san-kum/morphfield/internal/shape"
)

type Options struct {
	Particles    int
	Ornaments    int
	MorphRate    float32
	OrnamentRate float32
	// Seed makes a run reproducible. Zero draws a seed from the clock.
	Seed       int64
	Initial    morph.State
	Palette    palette.Palette
	AutoRotate bool
	Backend    compute.Backend
	Logger     *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Particles:    morph.DefaultFieldCount,
		Ornaments:    morph.DefaultOrnamentCount,
		MorphRate:    morph.DefaultRate,
		OrnamentRate: morph.DefaultOrnamentRate,
		Initial:      morph.Tree,
		Palette:      palette.Classic(),
		AutoRotate:   true,
	}
}

// Frame is everything a renderer needs for one tick. Its slices are reused by
// the next Advance.
type Frame struct {
	State    morph.State
	Progress float32
	Elapsed  float32
	Changed  bool

	Positions  []mgl32.Vec3
	Colors     []colorful.Color
	Highlights []float32

	Ornaments     []mgl32.Vec3
	OrnamentItems []morph.Ornament

	RotX, RotY float32
	Hand       gesture.Signal
	UIVisible  bool
}

type Session struct {
	field     *morph.Field
	ornaments *morph.Ornaments
	rig       *scene.Rig
	palette   palette.Palette
	log       *zap.Logger

	requested atomic.Int32
	hand      atomic.Pointer[gesture.Signal]
	uiVisible atomic.Bool

	mu          sync.Mutex
	elapsed     float32
	hooks       []func(from, to morph.State)
	positions   []mgl32.Vec3
	highlights  []float32
	ornamentPos []mgl32.Vec3
}

func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if !opts.Initial.Valid() {
		opts.Initial = morph.Tree
	}

	sampler := shape.NewSampler(opts.Seed)
	field := morph.NewField(opts.Particles, sampler, opts.Palette)
	orn := morph.NewOrnaments(opts.Ornaments, field.Count(), sampler, opts.Palette)
	if opts.MorphRate > 0 {
		field.Rate = opts.MorphRate
	}
	if opts.OrnamentRate > 0 {
		orn.Rate = opts.OrnamentRate
	}
	field.Backend = opts.Backend
	orn.Backend = opts.Backend

	s := &Session{
		field:       field,
		ornaments:   orn,
		rig:         scene.NewRig(opts.AutoRotate),
		palette:     opts.Palette,
		log:         opts.Logger,
		positions:   make([]mgl32.Vec3, field.Count()),
		highlights:  make([]float32, field.Count()),
		ornamentPos: make([]mgl32.Vec3, orn.Count()),
	}
	s.requested.Store(int32(opts.Initial))
	s.hand.Store(&gesture.Signal{})
	s.uiVisible.Store(true)
	return s
}

// Request proposes the state for the next tick. The last request before a
// tick wins.
func (s *Session) Request(st morph.State) bool {
	if !st.Valid() {
		return false
	}
	s.requested.Store(int32(st))
	return true
}

// Requested is the pending proposal.
func (s *Session) Requested() morph.State { return morph.State(s.requested.Load()) }

// Observe records a hand signal and requests the state its gesture maps to.
// Signals without a detected, mappable gesture leave the state alone.
func (s *Session) Observe(sig gesture.Signal) {
	s.hand.Store(&sig)
	if st, ok := sig.Request(); ok {
		s.Request(st)
	}
}

func (s *Session) Hand() gesture.Signal { return *s.hand.Load() }

func (s *Session) ToggleUI() bool {
	for {
		v := s.uiVisible.Load()
		if s.uiVisible.CompareAndSwap(v, !v) {
			return !v
		}
	}
}

func (s *Session) UIVisible() bool { return s.uiVisible.Load() }

// OnChange registers fn to run inside Advance whenever the applied state
// changes. fn must not call back into the session's tick.
func (s *Session) OnChange(fn func(from, to morph.State)) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

func (s *Session) Palette() palette.Palette    { return s.palette }
func (s *Session) Field() *morph.Field         { return s.field }
func (s *Session) Ornaments() *morph.Ornaments { return s.ornaments }

func (s *Session) Elapsed() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Advance runs one tick of dt seconds: it applies the pending request, moves
// the transition, the ornaments and the rig, and returns the frame to draw.
func (s *Session) Advance(dt float32) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.field.State()
	to := s.Requested()
	changed := s.field.SetState(to)
	if changed {
		s.log.Info("state change",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Float32("elapsed", s.elapsed))
		for _, fn := range s.hooks {
			fn(from, to)
		}
	}

	if dt > 0 {
		s.elapsed += dt
	}
	s.field.Advance(dt)
	s.ornaments.Advance(s.field.State(), dt)

	hand := s.Hand()
	s.rig.Update(hand, s.elapsed, dt)
	rx, ry := s.rig.Rotation()

	s.field.Positions(s.positions, s.elapsed)
	for i, p := range s.positions {
		s.highlights[i] = morph.Highlight(p[1], s.elapsed)
	}
	s.ornaments.Positions(s.ornamentPos, s.elapsed)

	return Frame{
		State:         s.field.State(),
		Progress:      s.field.Progress(),
		Elapsed:       s.elapsed,
		Changed:       changed,
		Positions:     s.positions,
		Colors:        s.field.Colors(),
		Highlights:    s.highlights,
		Ornaments:     s.ornamentPos,
		OrnamentItems: s.ornaments.Items(),
		RotX:          rx,
		RotY:          ry,
		Hand:          hand,
		UIVisible:     s.UIVisible(),
	}
}

// Run drives the gesture loop and, when render is set, a render loop at fps
// until ctx ends. A nil tracker runs the render loop alone.
func (s *Session) Run(ctx context.Context, tracker *gesture.Tracker, fps int, render func(Frame)) error {
	g, gctx := errgroup.WithContext(ctx)

	if tracker != nil {
		g.Go(func() error {
			return tracker.Run(gctx, s.Observe)
		})
	}

	if render != nil {
		if fps <= 0 {
			fps = 60
		}
		g.Go(func() error {
			return s.renderLoop(gctx, fps, render)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (s *Session) renderLoop(ctx context.Context, fps int, render func(Frame)) error {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			render(s.Advance(dt))
		}
	}
}
