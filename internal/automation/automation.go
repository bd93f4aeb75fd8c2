// Package automation drives sessions headlessly from scripted scenarios.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/morphfield/internal/gesture"
	"github.com/san-kum/morphfield/internal/metrics"
	"github.com/san-kum/morphfield/internal/morph"
	"github.com/san-kum/morphfield/internal/session"
	"github.com/san-kum/morphfield/internal/storage"
)

const DefaultDt = 1.0 / 60

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario is a scripted sequence of commands applied to one session.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Seed        int64          `yaml:"seed"`
	Particles   int            `yaml:"particles"`
	Ornaments   int            `yaml:"ornaments"`
	Dt          float64        `yaml:"dt"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep holds either a direct state request or a synthetic hand for
// Hold seconds. A step with neither just lets time pass.
type ScenarioStep struct {
	State   string  `yaml:"state"`
	Gesture string  `yaml:"gesture"`
	X       float32 `yaml:"x"`
	Y       float32 `yaml:"y"`
	Hold    float64 `yaml:"hold"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	var errs []error
	if sc.Dt < 0 {
		errs = append(errs, fmt.Errorf("%w: negative dt", ErrInvalidScenario))
	}
	for i, st := range sc.Steps {
		if st.State != "" && st.Gesture != "" {
			errs = append(errs, fmt.Errorf("%w: step %d sets both state and gesture", ErrInvalidScenario, i+1))
		}
		if st.State != "" {
			if _, err := morph.ParseState(st.State); err != nil {
				errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
			}
		}
		if st.Gesture != "" {
			if _, err := gesture.ParseGesture(st.Gesture); err != nil {
				errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
			}
		}
		if st.Hold < 0 {
			errs = append(errs, fmt.Errorf("%w: step %d has negative hold", ErrInvalidScenario, i+1))
		}
	}
	return errors.Join(errs...)
}

func (sc *Scenario) dt() float64 {
	if sc.Dt > 0 {
		return sc.Dt
	}
	return DefaultDt
}

// Duration is the total scripted time.
func (sc *Scenario) Duration() float64 {
	total := 0.0
	for _, st := range sc.Steps {
		total += st.Hold
	}
	return total
}

// Demo is the built-in scenario used when no file is given.
func Demo() *Scenario {
	return &Scenario{
		Name:        "demo",
		Description: "every state by key, then by hand",
		Seed:        1,
		Steps: []ScenarioStep{
			{Hold: 0.5},
			{State: "SCATTER", Hold: 1.5},
			{State: "LOVE", Hold: 0.6},
			{State: "TREE", Hold: 1.5},
			{Gesture: "open", X: -0.4, Y: 0.2, Hold: 1.5},
			{Gesture: "pinch", X: 0.3, Hold: 1.5},
			{Gesture: "none", Hold: 0.5},
			{Gesture: "fist", Hold: 1.5},
		},
	}
}

// Options returns session options for sc over base.
func (sc *Scenario) Options(base session.Options) session.Options {
	if sc.Seed != 0 {
		base.Seed = sc.Seed
	}
	if sc.Particles > 0 {
		base.Particles = sc.Particles
	}
	if sc.Ornaments > 0 {
		base.Ornaments = sc.Ornaments
	}
	return base
}

type Result struct {
	Meta  storage.RunMetadata
	Trace *storage.Trace
}

// Run plays sc on a fresh session at a fixed dt, recording every tick.
func Run(ctx context.Context, sc *Scenario, base session.Options, log *zap.Logger) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts := sc.Options(base)
	sess := session.New(opts)
	spread := metrics.NewSpread()
	disp := metrics.NewDisplacement()
	set := metrics.NewSet(spread, disp, metrics.NewSettleTime(), metrics.NewContinuity(metrics.DefaultJumpThreshold))
	changes := 0

	dt := sc.dt()
	trace := &storage.Trace{}
	classifier := gesture.NewClassifier(gesture.DefaultPinchThreshold)

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Debug("scenario step",
			zap.Int("step", i+1),
			zap.String("state", step.State),
			zap.String("gesture", step.Gesture),
			zap.Float64("hold", step.Hold))

		if step.State != "" {
			st, _ := morph.ParseState(step.State)
			sess.Request(st)
		}

		var hand *gesture.Result
		if step.Gesture != "" {
			g, _ := gesture.ParseGesture(step.Gesture)
			r := gesture.Result{}
			if g != gesture.None {
				r.Hands = []gesture.Hand{gesture.SynthHand(g, step.X, step.Y)}
			}
			hand = &r
		}

		ticks := int(math.Round(step.Hold / dt))
		for t := 0; t < ticks; t++ {
			if hand != nil {
				sess.Observe(classifier.Classify(*hand))
			}
			f := sess.Advance(float32(dt))
			set.Observe(f)
			if f.Changed {
				changes++
			}
			trace.Append(storage.Sample{
				Time:         float64(f.Elapsed),
				State:        f.State.String(),
				Progress:     float64(f.Progress),
				Spread:       spread.Value(),
				Displacement: disp.Last(),
				RotX:         float64(f.RotX),
				RotY:         float64(f.RotY),
				Detected:     f.Hand.Detected,
				Gesture:      gestureLabel(f.Hand),
			})
		}
	}

	values := set.Values()
	values["max_spread"] = spread.Max()
	values["peak_displacement"] = disp.Peak()

	meta := storage.RunMetadata{
		Scenario:  sc.Name,
		Seed:      opts.Seed,
		Dt:        dt,
		Duration:  sc.Duration(),
		Particles: sess.Field().Count(),
		Ornaments: sess.Ornaments().Count(),
		Changes:   changes,
		Metrics:   values,
	}
	log.Info("scenario finished",
		zap.String("scenario", sc.Name),
		zap.Int("ticks", trace.Len()),
		zap.Int("changes", changes))
	return &Result{Meta: meta, Trace: trace}, nil
}

func gestureLabel(s gesture.Signal) string {
	if !s.Detected {
		return ""
	}
	return s.Gesture.String()
}

// SweepResult is the outcome of one morph rate in a sweep.
type SweepResult struct {
	Rate       float64
	SettleTime float64
	MaxSpread  float64
	Continuity float64
}

// RunSweep replays sc once per morph rate in [min, max].
func RunSweep(ctx context.Context, sc *Scenario, base session.Options, min, max float64, steps int, log *zap.Logger) ([]SweepResult, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one step", ErrInvalidScenario)
	}
	if min <= 0 || max < min {
		return nil, fmt.Errorf("%w: sweep range [%g, %g]", ErrInvalidScenario, min, max)
	}

	results := make([]SweepResult, 0, steps)
	for i := 0; i < steps; i++ {
		rate := min
		if steps > 1 {
			rate = min + float64(i)*(max-min)/float64(steps-1)
		}
		opts := base
		opts.MorphRate = float32(rate)

		res, err := Run(ctx, sc, opts, log)
		if err != nil {
			return results, fmt.Errorf("sweep rate %.3f: %w", rate, err)
		}
		results = append(results, SweepResult{
			Rate:       rate,
			SettleTime: res.Meta.Metrics["settle_time"],
			MaxSpread:  res.Meta.Metrics["max_spread"],
			Continuity: res.Meta.Metrics["continuity"],
		})
	}
	return results, nil
}

// TrialResult is one seeded replay of a scenario.
type TrialResult struct {
	Seed       int64
	Continuity float64
	MaxSpread  float64
	// Stable is set when no point jumped and the field stayed inside the
	// scatter sphere.
	Stable bool
}

// RunTrials replays sc under n consecutive seeds starting at seed. Trials run
// concurrently; results keep seed order.
func RunTrials(ctx context.Context, sc *Scenario, base session.Options, n int, seed int64, log *zap.Logger) ([]TrialResult, error) {
	if n < 0 {
		n = 0
	}
	results := make([]TrialResult, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		i := i
		trial := *sc
		trial.Seed = seed + int64(i)
		if trial.Seed == 0 {
			trial.Seed = -1
		}
		g.Go(func() error {
			res, err := Run(gctx, &trial, base, log)
			if err != nil {
				return err
			}
			cont := res.Meta.Metrics["continuity"]
			spread := res.Meta.Metrics["max_spread"]
			results[i] = TrialResult{
				Seed:       trial.Seed,
				Continuity: cont,
				MaxSpread:  spread,
				Stable:     cont == 1 && spread <= 15,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func TrialStats(results []TrialResult) (stable, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
