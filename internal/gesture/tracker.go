package gesture

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const DefaultPollInterval = 33 * time.Millisecond

// Tracker polls a Source on its own schedule and publishes one Signal per
// poll. Once the source fails it keeps publishing undetected signals until
// the context ends.
type Tracker struct {
	source     Source
	classifier Classifier
	interval   time.Duration
	log        *zap.Logger

	latest   atomic.Pointer[Signal]
	frames   atomic.Int64
	degraded atomic.Bool
}

type TrackerOption func(*Tracker)

func WithInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

func WithClassifier(c Classifier) TrackerOption {
	return func(t *Tracker) { t.classifier = c }
}

func WithLogger(l *zap.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

func NewTracker(src Source, opts ...TrackerOption) *Tracker {
	if src == nil {
		src = Unavailable{Reason: "no source configured"}
	}
	t := &Tracker{
		source:     src,
		classifier: NewClassifier(DefaultPinchThreshold),
		interval:   DefaultPollInterval,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.latest.Store(&Signal{})
	return t
}

// Latest is the most recently published signal.
func (t *Tracker) Latest() Signal { return *t.latest.Load() }

// Frames counts the polls that produced a signal.
func (t *Tracker) Frames() int64 { return t.frames.Load() }

// Degraded reports whether the source has failed.
func (t *Tracker) Degraded() bool { return t.degraded.Load() }

// Run polls until ctx is done, handing every signal to publish. The source is
// closed on return. Run only returns ctx's error.
func (t *Tracker) Run(ctx context.Context, publish func(Signal)) error {
	defer func() {
		if err := t.source.Close(); err != nil {
			t.log.Debug("closing gesture source", zap.Error(err))
		}
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		sig, err := t.Poll(ctx)
		if err != nil {
			return err
		}
		if publish != nil {
			publish(sig)
		}
	}
}

// Poll reads and classifies one frame. Source failures are absorbed into an
// undetected signal; only ctx cancellation is returned.
func (t *Tracker) Poll(ctx context.Context) (Signal, error) {
	var sig Signal
	if !t.degraded.Load() {
		res, err := t.source.Next(ctx)
		switch {
		case err == nil:
			sig = t.classifier.Classify(res)
		case ctx.Err() != nil:
			return Signal{}, ctx.Err()
		case errors.Is(err, ErrMalformedFrame):
			t.log.Debug("dropping malformed frame", zap.Error(err))
		default:
			t.degraded.Store(true)
			t.log.Warn("gesture source unavailable, hand tracking disabled", zap.Error(err))
		}
	}

	t.frames.Add(1)
	t.latest.Store(&sig)
	return sig, nil
}
