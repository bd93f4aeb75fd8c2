package metrics

import "github.com/san-kum/morphfield/internal/session"

// SettleTime is the mean time from a state change until progress reaches 1.
type SettleTime struct {
	name    string
	prev    float32
	started float32
	pending bool
	total   float64
	settled int
	changes int
}

func NewSettleTime() *SettleTime { return &SettleTime{name: "settle_time"} }

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(f session.Frame) {
	if f.Changed {
		s.changes++
		s.pending = true
		// The change applies at the start of the tick.
		s.started = s.prev
	}
	if s.pending && f.Progress >= 1 {
		s.total += float64(f.Elapsed - s.started)
		s.settled++
		s.pending = false
	}
	s.prev = f.Elapsed
}

func (s *SettleTime) Value() float64 {
	if s.settled == 0 {
		return 0
	}
	return s.total / float64(s.settled)
}

// Changes counts the state changes observed.
func (s *SettleTime) Changes() int { return s.changes }

func (s *SettleTime) Reset() {
	*s = SettleTime{name: s.name}
}
