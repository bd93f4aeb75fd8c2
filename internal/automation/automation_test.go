package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/morphfield/internal/session"
)

func smallOptions() session.Options {
	opts := session.DefaultOptions()
	opts.Particles = 200
	opts.Ornaments = 12
	return opts
}

func TestRunDemo(t *testing.T) {
	sc := Demo()
	res, err := Run(context.Background(), sc, smallOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}

	wantTicks := 0
	for _, st := range sc.Steps {
		wantTicks += int(st.Hold/DefaultDt + 0.5)
	}
	if res.Trace.Len() != wantTicks {
		t.Errorf("ticks = %d, want %d", res.Trace.Len(), wantTicks)
	}
	if res.Meta.Changes != 6 {
		t.Errorf("changes = %d, want 6", res.Meta.Changes)
	}

	last := res.Trace.Samples[res.Trace.Len()-1]
	if last.State != "TREE" || last.Progress != 1 {
		t.Errorf("last sample = %+v", last)
	}
	if !last.Detected || last.Gesture != "fist" {
		t.Errorf("last hand = %v %q", last.Detected, last.Gesture)
	}

	if got := res.Meta.Metrics["continuity"]; got != 1 {
		t.Errorf("continuity = %v", got)
	}
	settle := res.Meta.Metrics["settle_time"]
	if settle < 1.2 || settle > 1.3 {
		t.Errorf("settle_time = %v, want about 1.25", settle)
	}
}

func TestNoHandKeepsState(t *testing.T) {
	sc := &Scenario{
		Seed: 4,
		Steps: []ScenarioStep{
			{Gesture: "open", Hold: 0.5},
			{Gesture: "none", Hold: 100 * DefaultDt},
		},
	}
	res, err := Run(context.Background(), sc, smallOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range res.Trace.Samples[30:] {
		if s.State != "SCATTER" {
			t.Fatalf("state changed to %s at %.3f", s.State, s.Time)
		}
	}
}

func TestSeededRunsRepeat(t *testing.T) {
	sc := Demo()
	a, err := Run(context.Background(), sc, smallOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), sc, smallOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Trace.Samples {
		if a.Trace.Samples[i] != b.Trace.Samples[i] {
			t.Fatalf("sample %d differs: %+v vs %+v", i, a.Trace.Samples[i], b.Trace.Samples[i])
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Demo(), smallOptions(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sc.yaml")
	data := `name: quick
seed: 3
dt: 0.05
steps:
  - state: love
    hold: 1
  - gesture: open
    x: 0.5
    hold: 0.5
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "quick" || len(sc.Steps) != 2 || sc.Steps[1].X != 0.5 {
		t.Errorf("scenario = %+v", sc)
	}
	if sc.Duration() != 1.5 {
		t.Errorf("duration = %v", sc.Duration())
	}

	res, err := Run(context.Background(), sc, smallOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Trace.Len() != 30 {
		t.Errorf("ticks = %d, want 30", res.Trace.Len())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		sc   Scenario
		ok   bool
	}{
		{"empty", Scenario{}, true},
		{"unknown state", Scenario{Steps: []ScenarioStep{{State: "cube"}}}, false},
		{"unknown gesture", Scenario{Steps: []ScenarioStep{{Gesture: "wave"}}}, false},
		{"both", Scenario{Steps: []ScenarioStep{{State: "love", Gesture: "pinch"}}}, false},
		{"negative hold", Scenario{Steps: []ScenarioStep{{Hold: -1}}}, false},
		{"negative dt", Scenario{Dt: -0.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestRunSweep(t *testing.T) {
	sc := &Scenario{Seed: 2, Dt: 0.05, Steps: []ScenarioStep{{Hold: 0.1}, {State: "scatter", Hold: 3}}}
	res, err := RunSweep(context.Background(), sc, smallOptions(), 0.5, 1.5, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 3 {
		t.Fatalf("got %d results", len(res))
	}
	for i := 1; i < len(res); i++ {
		if res[i].SettleTime >= res[i-1].SettleTime {
			t.Errorf("settle time should fall with rate: %+v", res)
		}
	}

	if _, err := RunSweep(context.Background(), sc, smallOptions(), 0, 1, 3, nil); !errors.Is(err, ErrInvalidScenario) {
		t.Errorf("err = %v", err)
	}
}

func TestRunTrials(t *testing.T) {
	sc := &Scenario{Dt: 0.05, Steps: []ScenarioStep{
		{State: "scatter", Hold: 0.5},
		{State: "love", Hold: 0.5},
		{State: "tree", Hold: 0.5},
	}}
	res, err := RunTrials(context.Background(), sc, smallOptions(), 4, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	stable, unstable := TrialStats(res)
	if stable != 4 || unstable != 0 {
		t.Errorf("stable %d unstable %d: %+v", stable, unstable, res)
	}
	for i, r := range res {
		if r.Seed != int64(10+i) {
			t.Errorf("trial %d has seed %d", i, r.Seed)
		}
	}
}
