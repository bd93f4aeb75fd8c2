package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/morphfield/internal/gesture"
	"github.com/san-kum/morphfield/internal/logging"
	"github.com/san-kum/morphfield/internal/morph"
	"github.com/san-kum/morphfield/internal/palette"
	"github.com/san-kum/morphfield/internal/session"
)

const (
	DefaultFPS      = 60
	DefaultDistance = 20.0
	DefaultFOV      = 35.0
	DefaultPollMS   = 33
	DefaultVolume   = 0.5
	DefaultTheme    = "default"

	MaxParticles = 200000
)

var ErrInvalid = errors.New("config: invalid")

// Gesture source kinds.
const (
	SourceNone   = "none"
	SourceReplay = "replay"
	SourceTail   = "tail"
	SourceScript = "script"
)

type Config struct {
	Particles    int             `yaml:"particles" toml:"particles"`
	Ornaments    int             `yaml:"ornaments" toml:"ornaments"`
	MorphRate    float64         `yaml:"morph_rate" toml:"morph_rate"`
	OrnamentRate float64         `yaml:"ornament_rate" toml:"ornament_rate"`
	Seed         int64           `yaml:"seed" toml:"seed"`
	InitialState string          `yaml:"initial_state" toml:"initial_state"`
	FPS          int             `yaml:"fps" toml:"fps"`
	Theme        string          `yaml:"theme" toml:"theme"`
	Palette      string          `yaml:"palette" toml:"palette"`
	Camera       CameraConfig    `yaml:"camera" toml:"camera"`
	Gesture      GestureConfig   `yaml:"gesture" toml:"gesture"`
	Audio        AudioConfig     `yaml:"audio" toml:"audio"`
	Log          logging.Options `yaml:"log" toml:"log"`
}

type CameraConfig struct {
	Distance   float64 `yaml:"distance" toml:"distance"`
	FOV        float64 `yaml:"fov" toml:"fov"`
	AutoRotate bool    `yaml:"auto_rotate" toml:"auto_rotate"`
}

type GestureConfig struct {
	Source         string  `yaml:"source" toml:"source"`
	Path           string  `yaml:"path" toml:"path"`
	Loop           bool    `yaml:"loop" toml:"loop"`
	PinchThreshold float64 `yaml:"pinch_threshold" toml:"pinch_threshold"`
	PollMS         int     `yaml:"poll_ms" toml:"poll_ms"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	Volume  float64 `yaml:"volume" toml:"volume"`
}

func DefaultConfig() *Config {
	return &Config{
		Particles:    morph.DefaultFieldCount,
		Ornaments:    morph.DefaultOrnamentCount,
		MorphRate:    morph.DefaultRate,
		OrnamentRate: morph.DefaultOrnamentRate,
		InitialState: morph.Tree.String(),
		FPS:          DefaultFPS,
		Theme:        DefaultTheme,
		Palette:      "classic",
		Camera: CameraConfig{
			Distance:   DefaultDistance,
			FOV:        DefaultFOV,
			AutoRotate: true,
		},
		Gesture: GestureConfig{
			Source:         SourceNone,
			PinchThreshold: gesture.DefaultPinchThreshold,
			PollMS:         DefaultPollMS,
		},
		Audio: AudioConfig{Volume: DefaultVolume},
		Log:   logging.DefaultOptions(),
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Particles < 0 || c.Particles > MaxParticles {
		bad("particles %d outside [0, %d]", c.Particles, MaxParticles)
	}
	if c.Ornaments < 0 {
		bad("ornaments %d is negative", c.Ornaments)
	}
	if c.MorphRate <= 0 {
		bad("morph_rate must be positive")
	}
	if c.OrnamentRate <= 0 {
		bad("ornament_rate must be positive")
	}
	if _, err := morph.ParseState(c.InitialState); err != nil {
		errs = append(errs, err)
	}
	if c.FPS <= 0 || c.FPS > 240 {
		bad("fps %d outside (0, 240]", c.FPS)
	}
	if c.Camera.Distance <= 0 {
		bad("camera.distance must be positive")
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		bad("camera.fov %.1f outside (0, 180)", c.Camera.FOV)
	}
	switch c.Gesture.Source {
	case SourceNone, SourceScript:
	case SourceReplay, SourceTail:
		if c.Gesture.Path == "" {
			bad("gesture.path required for %s source", c.Gesture.Source)
		}
	default:
		bad("unknown gesture.source %q", c.Gesture.Source)
	}
	if c.Gesture.PinchThreshold <= 0 {
		bad("gesture.pinch_threshold must be positive")
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		bad("audio.volume %.2f outside [0, 1]", c.Audio.Volume)
	}
	return errors.Join(errs...)
}

func (c *Config) Initial() morph.State {
	s, err := morph.ParseState(c.InitialState)
	if err != nil {
		return morph.Tree
	}
	return s
}

func (c *Config) SessionOptions(log *zap.Logger) session.Options {
	opts := session.DefaultOptions()
	opts.Particles = c.Particles
	opts.Ornaments = c.Ornaments
	opts.MorphRate = float32(c.MorphRate)
	opts.OrnamentRate = float32(c.OrnamentRate)
	opts.Seed = c.Seed
	opts.Initial = c.Initial()
	opts.Palette = palette.Get(c.Palette)
	opts.AutoRotate = c.Camera.AutoRotate
	opts.Logger = log
	return opts
}

// OpenSource opens the configured landmark source. An unopenable source is
// reported as an Unavailable source so the session keeps running.
func (g GestureConfig) OpenSource() (gesture.Source, error) {
	switch g.Source {
	case SourceReplay:
		src, err := gesture.OpenReplay(g.Path, g.Loop)
		if err != nil {
			return gesture.Unavailable{Reason: err.Error()}, err
		}
		return src, nil
	case SourceTail:
		src, err := gesture.NewTailSource(g.Path, false)
		if err != nil {
			return gesture.Unavailable{Reason: err.Error()}, err
		}
		return src, nil
	case SourceScript:
		return gesture.NewScriptSource(DemoScript(), true), nil
	default:
		return gesture.Unavailable{Reason: "hand tracking disabled"}, nil
	}
}

func (g GestureConfig) TrackerOptions(log *zap.Logger) []gesture.TrackerOption {
	return []gesture.TrackerOption{
		gesture.WithClassifier(gesture.NewClassifier(float32(g.PinchThreshold))),
		gesture.WithInterval(time.Duration(g.PollMS) * time.Millisecond),
		gesture.WithLogger(log),
	}
}

// DemoScript cycles fist, open hand and pinch while drifting the wrist.
func DemoScript() []gesture.Step {
	return []gesture.Step{
		{Gesture: gesture.None, Frames: 90},
		{Gesture: gesture.Open, Frames: 150, X: -0.4, Y: 0.2},
		{Gesture: gesture.Pinch, Frames: 180, X: 0.3, Y: 0.1},
		{Gesture: gesture.Fist, Frames: 150, X: 0, Y: -0.2},
	}
}
