package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/morphfield/internal/audio"
	"github.com/san-kum/morphfield/internal/config"
	"github.com/san-kum/morphfield/internal/gesture"
	"github.com/san-kum/morphfield/internal/session"
	"github.com/san-kum/morphfield/internal/viz"
)

// runRoot opens the preset menu, or goes straight to the live view when a
// preset or config file was named.
func runRoot(cmd *cobra.Command, args []string) error {
	if preset != "" || configFile != "" {
		return runLive(cmd, args)
	}

	var (
		mu       sync.Mutex
		stops    []func()
		firstErr error
	)
	start := func(name string) (viz.Model, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return viz.Model{}, fmt.Errorf("unknown preset: %s", name)
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return viz.Model{}, err
		}
		log, err := fileLogger(cfg)
		if err != nil {
			return viz.Model{}, err
		}
		m, stop, err := startLive(cfg, log)
		if err != nil {
			return viz.Model{}, err
		}
		mu.Lock()
		stops = append(stops, func() {
			if err := stop(); err != nil && firstErr == nil {
				firstErr = err
			}
			_ = log.Sync()
		})
		mu.Unlock()
		return m, nil
	}

	describe := func(name string) string { return config.PresetInfo[name] }
	err := viz.RunLauncher(viz.NewLauncher(config.ListPresets(), describe, start))

	mu.Lock()
	defer mu.Unlock()
	for _, stop := range stops {
		stop()
	}
	return errors.Join(err, firstErr)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := fileLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	m, stop, err := startLive(cfg, log)
	if err != nil {
		return err
	}
	runErr := viz.Run(m)
	return errors.Join(runErr, stop())
}

// startLive builds the session and starts its gesture loop. stop ends the
// loop, closes the source and the audio device.
func startLive(cfg *config.Config, log *zap.Logger) (viz.Model, func() error, error) {
	sess := session.New(cfg.SessionOptions(log))

	src, err := cfg.Gesture.OpenSource()
	if err != nil {
		log.Warn("hand tracking unavailable", zap.String("source", cfg.Gesture.Source), zap.Error(err))
	}
	tracker := gesture.NewTracker(src, cfg.Gesture.TrackerOptions(log)...)

	var onFrame func(session.Frame)
	var player *audio.Player
	if cfg.Audio.Enabled {
		player = audio.NewPlayer(cfg.Audio.Volume, log)
		if err := player.Open(true); err != nil {
			log.Warn("audio disabled", zap.Error(err))
			player = nil
		} else {
			sess.OnChange(player.OnChange)
			onFrame = func(f session.Frame) { player.SetMotion(f.Progress) }
		}
	}

	cam := viz.NewCamera()
	cam.FOV = float32(cfg.Camera.FOV)
	cam.SetDistance(float32(cfg.Camera.Distance))

	m := viz.NewModel(sess, viz.Options{
		FPS:     cfg.FPS,
		Theme:   cfg.Theme,
		Camera:  cam,
		OutDir:  outDir,
		Logger:  log,
		OnFrame: onFrame,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sess.Run(ctx, tracker, cfg.FPS, nil)
	}()
	log.Info("live view started",
		zap.Int("particles", cfg.Particles),
		zap.String("gesture", cfg.Gesture.Source),
		zap.Bool("audio", player != nil))

	stop := func() error {
		cancel()
		err := <-done
		if player != nil {
			player.Close()
		}
		log.Info("live view stopped", zap.Int64("hand_frames", tracker.Frames()))
		return err
	}
	return m, stop, nil
}
