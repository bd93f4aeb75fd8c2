package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/morphfield/internal/config"
	"github.com/san-kum/morphfield/internal/logging"
	"github.com/san-kum/morphfield/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	outDir     string
	logFile    string
	logLevel   string
	seed       int64
	particles  int
	theme      string
	fps        int
	gestureSrc string
	gesturePth string
	withAudio  bool
)

// main registers the commands and flags; with no subcommand it opens the preset menu.
func main() {
	rootCmd := &cobra.Command{
		Use:           "morphfield",
		Short:         "particle tree, scatter and heart in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".morphfield", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&outDir, "out", ".", "directory for recordings and snapshots")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.Int64Var(&seed, "seed", 0, "random seed, 0 for a fresh one")
	pf.IntVar(&particles, "particles", 0, "field size")
	pf.StringVar(&theme, "theme", "", "color theme")
	pf.IntVar(&fps, "fps", 0, "frame rate")
	pf.StringVar(&gestureSrc, "gesture", "", "hand source: none, replay, tail or script")
	pf.StringVar(&gesturePth, "gesture-path", "", "landmark frames file for replay or tail")
	pf.BoolVar(&withAudio, "audio", false, "play chimes on state changes")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the live view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(runCommands()...)
	rootCmd.AddCommand(toolCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers the preset, the config file and changed flags over the
// defaults, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !viz.HasTheme(cfg.Theme) {
		return nil, fmt.Errorf("%w: unknown theme %q (available: %v)", config.ErrInvalid, cfg.Theme, viz.ThemeNames())
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("gesture") {
		cfg.Gesture.Source = gestureSrc
	}
	if flags.Changed("gesture-path") {
		cfg.Gesture.Path = gesturePth
	}
	if flags.Changed("audio") {
		cfg.Audio.Enabled = withAudio
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
}

// fileLogger is for the live view, which owns the terminal.
func fileLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log)
}

// consoleLogger is for one-shot commands: the log file when configured,
// stderr otherwise.
func consoleLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.File != "" {
		return logging.New(cfg.Log)
	}
	return logging.Stderr(cfg.Log.Level), nil
}
