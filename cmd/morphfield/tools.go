package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/morphfield/internal/audio"
	"github.com/san-kum/morphfield/internal/compute"
	"github.com/san-kum/morphfield/internal/config"
	"github.com/san-kum/morphfield/internal/export"
	"github.com/san-kum/morphfield/internal/gesture"
	"github.com/san-kum/morphfield/internal/morph"
	"github.com/san-kum/morphfield/internal/session"
	"github.com/san-kum/morphfield/internal/viz"
)

var (
	snapWidth  int
	snapHeight int
	snapSVG    bool
	benchTicks int
)

func toolCommands() []*cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot [state]",
		Short: "settle on a state and render one frame",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&snapWidth, "width", 80, "canvas width in cells")
	snapshotCmd.Flags().IntVar(&snapHeight, "height", 32, "canvas height in cells")
	snapshotCmd.Flags().BoolVar(&snapSVG, "svg", false, "write an svg into --out instead of printing")

	classifyCmd := &cobra.Command{
		Use:   "classify [frames.jsonl|-]",
		Short: "classify landmark frames and print the requested states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runClassify,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.PresetInfo[name])
			}
			w.Flush()
		},
	}

	chimeCmd := &cobra.Command{
		Use:   "chime [state]",
		Short: "write the chime for a state as wav",
		Args:  cobra.ExactArgs(1),
		RunE:  writeChime,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput per compute backend",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 600, "ticks per measurement")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	})

	return []*cobra.Command{snapshotCmd, classifyCmd, presetsCmd, chimeCmd, benchCmd, configCmd}
}

func stateArg(args []string, def morph.State) (morph.State, error) {
	if len(args) == 0 {
		return def, nil
	}
	return morph.ParseState(args[0])
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := stateArg(args, cfg.Initial())
	if err != nil {
		return err
	}

	opts := cfg.SessionOptions(zap.NewNop())
	opts.AutoRotate = false
	sess := session.New(opts)
	sess.Request(st)

	// Settle the transition at a fixed step.
	const dt = float32(1.0 / 60)
	f := sess.Advance(dt)
	for i := 0; i < 1200 && (f.State != st || f.Progress < 1); i++ {
		f = sess.Advance(dt)
	}

	theme := viz.GetTheme(cfg.Theme)
	r := viz.NewRenderer(sess.Palette())
	r.Camera.FOV = float32(cfg.Camera.FOV)
	r.Camera.SetDistance(float32(cfg.Camera.Distance))
	c := viz.NewCanvas(snapWidth, snapHeight)
	r.Draw(c, f)

	if !snapSVG {
		fmt.Println(c.Render(theme.Canvas))
		return nil
	}

	path := filepath.Join(outDir, fmt.Sprintf("%s_%d.svg", st, time.Now().Unix()))
	if err := os.WriteFile(path, []byte(export.RasterToSVG(c, 4, theme.Canvas)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var src *gesture.ReplaySource
	if len(args) == 0 || args[0] == "-" {
		src = gesture.NewReplaySource(os.Stdin, false)
	} else {
		src, err = gesture.OpenReplay(args[0], false)
		if err != nil {
			return err
		}
	}
	defer src.Close()

	classifier := gesture.NewClassifier(float32(cfg.Gesture.PinchThreshold))
	ctx, cancel := interruptible()
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tDETECTED\tGESTURE\tX\tY\tREQUEST")
	for i := 1; ; i++ {
		res, err := src.Next(ctx)
		if errors.Is(err, gesture.ErrMalformedFrame) {
			fmt.Fprintf(w, "%d\tmalformed\t\t\t\t\n", i)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		sig := classifier.Classify(res)
		req := "none"
		if s, ok := sig.Request(); ok {
			req = s.String()
		}
		label := "none"
		if sig.Detected {
			label = sig.Gesture.String()
		}
		fmt.Fprintf(w, "%d\t%v\t%s\t%.2f\t%.2f\t%s\n", i, sig.Detected, label, sig.X, sig.Y, req)
	}
	return w.Flush()
}

func writeChime(cmd *cobra.Command, args []string) error {
	st, err := morph.ParseState(args[0])
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, fmt.Sprintf("chime_%s.wav", st))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := audio.WriteWAV(f, audio.Chime(st, config.DefaultVolume)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	backends := []compute.Backend{compute.NewSerialBackend(), compute.NewCPUBackend()}
	counts := []int{1000, cfg.Particles, 4 * cfg.Particles}

	fmt.Println("tick throughput")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tPARTICLES\tTICKS\tTIME\tTICKS/SEC")

	for _, b := range backends {
		for _, n := range counts {
			opts := cfg.SessionOptions(zap.NewNop())
			opts.Particles = n
			opts.Backend = b
			sess := session.New(opts)

			states := morph.States()
			start := time.Now()
			for i := 0; i < benchTicks; i++ {
				if i%60 == 0 {
					sess.Request(states[(i/60)%len(states)])
				}
				sess.Advance(1.0 / 60)
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n",
				b.Name(), n, benchTicks, elapsed.Round(time.Microsecond), float64(benchTicks)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := "morphfield.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

