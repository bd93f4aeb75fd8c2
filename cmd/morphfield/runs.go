package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/morphfield/internal/automation"
	"github.com/san-kum/morphfield/internal/export"
	"github.com/san-kum/morphfield/internal/storage"
)

var (
	plotSVG    bool
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trialCount int
)

func runCommands() []*cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "play a scripted scenario headless and save its trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot a saved trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&plotSVG, "svg", false, "also write one svg chart per column to --out")

	exportCmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "print a trace as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run-id]",
		Short: "write a trace as csv into --out",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSVFile,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run-id]",
		Short: "print a run and its trace as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario.yaml]",
		Short: "replay a scenario across morph rates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.4, "lowest morph rate")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2.0, "highest morph rate")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of rates")

	trialsCmd := &cobra.Command{
		Use:   "trials [scenario.yaml]",
		Short: "replay a scenario under many seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrials,
	}
	trialsCmd.Flags().IntVar(&trialCount, "n", 20, "number of trials")

	return []*cobra.Command{runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, sweepCmd, trialsCmd}
}

func scenarioArg(args []string) (*automation.Scenario, error) {
	if len(args) == 0 {
		return automation.Demo(), nil
	}
	return automation.LoadScenario(args[0])
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := consoleLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, err := scenarioArg(args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	res, err := automation.Run(ctx, sc, cfg.SessionOptions(log), log)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(res.Meta, res.Trace)
	if err != nil {
		return err
	}
	log.Info("run saved", zap.String("id", id), zap.String("dir", st.Dir()))

	fmt.Printf("run: %s\n", id)
	fmt.Printf("scenario: %s\n", sc.Name)
	fmt.Printf("particles: %d  ornaments: %d\n", res.Meta.Particles, res.Meta.Ornaments)
	fmt.Printf("duration: %.2fs  ticks: %d  changes: %d\n\n", res.Meta.Duration, res.Trace.Len(), res.Meta.Changes)

	names := make([]string, 0, len(res.Meta.Metrics))
	for name := range res.Meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-18s %.4f\n", name, res.Meta.Metrics[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tPARTICLES\tDURATION\tCHANGES\tCONTINUITY\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2fs\t%d\t%.3f\t%s\n",
			r.ID, r.Scenario, r.Particles, r.Duration, r.Changes,
			r.Metrics["continuity"], r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

var plotColumns = map[string]string{
	"progress":     "morph progress",
	"spread":       "rms radius",
	"displacement": "mean displacement per tick",
	"rot_y":        "yaw (rad)",
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if trace.Len() == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", trace.Len())

	stroke, _ := colorful.Hex("#e74c3c")
	for _, name := range storage.Columns() {
		caption, ok := plotColumns[name]
		if !ok {
			continue
		}
		data, err := trace.Column(name)
		if err != nil {
			return err
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()

		if plotSVG {
			path := filepath.Join(outDir, fmt.Sprintf("%s_%s.svg", meta.ID, name))
			if err := os.WriteFile(path, []byte(export.SeriesToSVG(data, 800, 200, stroke)), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n\n", path)
		}
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	trace, err := storage.New(dataDir).LoadTrace(args[0])
	if err != nil {
		return err
	}
	return trace.WriteCSV(os.Stdout)
}

func exportCSVFile(cmd *cobra.Command, args []string) error {
	runID := args[0]
	trace, err := storage.New(dataDir).LoadTrace(runID)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, runID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := trace.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("exported %d samples to %s\n", trace.Len(), path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, trace)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := consoleLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, err := scenarioArg(args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	results, err := automation.RunSweep(ctx, sc, cfg.SessionOptions(log), sweepMin, sweepMax, sweepSteps, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RATE\tSETTLE\tMAX SPREAD\tCONTINUITY")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%.3fs\t%.3f\t%.3f\n", r.Rate, r.SettleTime, r.MaxSpread, r.Continuity)
	}
	return w.Flush()
}

func runTrials(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := consoleLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, err := scenarioArg(args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	results, err := automation.RunTrials(ctx, sc, cfg.SessionOptions(log), trialCount, cfg.Seed, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tCONTINUITY\tMAX SPREAD\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%v\n", r.Seed, r.Continuity, r.MaxSpread, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.TrialStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}
