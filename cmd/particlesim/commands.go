package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/experiment"
	"github.com/san-kum/particlesim/internal/export"
	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/san-kum/particlesim/internal/storage"
	"github.com/san-kum/particlesim/internal/stream"
	"github.com/san-kum/particlesim/internal/viz"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry.DefaultMetrics(cfg)); err != nil {
		return err
	}

	exp.Simulator().AddObserver(&progress{out: os.Stdout, every: 1})

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d particles in %.0fx%.0f for %.1fs...\n", name, cfg.Count, cfg.Width, cfg.Height, cfg.Duration)
	start := time.Now()

	result, err := exp.Run(ctx)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("run %s not saved: %w", name, err)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Name:        name,
		Seed:        cfg.Seed,
		Count:       cfg.Count,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Damping:     cfg.Damping,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		GravityMode: cfg.Gravity.Mode,
		MaxSpeed:    cfg.Physics.MaxSpeed,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  contacts: %d  wall hits: %d\n", result.StepsTaken, result.Contacts, result.WallHits)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

// progress rewrites one status line each time simulated time passes every.
type progress struct {
	out   io.Writer
	every float64
	next  float64
}

func (p *progress) OnStep(f sim.Frame) {
	if f.Time < p.next {
		return
	}
	fmt.Fprintf(p.out, "\r  t=%6.2fs  step %d  contacts %d", f.Time, f.Step, f.Stats.Contacts)
	p.next += p.every
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runLive(cmd *cobra.Command, args []string) error {
	if !slices.Contains(viz.ThemeNames(), themeName) {
		return fmt.Errorf("unknown theme %s (available: %s)", themeName, strings.Join(viz.ThemeNames(), ", "))
	}
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	world, err := experiment.NewWorld(cfg, cfg.Seed)
	if err != nil {
		return err
	}
	return viz.Run(world, cfg, viz.GetTheme(themeName))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	world, err := experiment.NewWorld(cfg, cfg.Seed)
	if err != nil {
		return err
	}

	srv := stream.NewServer(sim.New(world), stream.Options{FPS: frameRate, Full: fullFrame, Count: cfg.Count})
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}

	ctx, cancel := signalContext()
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		log.Printf("streaming %d particles on ws://%s/ws", cfg.Count, addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		cancel()
	}()

	rc := cfg.RunConfig()
	rc.Duration = math.Inf(1)
	rc.Pulses = nil
	runErr := srv.Run(ctx, rc)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Println(err)
	}

	select {
	case err := <-errc:
		return err
	default:
	}
	return runErr
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tCOUNT\tWORLD\tDURATION\tSTEPS\tGRAVITY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0fx%.0f\t%.2fs\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Count,
			run.Width, run.Height,
			run.Duration,
			run.Steps,
			run.GravityMode,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	names := sortedKeys(series)
	if metricName != "" {
		if _, ok := series[metricName]; !ok {
			return fmt.Errorf("unknown metric %s (available: %s)", metricName, strings.Join(names, ", "))
		}
		names = []string{metricName}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n", meta.Count)
	fmt.Printf("samples: %d (%.2fs .. %.2fs)\n\n", len(times), times[0], times[len(times)-1])

	for _, name := range names {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.ExportJSONStdout(data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var svg string
	if metricName != "" {
		times, series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		values, ok := series[metricName]
		if !ok {
			return fmt.Errorf("unknown metric %s", metricName)
		}
		svg = export.SeriesToSVG(times, values, 800, 300, "#00ff88")
	} else {
		data, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		svg = export.ParticlesToSVG(particle.NewView(data), meta.Width, meta.Height, svgScale, runMaxSpeed(meta))
	}
	if svg == "" {
		return fmt.Errorf("not enough data to draw")
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// runMaxSpeed is the speed mapped to the hottest colour. Runs saved before
// max_speed was recorded fall back to the default.
func runMaxSpeed(meta *storage.RunMetadata) float64 {
	if meta.MaxSpeed > 0 {
		return meta.MaxSpeed
	}
	return config.DefaultConfig().Physics.MaxSpeed
}

func benchmark(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Println("step throughput")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tGRID\tSTEPS\tTIME\tSTEPS/SEC\tCONTACTS/STEP")

	for _, n := range []int{250, 500, 1000, 2000, cfg.Count} {
		c := cfg.Clone()
		c.Count = n
		world, err := experiment.NewWorld(c, c.Seed)
		if err != nil {
			return err
		}

		const steps = 300
		contacts := 0
		start := time.Now()
		for i := 0; i < steps; i++ {
			world.ApplyGravity(c.Gravity.X, c.Gravity.Y)
			if err := world.Step(c.Dt, c.Width, c.Height); err != nil {
				return err
			}
			contacts += world.LastStats().Contacts
		}
		elapsed := time.Since(start)
		cols, rows := world.Grid().Dims()

		fmt.Fprintf(w, "%d\t%dx%d\t%d\t%v\t%.0f\t%.1f\n",
			n, cols, rows, steps, elapsed, steps/elapsed.Seconds(), float64(contacts)/steps)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("\nensemble of %d runs (seeds %d..%d)\n", numRuns, cfg.Seed, cfg.Seed+int64(numRuns)-1)
	ens := sim.NewEnsemble(experiment.Factory(cfg, experiment.NewRegistry()), numRuns, cfg.Seed)
	start := time.Now()
	results, err := ens.Run(ctx, cfg.RunConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tCONTACTS\tENERGY LOSS\tCONTAINMENT")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t%.3f\n",
			cfg.Seed+int64(i), r.StepsTaken, r.Contacts, r.Metrics["energy_loss"], r.Metrics["containment"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("wall time: %v\n", elapsed)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT\tWORLD\tGRAVITY\tDAMPING\tRADII\tFORCES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.0fx%.0f\t(%.2f, %.2f)\t%.2f\t%.0f-%.0f\t%d\n",
			name, p.Count, p.Width, p.Height, p.Gravity.X, p.Gravity.Y, p.Damping,
			p.Physics.MinRadius, p.Physics.MaxRadius, len(p.Forces))
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := args[0]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gcfg", ".ini":
		if preset != "" {
			return fmt.Errorf("presets can only be written as yaml")
		}
		if err := os.WriteFile(path, []byte(config.ExampleGcfgFile+"\n"), 0644); err != nil {
			return err
		}
	default:
		cfg := config.DefaultConfig()
		if preset != "" {
			if cfg = config.GetPreset(preset); cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
			}
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
