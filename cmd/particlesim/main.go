package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string

	count       int
	width       float64
	height      float64
	damping     float64
	dt          float64
	duration    float64
	seed        int64
	gravityX    float64
	gravityY    float64
	gravityMode string
	cellSize    float64
	sampleEvery int

	// live
	themeName string

	// serve
	addr      string
	frameRate int
	fullFrame bool

	// bench
	numRuns int

	// sweep
	sweepParams []string
	maximize    bool
	sweepMetric string

	// plot / export
	metricName string
	outPath    string
	svgScale   float64
)

// main registers the commands and flags and exits with status 1 when the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "particlesim",
		Short: "2D circular particle physics sandbox",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".particlesim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "record metrics every n steps")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with the interactive terminal viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addWorldFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", "colour theme: cyberpunk, retro or ocean")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to websocket clients",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addWorldFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", 60, "steps and frames per second")
	serveCmd.Flags().BoolVar(&fullFrame, "full", false, "send full float64 records instead of x, y, radius")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metricName, "metric", "", "plot only this metric")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final particles, or a metric series, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&metricName, "metric", "", "plot this metric series instead of particles")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 1.0, "pixels per world unit")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput and run a parallel ensemble",
		Args:  cobra.NoArgs,
		RunE:  benchmark,
	}
	addWorldFlags(benchCmd)
	benchCmd.Flags().IntVar(&numRuns, "runs", 4, "ensemble size")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over config parameters",
		Long:  "Runs every combination of --param values, e.g. --param damping=0.95,0.99 --param collision_restitution=0.5,0.9",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	addWorldFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_loss", "metric to optimize")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "pick the largest value instead of the smallest")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file (.yaml, or .gcfg/.ini)",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, benchCmd, sweepCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addWorldFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (.yaml, .yml, .gcfg, .ini)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVarP(&count, "count", "n", 0, "number of particles")
	f.Float64Var(&width, "width", 0, "world width")
	f.Float64Var(&height, "height", 0, "world height")
	f.Float64Var(&damping, "damping", 0, "per-step velocity factor in (0,1]")
	f.Float64Var(&dt, "dt", 0, "timestep")
	f.Float64Var(&duration, "time", 0, "duration in seconds")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.Float64Var(&gravityX, "gx", 0, "gravity x")
	f.Float64Var(&gravityY, "gy", 0, "gravity y")
	f.StringVar(&gravityMode, "gravity-mode", "", "frame (flat per-step delta) or time (g*dt)")
	f.Float64Var(&cellSize, "cell-size", 0, "broad-phase cell size")
}
