package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/experiment"
	"github.com/san-kum/particlesim/internal/optim"
	"github.com/san-kum/particlesim/internal/sim"
)

// parseSweepParams turns "name=v1,v2" flags into names and value lists.
func parseSweepParams(args []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", arg)
		}
		values := make([]float64, 0)
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func sweep(cmd *cobra.Command, args []string) error {
	base, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required (available: %s)", strings.Join(optim.Params(), ", "))
	}
	names, ranges, err := parseSweepParams(sweepParams)
	if err != nil {
		return err
	}
	search, err := optim.NewGridSearch(names, ranges, maximize)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	run := func(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
		metric, err := registry.GetMetric(sweepMetric, cfg)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup([]sim.Metric{metric}); err != nil {
			return nil, err
		}
		return exp.Run(ctx)
	}

	ctx, cancel := signalContext()
	defer cancel()

	trials, best, err := search.Search(ctx, base, run, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, t := range trials {
		row := make([]string, 0, len(names)+1)
		for _, name := range names {
			row = append(row, strconv.FormatFloat(t.Params[name], 'g', -1, 64))
		}
		if t.Err != nil {
			row = append(row, "error: "+t.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6f", t.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == nil {
		return fmt.Errorf("no trial succeeded")
	}
	fmt.Printf("\nbest %s = %.6f at %v\n", sweepMetric, best.Value, best.Params)
	return nil
}
