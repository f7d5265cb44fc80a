package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/particlesim/internal/config"
)

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order, and validates the result.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "run"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("damping") {
		cfg.Damping = damping
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("gx") {
		cfg.Gravity.X = gravityX
	}
	if flags.Changed("gy") {
		cfg.Gravity.Y = gravityY
	}
	if flags.Changed("gravity-mode") {
		cfg.Gravity.Mode = gravityMode
	}
	if flags.Changed("cell-size") {
		cfg.Physics.CellSize = cellSize
	}
	if flags.Lookup("sample-every") != nil && flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}
