package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/particlesim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultCount, cfg.Count)
	assert.Equal(t, 20.0, cfg.Physics.CellSize)
	assert.Equal(t, sim.GravityFrame, cfg.Gravity.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"negative count", func(c *Config) { c.Count = -1 }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"damping above one", func(c *Config) { c.Damping = 1.5 }},
		{"zero damping", func(c *Config) { c.Damping = 0 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"unknown gravity mode", func(c *Config) { c.Gravity.Mode = "sideways" }},
		{"force without radius", func(c *Config) { c.Forces = []sim.Pulse{{At: 1}} }},
		{"cell smaller than particles", func(c *Config) { c.Physics.CellSize = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := `
count: 50
gravity:
  mode: time
forces:
  - {at: 2, x: 10, y: 20, radius: 30, strength: 5}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Count)
	assert.Equal(t, sim.GravityTime, cfg.Gravity.Mode)
	assert.Equal(t, DefaultGravityY, cfg.Gravity.Y)
	assert.Equal(t, DefaultWidth, cfg.Width)
	require.Len(t, cfg.Forces, 1)
	assert.Equal(t, sim.Pulse{At: 2, X: 10, Y: 20, Radius: 30, Strength: 5}, cfg.Forces[0])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	cfg := GetPreset("blast")
	require.NotNil(t, cfg)

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadGcfg(t *testing.T) {
	cfg, err := loadGcfgString(ExampleGcfgFile)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Count)
	assert.Equal(t, 0.8, cfg.Physics.WallRestitution)
	assert.Equal(t, 1, cfg.SampleEvery)
	require.Len(t, cfg.Forces, 1)
	assert.Equal(t, 150.0, cfg.Forces[0].Radius)
	assert.NoError(t, cfg.Validate())
}

func TestLoadGcfgFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.gcfg")
	body := "[world]\ncount = 12\n\n[force \"b\"]\nat = 2\nradius = 5\n\n[force \"a\"]\nat = 1\nradius = 5\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Count)
	assert.Equal(t, DefaultDamping, cfg.Damping)
	require.Len(t, cfg.Forces, 2)
	assert.Equal(t, 1.0, cfg.Forces[0].At, "sections are ordered by name")
}

func TestLoadGcfgUnknownKey(t *testing.T) {
	_, err := loadGcfgString("[world]\nmass = 3\n")
	assert.Error(t, err)
}

func TestRunConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleEvery = 0
	cfg.Gravity.Mode = ""

	rc := cfg.RunConfig()
	assert.Equal(t, cfg.Dt, rc.Dt)
	assert.Equal(t, sim.GravityFrame, rc.GravityMode)
	assert.Equal(t, 1, rc.SampleEvery)
	assert.Equal(t, cfg.Width, rc.Width)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gas")
	require.NotNil(t, cfg)
	assert.Zero(t, cfg.Gravity.Y)

	cfg.Count = 1
	assert.NotEqual(t, 1, Presets["gas"].Count, "presets are copied")

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"blast", "dense", "gas", "rain"}, names)
	for _, name := range names {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}
