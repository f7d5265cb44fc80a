package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/physics"
)

// Gravity modes.
const (
	// GravityFrame adds the gravity vector once per frame regardless of dt.
	GravityFrame = "frame"
	// GravityTime treats the gravity vector as an acceleration (g*dt per frame).
	GravityTime = "time"
)

var (
	ErrInvalidState  = errors.New("sim: invalid particle state (NaN or Inf detected)")
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
)

// Frame is what metrics and observers see after each step.
type Frame struct {
	View   particle.View
	Stats  physics.StepStats
	Step   int
	Time   float64
	Width  float64
	Height float64
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

// Pulse is a scripted radial force fired once, before the first step whose
// start time reaches At.
type Pulse struct {
	At       float64 `yaml:"at" json:"at"`
	X        float64 `yaml:"x" json:"x"`
	Y        float64 `yaml:"y" json:"y"`
	Radius   float64 `yaml:"radius" json:"radius"`
	Strength float64 `yaml:"strength" json:"strength"`
}

type Config struct {
	Dt          float64
	Duration    float64
	Width       float64 // zero keeps the simulation's current bounds
	Height      float64
	GravityX    float64
	GravityY    float64
	GravityMode string
	Pulses      []Pulse
	SampleEvery int

	// ValidateState scans the buffer for NaN/Inf after every step.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      10.0,
		GravityY:      0.5,
		GravityMode:   GravityFrame,
		SampleEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	Times      []float64
	Series     map[string][]float64
	Metrics    map[string]float64
	Final      []float64
	StepsTaken int
	Contacts   int
	WallHits   int
	Errors     []error
}

// StepError wraps a failure with the step that produced it.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
