package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/integrators"
	"github.com/san-kum/readysim/internal/metrics"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/regime"
	"github.com/san-kum/readysim/internal/sim"
)

const (
	DefaultProfile    = "nominal"
	DefaultRegime     = "single-am"
	DefaultHorizon    = 42.0
	DefaultStep       = 1.0 / 24
	DefaultPeriod     = 7.0
	DefaultWarmup     = 6
	DefaultIntegrator = "rk45"
	DefaultNutrition  = 0.8
	DefaultStress     = 0.1
)

// Config describes one run: who trains, on what schedule, and how the
// solver is driven. Times are in days.
type Config struct {
	Profile    string             `yaml:"profile"`
	Overrides  map[string]float64 `yaml:"overrides,omitempty"`
	Regime     RegimeConfig       `yaml:"regime"`
	Horizon    float64            `yaml:"horizon" validate:"gt=0"`
	Step       float64            `yaml:"step" validate:"gt=0,ltefield=Horizon"`
	Period     float64            `yaml:"period" validate:"gt=0"`
	Warmup     int                `yaml:"warmup" validate:"gte=0"`
	Threshold  float64            `yaml:"threshold"`
	Integrator string             `yaml:"integrator" validate:"oneof=rk45 rk4"`
	Solver     SolverConfig       `yaml:"solver"`
}

// SolverConfig mirrors dynamo.Config.
type SolverConfig struct {
	RelTol   float64 `yaml:"rel_tol" validate:"gt=0"`
	AbsTol   float64 `yaml:"abs_tol" validate:"gt=0"`
	MaxStep  float64 `yaml:"max_step" validate:"gt=0"`
	MaxSteps int     `yaml:"max_steps" validate:"gt=0"`
}

// Sessions are the daily training pulses per modality.
type Sessions struct {
	Endurance []regime.Pulse `yaml:"endurance,omitempty"`
	Strength  []regime.Pulse `yaml:"strength,omitempty"`
	Speed     []regime.Pulse `yaml:"speed,omitempty"`
}

// RegimeConfig either names a preset or spells a schedule out. A description
// with neither a preset nor a sleep window falls back to DefaultRegime.
type RegimeConfig struct {
	Preset string `yaml:"preset,omitempty"`

	Name     string   `yaml:"name,omitempty"`
	Sessions Sessions `yaml:"sessions,omitempty"`
	// Pattern is "", "alternating" (Sessions on even days, Easy on odd
	// days) or "taper" (Sessions scaled by TaperRatio each week).
	Pattern    string   `yaml:"pattern,omitempty" validate:"omitempty,oneof=alternating taper"`
	Easy       Sessions `yaml:"easy,omitempty"`
	TaperRatio float64  `yaml:"taper_ratio,omitempty" validate:"gte=0"`
	// RestDays are weekdays (day mod 7) without training.
	RestDays []int `yaml:"rest_days,omitempty" validate:"dive,gte=0,lte=6"`

	Bedtime    float64      `yaml:"bedtime"`
	SleepHours float64      `yaml:"sleep_hours"`
	Naps       []regime.Nap `yaml:"naps,omitempty"`
	Nutrition  *float64     `yaml:"nutrition,omitempty"`
	Stress     *float64     `yaml:"stress,omitempty"`
}

func DefaultSolver() SolverConfig {
	d := dynamo.DefaultConfig()
	return SolverConfig{RelTol: d.RelTol, AbsTol: d.AbsTol, MaxStep: d.MaxStep, MaxSteps: d.MaxSteps}
}

func DefaultConfig() *Config {
	return &Config{
		Profile:    DefaultProfile,
		Horizon:    DefaultHorizon,
		Step:       DefaultStep,
		Period:     DefaultPeriod,
		Warmup:     DefaultWarmup,
		Threshold:  metrics.DefaultRiskThreshold,
		Integrator: DefaultIntegrator,
		Solver:     DefaultSolver(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save refuses configs that Load would reject.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks the run settings. Parameters and the regime are checked
// when built.
func (c *Config) Validate() error {
	validateOnce.Do(func() { validate = validator.New() })
	return validate.Struct(c)
}

// Params resolves the profile and applies the overrides.
func (c *Config) Params() (params.Set, error) {
	name := c.Profile
	if name == "" {
		name = DefaultProfile
	}
	p, err := params.Profile(name)
	if err != nil {
		return params.Set{}, err
	}
	if p, err = p.With(c.Overrides); err != nil {
		return params.Set{}, err
	}
	if err := p.Validate(); err != nil {
		return params.Set{}, fmt.Errorf("overrides: %w", err)
	}
	return p, nil
}

// Build resolves the parameter set and the regime.
func (c *Config) Build() (params.Set, *regime.Regime, error) {
	if err := c.Validate(); err != nil {
		return params.Set{}, nil, err
	}
	p, err := c.Params()
	if err != nil {
		return params.Set{}, nil, err
	}
	r, err := c.Regime.Build()
	if err != nil {
		return params.Set{}, nil, err
	}
	return p, r, nil
}

// SimOptions translates the solver settings for sim.
func (c *Config) SimOptions() ([]sim.Option, error) {
	solver := dynamo.DefaultConfig()
	solver.RelTol = c.Solver.RelTol
	solver.AbsTol = c.Solver.AbsTol
	solver.MaxStep = c.Solver.MaxStep
	solver.MaxSteps = c.Solver.MaxSteps

	opts := []sim.Option{sim.WithSolver(solver), sim.WithThreshold(c.Threshold)}
	switch c.Integrator {
	case "", "rk45":
	case "rk4":
		opts = append(opts, sim.WithAdvancer(func() dynamo.Advancer { return integrators.NewRK4() }))
	default:
		return nil, fmt.Errorf("unknown integrator: %s", c.Integrator)
	}
	return opts, nil
}
