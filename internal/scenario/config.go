// Package scenario describes a quantized density field experiment in YAML and runs it.
//
// A scenario creates a float64 field, subdivides spaces addressed by child-index paths,
// optionally runs simulation steps, and answers path queries between leaves.

package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Split policies.
const (
	SplitCopy   = "copy"
	SplitDivide = "divide"
)

// Simulation rules.
const (
	RuleAverage  = "average"
	RuleMax      = "max"
	RuleIdentity = "identity"
)

// Config is the top-level structure of a scenario file.
type Config struct {
	Name         string         `yaml:"name"`
	Dimension    int            `yaml:"dimension"`
	InitialState float64        `yaml:"initial_state"`
	Split        string         `yaml:"split"`       // "copy" or "divide"
	ExtraRoots   []float64      `yaml:"extra_roots"` // states of additional independent roots
	Subdivide    []SpaceRef     `yaml:"subdivide"`
	Refine       []SpaceRef     `yaml:"refine"` // every leaf under the space is split once
	Simulate     SimulateConfig `yaml:"simulate"`
	Paths        []PathQuery    `yaml:"paths"`
}

// SpaceRef addresses a space by root index and the child indexes leading to it.
// An empty path is the root itself.
type SpaceRef struct {
	Root int   `yaml:"root"`
	Path []int `yaml:"path"`
}

func (r SpaceRef) String() string {
	return fmt.Sprintf("r%d%v", r.Root, r.Path)
}

type SimulateConfig struct {
	Steps   int    `yaml:"steps"`
	Rule    string `yaml:"rule"`    // "average", "max" or "identity"
	Workers int    `yaml:"workers"` // 0 = unlimited
}

type PathQuery struct {
	From SpaceRef `yaml:"from"`
	To   SpaceRef `yaml:"to"`
}

// DefaultConfig returns a 2-dimensional field with a copied unit state and no steps.
func DefaultConfig() Config {
	return Config{
		Name:         "scenario",
		Dimension:    2,
		InitialState: 1,
		Split:        SplitCopy,
		Simulate: SimulateConfig{
			Rule: RuleAverage,
		},
	}
}

// LoadConfig reads the YAML scenario file using strict parsing.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in scenario: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if c.Dimension < 1 {
		errs = append(errs, fmt.Errorf("dimension must be at least 1, got %d", c.Dimension))
	}
	switch c.Split {
	case SplitCopy, SplitDivide:
	default:
		errs = append(errs, fmt.Errorf("unknown split policy %q", c.Split))
	}
	switch c.Simulate.Rule {
	case RuleAverage, RuleMax, RuleIdentity:
	default:
		errs = append(errs, fmt.Errorf("unknown simulation rule %q", c.Simulate.Rule))
	}
	if c.Simulate.Steps < 0 {
		errs = append(errs, fmt.Errorf("simulate.steps must not be negative, got %d", c.Simulate.Steps))
	}
	if c.Simulate.Workers < 0 {
		errs = append(errs, fmt.Errorf("simulate.workers must not be negative, got %d", c.Simulate.Workers))
	}

	roots := 1 + len(c.ExtraRoots)
	check := func(where string, ref SpaceRef) {
		if ref.Root < 0 || ref.Root >= roots {
			errs = append(errs, fmt.Errorf("%s: root %d out of range [0,%d)", where, ref.Root, roots))
		}
		for _, idx := range ref.Path {
			if idx < 0 || idx > c.Dimension {
				errs = append(errs, fmt.Errorf("%s: child index %d out of range [0,%d]", where, idx, c.Dimension))
			}
		}
	}
	for i, ref := range c.Subdivide {
		check(fmt.Sprintf("subdivide[%d]", i), ref)
	}
	for i, ref := range c.Refine {
		check(fmt.Sprintf("refine[%d]", i), ref)
	}
	for i, q := range c.Paths {
		check(fmt.Sprintf("paths[%d].from", i), q.From)
		check(fmt.Sprintf("paths[%d].to", i), q.To)
	}
	return errors.Join(errs...)
}
