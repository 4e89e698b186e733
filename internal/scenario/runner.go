package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/sanonone/qdf/pkg/core"
	"github.com/sanonone/qdf/pkg/engine"
)

// Report summarizes a scenario run.
type Report struct {
	Name      string       `json:"name"`
	FieldID   string       `json:"field_id"`
	Dimension int          `json:"dimension"`
	Spaces    int          `json:"spaces"`
	Leaves    int          `json:"leaves"`
	Edges     int          `json:"edges"`
	Totals    []float64    `json:"totals"` // aggregated state per root
	Paths     []PathResult `json:"paths"`
}

type PathResult struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Path  []core.ID `json:"path,omitempty"`
	Hops  int       `json:"hops"`
	Error string    `json:"error,omitempty"`
}

// Run executes the scenario. Path queries that fail are recorded in the report; any
// other failure aborts the run.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := engine.DefaultOptions[float64]()
	opts.Name = cfg.Name
	opts.Logger = logger
	if cfg.Split == SplitDivide {
		opts.Split = engine.DivideEvenly[float64]
	}

	f, _, err := engine.NewWithOptions(cfg.Dimension, cfg.InitialState, opts)
	if err != nil {
		return nil, err
	}
	for _, st := range cfg.ExtraRoots {
		f.AddRoot(st)
	}

	for i, ref := range cfg.Subdivide {
		id, err := resolve(f, ref)
		if err != nil {
			return nil, fmt.Errorf("subdivide[%d]: %w", i, err)
		}
		if _, err := f.IncreaseSpaceDensity(id); err != nil {
			return nil, fmt.Errorf("subdivide[%d] %s: %w", i, ref, err)
		}
	}
	for i, ref := range cfg.Refine {
		id, err := resolve(f, ref)
		if err != nil {
			return nil, fmt.Errorf("refine[%d]: %w", i, err)
		}
		if _, err := f.IncreaseSubtreeDensity(id); err != nil {
			return nil, fmt.Errorf("refine[%d] %s: %w", i, ref, err)
		}
	}

	rule := ruleFor(cfg.Simulate.Rule)
	for step := 0; step < cfg.Simulate.Steps; step++ {
		if err := f.Simulate(ctx, rule, cfg.Simulate.Workers); err != nil {
			return nil, fmt.Errorf("simulation step %d: %w", step, err)
		}
	}

	if err := f.CheckConsistency(); err != nil {
		return nil, err
	}

	report := &Report{
		Name:      cfg.Name,
		FieldID:   f.UUID().String(),
		Dimension: f.Dimension(),
		Spaces:    f.Len(),
		Leaves:    len(f.Leaves()),
		Edges:     f.EdgeCount(),
	}
	for _, r := range f.Roots() {
		total, err := f.AggregateState(r, engine.Sum[float64])
		if err != nil {
			return nil, err
		}
		report.Totals = append(report.Totals, total)
	}

	for _, q := range cfg.Paths {
		res := PathResult{From: q.From.String(), To: q.To.String()}
		path, err := findPath(f, q)
		if err != nil {
			res.Error = err.Error()
			logger.Warn("path query failed", "from", res.From, "to", res.To, "error", err)
		} else {
			res.Path = path
			res.Hops = len(path) - 1
		}
		report.Paths = append(report.Paths, res)
	}

	logger.Info("scenario completed", "name", cfg.Name, "spaces", report.Spaces, "leaves", report.Leaves)
	return report, nil
}

func findPath(f *engine.Field[float64], q PathQuery) ([]core.ID, error) {
	src, err := resolve(f, q.From)
	if err != nil {
		return nil, err
	}
	dst, err := resolve(f, q.To)
	if err != nil {
		return nil, err
	}
	return f.FindPath(src, dst)
}

// ErrUnresolved is returned when a SpaceRef descends below a leaf.
var ErrUnresolved = errors.New("space reference does not resolve")

func resolve(f *engine.Field[float64], ref SpaceRef) (core.ID, error) {
	roots := f.Roots()
	if ref.Root < 0 || ref.Root >= len(roots) {
		return 0, fmt.Errorf("%w: %s: no root %d", ErrUnresolved, ref, ref.Root)
	}
	id := roots[ref.Root]
	for depth, idx := range ref.Path {
		children, err := f.Children(id)
		if err != nil {
			return 0, err
		}
		if idx < 0 || idx >= len(children) {
			return 0, fmt.Errorf("%w: %s: %s has %d children at depth %d", ErrUnresolved, ref, id, len(children), depth)
		}
		id = children[idx]
	}
	return id, nil
}

func ruleFor(name string) engine.Rule[float64] {
	switch name {
	case RuleMax:
		return func(state float64, neighbors []float64) float64 {
			for _, n := range neighbors {
				state = math.Max(state, n)
			}
			return state
		}
	case RuleIdentity:
		return func(state float64, _ []float64) float64 { return state }
	default:
		return func(state float64, neighbors []float64) float64 {
			total := state
			for _, n := range neighbors {
				total += n
			}
			return total / float64(len(neighbors)+1)
		}
	}
}
