// Package pipeline wires the memoized caches, the simulation
// collaborator, and the series derivations into the capability
// offered to display layers: derive a figure, slice it at a time,
// extract peak times.
//
// The pipeline owns four independent caches sharing one contract:
// charge-state evolution, and one per cross-section scan kind. Cache
// state lives for the process lifetime only.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebitlab/csevo/internal/memo"
	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/series"
)

// Simulator is the external computation collaborator. physics.Engine
// is the production implementation; tests substitute counting stubs.
type Simulator interface {
	RunSimulation(ctx context.Context, req params.SimulationRequest) (series.SimulationResult, error)
	ScanCrossSections(req params.ScanRequest) (series.ScanResult, error)
}

// SimulationError reports a failed external computation. It is never
// cached, and it is distinct from both "invalid input" (which never
// reaches the collaborator) and "nothing computed yet", so a display
// layer can render an explicit diagnostic.
type SimulationError struct {
	Cause error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %v", e.Cause)
}

func (e *SimulationError) Unwrap() error {
	return e.Cause
}

// Config sizes the caches and bounds computation waits.
type Config struct {
	// SimulationCapacity bounds the charge-state evolution cache.
	// Zero means memo.DefaultCapacity.
	SimulationCapacity int
	// ScanCapacity bounds each of the three scan caches.
	// Zero means memo.DefaultCapacity.
	ScanCapacity int
	// Timeout bounds the wait on one computation; zero waits
	// indefinitely.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SimulationCapacity == 0 {
		c.SimulationCapacity = memo.DefaultCapacity
	}
	if c.ScanCapacity == 0 {
		c.ScanCapacity = memo.DefaultCapacity
	}
	return c
}

// Pipeline is safe for concurrent use; the only shared mutable state
// is inside the caches.
type Pipeline struct {
	sim    *memo.Cache[params.SimulationRequest, series.SimulationResult]
	scans  map[params.ScanKind]*memo.Cache[params.ScanRequest, series.ScanResult]
	logger *slog.Logger
}

// New builds a pipeline over the given collaborator. A nil logger
// falls back to slog.Default().
func New(sim Simulator, cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	var memoOpts []memo.Option
	if cfg.Timeout > 0 {
		memoOpts = append(memoOpts, memo.WithTimeout(cfg.Timeout))
	}

	simCache, err := memo.New(cfg.SimulationCapacity,
		func(ctx context.Context, req params.SimulationRequest) (series.SimulationResult, error) {
			start := time.Now()
			res, err := sim.RunSimulation(ctx, req)
			if err != nil {
				return series.SimulationResult{}, &SimulationError{Cause: err}
			}
			logger.Debug("simulation computed",
				"key", req.CacheKey(),
				"samples", len(res.Time),
				"elapsed", time.Since(start))
			return res, nil
		}, memoOpts...)
	if err != nil {
		return nil, err
	}

	scans := make(map[params.ScanKind]*memo.Cache[params.ScanRequest, series.ScanResult], len(params.ScanKinds))
	for _, kind := range params.ScanKinds {
		scanCache, err := memo.New(cfg.ScanCapacity,
			func(ctx context.Context, req params.ScanRequest) (series.ScanResult, error) {
				res, err := sim.ScanCrossSections(req)
				if err != nil {
					return series.ScanResult{}, &SimulationError{Cause: err}
				}
				return res, nil
			}, memoOpts...)
		if err != nil {
			return nil, err
		}
		scans[kind] = scanCache
	}

	return &Pipeline{sim: simCache, scans: scans, logger: logger}, nil
}

// DeriveFigure runs (or replays from cache) the charge-state
// evolution for req and normalizes it into fractional abundances.
//
// A *series.NormalizationError is non-fatal: the returned figure is
// complete with the affected samples zero-filled. Every other error
// means no figure: *params.InvalidParameterError for out-of-domain
// input, *SimulationError for a failed computation, *memo.TimeoutError
// or a context error for an abandoned wait.
func (p *Pipeline) DeriveFigure(ctx context.Context, req params.SimulationRequest) (series.Figure, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := p.sim.Get(ctx, req)
	if err != nil {
		return nil, err
	}

	fig, err := series.Normalize(res)
	var nerr *series.NormalizationError
	if errors.As(err, &nerr) {
		p.logger.Warn("normalization degraded", "key", req.CacheKey(), "steps", len(nerr.Steps))
		return fig, nerr
	}
	if err != nil {
		return nil, err
	}
	return fig, nil
}

// Scan runs (or replays from cache) the cross-section scan for req
// and converts it into a plot-ready figure. Error contract as for
// DeriveFigure, minus normalization.
func (p *Pipeline) Scan(ctx context.Context, req params.ScanRequest) (series.Figure, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := p.scans[req.Kind].Get(ctx, req)
	if err != nil {
		return nil, err
	}
	return series.FromScan(res)
}

// SliceAtTime interpolates every series of a figure at the query
// time. See series.SliceAtTime for the clamping policy.
func (p *Pipeline) SliceAtTime(fig series.Figure, t float64) ([]series.SamplePoint, error) {
	return series.SliceAtTime(fig, t)
}

// PeakTimes extracts the time of maximal abundance per series.
func (p *Pipeline) PeakTimes(fig series.Figure) ([]series.PeakPoint, error) {
	return series.PeakTimes(fig)
}

// Stats snapshots hit/miss counters for every cache, keyed by
// "simulation" or the scan kind.
func (p *Pipeline) Stats() map[string]memo.Stats {
	stats := make(map[string]memo.Stats, 1+len(p.scans))
	stats["simulation"] = p.sim.Stats()
	for kind, cache := range p.scans {
		stats[string(kind)] = cache.Stats()
	}
	return stats
}
