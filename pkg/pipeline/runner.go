package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/regroup/pkg/cache"
	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/observability"
	"github.com/matzehuels/regroup/pkg/regroup"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// HierarchyWithCacheInfo builds the hierarchy described by opts, loading it
// from the cache when possible, and reports whether it was a cache hit.
func (r *Runner) HierarchyWithCacheInfo(ctx context.Context, opts Options) (*meter.Hierarchy, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	var cacheKey string
	if opts.Cacheable() {
		cacheKey = r.Keyer.HierarchyKey(opts.HierarchyKeyOpts())

		// Try cache first (unless refresh requested)
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				var h meter.Hierarchy
				err := json.Unmarshal(data, &h)
				if err == nil {
					observability.Cache().OnCacheHit(ctx, "hierarchy")
					opts.Logger.Debug("hierarchy cache hit", "source", opts.Source())
					return &h, true, nil
				}
				opts.Logger.Warn("discarding unreadable cache entry", "error", err)
			} else if err != nil {
				opts.Logger.Warn("cache read failed", "error", err)
			}
			observability.Cache().OnCacheMiss(ctx, "hierarchy")
		}
	}

	kind := string(opts.Source())
	observability.Build().OnBuildStart(ctx, kind)
	start := time.Now()
	h, err := meter.Build(opts.Spec())
	duration := time.Since(start)
	depth := 0
	if h != nil {
		depth = h.Depth()
	}
	observability.Build().OnBuildComplete(ctx, kind, depth, duration, err)
	if err != nil {
		return nil, false, err
	}

	opts.Logger.Debug("built hierarchy",
		"source", kind,
		"depth", depth,
		"measure", h.MeasureLength(),
		"duration", duration)

	if cacheKey != "" {
		if data, err := json.Marshal(h); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLHierarchy); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "hierarchy", len(data))
			}
		}
	}

	return h, false, nil
}

// Hierarchy is a convenience wrapper that calls HierarchyWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Hierarchy(ctx context.Context, opts Options) (*meter.Hierarchy, error) {
	h, _, err := r.HierarchyWithCacheInfo(ctx, opts)
	return h, err
}

// Split splits one span. In legacy mode the span is split along flat pulses
// and no hierarchy is built.
func (r *Runner) Split(ctx context.Context, opts Options, span regroup.Span) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	split, _, err := r.splitter(ctx, opts)
	if err != nil {
		return nil, err
	}
	res, err := split(ctx, span)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SplitAll splits every span concurrently with at most opts.Workers splits
// in flight. Results keep input order. The first failing span cancels the
// batch and its error names the span index.
func (r *Runner) SplitAll(ctx context.Context, opts Options, spans []regroup.Span) (*BatchResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(spans) > MaxBatchSpans {
		return nil, errs.New(errs.ErrCodeInvalidInput, "batch has %d spans (max %d)", len(spans), MaxBatchSpans)
	}

	batch := &BatchResult{
		ID:      uuid.NewString(),
		Results: make([]Result, len(spans)),
	}
	logger := opts.Logger.With("batch", batch.ID)

	buildStart := time.Now()
	split, hit, err := r.splitter(ctx, opts)
	if err != nil {
		return nil, err
	}
	batch.Stats.BuildTime = time.Since(buildStart)
	batch.CacheInfo.HierarchyHit = hit

	splitStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, span := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := split(gctx, span)
			if err != nil {
				return fmt.Errorf("span %d %s: %w", i, span, err)
			}
			batch.Results[i] = res
			return nil
		})
	}
	err = g.Wait()
	batch.Stats.SplitTime = time.Since(splitStart)
	observability.Split().OnBatchComplete(ctx, batch.ID, len(spans), batch.Stats.SplitTime, err)
	if err != nil {
		return nil, err
	}

	batch.Stats.Spans = len(spans)
	for _, res := range batch.Results {
		batch.Stats.Fragments += len(res.Fragments)
	}
	logger.Info("split batch",
		"spans", batch.Stats.Spans,
		"fragments", batch.Stats.Fragments,
		"workers", opts.Workers,
		"duration", batch.Stats.SplitTime)
	return batch, nil
}

type splitFunc func(ctx context.Context, span regroup.Span) (Result, error)

// splitter resolves opts to a reusable split function, building (or loading)
// the hierarchy once. It also reports whether the hierarchy was a cache hit.
func (r *Runner) splitter(ctx context.Context, opts Options) (splitFunc, bool, error) {
	mode := opts.Mode()
	if opts.Legacy {
		pulses := opts.Pulses
		return r.instrument(opts, mode, func(span regroup.Span) (Result, error) {
			pr, err := regroup.SplitPulses(pulses, span.Start, span.Length)
			return Result{Span: span, Mode: mode, Fragments: pr.Fragments, Overflow: pr.Overflow}, err
		}), false, nil
	}

	h, hit, err := r.HierarchyWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	s := regroup.New(h, regroup.Options{SplitSameLevel: opts.SplitSameLevel})
	return r.instrument(opts, mode, func(span regroup.Span) (Result, error) {
		frags, err := s.SplitSpan(span)
		return Result{Span: span, Mode: mode, Fragments: frags}, err
	}), hit, nil
}

func (r *Runner) instrument(opts Options, mode string, do func(regroup.Span) (Result, error)) splitFunc {
	return func(ctx context.Context, span regroup.Span) (Result, error) {
		start := time.Now()
		res, err := do(span)
		duration := time.Since(start)
		observability.Split().OnSplitComplete(ctx, mode, len(res.Fragments), duration, err)
		if err != nil {
			return Result{}, err
		}
		if res.Fragments == nil {
			res.Fragments = []regroup.Fragment{}
		}
		opts.Logger.Debug("split span",
			"span", span,
			"mode", mode,
			"fragments", len(res.Fragments))
		return res, nil
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
