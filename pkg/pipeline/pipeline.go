// Package pipeline provides the build → split pipeline shared by the CLI and
// the HTTP API.
//
// A request names a hierarchy source (time signature, signature levels,
// pulse lengths or explicit offsets) and one or more spans. The pipeline
// builds the hierarchy, consulting the cache first, and splits every span
// against it. Centralizing this keeps defaults, validation and caching
// identical for every entry point.
//
// # Stages
//
//  1. Build: resolve [Options] to a [meter.Spec] and construct the hierarchy
//  2. Split: break each span into fragments along the hierarchy, or along
//     flat pulses in legacy mode
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{Signature: "6/8", SplitSameLevel: true}
//	res, err := runner.Split(ctx, opts, regroup.Span{Start: start, Length: length})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range res.Fragments {
//	    fmt.Println(f)
//	}
//
// Batches fan out across a bounded worker pool and keep input order:
//
//	batch, err := runner.SplitAll(ctx, opts, spans)
package pipeline

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/regroup/pkg/cache"
	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/regroup"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMinimumPulse is the finest denominator level built for a
	// signature.
	DefaultMinimumPulse = meter.DefaultMinimumPulse

	// DefaultWorkers bounds concurrent splits in a batch.
	DefaultWorkers = 8

	// MaxWorkers caps the worker count a request may ask for.
	MaxWorkers = 64

	// MaxBatchSpans caps the number of spans in one batch.
	MaxBatchSpans = 10000

	// DefaultFormat is the default output format for hierarchies and results.
	DefaultFormat = FormatText
)

// Split modes reported in [Result].
const (
	ModeHierarchy = "hierarchy"
	ModePulse     = "pulse"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for building a hierarchy and splitting
// spans against it. It decodes from JSON request bodies and from TOML style
// files.
type Options struct {
	// Hierarchy source. The most explicit source that is set wins:
	// Offsets, then Pulses, then Signature with Levels, then Signature.
	Signature      string           `json:"signature,omitempty" toml:"signature"`
	Levels         []int            `json:"levels,omitempty" toml:"levels"`
	MinimumPulse   int              `json:"minimum_pulse,omitempty" toml:"minimum_pulse"`
	Pulses         []meter.Offset   `json:"pulses,omitempty" toml:"pulses"`
	MeasureLength  meter.Offset     `json:"measure_length" toml:"measure_length"`
	SkipRatioCheck bool             `json:"skip_ratio_check,omitempty" toml:"skip_ratio_check"`
	Offsets        [][]meter.Offset `json:"offsets,omitempty" toml:"offsets"`

	// Split options
	SplitSameLevel bool `json:"split_same_level,omitempty" toml:"split_same_level"`
	Legacy         bool `json:"legacy,omitempty" toml:"legacy"` // flat-pulse mode

	// Execution options
	Refresh bool `json:"refresh,omitempty" toml:"-"`
	Workers int  `json:"workers,omitempty" toml:"workers"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-" toml:"-"`
	External meter.LevelSource `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the outcome of splitting one span.
type Result struct {
	Span      regroup.Span       `json:"span"`
	Mode      string             `json:"mode"`
	Fragments []regroup.Fragment `json:"fragments"`
	// Overflow is the part of the span past the measure in pulse mode.
	Overflow meter.Offset `json:"overflow"`
}

// BatchResult contains the outputs of a batch run, in input order.
type BatchResult struct {
	ID        string    `json:"id"`
	Results   []Result  `json:"results"`
	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Spans     int           `json:"spans"`
	Fragments int           `json:"fragments"`
	BuildTime time.Duration `json:"build_ns"`
	SplitTime time.Duration `json:"split_ns"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	HierarchyHit bool `json:"hierarchy_hit"` // Whether the hierarchy came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, json, dot, svg)", format)
	}
	return nil
}

// ValidateWorkers checks a requested worker count. Zero selects the default.
func ValidateWorkers(n int) error {
	if n < 0 || n > MaxWorkers {
		return errs.New(errs.ErrCodeInvalidInput, "workers must be between 1 and %d, got %d", MaxWorkers, n)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks that a hierarchy source is configured and
// applies defaults. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Spec().Validate(); err != nil {
		return err
	}
	if o.Signature != "" {
		if err := errs.ValidateSignatureString(o.Signature); err != nil {
			return err
		}
	}
	if err := errs.ValidateLevels(o.Levels, meter.MaxLevelIndex); err != nil {
		return err
	}
	if o.Legacy {
		if len(o.Pulses) == 0 {
			return errs.New(errs.ErrCodeConfiguration, "legacy pulse mode needs pulse lengths")
		}
		if o.SplitSameLevel {
			return errs.New(errs.ErrCodeConfiguration, "same-level splitting is not available in legacy pulse mode")
		}
	}
	if err := ValidateWorkers(o.Workers); err != nil {
		return err
	}

	if o.MinimumPulse == 0 {
		o.MinimumPulse = DefaultMinimumPulse
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Spec converts the hierarchy part of the options to a [meter.Spec].
func (o *Options) Spec() meter.Spec {
	return meter.Spec{
		Offsets:        o.Offsets,
		Pulses:         o.Pulses,
		MeasureLength:  o.MeasureLength,
		SkipRatioCheck: o.SkipRatioCheck,
		Signature:      o.Signature,
		Levels:         o.Levels,
		MinimumPulse:   o.MinimumPulse,
		External:       o.External,
	}
}

// Source reports which hierarchy source the options resolve to.
func (o *Options) Source() meter.Kind {
	return o.Spec().Kind()
}

// Mode reports the split mode the options select.
func (o *Options) Mode() string {
	if o.Legacy {
		return ModePulse
	}
	return ModeHierarchy
}

// Cacheable reports whether built hierarchies may be cached. Hierarchies
// from an external level source are not, since the source may change.
func (o *Options) Cacheable() bool {
	return o.External == nil
}

// HierarchyKeyOpts returns cache key options for hierarchy construction.
// Only the fields of the winning source contribute, so irrelevant settings
// do not fragment the cache.
func (o *Options) HierarchyKeyOpts() cache.HierarchyKeyOpts {
	kind := o.Source()
	k := cache.HierarchyKeyOpts{Source: string(kind)}
	switch kind {
	case meter.KindOffsets:
		data, _ := json.Marshal(o.Offsets)
		k.OffsetsHash = cache.Hash(data)
		k.SkipRatioCheck = o.SkipRatioCheck
	case meter.KindPulses:
		for _, p := range o.Pulses {
			k.Pulses = append(k.Pulses, p.String())
		}
		if !o.MeasureLength.IsZero() {
			k.MeasureLength = o.MeasureLength.String()
		}
		k.SkipRatioCheck = o.SkipRatioCheck
	case meter.KindSignatureLevels:
		k.Levels = o.Levels
		fallthrough
	case meter.KindSignature:
		k.Signature = o.Signature
		k.MinimumPulse = o.MinimumPulse
	}
	return k
}

// Describe returns a short human-readable name for the hierarchy source.
func (o *Options) Describe() string {
	switch o.Source() {
	case meter.KindOffsets:
		return "explicit offsets (" + strconv.Itoa(len(o.Offsets)) + " levels)"
	case meter.KindPulses:
		return "pulses " + joinOffsets(o.Pulses)
	case meter.KindSignatureLevels:
		return o.Signature + " levels " + joinInts(o.Levels)
	case meter.KindSignature:
		return o.Signature
	default:
		return "none"
	}
}

func joinOffsets(offs []meter.Offset) string {
	s := "["
	for i, o := range offs {
		if i > 0 {
			s += " "
		}
		s += o.String()
	}
	return s + "]"
}

func joinInts(ns []int) string {
	s := "["
	for i, n := range ns {
		if i > 0 {
			s += " "
		}
		s += strconv.Itoa(n)
	}
	return s + "]"
}
