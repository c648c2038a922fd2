package meter

import (
	"slices"

	errs "github.com/matzehuels/regroup/pkg/errors"
)

const (
	// DefaultMinimumPulse is the finest denominator level generated when
	// none is requested (the 64th note).
	DefaultMinimumPulse = 64

	// MaxLevelIndex is the deepest level that may be selected by index.
	MaxLevelIndex = 6

	// MaxMeasureLength bounds the measure, in quarter-lengths, of a
	// signature hierarchy: sixteen bars of 4/4.
	MaxMeasureLength = 64

	// MaxLevelBoundaries bounds the boundaries of one pulse level. A
	// 64/4 signature at 64th notes has 1025.
	MaxLevelBoundaries = 4096
)

// FromSignature builds the full hierarchy of a time signature: level 0, then
// the grouping levels from [Signature.Groupings], then one evenly spaced
// level per denominator from the signature's own down to minimumPulse.
//
// A minimumPulse of 0 means [DefaultMinimumPulse]. It must be one of
// [SupportedDenominators] and not coarser than the signature's denominator.
//
//	h, _ := meter.FromSignature(meter.MustParseSignature("6/8"), 32)
//	// [[0 3] [0 1.5 3] [0 0.5 1 ... 3] [0 0.25 ... 3] [0 0.125 ... 3]]
func FromSignature(sig Signature, minimumPulse int) (*Hierarchy, error) {
	levels, err := signatureLevels(sig, minimumPulse)
	if err != nil {
		return nil, err
	}
	return newHierarchy(levels, true)
}

func signatureLevels(sig Signature, minimumPulse int) ([]Level, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if minimumPulse == 0 {
		minimumPulse = DefaultMinimumPulse
	}
	lo := slices.Index(SupportedDenominators, sig.Denominator)
	hi := slices.Index(SupportedDenominators, minimumPulse)
	if hi < 0 {
		return nil, errs.New(errs.ErrCodeInvalidSignature,
			"invalid minimum pulse %d; it should be a note value from one of %v", minimumPulse, SupportedDenominators)
	}
	if hi < lo {
		return nil, errs.New(errs.ErrCodeInvalidSignature,
			"minimum pulse 1/%d is longer than the beat of %s", minimumPulse, sig)
	}

	length := sig.MeasureLength()
	levels := []Level{{Offset{}, length}}
	for _, g := range sig.Groupings() {
		levels = append(levels, offsetsFromBeatPattern(g, sig.Denominator))
	}
	for _, d := range SupportedDenominators[lo : hi+1] {
		levels = append(levels, offsetsFromLengths(length, NewOffset(4, int64(d))))
	}
	return levels, nil
}

// FromSignatureLevels builds the signature hierarchy and keeps only the
// selected level indices. Index 0 is always included, the selection is
// sorted and deduplicated, and every index must be in [0, MaxLevelIndex]
// and exist in the full hierarchy.
//
// In 4/4, levels [1, 3] keep the half-note and eighth-note grids and skip
// the quarter.
func FromSignatureLevels(sig Signature, levels []int, minimumPulse int) (*Hierarchy, error) {
	idx, err := normalizeLevels(levels)
	if err != nil {
		return nil, err
	}
	full, err := signatureLevels(sig, minimumPulse)
	if err != nil {
		return nil, err
	}
	selected := make([]Level, 0, len(idx))
	for _, i := range idx {
		if i >= len(full) {
			return nil, errs.New(errs.ErrCodeMalformedHierarchy,
				"level %d does not exist in %s (depth %d)", i, sig, len(full))
		}
		selected = append(selected, full[i])
	}
	return newHierarchy(selected, true)
}

func normalizeLevels(levels []int) ([]int, error) {
	if err := errs.ValidateLevels(levels, MaxLevelIndex); err != nil {
		return nil, err
	}
	idx := append([]int{0}, levels...)
	slices.Sort(idx)
	return slices.Compact(idx), nil
}

// PulseOptions configures [FromPulseLengths].
type PulseOptions struct {
	// MeasureLength overrides the measure length. The zero value means the
	// largest pulse.
	MeasureLength Offset
	// SkipRatioCheck allows consecutive pulses that are not in a 2:1 or 3:1
	// ratio, as found in non-isochronous groupings such as 5/4 built from
	// dotted and plain halves.
	SkipRatioCheck bool
}

// FromPulseLengths builds a hierarchy with one evenly spaced level per pulse
// length, longest first. Duplicate pulses collapse into one level.
//
// The measure length defaults to the longest pulse. An explicit one must not
// be shorter than it, and with ratio checking on must be exactly 1, 2 or 3
// times it (1 is the same as leaving it unset). The shortest pulse may
// divide the measure into at most [MaxLevelBoundaries] parts. A measure
// longer than the longest pulse gets its own [0, L] level ahead of the pulse
// levels.
func FromPulseLengths(pulses []Offset, opts PulseOptions) (_ *Hierarchy, err error) {
	defer CatchOverflow(&err)

	sorted, err := sortPulses(pulses)
	if err != nil {
		return nil, err
	}
	if !opts.SkipRatioCheck {
		if err := checkRatios(sorted); err != nil {
			return nil, err
		}
	}

	longest := sorted[0]
	length := opts.MeasureLength
	switch {
	case length.IsZero():
		length = longest
	case length.Sign() < 0 || length.Less(longest):
		return nil, errs.New(errs.ErrCodeMalformedHierarchy,
			"pulse length %s cannot be longer than the measure length %s", longest, length)
	case !opts.SkipRatioCheck && !isUnitRatio(length.Div(longest)):
		return nil, errs.New(errs.ErrCodeMalformedHierarchy,
			"measure length %s is not 1, 2 or 3 times the longest pulse %s", length, longest)
	}

	if n := length.Div(sorted[len(sorted)-1]); n.Cmp(Whole(MaxLevelBoundaries)) > 0 {
		return nil, errs.New(errs.ErrCodeMalformedHierarchy,
			"pulse %s divides the measure %s into more than %d parts", sorted[len(sorted)-1], length, MaxLevelBoundaries)
	}

	var levels []Level
	if longest.Less(length) {
		levels = append(levels, Level{Offset{}, length})
	}
	for _, p := range sorted {
		levels = append(levels, offsetsFromLengths(length, p))
	}
	return newHierarchy(levels, !opts.SkipRatioCheck)
}

func sortPulses(pulses []Offset) ([]Offset, error) {
	if len(pulses) == 0 {
		return nil, errs.New(errs.ErrCodeMalformedHierarchy, "no pulse lengths given")
	}
	sorted := slices.Clone(pulses)
	for _, p := range sorted {
		if p.Sign() <= 0 {
			return nil, errs.New(errs.ErrCodeMalformedHierarchy, "pulse length must be positive, got %s", p)
		}
	}
	slices.SortFunc(sorted, func(a, b Offset) int { return b.Cmp(a) })
	return slices.CompactFunc(sorted, Offset.Equal), nil
}

func checkRatios(sorted []Offset) error {
	for i := 0; i+1 < len(sorted); i++ {
		r := sorted[i].Div(sorted[i+1])
		if !r.Equal(Whole(2)) && !r.Equal(Whole(3)) {
			return errs.New(errs.ErrCodeMalformedHierarchy,
				"the proportion between consecutive levels is not 2 or 3 in this case: %s:%s", sorted[i], sorted[i+1])
		}
	}
	return nil
}

func isUnitRatio(r Offset) bool {
	return r.Equal(Whole(1)) || r.Equal(Whole(2)) || r.Equal(Whole(3))
}
