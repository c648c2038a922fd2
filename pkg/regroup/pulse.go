package regroup

import (
	"slices"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
)

// PulseResult is the outcome of [SplitPulses].
type PulseResult struct {
	Fragments []Fragment   `json:"fragments"`
	Overflow  meter.Offset `json:"overflow"`
}

// SplitPulses is the flat-pulse alternate of [Splitter.Split]. It needs no
// hierarchy: boundaries are found by testing the cursor modulo each pulse
// length, and the measure is the longest pulse.
//
// Consecutive pulses must be in a strict 2:1 or 3:1 ratio, so additive and
// irregular groupings cannot be expressed. Same-level splitting is not
// available. Any part of the span past the measure end is returned as
// Overflow instead of as a fragment.
func SplitPulses(pulses []meter.Offset, start, length meter.Offset) (_ PulseResult, err error) {
	defer meter.CatchOverflow(&err)

	sorted, err := strictPulses(pulses)
	if err != nil {
		return PulseResult{}, err
	}
	measure := sorted[0]
	if err := checkSpan(start, length, measure); err != nil {
		return PulseResult{}, err
	}

	var (
		res PulseResult
		cur = start
		rem = length
	)
	for rem.Sign() > 0 && cur.Less(measure) {
		var next meter.Offset
		switch idx := pulseStrength(sorted, cur); {
		case idx == 0:
			next = measure
		case idx > 0:
			next = nextMultiple(cur, sorted[idx-1])
		default:
			next = nextMultiple(cur, sorted[len(sorted)-1])
		}

		gap := next.Sub(cur)
		if rem.Cmp(gap) <= 0 {
			res.Fragments = append(res.Fragments, Fragment{Position: cur, Length: rem})
			rem = meter.Offset{}
			break
		}
		res.Fragments = append(res.Fragments, Fragment{Position: cur, Length: gap})
		cur, rem = next, rem.Sub(gap)
	}
	if rem.Sign() > 0 {
		res.Overflow = rem
	}
	return res, nil
}

func strictPulses(pulses []meter.Offset) ([]meter.Offset, error) {
	if len(pulses) == 0 {
		return nil, errs.New(errs.ErrCodeMalformedHierarchy, "no pulse lengths given")
	}
	sorted := slices.Clone(pulses)
	for _, p := range sorted {
		if p.Sign() <= 0 {
			return nil, errs.New(errs.ErrCodeMalformedHierarchy, "pulse length must be positive, got %s", p)
		}
	}
	slices.SortFunc(sorted, func(a, b meter.Offset) int { return b.Cmp(a) })
	for i := 0; i+1 < len(sorted); i++ {
		r := sorted[i].Div(sorted[i+1])
		if !r.Equal(meter.Whole(2)) && !r.Equal(meter.Whole(3)) {
			return nil, errs.New(errs.ErrCodeMalformedHierarchy,
				"pulse mode needs 2:1 or 3:1 ratios, got %s:%s", sorted[i], sorted[i+1])
		}
	}
	return sorted, nil
}

// pulseStrength returns the index of the longest pulse dividing o, or -1.
func pulseStrength(sorted []meter.Offset, o meter.Offset) int {
	for i, p := range sorted {
		if o.Mod(p).IsZero() {
			return i
		}
	}
	return -1
}

func nextMultiple(o, p meter.Offset) meter.Offset {
	return p.MulInt(o.Div(p).Floor() + 1)
}
