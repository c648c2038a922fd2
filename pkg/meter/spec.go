package meter

import (
	errs "github.com/matzehuels/regroup/pkg/errors"
)

// Kind names the source a [Spec] resolves to.
type Kind string

const (
	KindNone            Kind = ""
	KindOffsets         Kind = "offsets"
	KindPulses          Kind = "pulses"
	KindSignatureLevels Kind = "signature-levels"
	KindSignature       Kind = "signature"
)

// Spec collects every way of describing a hierarchy. When several sources
// are set the most explicit wins: Offsets, then Pulses, then Signature with
// Levels, then Signature alone.
type Spec struct {
	// Offsets is a fully explicit nested offset list.
	Offsets [][]Offset
	// Pulses lists pulse lengths in quarter-lengths.
	Pulses []Offset
	// MeasureLength overrides the measure length on the pulse path.
	MeasureLength Offset
	// SkipRatioCheck disables the 2:1/3:1 check on the pulse path and the
	// monotone refinement check on explicit offsets.
	SkipRatioCheck bool
	// Signature is a time signature string such as "6/8".
	Signature string
	// Levels selects level indices of the signature hierarchy.
	Levels []int
	// MinimumPulse is the finest denominator level; 0 means 64.
	MinimumPulse int
	// External, when set, sources signature levels from an external toolkit
	// instead of the native builder.
	External LevelSource
}

// Kind reports which source [Build] will use.
func (s Spec) Kind() Kind {
	switch {
	case len(s.Offsets) > 0:
		return KindOffsets
	case len(s.Pulses) > 0:
		return KindPulses
	case s.Signature != "" && len(s.Levels) > 0:
		return KindSignatureLevels
	case s.Signature != "":
		return KindSignature
	default:
		return KindNone
	}
}

// Validate reports the CONFIGURATION errors [Build] would return before any
// construction is attempted: no source at all, or levels without a
// signature.
func (s Spec) Validate() error {
	if s.Kind() != KindNone {
		return nil
	}
	if len(s.Levels) > 0 {
		return errs.New(errs.ErrCodeConfiguration, "to specify levels, also supply a time signature")
	}
	return errs.New(errs.ErrCodeConfiguration,
		"no hierarchy source: supply a time signature, pulse lengths or explicit offsets")
}

// Build constructs the hierarchy described by s. It fails with a
// CONFIGURATION error when no source is set, or when levels are given
// without a signature.
func Build(s Spec) (*Hierarchy, error) {
	switch s.Kind() {
	case KindOffsets:
		return newHierarchy(toLevels(s.Offsets), !s.SkipRatioCheck)
	case KindPulses:
		return FromPulseLengths(s.Pulses, PulseOptions{
			MeasureLength:  s.MeasureLength,
			SkipRatioCheck: s.SkipRatioCheck,
		})
	case KindSignatureLevels, KindSignature:
		sig, err := ParseSignature(s.Signature)
		if err != nil {
			return nil, err
		}
		if s.External != nil {
			return FromSource(sig, s.External, s.Levels)
		}
		if len(s.Levels) > 0 {
			return FromSignatureLevels(sig, s.Levels, s.MinimumPulse)
		}
		return FromSignature(sig, s.MinimumPulse)
	}
	return nil, s.Validate()
}
