package meter

import (
	"slices"
	"sync"

	errs "github.com/matzehuels/regroup/pkg/errors"
)

// LevelSource is an alternate provider of per-level boundary offsets, such
// as a general-purpose music toolkit's own meter model. Sources may omit the
// trailing measure length or return level 0 as just [0]; [FromSource]
// reshapes the results.
//
// External sources are known to be unreliable for compound and irregular
// meters (6/8 without its dotted-quarter level, for example). FromSource
// does not correct this.
type LevelSource interface {
	LevelOffsets(level int) ([]Offset, error)
}

// DefaultSourceLevels is the level selection used by [FromSource] when none
// is given.
var DefaultSourceLevels = []int{0, 1, 2, 3}

// FromSource builds a hierarchy for sig from an external level source. Each
// selected level is sorted, given a leading 0 and a trailing measure length
// when missing, and then validated structurally. Refinement is not enforced
// since external sources do not guarantee it.
func FromSource(sig Signature, src LevelSource, levels []int) (*Hierarchy, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errs.New(errs.ErrCodeConfiguration, "no level source given")
	}
	if len(levels) == 0 {
		levels = DefaultSourceLevels
	}
	idx, err := normalizeLevels(levels)
	if err != nil {
		return nil, err
	}

	length := sig.MeasureLength()
	out := make([]Level, 0, len(idx))
	for _, i := range idx {
		offsets, err := src.LevelOffsets(i)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeMalformedHierarchy, err, "level source failed at level %d", i)
		}
		out = append(out, reshapeLevel(offsets, length))
	}
	// Level 0 is the whole measure regardless of what the source reports.
	out[0] = Level{Offset{}, length}
	return newHierarchy(out, false)
}

func reshapeLevel(offsets []Offset, length Offset) Level {
	l := Level(slices.Clone(offsets))
	slices.SortFunc(l, Offset.Cmp)
	l = slices.CompactFunc(l, Offset.Equal)
	if len(l) == 0 || !l[0].IsZero() {
		l = append(Level{Offset{}}, l...)
	}
	if l.End().Less(length) {
		l = append(l, length)
	}
	return l
}

// SignatureSource serves levels from the native signature builder through
// the [LevelSource] interface. The full hierarchy is built once, on first use.
type SignatureSource struct {
	Signature    Signature
	MinimumPulse int

	once   sync.Once
	levels []Level
	err    error
}

// NewSignatureSource returns a source backed by [FromSignature].
func NewSignatureSource(sig Signature, minimumPulse int) *SignatureSource {
	return &SignatureSource{Signature: sig, MinimumPulse: minimumPulse}
}

// LevelOffsets implements [LevelSource].
func (s *SignatureSource) LevelOffsets(level int) ([]Offset, error) {
	s.once.Do(func() {
		s.levels, s.err = signatureLevels(s.Signature, s.MinimumPulse)
	})
	if s.err != nil {
		return nil, s.err
	}
	if level < 0 || level >= len(s.levels) {
		return nil, errs.New(errs.ErrCodeMalformedHierarchy,
			"level %d does not exist in %s (depth %d)", level, s.Signature, len(s.levels))
	}
	return s.levels[level].clone(), nil
}

// StaticSource serves a fixed table of levels, indexed by level. It stands
// in for toolkits whose output has been captured ahead of time.
type StaticSource [][]Offset

// LevelOffsets implements [LevelSource].
func (s StaticSource) LevelOffsets(level int) ([]Offset, error) {
	if level < 0 || level >= len(s) {
		return nil, errs.New(errs.ErrCodeNotFound, "static source has no level %d", level)
	}
	return slices.Clone(s[level]), nil
}
