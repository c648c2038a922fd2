package regroup

import (
	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
)

// Options configures a [Splitter].
type Options struct {
	// SplitSameLevel also splits between boundaries of equal strength, so a
	// quarter note on the second eighth of 6/8 becomes two tied eighths.
	SplitSameLevel bool `json:"split_same_level" toml:"split_same_level"`
}

// Splitter breaks spans into tied fragments along a hierarchy. A Splitter is
// safe for concurrent use: every call keeps its cursor on its own stack.
type Splitter struct {
	h       *meter.Hierarchy
	opts    Options
	ceiling int
}

// New returns a splitter for h. It panics if h is nil.
func New(h *meter.Hierarchy, opts Options) *Splitter {
	if h == nil {
		panic("regroup: nil hierarchy")
	}
	return &Splitter{
		h:    h,
		opts: opts,
		// Each step moves the cursor to a distinct boundary, so a valid
		// hierarchy never needs more steps than it has boundaries.
		ceiling: h.Size() + h.Depth() + 1,
	}
}

// Hierarchy returns the hierarchy the splitter works on.
func (s *Splitter) Hierarchy() *meter.Hierarchy { return s.h }

// Split returns the fragments of the span (start, length).
//
// Starting from start, the splitter looks up the strongest level containing
// the cursor. On level 0 the rest of the span is emitted whole. On level
// i > 0 the fragment may run up to the next boundary of level i-1 (or of
// level i itself with SplitSameLevel). A cursor that lies on no boundary runs
// to the next boundary of the finest level. Whenever a fragment stops at a
// boundary with length left over, the lookup starts again from level 0, as
// the new position may be much stronger than the last.
//
// In 4/4, a half note at 0.25 splits as
//
//	(0.25, 0.25) (0.5, 0.5) (1, 1) (2, 0.25)
//
// A zero length yields no fragments. A negative length, or a start outside
// [0, measure length), fails with OUT_OF_RANGE_SPAN. A span running past
// the measure end keeps its excess in a final fragment starting at the
// measure length.
func (s *Splitter) Split(start, length meter.Offset) (_ []Fragment, err error) {
	defer meter.CatchOverflow(&err)

	if err := checkSpan(start, length, s.h.MeasureLength()); err != nil {
		return nil, err
	}

	var (
		out = make([]Fragment, 0, s.h.Depth())
		cur = start
		rem = length
	)
	for step := 0; rem.Sign() > 0; step++ {
		if step > s.ceiling {
			return nil, errs.New(errs.ErrCodeInternal,
				"split of %s did not converge after %d steps", Span{start, length}, step)
		}

		idx := s.h.Strength(cur)
		if idx == 0 {
			out = append(out, Fragment{Position: cur, Length: rem})
			break
		}

		var level meter.Level
		switch {
		case idx < 0:
			level = s.h.Finest()
		case s.opts.SplitSameLevel:
			level = s.h.Level(idx)
		default:
			level = s.h.Level(idx - 1)
		}

		next, ok := level.Next(cur)
		if !ok {
			return nil, errs.New(errs.ErrCodeInternal, "no boundary after %s at level %d", cur, idx)
		}
		gap := next.Sub(cur)
		if rem.Cmp(gap) <= 0 {
			out = append(out, Fragment{Position: cur, Length: rem})
			break
		}
		out = append(out, Fragment{Position: cur, Length: gap})
		cur, rem = next, rem.Sub(gap)
	}
	return out, nil
}

// SplitSpan is Split for a [Span] value.
func (s *Splitter) SplitSpan(span Span) ([]Fragment, error) {
	return s.Split(span.Start, span.Length)
}

// Split is a shorthand for New(h, opts).Split(start, length).
func Split(h *meter.Hierarchy, start, length meter.Offset, opts Options) ([]Fragment, error) {
	return New(h, opts).Split(start, length)
}

func checkSpan(start, length, measure meter.Offset) error {
	if length.Sign() < 0 {
		return errs.New(errs.ErrCodeOutOfRangeSpan, "span length %s is negative", length)
	}
	if start.Sign() < 0 || !start.Less(measure) {
		return errs.New(errs.ErrCodeOutOfRangeSpan,
			"span start %s is outside the measure [0, %s)", start, measure)
	}
	return nil
}
