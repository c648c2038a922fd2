package meter

import (
	"encoding/json"
	"strings"

	errs "github.com/matzehuels/regroup/pkg/errors"
)

// Hierarchy is an immutable, ordered list of levels from strongest (index 0,
// the whole measure) to weakest. A valid hierarchy satisfies:
//
//   - level 0 is exactly [0, L] with L > 0
//   - every level starts at 0, strictly increases and ends at L
//   - every offset of level i is also present in level i+1 (monotone
//     refinement), unless the hierarchy came from a source that opts out
//
// Hierarchies are safe for concurrent use since nothing mutates them after
// construction.
type Hierarchy struct {
	levels []Level
}

// NewHierarchy validates an explicit nested offset list and wraps it as a
// hierarchy. The input is copied.
func NewHierarchy(offsets [][]Offset) (*Hierarchy, error) {
	return newHierarchy(toLevels(offsets), true)
}

func toLevels(offsets [][]Offset) []Level {
	levels := make([]Level, len(offsets))
	for i, l := range offsets {
		levels[i] = Level(l).clone()
	}
	return levels
}

func newHierarchy(levels []Level, refine bool) (*Hierarchy, error) {
	h := &Hierarchy{levels: levels}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if refine {
		if err := h.ValidateRefinement(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Depth returns the number of levels.
func (h *Hierarchy) Depth() int { return len(h.levels) }

// Level returns level i. The returned slice must not be modified.
func (h *Hierarchy) Level(i int) Level { return h.levels[i] }

// Levels returns a deep copy of all levels.
func (h *Hierarchy) Levels() []Level {
	out := make([]Level, len(h.levels))
	for i, l := range h.levels {
		out[i] = l.clone()
	}
	return out
}

// MeasureLength returns L, the last boundary of level 0.
func (h *Hierarchy) MeasureLength() Offset { return h.levels[0].End() }

// Finest returns the weakest level.
func (h *Hierarchy) Finest() Level { return h.levels[len(h.levels)-1] }

// Strength returns the index of the strongest level containing o, or -1 when
// o is not a boundary at any level.
func (h *Hierarchy) Strength(o Offset) int {
	for i, l := range h.levels {
		if l.Contains(o) {
			return i
		}
	}
	return -1
}

// Size returns the total number of boundaries across all levels.
func (h *Hierarchy) Size() int {
	n := 0
	for _, l := range h.levels {
		n += len(l)
	}
	return n
}

// Equal reports whether both hierarchies have the same levels and offsets in
// the same order.
func (h *Hierarchy) Equal(o *Hierarchy) bool {
	if h == nil || o == nil {
		return h == o
	}
	if len(h.levels) != len(o.levels) {
		return false
	}
	for i := range h.levels {
		a, b := h.levels[i], o.levels[i]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if !a[j].Equal(b[j]) {
				return false
			}
		}
	}
	return true
}

// Offsets returns the levels as a nested offset list, the shape accepted by
// [NewHierarchy].
func (h *Hierarchy) Offsets() [][]Offset {
	out := make([][]Offset, len(h.levels))
	for i, l := range h.levels {
		out[i] = []Offset(l.clone())
	}
	return out
}

// Validate checks the structural invariants: a non-empty level list, level 0
// equal to [0, L] with positive L, and every level starting at 0, strictly
// increasing and ending at L.
func (h *Hierarchy) Validate() error {
	if len(h.levels) == 0 {
		return errs.New(errs.ErrCodeMalformedHierarchy, "hierarchy has no levels")
	}
	top := h.levels[0]
	if len(top) != 2 || !top[0].IsZero() || top[1].Sign() <= 0 {
		return errs.New(errs.ErrCodeMalformedHierarchy, "level 0 must be [0, measure length], got %v", top)
	}
	length := top[1]
	for i, l := range h.levels {
		if len(l) < 2 {
			return errs.New(errs.ErrCodeMalformedHierarchy, "level %d has fewer than two boundaries", i)
		}
		if !l[0].IsZero() {
			return errs.New(errs.ErrCodeMalformedHierarchy, "level %d starts at %s, not 0", i, l[0])
		}
		for j := 1; j < len(l); j++ {
			if !l[j-1].Less(l[j]) {
				return errs.New(errs.ErrCodeMalformedHierarchy,
					"level %d is not strictly increasing at %s", i, l[j])
			}
		}
		if !l.End().Equal(length) {
			return errs.New(errs.ErrCodeMalformedHierarchy,
				"level %d ends at %s, measure length is %s", i, l.End(), length)
		}
	}
	return nil
}

// ValidateRefinement checks that every boundary of level i is also a
// boundary of level i+1, so finer levels are supersets of coarser ones.
func (h *Hierarchy) ValidateRefinement() error {
	for i := 0; i+1 < len(h.levels); i++ {
		finer := h.levels[i+1]
		for _, o := range h.levels[i] {
			if !finer.Contains(o) {
				return errs.New(errs.ErrCodeMalformedHierarchy,
					"offset %s of level %d is missing from level %d", o, i, i+1)
			}
		}
	}
	return nil
}

// String renders the hierarchy as nested lists, e.g. "[[0 4] [0 2 4]]".
func (h *Hierarchy) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, l := range h.levels {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		for j, o := range l {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(o.String())
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON encodes the hierarchy as a nested array of offsets.
func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Offsets())
}

// UnmarshalJSON decodes a nested offset array and checks the structural
// invariants of [Hierarchy.Validate]. Refinement is not required, so
// hierarchies built from unchecked pulses or external sources decode from
// their own output.
func (h *Hierarchy) UnmarshalJSON(b []byte) error {
	var offsets [][]Offset
	if err := json.Unmarshal(b, &offsets); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode hierarchy")
	}
	parsed, err := newHierarchy(toLevels(offsets), false)
	if err != nil {
		return err
	}
	*h = *parsed
	return nil
}
