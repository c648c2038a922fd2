package regroup

import (
	"fmt"

	"github.com/matzehuels/regroup/pkg/meter"
)

// Span is a note or rest to be split: a start offset within the measure and
// a duration, both in quarter-lengths.
type Span struct {
	Start  meter.Offset `json:"start"`
	Length meter.Offset `json:"length"`
}

// End returns Start + Length.
func (s Span) End() meter.Offset { return s.Start.Add(s.Length) }

func (s Span) String() string { return fmt.Sprintf("(%s, %s)", s.Start, s.Length) }

// Fragment is one tied note-head of a split span.
type Fragment struct {
	Position meter.Offset `json:"position"`
	Length   meter.Offset `json:"length"`
}

// End returns the position right after the fragment.
func (f Fragment) End() meter.Offset { return f.Position.Add(f.Length) }

func (f Fragment) String() string { return fmt.Sprintf("(%s, %s)", f.Position, f.Length) }

// Total returns the summed length of fragments.
func Total(frags []Fragment) meter.Offset {
	var sum meter.Offset
	for _, f := range frags {
		sum = sum.Add(f.Length)
	}
	return sum
}
