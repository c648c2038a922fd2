package meter

import "slices"

// Level is one degree of metrical strength: the sorted boundary offsets
// visible at that degree, from 0 through the measure length inclusive.
type Level []Offset

// Contains reports whether o is exactly one of the level's boundaries.
func (l Level) Contains(o Offset) bool {
	_, found := slices.BinarySearchFunc(l, o, Offset.Cmp)
	return found
}

// Next returns the smallest boundary strictly greater than o. The second
// result is false when o is at or past the last boundary.
func (l Level) Next(o Offset) (Offset, bool) {
	i, found := slices.BinarySearchFunc(l, o, Offset.Cmp)
	if found {
		i++
	}
	if i >= len(l) {
		return Offset{}, false
	}
	return l[i], true
}

// End returns the last boundary, which is the measure length for a valid
// level.
func (l Level) End() Offset {
	if len(l) == 0 {
		return Offset{}
	}
	return l[len(l)-1]
}

func (l Level) clone() Level { return slices.Clone(l) }

// offsetsFromLengths lays out a grid from 0 in steps of step, stopping before
// length, then appends length itself so the level always closes exactly on
// the measure end.
func offsetsFromLengths(length, step Offset) Level {
	var out Level
	for o := (Offset{}); o.Less(length); o = o.Add(step) {
		out = append(out, o)
	}
	return append(out, length)
}

// offsetsFromBeatPattern turns group sizes counted in denominator units
// (e.g. [3, 3] in eighths) into cumulative boundary offsets, ending on the
// pattern's total.
func offsetsFromBeatPattern(groups []int, denominator int) Level {
	unit := NewOffset(4, int64(denominator))
	out := make(Level, 0, len(groups)+1)
	count := int64(0)
	for _, g := range groups {
		out = append(out, unit.MulInt(count))
		count += int64(g)
	}
	return append(out, unit.MulInt(count))
}
