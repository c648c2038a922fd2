package regroup

import (
	"fmt"
	"testing"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
)

type pair struct{ pos, length float64 }

func off(f float64) meter.Offset {
	o, err := meter.OffsetFromFloat(f)
	if err != nil {
		panic(err)
	}
	return o
}

func mustSignature(t *testing.T, sig string) *meter.Hierarchy {
	t.Helper()
	h, err := meter.Build(meter.Spec{Signature: sig})
	if err != nil {
		t.Fatalf("build %s: %v", sig, err)
	}
	return h
}

func mustPulses(t *testing.T, pulses []int) *meter.Hierarchy {
	t.Helper()
	h, err := meter.FromPulseLengths(wholes(pulses), meter.PulseOptions{})
	if err != nil {
		t.Fatalf("build %v: %v", pulses, err)
	}
	return h
}

func wholes(ns []int) []meter.Offset {
	out := make([]meter.Offset, len(ns))
	for i, n := range ns {
		out[i] = meter.Whole(int64(n))
	}
	return out
}

func assertFragments(t *testing.T, got []Fragment, want []pair) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if !got[i].Position.Equal(off(w.pos)) || !got[i].Length.Equal(off(w.length)) {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// Every plausible simple and compound structure built from 2s and 3s, with
// a quarter as the unit pulse, so 16/4 stands in for 4/4 with divisions.
var pulseCases = []struct {
	start, length int
	pulses        []int
	want          []pair
}{
	{7, 6, []int{1, 2, 4, 8, 16, 32}, []pair{{7, 1}, {8, 5}}},
	{15, 1, []int{1, 2, 4, 8, 16}, []pair{{15, 1}}},
	{4, 4, []int{1, 2, 4, 8}, []pair{{4, 4}}},
	{1, 3, []int{1, 2, 4}, []pair{{1, 1}, {2, 2}}},
	{1, 1, []int{1, 2}, []pair{{1, 1}}},
	{0, 1, []int{1}, []pair{{0, 1}}},

	{8, 3, []int{1, 2, 4, 8, 16, 48}, []pair{{8, 3}}},
	{6, 4, []int{1, 2, 4, 8, 24, 48}, []pair{{6, 2}, {8, 2}}},
	{13, 6, []int{1, 2, 4, 8, 24}, []pair{{13, 1}, {14, 2}, {16, 3}}},

	{6, 4, []int{1, 2, 4, 12, 24, 48}, []pair{{6, 2}, {8, 2}}},
	{16, 7, []int{1, 2, 4, 12, 24}, []pair{{16, 7}}},
	{7, 4, []int{1, 2, 4, 12}, []pair{{7, 1}, {8, 3}}},

	{15, 12, []int{1, 2, 6, 12, 24, 48}, []pair{{15, 1}, {16, 2}, {18, 6}, {24, 3}}},
	{6, 15, []int{1, 2, 6, 12, 24}, []pair{{6, 6}, {12, 9}}},
	{7, 5, []int{1, 2, 6, 12}, []pair{{7, 1}, {8, 4}}},
	{3, 2, []int{1, 2, 6}, []pair{{3, 1}, {4, 1}}},

	{6, 40, []int{1, 3, 6, 12, 24, 48}, []pair{{6, 6}, {12, 12}, {24, 22}}},
	{13, 4, []int{1, 3, 6, 12, 24}, []pair{{13, 2}, {15, 2}}},
	{8, 4, []int{1, 3, 6, 12}, []pair{{8, 1}, {9, 3}}},
	{2, 4, []int{1, 3, 6}, []pair{{2, 1}, {3, 3}}},
	{2, 1, []int{1, 3}, []pair{{2, 1}}},

	{20, 9, []int{1, 2, 4, 12, 36}, []pair{{20, 4}, {24, 5}}},
	{16, 7, []int{1, 2, 6, 12, 36}, []pair{{16, 2}, {18, 5}}},
	{16, 7, []int{1, 3, 6, 12, 36}, []pair{{16, 2}, {18, 5}}},

	{4, 12, []int{1, 2, 6, 18, 36}, []pair{{4, 2}, {6, 10}}},
	{13, 3, []int{1, 3, 6, 18, 36}, []pair{{13, 2}, {15, 1}}},

	{4, 12, []int{1, 3, 9, 18, 36}, []pair{{4, 2}, {6, 3}, {9, 7}}},

	{14, 25, []int{1, 2, 6, 18, 54}, []pair{{14, 4}, {18, 21}}},
	{8, 16, []int{1, 3, 6, 18, 54}, []pair{{8, 1}, {9, 3}, {12, 6}, {18, 6}}},
	{8, 15, []int{1, 3, 9, 18, 54}, []pair{{8, 1}, {9, 9}, {18, 5}}},
	{12, 30, []int{1, 3, 9, 27, 54}, []pair{{12, 6}, {18, 9}, {27, 15}}},

	{4, 9, []int{1, 3, 9, 27}, []pair{{4, 2}, {6, 3}, {9, 4}}},
}

func TestSplitPulseHierarchies(t *testing.T) {
	for _, tt := range pulseCases {
		t.Run(fmt.Sprintf("%d+%d/%v", tt.start, tt.length, tt.pulses), func(t *testing.T) {
			h := mustPulses(t, tt.pulses)
			got, err := Split(h, meter.Whole(int64(tt.start)), meter.Whole(int64(tt.length)), Options{})
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			assertFragments(t, got, tt.want)
		})
	}
}

func TestSplitSignatures(t *testing.T) {
	tests := []struct {
		name      string
		sig       string
		start     float64
		length    float64
		sameLevel bool
		want      []pair
	}{
		{"syncopated half", "4/4", 0.25, 2, false, []pair{{0.25, 0.25}, {0.5, 0.5}, {1, 1}, {2, 0.25}}},
		{"whole measure", "4/4", 0, 4, false, []pair{{0, 4}}},
		{"downbeat half", "4/4", 0, 2, false, []pair{{0, 2}}},
		{"beat two half", "4/4", 1, 2, false, []pair{{1, 1}, {2, 1}}},
		{"beat three half", "4/4", 2, 2, false, []pair{{2, 2}}},
		{"6/8 quarter", "6/8", 0.5, 1, false, []pair{{0.5, 1}}},
		{"6/8 quarter same level", "6/8", 0.5, 1, true, []pair{{0.5, 0.5}, {1, 0.5}}},
		{"6/8 half", "6/8", 0.5, 2, false, []pair{{0.5, 1}, {1.5, 1}}},
		{"6/8 half same level", "6/8", 0.5, 2, true, []pair{{0.5, 0.5}, {1, 0.5}, {1.5, 1}}},
		{"2+2+3/8 into group", "2+2+3/8", 0.5, 2, false, []pair{{0.5, 0.5}, {1, 1.5}}},
		{"2+2+3/8 across groups", "2+2+3/8", 1.5, 1, false, []pair{{1.5, 0.5}, {2, 0.5}}},
		{"5/4 no hidden split", "5/4", 1, 3, false, []pair{{1, 3}}},
		{"past the measure", "3/4", 2, 3, false, []pair{{2, 1}, {3, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := mustSignature(t, tt.sig)
			got, err := Split(h, off(tt.start), off(tt.length), Options{SplitSameLevel: tt.sameLevel})
			if err != nil {
				t.Fatalf("Split: %v", err)
			}
			assertFragments(t, got, tt.want)
		})
	}
}

func TestSplitOffGrid(t *testing.T) {
	// A triplet eighth position lies on no level of 4/4; the cursor runs to
	// the next 64th first.
	h := mustSignature(t, "4/4")
	start := meter.NewOffset(1, 3)
	got, err := Split(h, start, meter.Whole(1), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 2 {
		t.Fatalf("got %v, want a split at the first 64th boundary", got)
	}
	if !got[0].End().Equal(meter.NewOffset(3, 8)) {
		t.Errorf("first fragment %v ends at %s, want 0.375", got[0], got[0].End())
	}
	assertInvariants(t, h, Options{}, Span{Start: start, Length: meter.Whole(1)}, got)
}

func TestSplitZeroLength(t *testing.T) {
	h := mustSignature(t, "4/4")
	got, err := Split(h, meter.Whole(1), meter.Whole(0), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no fragments", got)
	}
}

func TestSplitOutOfRange(t *testing.T) {
	h := mustSignature(t, "4/4")
	tests := []struct {
		name          string
		start, length meter.Offset
	}{
		{"negative start", meter.NewOffset(-1, 2), meter.Whole(1)},
		{"start at measure end", meter.Whole(4), meter.Whole(1)},
		{"start past measure", meter.Whole(5), meter.Whole(1)},
		{"negative length", meter.Whole(1), meter.NewOffset(-1, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(h, tt.start, tt.length, Options{})
			if !errs.Is(err, errs.ErrCodeOutOfRangeSpan) {
				t.Errorf("error = %v, want OUT_OF_RANGE_SPAN", err)
			}
		})
	}
}

func TestSplitUnrepresentableSpan(t *testing.T) {
	// The tail after the first 64th boundary needs a denominator of
	// 16 * 3^19 * 1977326743, which int64 cannot hold.
	h := mustSignature(t, "4/4")
	start := meter.NewOffset(1, 1162261467)
	length := meter.NewOffset(1977326744, 1977326743)
	got, err := Split(h, start, length, Options{})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("Split() = %v, %v; want INVALID_INPUT", got, err)
	}
	if got != nil {
		t.Errorf("got fragments %v alongside the error", got)
	}
}

func TestSplitNonRefinedHierarchyTerminates(t *testing.T) {
	// External sources may yield levels that do not refine each other.
	sig := meter.MustParseSignature("4/4")
	src := meter.StaticSource{
		{meter.Whole(0)},
		{meter.Whole(0), meter.NewOffset(3, 2)},
		{meter.Whole(0), meter.Whole(1), meter.Whole(2), meter.Whole(3)},
	}
	h, err := meter.FromSource(sig, src, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	span := Span{Start: meter.Whole(1), Length: meter.Whole(3)}
	got, err := New(h, Options{}).SplitSpan(span)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !Total(got).Equal(span.Length) {
		t.Errorf("total = %s, want %s (%v)", Total(got), span.Length, got)
	}
}

// assertInvariants checks length conservation, contiguity and that no
// fragment crosses a boundary stronger than its start allows.
func assertInvariants(t *testing.T, h *meter.Hierarchy, opts Options, span Span, frags []Fragment) {
	t.Helper()
	if !Total(frags).Equal(span.Length) {
		t.Fatalf("%v: total %s, want %s", span, Total(frags), span.Length)
	}
	if len(frags) > 0 && !frags[0].Position.Equal(span.Start) {
		t.Fatalf("%v: first fragment at %s", span, frags[0].Position)
	}
	for i := 1; i < len(frags); i++ {
		if !frags[i].Position.Equal(frags[i-1].End()) {
			t.Fatalf("%v: gap between %v and %v", span, frags[i-1], frags[i])
		}
	}
	for _, f := range frags {
		idx := h.Strength(f.Position)
		if idx == 0 {
			continue
		}
		var guard meter.Level
		switch {
		case idx < 0:
			guard = h.Finest()
		case opts.SplitSameLevel:
			guard = h.Level(idx)
		default:
			guard = h.Level(idx - 1)
		}
		if next, ok := guard.Next(f.Position); ok && next.Less(f.End()) {
			t.Fatalf("%v: fragment %v crosses boundary %s", span, f, next)
		}
	}
}

func TestSplitProperties(t *testing.T) {
	step := meter.NewOffset(1, 8)
	for _, sig := range []string{"4/4", "3/4", "6/8", "12/8", "2+2+3/8", "5/4", "9+6/8"} {
		for _, sameLevel := range []bool{false, true} {
			h := mustSignature(t, sig)
			opts := Options{SplitSameLevel: sameLevel}
			sp := New(h, opts)
			length := h.MeasureLength()
			for start := (meter.Offset{}); start.Less(length); start = start.Add(step) {
				for dur := step; !length.Less(dur); dur = dur.Add(step) {
					span := Span{Start: start, Length: dur}
					frags, err := sp.SplitSpan(span)
					if err != nil {
						t.Fatalf("%s %v: %v", sig, span, err)
					}
					assertInvariants(t, h, opts, span, frags)
				}
			}
		}
	}
}
