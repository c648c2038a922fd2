// Package regroup splits notes and rests into tied fragments so that no
// fragment crosses a metrical boundary stronger than the one it starts on.
//
// # Overview
//
// A value may run freely across weak divisions of the measure but is tied
// across strong ones. Given a [meter.Hierarchy], a [Splitter] turns a span
// (start, length) into an ordered list of [Fragment] values:
//
//	h, _ := meter.Build(meter.Spec{Signature: "4/4"})
//	frags, _ := regroup.New(h, regroup.Options{}).Split(start, length)
//
// The fragments are contiguous, start at the span start and add up to the
// span length exactly.
//
// # Same-Level Splitting
//
// Some engraving styles also split between positions of equal strength, as
// with a quarter note on the second eighth of 6/8. [Options.SplitSameLevel]
// enables this.
//
// # Pulse Mode
//
// [SplitPulses] is a simpler alternate that needs only a flat list of pulse
// lengths in strict 2:1 or 3:1 ratios. It tests positions by modulo instead
// of level membership and reports any length past the measure end as
// [PulseResult.Overflow]. The hierarchy-based [Splitter] is the primary
// algorithm and the only one that handles additive groupings.
//
// [meter.Hierarchy]: github.com/matzehuels/regroup/pkg/meter
package regroup
