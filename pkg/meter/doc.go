// Package meter builds metrical hierarchies: the ordered levels of boundary
// offsets inside one measure, from the whole measure down to the finest
// pulse.
//
// # Overview
//
// Every position and length is an exact rational [Offset] in quarter-length
// units, so 6/8 lasts 3 and its second eighth note starts at 0.5. A
// [Hierarchy] lists [Level] values from strongest to weakest:
//
//	4/4 -> [[0 4] [0 2 4] [0 1 2 3 4] [0 0.5 1 ... 4] ...]
//
// Level 0 is always [0, L]. Every level starts at 0, strictly increases and
// ends at L, and every boundary of a level reappears in all finer levels.
// [Hierarchy.Strength] uses that refinement to name the strongest level a
// position belongs to.
//
// # Building Hierarchies
//
// Four sources are supported, in decreasing order of precedence when
// combined in a [Spec]:
//
//   - [NewHierarchy]: a fully explicit nested offset list
//   - [FromPulseLengths]: one evenly spaced level per pulse length
//   - [FromSignatureLevels]: a signature with a subset of level indices
//   - [FromSignature]: a time signature alone
//
// Signatures are parsed by [ParseSignature] and may spell additive groupings
// ("2+2+3/8"). Conventional groupings are filled in for plain numerators:
// 6/8 gains a dotted-quarter level and 12/8 gains both a half-measure and a
// dotted-quarter level.
//
//	sig, _ := meter.ParseSignature("6/8")
//	h, _ := meter.FromSignature(sig, meter.DefaultMinimumPulse)
//
// # External Sources
//
// A [LevelSource] supplies per-level offsets from another meter model.
// [FromSource] reshapes and validates its output. [SignatureSource] adapts
// the native builder and [StaticSource] serves captured tables.
//
// # Errors
//
// Construction failures are [errors.Error] values with the codes
// INVALID_SIGNATURE, MALFORMED_HIERARCHY or CONFIGURATION.
//
// [errors.Error]: github.com/matzehuels/regroup/pkg/errors
package meter
