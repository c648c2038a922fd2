package meter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	errs "github.com/matzehuels/regroup/pkg/errors"
)

// SupportedDenominators lists the note values a signature denominator or a
// minimum pulse may take, coarsest first.
var SupportedDenominators = []int{1, 2, 4, 8, 16, 32, 64}

// Signature is a parsed time signature such as "4/4" or "2+2+3/8".
type Signature struct {
	// Numerators holds the beat counts. More than one entry means an
	// explicit additive grouping.
	Numerators []int `json:"numerators"`
	// Denominator is the note value of one beat, one of
	// [SupportedDenominators].
	Denominator int `json:"denominator"`
}

// signatureGrammar accepts "N/D" and additive "N+N+.../D".
//
//nolint:govet // participle grammar tags are not standard struct tags
type signatureGrammar struct {
	Numerators  []int `@Int ( "+" @Int )*`
	Denominator int   `"/" @Int`
}

var signatureLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[+/]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var signatureParser = participle.MustBuild[signatureGrammar](
	participle.Lexer(signatureLexer),
	participle.Elide("Whitespace"),
)

// ParseSignature parses a time signature string.
// Supported formats:
//   - "4/4", "6/8", "5/4" (single numerator)
//   - "2+3/4", "2+2+3/8" (additive grouping)
//
// The denominator must be one of [SupportedDenominators] and every numerator
// must be positive. Compound "A/B+C/D" signatures are not supported.
func ParseSignature(s string) (Signature, error) {
	if err := errs.ValidateSignatureString(s); err != nil {
		return Signature{}, err
	}
	parsed, err := signatureParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return Signature{}, errs.Wrap(errs.ErrCodeInvalidSignature, err, "invalid time signature %q", s)
	}
	sig := Signature{Numerators: parsed.Numerators, Denominator: parsed.Denominator}
	if err := sig.Validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// MustParseSignature is like [ParseSignature] but panics on error. It is
// meant for package-level fixtures and tests.
func MustParseSignature(s string) Signature {
	sig, err := ParseSignature(s)
	if err != nil {
		panic(err)
	}
	return sig
}

// Validate checks numerators and denominator, and that the measure is no
// longer than [MaxMeasureLength] quarter-lengths.
func (s Signature) Validate() error {
	if len(s.Numerators) == 0 {
		return errs.New(errs.ErrCodeInvalidSignature, "time signature has no numerator")
	}
	for _, n := range s.Numerators {
		if n <= 0 {
			return errs.New(errs.ErrCodeInvalidSignature, "numerator must be positive, got %d", n)
		}
	}
	if !slices.Contains(SupportedDenominators, s.Denominator) {
		return errs.New(errs.ErrCodeInvalidSignature,
			"invalid time signature denominator %d; choose from one of %v", s.Denominator, SupportedDenominators)
	}
	// Checked per numerator first so the sum cannot overflow.
	maxTotal := MaxMeasureLength * s.Denominator / 4
	total := 0
	for _, n := range s.Numerators {
		if n > maxTotal || total+n > maxTotal {
			return errs.New(errs.ErrCodeInvalidSignature,
				"measure of %s is longer than %d quarter-lengths", s, MaxMeasureLength)
		}
		total += n
	}
	return nil
}

// Total returns the sum of the numerators.
func (s Signature) Total() int {
	total := 0
	for _, n := range s.Numerators {
		total += n
	}
	return total
}

// MeasureLength returns the measure length in quarter-lengths:
// total × 4 / denominator.
func (s Signature) MeasureLength() Offset {
	return NewOffset(int64(s.Total())*4, int64(s.Denominator))
}

// Groupings returns the beat groupings that sit between the whole measure
// and the denominator level, coarsest first.
//
// Plain numerators with a conventional grouping get it substituted: 4 is
// 2+2, 6 is 3+3, 9 is 3+3+3, 12 is both 6+6 and 3+3+3+3, and 15 is five
// threes. The additive spellings 6+9 and 9+6 also gain a layer of threes.
// Any other additive list is used literally. Any other single numerator has
// no grouping layer, so 5/4 goes straight from the measure to quarters.
func (s Signature) Groupings() [][]int {
	if g, ok := canonicalGroupings(s.Numerators); ok {
		return g
	}
	if len(s.Numerators) > 1 {
		return [][]int{slices.Clone(s.Numerators)}
	}
	return nil
}

func canonicalGroupings(nums []int) ([][]int, bool) {
	switch {
	case slices.Equal(nums, []int{4}):
		return [][]int{{2, 2}}, true
	case slices.Equal(nums, []int{6}):
		return [][]int{{3, 3}}, true
	case slices.Equal(nums, []int{9}):
		return [][]int{{3, 3, 3}}, true
	case slices.Equal(nums, []int{12}):
		return [][]int{{6, 6}, {3, 3, 3, 3}}, true
	case slices.Equal(nums, []int{15}):
		return [][]int{{3, 3, 3, 3, 3}}, true
	case slices.Equal(nums, []int{6, 9}):
		return [][]int{{6, 9}, {3, 3, 3, 3, 3}}, true
	case slices.Equal(nums, []int{9, 6}):
		return [][]int{{9, 6}, {3, 3, 3, 3, 3}}, true
	}
	return nil, false
}

// String returns the canonical spelling, e.g. "2+2+3/8".
func (s Signature) String() string {
	parts := make([]string, len(s.Numerators))
	for i, n := range s.Numerators {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "+") + "/" + strconv.Itoa(s.Denominator)
}
