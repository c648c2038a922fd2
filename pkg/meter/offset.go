package meter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
	"strings"

	errs "github.com/matzehuels/regroup/pkg/errors"
)

// MaxDenominator is the finest subdivision [ParseOffset] accepts. It is far
// below any notated rhythm and keeps sums of user offsets inside int64.
const MaxDenominator = 1 << 20

// ErrOverflow is the panic value of arithmetic whose exact result does not
// fit an Offset. [CatchOverflow] turns it back into an error.
var ErrOverflow = errors.New("offset arithmetic overflows int64")

// Offset is an exact rational position or length in quarter-length units.
//
// Offsets are always stored reduced with a positive denominator, so two
// offsets that denote the same value compare equal with [Offset.Equal] and
// [Offset.Cmp]. The zero value is 0.
//
// Use [NewOffset], [Whole] or [ParseOffset] to create offsets. Arithmetic
// panics on a zero divisor, mirroring integer division, and with
// [ErrOverflow] when the exact result cannot be stored. Comparison is always
// exact.
type Offset struct {
	num int64
	den int64 // 0 only for the zero value, read as 1
}

// NewOffset returns num/den reduced. It panics if den is zero.
func NewOffset(num, den int64) Offset {
	if den == 0 {
		panic("meter: zero denominator")
	}
	return reduce(num, den)
}

// Whole returns the integer offset n.
func Whole(n int64) Offset { return Offset{num: n, den: 1} }

// ParseOffset parses a decimal ("1.5"), fraction ("3/2") or integer ("2")
// string into an exact offset. Decimal input is converted exactly, so "0.1"
// is 1/10 rather than the nearest binary float. Values whose reduced
// denominator exceeds [MaxDenominator] fail with INVALID_INPUT.
func ParseOffset(s string) (Offset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Offset{}, fmt.Errorf("parse offset: empty string")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Offset{}, fmt.Errorf("parse offset %q: not a number", s)
	}
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return Offset{}, fmt.Errorf("parse offset %q: out of range", s)
	}
	if r.Denom().Cmp(big.NewInt(MaxDenominator)) > 0 {
		return Offset{}, errs.New(errs.ErrCodeInvalidInput,
			"offset %q is finer than 1/%d of a quarter", s, MaxDenominator)
	}
	return reduce(r.Num().Int64(), r.Denom().Int64()), nil
}

// OffsetFromFloat converts a float to the exact offset of its shortest
// decimal representation. 0.1 becomes 1/10.
func OffsetFromFloat(f float64) (Offset, error) {
	return ParseOffset(strconv.FormatFloat(f, 'f', -1, 64))
}

// Num returns the reduced numerator.
func (o Offset) Num() int64 { return o.num }

// Den returns the reduced, positive denominator.
func (o Offset) Den() int64 {
	if o.den == 0 {
		return 1
	}
	return o.den
}

func (o Offset) Add(x Offset) Offset {
	a, b := o.num, o.Den()
	c, d := x.num, x.Den()
	g := gcd(b, d)
	l, ok1 := mul64(a, d/g)
	r, ok2 := mul64(c, b/g)
	den, ok3 := mul64(b/g, d)
	sum, ok4 := add64(l, r)
	if ok1 && ok2 && ok3 && ok4 {
		return reduce(sum, den)
	}
	return fromRat(new(big.Rat).Add(o.rat(), x.rat()))
}

func (o Offset) Sub(x Offset) Offset { return o.Add(x.Neg()) }

func (o Offset) Neg() Offset { return Offset{num: -o.num, den: o.Den()} }

func (o Offset) Mul(x Offset) Offset {
	a, b := o.num, o.Den()
	c, d := x.num, x.Den()
	g1 := gcd(abs(a), d)
	g2 := gcd(abs(c), b)
	num, ok1 := mul64(a/g1, c/g2)
	den, ok2 := mul64(b/g2, d/g1)
	if ok1 && ok2 {
		return reduce(num, den)
	}
	return fromRat(new(big.Rat).Mul(o.rat(), x.rat()))
}

// Div returns o / x. It panics if x is zero.
func (o Offset) Div(x Offset) Offset {
	if x.num == 0 {
		panic("meter: division by zero offset")
	}
	return o.Mul(Offset{num: x.Den(), den: x.num}.normalize())
}

func (o Offset) MulInt(n int64) Offset { return o.Mul(Whole(n)) }

func (o Offset) DivInt(n int64) Offset { return o.Div(Whole(n)) }

// Floor returns the largest integer not greater than o.
func (o Offset) Floor() int64 {
	d := o.Den()
	q := o.num / d
	if o.num%d != 0 && o.num < 0 {
		q--
	}
	return q
}

// Mod returns o modulo m with the sign of m. It panics if m is zero.
func (o Offset) Mod(m Offset) Offset {
	return o.Sub(m.MulInt(o.Div(m).Floor()))
}

// Cmp returns -1, 0 or +1 depending on whether o is less than, equal to or
// greater than x.
func (o Offset) Cmp(x Offset) int {
	if so, sx := o.Sign(), x.Sign(); so != sx || so == 0 {
		switch {
		case so < sx:
			return -1
		case so > sx:
			return 1
		default:
			return 0
		}
	}
	// Same nonzero sign: compare |o.num|*x.den with |x.num|*o.den in 128 bits.
	lh, ll := bits.Mul64(uint64(abs(o.num)), uint64(x.Den()))
	rh, rl := bits.Mul64(uint64(abs(x.num)), uint64(o.Den()))
	c := 0
	switch {
	case lh < rh || (lh == rh && ll < rl):
		c = -1
	case lh > rh || (lh == rh && ll > rl):
		c = 1
	}
	return c * o.Sign()
}

func (o Offset) Equal(x Offset) bool { return o.Cmp(x) == 0 }

func (o Offset) Less(x Offset) bool { return o.Cmp(x) < 0 }

// Sign returns -1, 0 or +1.
func (o Offset) Sign() int {
	switch {
	case o.num < 0:
		return -1
	case o.num > 0:
		return 1
	default:
		return 0
	}
}

func (o Offset) IsZero() bool { return o.num == 0 }

// Float64 returns the nearest float. Use it for display only.
func (o Offset) Float64() float64 { return float64(o.num) / float64(o.Den()) }

// String formats o as a decimal when it has a finite decimal expansion
// ("0.25", "3", "-1.5") and as "p/q" otherwise ("1/3").
func (o Offset) String() string {
	d := o.Den()
	if d == 1 {
		return strconv.FormatInt(o.num, 10)
	}
	digits, ok := decimalDigits(d)
	if !ok {
		return strconv.FormatInt(o.num, 10) + "/" + strconv.FormatInt(d, 10)
	}
	return big.NewRat(o.num, d).FloatString(digits)
}

// MarshalJSON encodes finite decimals as JSON numbers and anything else as a
// "p/q" string.
func (o Offset) MarshalJSON() ([]byte, error) {
	s := o.String()
	if strings.Contains(s, "/") {
		return json.Marshal(s)
	}
	return []byte(s), nil
}

// UnmarshalJSON accepts a JSON number or a string in any form understood by
// [ParseOffset]. Numbers are read from their decimal text, not through float64.
func (o *Offset) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := ParseOffset(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o Offset) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Offset) UnmarshalText(b []byte) error {
	v, err := ParseOffset(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// UnmarshalTOML lets TOML documents spell offsets as integers, floats or
// strings ("3/2").
func (o *Offset) UnmarshalTOML(data any) error {
	var (
		v   Offset
		err error
	)
	switch x := data.(type) {
	case int64:
		v = Whole(x)
	case float64:
		v, err = OffsetFromFloat(x)
	case string:
		v, err = ParseOffset(x)
	default:
		return fmt.Errorf("offset: unsupported TOML value %T", data)
	}
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Offsets converts a list of floats to offsets, failing on the first value
// that cannot be represented.
func Offsets(fs ...float64) ([]Offset, error) {
	out := make([]Offset, len(fs))
	for i, f := range fs {
		o, err := OffsetFromFloat(f)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

func (o Offset) normalize() Offset { return reduce(o.num, o.den) }

func (o Offset) rat() *big.Rat { return big.NewRat(o.num, o.Den()) }

// fromRat stores an exact result, panicking with ErrOverflow when it does
// not fit.
func fromRat(r *big.Rat) Offset {
	if !r.Num().IsInt64() || !r.Denom().IsInt64() || r.Num().Int64() == math.MinInt64 {
		panic(ErrOverflow)
	}
	return reduce(r.Num().Int64(), r.Denom().Int64())
}

func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		return 0, false
	}
	p := a * b
	return p, p/b == a && p != math.MinInt64
}

func add64(a, b int64) (int64, bool) {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) || s == math.MinInt64 {
		return 0, false
	}
	return s, true
}

// CatchOverflow recovers an [ErrOverflow] panic into *errp as an
// INVALID_INPUT error. Use it deferred in functions doing arithmetic on
// user-supplied offsets. Other panics are re-raised.
func CatchOverflow(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok && errors.Is(err, ErrOverflow) {
		*errp = errs.Wrap(errs.ErrCodeInvalidInput, err, "offsets cannot be combined exactly")
		return
	}
	panic(r)
}

func reduce(num, den int64) Offset {
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Offset{num: 0, den: 1}
	}
	g := gcd(abs(num), den)
	return Offset{num: num / g, den: den / g}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// decimalDigits reports how many fractional digits 1/d needs, or false when
// d has a prime factor other than 2 and 5.
func decimalDigits(d int64) (int, bool) {
	twos, fives := 0, 0
	for d%2 == 0 {
		d /= 2
		twos++
	}
	for d%5 == 0 {
		d /= 5
		fives++
	}
	if d != 1 {
		return 0, false
	}
	return max(twos, fives), true
}
