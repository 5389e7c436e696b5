package domain

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DecimalPlaces is the fixed precision of every monetary value.
const DecimalPlaces = 6

var (
	// lower and upper are exclusive bounds.
	decimalLowerBound = decimal.New(-1, 12)
	decimalUpperBound = decimal.New(1, 15)
)

// BoundedDecimal is a monetary value with 6 fractional digits in the open
// interval (-1e12, 1e15). The zero value is a valid zero.
type BoundedDecimal struct {
	d decimal.Decimal
}

// Zero is the bounded zero value.
var Zero = BoundedDecimal{}

// NewBoundedDecimal rounds v to 6 decimal places and checks its range.
func NewBoundedDecimal(v decimal.Decimal) (BoundedDecimal, error) {
	r := v.Round(DecimalPlaces)
	if r.LessThanOrEqual(decimalLowerBound) || r.GreaterThanOrEqual(decimalUpperBound) {
		return BoundedDecimal{}, fmt.Errorf("%w: %s is outside (%s, %s)", apperrors.ErrRange, r.String(), decimalLowerBound.String(), decimalUpperBound.String())
	}
	return BoundedDecimal{d: r}, nil
}

// ParseBoundedDecimal parses a decimal string.
func ParseBoundedDecimal(s string) (BoundedDecimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return BoundedDecimal{}, fmt.Errorf("%w: invalid decimal %q", apperrors.ErrValidation, s)
	}
	return NewBoundedDecimal(d)
}

// MustBoundedDecimal panics on error. Intended for constants and tests.
func MustBoundedDecimal(s string) BoundedDecimal {
	b, err := ParseBoundedDecimal(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Decimal returns the underlying decimal.
func (b BoundedDecimal) Decimal() decimal.Decimal { return b.d }

func (b BoundedDecimal) Add(o BoundedDecimal) (BoundedDecimal, error) {
	return NewBoundedDecimal(b.d.Add(o.d))
}

func (b BoundedDecimal) Sub(o BoundedDecimal) (BoundedDecimal, error) {
	return NewBoundedDecimal(b.d.Sub(o.d))
}

func (b BoundedDecimal) Neg() (BoundedDecimal, error) {
	return NewBoundedDecimal(b.d.Neg())
}

func (b BoundedDecimal) Cmp(o BoundedDecimal) int            { return b.d.Cmp(o.d) }
func (b BoundedDecimal) Equal(o BoundedDecimal) bool         { return b.d.Equal(o.d) }
func (b BoundedDecimal) LessThan(o BoundedDecimal) bool      { return b.d.LessThan(o.d) }
func (b BoundedDecimal) GreaterThan(o BoundedDecimal) bool   { return b.d.GreaterThan(o.d) }
func (b BoundedDecimal) IsZero() bool                        { return b.d.IsZero() }
func (b BoundedDecimal) IsNegative() bool                    { return b.d.IsNegative() }
func (b BoundedDecimal) IsPositive() bool                    { return b.d.IsPositive() }
func (b BoundedDecimal) Min(o BoundedDecimal) BoundedDecimal { return BoundedDecimal{d: decimal.Min(b.d, o.d)} }

// String renders the value with exactly 6 fractional digits.
func (b BoundedDecimal) String() string {
	return b.d.StringFixed(DecimalPlaces)
}

func (b BoundedDecimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BoundedDecimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: decimal must be a JSON string", apperrors.ErrMalformed)
	}
	v, err := ParseBoundedDecimal(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}
