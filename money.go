package synthledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217 currency code, e.g. "USD", "EUR".
type Currency string

// currencyScale is the number of fractional digits each currency rounds
// to when persisted or reported. Anything not listed defaults to 2.
// A handful of currencies legitimately need more (spec §3 allows 2-6).
var currencyScale = map[Currency]int32{
	"JPY": 0,
	"KWD": 3,
	"BHD": 3,
	"OMR": 3,
}

// ScaleOf returns the fractional-digit scale for a currency code.
func ScaleOf(cur Currency) int32 {
	if s, ok := currencyScale[cur]; ok {
		return s
	}
	return 2
}

// Money is an exact-decimal monetary amount tagged with its currency.
// Unlike the teacher's int64-minor-unit Amount, Money carries full
// decimal precision so currencies needing more than two fractional
// digits (or exchange rates applied at six-digit precision) round-trip
// exactly.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney constructs a Money value, rounding to the currency's scale.
func NewMoney(amount decimal.Decimal, cur Currency) Money {
	return Money{Amount: amount.Round(ScaleOf(cur)), Currency: cur}
}

// Zero returns a zero-value Money in the given currency.
func Zero(cur Currency) Money {
	return Money{Amount: decimal.Zero, Currency: cur}
}

// MustParseMoney parses a decimal string into Money, panicking on
// malformed input; intended for literals in tests and defaults.
func MustParseMoney(s string, cur Currency) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("synthledger: invalid money literal %q: %v", s, err))
	}
	return NewMoney(d, cur)
}

// Add returns m+o. Both must share a currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("synthledger: currency mismatch %s vs %s", m.Currency, o.Currency)
	}
	return NewMoney(m.Amount.Add(o.Amount), m.Currency), nil
}

// Sub returns m-o. Both must share a currency.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("synthledger: currency mismatch %s vs %s", m.Currency, o.Currency)
	}
	return NewMoney(m.Amount.Sub(o.Amount), m.Currency), nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Mul scales m by a unitless factor (e.g. a tax rate or FX rate),
// rounding the result to the currency's scale.
func (m Money) Mul(factor decimal.Decimal) Money {
	return NewMoney(m.Amount.Mul(factor), m.Currency)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Cmp compares m and o's amounts; both must share a currency.
func (m Money) Cmp(o Money) (int, error) {
	if m.Currency != o.Currency {
		return 0, fmt.Errorf("synthledger: currency mismatch %s vs %s", m.Currency, o.Currency)
	}
	return m.Amount.Cmp(o.Amount), nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(ScaleOf(m.Currency)), m.Currency)
}

// ConvertAt converts m into target currency using rate (units of
// target per unit of source), rounding the result to six fractional
// digits before the target currency's scale is applied — mirroring the
// teacher's Amount.ExchangeRate/BaseValue projection fields.
func (m Money) ConvertAt(target Currency, rate decimal.Decimal) Money {
	converted := m.Amount.Mul(rate).Round(6)
	return NewMoney(converted, target)
}

// SumMoney adds a slice of same-currency Money values, returning a zero
// value in cur if the slice is empty.
func SumMoney(cur Currency, values []Money) (Money, error) {
	total := Zero(cur)
	for _, v := range values {
		var err error
		total, err = total.Add(v)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
