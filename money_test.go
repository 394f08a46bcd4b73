package synthledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmeticRoundsToCurrencyScale(t *testing.T) {
	a := MustParseMoney("10.005", "USD")
	b := MustParseMoney("0.001", "USD")
	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, "10.01", sum.Amount.StringFixed(2))

	jpy := NewMoney(decimal.NewFromFloat(123.6), "JPY")
	require.Equal(t, "124", jpy.Amount.StringFixed(0))
}

func TestMoneyAddSubMismatchedCurrencyErrors(t *testing.T) {
	usd := MustParseMoney("10", "USD")
	eur := MustParseMoney("10", "EUR")

	_, err := usd.Add(eur)
	require.Error(t, err)

	_, err = usd.Sub(eur)
	require.Error(t, err)

	_, err = usd.Cmp(eur)
	require.Error(t, err)
}

func TestMoneyCmpOrdersByAmount(t *testing.T) {
	small := MustParseMoney("5", "USD")
	large := MustParseMoney("10", "USD")

	cmp, err := small.Cmp(large)
	require.NoError(t, err)
	require.Equal(t, -1, cmp)

	cmp, err = large.Cmp(small)
	require.NoError(t, err)
	require.Equal(t, 1, cmp)

	cmp, err = small.Cmp(small)
	require.NoError(t, err)
	require.Zero(t, cmp)
}

func TestMoneyNegIsZeroIsPositiveIsNegative(t *testing.T) {
	pos := MustParseMoney("5", "USD")
	require.True(t, pos.IsPositive())
	require.False(t, pos.IsNegative())

	neg := pos.Neg()
	require.True(t, neg.IsNegative())
	require.Equal(t, "-5", neg.Amount.StringFixed(0))

	require.True(t, Zero("USD").IsZero())
}

func TestMoneyConvertAtAppliesRateAndRoundsTarget(t *testing.T) {
	usd := MustParseMoney("100", "USD")
	eur := usd.ConvertAt("EUR", decimal.NewFromFloat(0.9123))
	require.Equal(t, "91.23", eur.Amount.StringFixed(2))
	require.Equal(t, Currency("EUR"), eur.Currency)
}

func TestSumMoneyAddsAndReturnsZeroForEmpty(t *testing.T) {
	total, err := SumMoney("USD", []Money{
		MustParseMoney("10", "USD"), MustParseMoney("20", "USD"), MustParseMoney("30", "USD"),
	})
	require.NoError(t, err)
	require.Equal(t, "60", total.Amount.StringFixed(0))

	empty, err := SumMoney("USD", nil)
	require.NoError(t, err)
	require.True(t, empty.IsZero())
}
