package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("75.00", NPR)
	require.NoError(t, err)
	assert.Equal(t, NPR, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(75)))
	assert.Equal(t, "NPR 75.00", m.String())

	_, err = ParseMoney("abc", NPR)
	assert.Error(t, err)

	_, err = ParseMoney("1", "")
	assert.Error(t, err)
}

func TestMoney_OrderTotals(t *testing.T) {
	unit := Price(decimal.RequireFromString("2.50"))

	t.Run("prices a quantity", func(t *testing.T) {
		assert.True(t, unit.Times(30).Matches(Price(decimal.NewFromInt(75))))
		assert.Equal(t, "USD 0.00", unit.Times(0).String())
	})

	t.Run("adds same currency", func(t *testing.T) {
		sum, err := unit.Plus(unit)
		require.NoError(t, err)
		assert.Equal(t, "USD 5.00", sum.String())
	})

	t.Run("refuses mixed currencies", func(t *testing.T) {
		rupees, err := ParseMoney("1", INR)
		require.NoError(t, err)
		_, err = unit.Plus(rupees)
		assert.Error(t, err)
	})

	t.Run("matching ignores trailing zeros but not currency", func(t *testing.T) {
		a := Price(decimal.RequireFromString("75"))
		assert.True(t, a.Matches(Price(decimal.RequireFromString("75.000"))))

		npr, err := ParseMoney("75", NPR)
		require.NoError(t, err)
		assert.False(t, a.Matches(npr))
	})

	t.Run("positive", func(t *testing.T) {
		assert.True(t, unit.IsPositive())
		assert.False(t, Price(decimal.Zero).IsPositive())
	})
}
