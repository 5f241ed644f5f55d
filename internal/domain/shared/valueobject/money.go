// Package valueobject holds small immutable types shared by the marketplace
// aggregates.
package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	USD Currency = "USD"
	NPR Currency = "NPR"
	INR Currency = "INR"
)

// MarketCurrency prices every listing and order.
const MarketCurrency = USD

// Money pairs a decimal amount with its currency. Amounts are never
// rounded on arithmetic; rounding happens only in String.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// Price returns amount in the market currency.
func Price(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: MarketCurrency}
}

// ParseMoney reads a decimal string such as "2.50".
func ParseMoney(amount string, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("currency is required for amount %q", amount)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{amount: d, currency: currency}, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }

// Times prices qty units at m.
func (m Money) Times(qty int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(qty))), currency: m.currency}
}

// Plus sums two amounts of the same currency.
func (m Money) Plus(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Matches reports numeric equality in the same currency, so 75 matches
// 75.00. Escrow uses it to compare a payment with its order total.
func (m Money) Matches(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// String formats to cents, e.g. "USD 75.00".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.currency, m.amount.StringFixed(2))
}
