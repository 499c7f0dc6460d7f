package models

import (
	"github.com/shopspring/decimal"
)

// Tier is one of the bank-transfer price points shown to attendees.
// Amounts are in Nigerian Naira.
type Tier struct {
	TableType   string          `json:"table_type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
}

var tiers = []Tier{
	{
		TableType:   TableStandard,
		Amount:      decimal.NewFromInt(3000),
		Currency:    "NGN",
		Description: "Basic event access",
	},
	{
		TableType:   TablePremium,
		Amount:      decimal.NewFromInt(5000),
		Currency:    "NGN",
		Description: "Enhanced experience with premium benefits",
	},
	{
		TableType:   TableVIP,
		Amount:      decimal.NewFromInt(10000),
		Currency:    "NGN",
		Description: "The ultimate exclusive experience",
	},
}

// Tiers returns the pricing table in ascending price order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// AmountFor returns the expected transfer amount for a table type.
func AmountFor(tableType string) (decimal.Decimal, bool) {
	for _, t := range tiers {
		if t.TableType == tableType {
			return t.Amount, true
		}
	}
	return decimal.Zero, false
}
