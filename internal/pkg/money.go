package pkg

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percentage returns part/whole*100 rounded to four places. A non-positive
// whole yields zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(4)
}

// RoundMoney rounds to cents.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// CeilMoney rounds up to the next cent.
func CeilMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred).Ceil().Div(hundred)
}

// MoneyLimit is the first amount a decimal(15,2) column cannot hold.
var MoneyLimit = decimal.New(1, 13)

// IsMoney reports whether amount is positive, has at most two decimal places
// and fits the ledger's money columns.
func IsMoney(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2)) && amount.LessThan(MoneyLimit)
}
