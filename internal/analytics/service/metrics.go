package service

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var dealAmountPattern = regexp.MustCompile(`\$([\d,]+(?:\.\d{1,2})?)`)

// DefaultDealValue is assumed for a lead whose notes mention no amount.
var DefaultDealValue = decimal.NewFromInt(1000)

// ConversionRate is booked/total as a percentage with one decimal. A source
// with no leads converts at 0.
func ConversionRate(total, booked int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(booked)*1000/float64(total)) / 10
}

// DealValue extracts the first dollar amount from notes.
func DealValue(notes string) (decimal.Decimal, bool) {
	m := dealAmountPattern.FindStringSubmatch(notes)
	if m == nil {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// AverageDealValue is the mean deal value over notes, rounded to cents.
func AverageDealValue(notes []string) decimal.Decimal {
	if len(notes) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, n := range notes {
		v, ok := DealValue(n)
		if !ok {
			v = DefaultDealValue
		}
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(notes)))).Round(2)
}
