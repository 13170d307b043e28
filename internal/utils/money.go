package utils

import (
	"fmt"
	"strings"
)

var currencySymbols = map[string]string{
	"gbp": "£",
	"eur": "€",
	"usd": "$",
}

// FormatFare renders a major-unit amount for customers, e.g. "£45.00".
func FormatFare(amount float64, currency string) string {
	if sym, ok := currencySymbols[strings.ToLower(currency)]; ok {
		return fmt.Sprintf("%s%.2f", sym, amount)
	}
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}

// TripLabel is the customer-facing name of a trip type.
func TripLabel(tripType string) string {
	switch tripType {
	case "RETURN":
		return "Return"
	case "ONE_WAY":
		return "One way"
	}
	return tripType
}
