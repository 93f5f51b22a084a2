package service

import (
	"strings"

	"storefront-orders/internal/models"
)

// knownCurrencies is the ISO-4217 subset the storefront accepts.
var knownCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "AUD": true,
	"CAD": true, "CHF": true, "CNY": true, "HKD": true, "NZD": true,
	"SEK": true, "KRW": true, "SGD": true, "NOK": true, "MXN": true,
	"INR": true, "BRL": true, "TWD": true, "ZAR": true, "DKK": true,
	"PLN": true, "THB": true, "IDR": true, "MYR": true, "PHP": true,
}

// normalizeCurrency uppercases the code, defaulting to USD when the
// provider omitted it (the storefront sells in USD).
func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD"
	}
	return code
}

// validateSubmission rejects malformed submissions before any
// persistence attempt.
func validateSubmission(sub *CaptureSubmission) error {
	if strings.TrimSpace(sub.PaymentRef) == "" {
		return &models.ValidationError{Field: "payment_ref", Reason: "is required"}
	}
	if sub.Amount == nil {
		return &models.ValidationError{Field: "amount", Reason: "is required"}
	}
	if sub.Amount.IsNegative() {
		return &models.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if !knownCurrencies[normalizeCurrency(sub.Currency)] {
		return &models.ValidationError{Field: "currency", Reason: "is not a known 3-letter code"}
	}
	return nil
}
