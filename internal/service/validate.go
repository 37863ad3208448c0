package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	minPasswordLen = 6
	maxUsernameLen = 150
	maxNameLen     = 150
	maxEmailLen    = 254

	maxProductNameLen = 200
	maxImageLen       = 200
	maxCategoryLen    = 80
	maxBrandLen       = 100
)

var maxPrice = decimal.New(1, 8) // decimal(10,2)

func tooLong(s string, n int) bool {
	return utf8.RuneCountInString(s) > n
}

func validEmail(s string) bool {
	if s == "" || tooLong(s, maxEmailLen) {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func normalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at] + "@" + strings.ToLower(s[at+1:])
}

func checkPrice(field string, p decimal.Decimal) error {
	if p.IsNegative() {
		return fieldError(field, "Ensure this value is greater than or equal to 0.")
	}
	if p.Exponent() < -2 && !p.Equal(p.Round(2)) {
		return fieldError(field, "Ensure that there are no more than 2 decimal places.")
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return fieldError(field, "Ensure that there are no more than 10 digits in total.")
	}
	return nil
}
