package util

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedDate is returned by ParseDate8 when the payment-date token is
// not a clean 8-digit numeric string.
var ErrMalformedDate = errors.New("malformed payment date token")

// SentinelNationalID replaces a missing or zero national id on a local.
const SentinelNationalID = "-"

// PayDate is a payment date decomposed into its numeric components.
type PayDate struct {
	Year  int
	Month int
	Day   int
}

// TrimTrailingSpaces strips trailing space characters only. Leading and
// internal whitespace is preserved.
func TrimTrailingSpaces(s string) string {
	for strings.HasSuffix(s, " ") {
		s = s[:len(s)-1]
	}
	return s
}

// SanitizeNationalID removes every whitespace character from raw and
// substitutes the sentinel for empty or "0" values.
func SanitizeNationalID(raw string) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if sanitized == "" || sanitized == "0" {
		return SentinelNationalID
	}
	return sanitized
}

// ParseDate8 slices an 8-digit token of the form yyyymmdd into its
// components. Tokens of any other length, or with non-numeric slices,
// yield ErrMalformedDate.
func ParseDate8(token string) (PayDate, error) {
	if len(token) != 8 {
		return PayDate{}, ErrMalformedDate
	}
	// Atoi alone would admit sign characters inside the token.
	for _, r := range token {
		if r < '0' || r > '9' {
			return PayDate{}, ErrMalformedDate
		}
	}

	year, _ := strconv.Atoi(token[0:4])
	month, _ := strconv.Atoi(token[4:6])
	day, _ := strconv.Atoi(token[6:8])

	return PayDate{Year: year, Month: month, Day: day}, nil
}

// DeriveAddress joins street, number and clarification with single spaces,
// trimming trailing whitespace from each present part and omitting absent
// ones.
func DeriveAddress(street string, number, clarification *string) string {
	parts := []string{TrimTrailingSpaces(street)}
	if number != nil {
		parts = append(parts, TrimTrailingSpaces(*number))
	}
	if clarification != nil {
		parts = append(parts, TrimTrailingSpaces(*clarification))
	}
	return strings.Join(parts, " ")
}
