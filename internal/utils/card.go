package utils

import (
	"strings"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/model"
)

const minCardDigits = 12

var (
	ErrInvalidCardNumber = apperr.New(apperr.KindValidation, "invalid_card_number", "Invalid card number length")
	ErrLuhnCheckFailed   = apperr.New(apperr.KindValidation, "luhn_check_failed", "Invalid card number (Luhn check failed)")
	ErrCardExpired       = apperr.New(apperr.KindValidation, "card_expired", "Card has expired")
	ErrInvalidCardType   = apperr.New(apperr.KindValidation, "invalid_card_type", "Invalid card type")
)

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LuhnValid computes the Luhn checksum over a digit string.
func LuhnValid(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Last4 returns the final four digits.
func Last4(digits string) string {
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// MaskCardNumber hides all but the last four digits and groups the result in
// blocks of four, e.g. "**** **** **** 1234".
func MaskCardNumber(digits string) string {
	keep := len(digits) - 4
	if keep < 0 {
		keep = 0
	}
	masked := strings.Repeat("*", keep) + digits[keep:]

	groups := make([]string, 0, (len(masked)+3)/4)
	for i := 0; i < len(masked); i += 4 {
		end := i + 4
		if end > len(masked) {
			end = len(masked)
		}
		groups = append(groups, masked[i:end])
	}
	return strings.Join(groups, " ")
}

// ValidateCardType accepts only credit and debit.
func ValidateCardType(cardType string) error {
	if cardType != model.CardTypeCredit && cardType != model.CardTypeDebit {
		return ErrInvalidCardType
	}
	return nil
}

// ValidateExpiry rejects cards whose expiry month is before the month of now.
func ValidateExpiry(month, year int, now time.Time) error {
	currentYear, currentMonth := now.Year(), int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return ErrCardExpired
	}
	return nil
}

// ValidateCardNumber strips the input, checks its length and Luhn checksum,
// and returns the digit string.
func ValidateCardNumber(raw string) (string, error) {
	digits := DigitsOnly(raw)
	if len(digits) < minCardDigits {
		return "", ErrInvalidCardNumber
	}
	if !LuhnValid(digits) {
		return "", ErrLuhnCheckFailed
	}
	return digits, nil
}
