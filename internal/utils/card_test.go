package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuhnValid_KnownGoodNumbers(t *testing.T) {
	for _, pan := range []string{
		"4532015112830366",
		"4111111111111111",
		"5555555555554444",
		"378282246310005",
		"6011111111111117",
	} {
		assert.True(t, LuhnValid(pan), pan)
	}
}

func TestLuhnValid_SingleDigitMutations(t *testing.T) {
	for _, pan := range []string{
		"4532015112830367",
		"4532015112830376",
		"1532015112830366",
		"4532015112830360",
		"4111111111111112",
		"5555555555554445",
		"378282246310006",
	} {
		assert.False(t, LuhnValid(pan), pan)
	}
	assert.False(t, LuhnValid(""))
	assert.False(t, LuhnValid("4111a11111111111"))
}

func TestValidateCardNumber(t *testing.T) {
	digits, err := ValidateCardNumber("4532-0151 1283 0366")
	require.NoError(t, err)
	assert.Equal(t, "4532015112830366", digits)

	_, err = ValidateCardNumber("4111 1111 111")
	assert.ErrorIs(t, err, ErrInvalidCardNumber)

	_, err = ValidateCardNumber("4532015112830367")
	assert.ErrorIs(t, err, ErrLuhnCheckFailed)
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "**** **** **** 1111", MaskCardNumber("4111111111111111"))
	assert.Equal(t, "1111", Last4("4111111111111111"))
	assert.Equal(t, "**** **** ***0 005", MaskCardNumber("378282246310005"))
	assert.Equal(t, "0005", Last4("378282246310005"))
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateExpiry(10, 2026, now), "current month is still valid")
	assert.NoError(t, ValidateExpiry(1, 2027, now))
	assert.NoError(t, ValidateExpiry(12, 2030, now))
	assert.ErrorIs(t, ValidateExpiry(9, 2026, now), ErrCardExpired)
	assert.ErrorIs(t, ValidateExpiry(12, 2025, now), ErrCardExpired)
}

func TestValidateCardType(t *testing.T) {
	assert.NoError(t, ValidateCardType("credit"))
	assert.NoError(t, ValidateCardType("debit"))
	assert.ErrorIs(t, ValidateCardType("prepaid"), ErrInvalidCardType)
	assert.ErrorIs(t, ValidateCardType("Credit"), ErrInvalidCardType)
}
