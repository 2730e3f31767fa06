package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-000123", FormatOrderNumber("ORD", 123))
	assert.Equal(t, "ORD-000001", FormatOrderNumber("", 1))
	assert.Equal(t, "CAF-1234567", FormatOrderNumber("CAF", 1234567))
}

func TestBusinessDates(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	// 16:30 UTC is already the next day in Manila
	ts := time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-02", FormatBusinessDate(ts, manila))
	assert.Equal(t, "2024-05-01", FormatBusinessDate(ts, nil))

	d, err := ParseBusinessDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d)

	_, err = ParseBusinessDate("2024-02-30")
	assert.Error(t, err)
	_, err = ParseBusinessDate("01/03/2024")
	assert.Error(t, err)

	prev, err := PreviousBusinessDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", prev)

	next, err := NextBusinessDate("2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", next)

	_, err = NextBusinessDate("31/12/2024")
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "barista@example.com", []string{"cashier"}, []string{"manage-orders"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.True(t, claims.HasPermission("manage-orders"))
	assert.False(t, claims.HasPermission("manage-ledger"))

	_, err = NewJWTManager("other", time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)

	expired, err := NewJWTManager("secret", -time.Minute).GenerateAccessToken(userID, "", nil, nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(expired)
	assert.Error(t, err)
}
