package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	cursor := EntryCursor{
		EntryDate: time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC),
		EntryID:   "c0a8012e-0000-4000-8000-000000000001",
	}

	token := EncodeToken(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, cursor, decoded)

	// Zero time values survive the round trip as well
	zero := EntryCursor{EntryID: "x"}
	decodedZero, err := DecodeToken(EncodeToken(zero))
	require.NoError(t, err)
	assert.Equal(t, zero, decodedZero)
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "base64 decode")

	missingParts := base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, err = DecodeToken(missingParts)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.StdEncoding.EncodeToString([]byte("notadate|2023-05-15T14:30:45Z|id"))
	_, err = DecodeToken(badDate)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "entry date parse")
}

func TestEntryCursor_Before(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c := EntryCursor{EntryDate: day(10), CreatedAt: created, EntryID: "m"}

	assert.True(t, c.Before(day(11), created, "a"), "newer date was on an earlier page")
	assert.False(t, c.Before(day(9), created, "z"), "older date comes later")
	assert.True(t, c.Before(day(10), created.Add(time.Second), "a"))
	assert.False(t, c.Before(day(10), created.Add(-time.Second), "z"))
	assert.True(t, c.Before(day(10), created, "m"), "the cursor row itself is not repeated")
	assert.False(t, c.Before(day(10), created, "l"))
}
