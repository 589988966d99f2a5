package codec

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizcore-backend/pkg/errors"
)

func TestSerialize_JSONNativePassThrough(t *testing.T) {
	for _, v := range []any{nil, true, "text", 42, int64(42), 3.14} {
		got, err := Serialize(v)

		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestSerialize_Timestamp(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	got, err := Serialize(ts)

	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T12:30:00Z", got)
}

func TestSerialize_TimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 123456000, time.UTC)

	first, err := Serialize(ts)
	require.NoError(t, err)

	parsed, err := time.Parse(time.RFC3339Nano, first.(string))
	require.NoError(t, err)

	second, err := Serialize(parsed)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSerialize_UUIDForms(t *testing.T) {
	id := uuid.MustParse("a2f1c0ee-3f6a-4b2c-9d4e-8a7b6c5d4e3f")

	got, err := Serialize(id)
	require.NoError(t, err)
	assert.Equal(t, "a2f1c0ee-3f6a-4b2c-9d4e-8a7b6c5d4e3f", got)

	got, err = Serialize([16]byte(id))
	require.NoError(t, err)
	assert.Equal(t, "a2f1c0ee-3f6a-4b2c-9d4e-8a7b6c5d4e3f", got)

	got, err = Serialize(pgtype.UUID{Bytes: id, Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "a2f1c0ee-3f6a-4b2c-9d4e-8a7b6c5d4e3f", got)
}

func TestSerialize_UUIDRoundTrip(t *testing.T) {
	id := uuid.New()

	first, err := Serialize(id)
	require.NoError(t, err)

	parsed := uuid.MustParse(first.(string))
	second, err := Serialize(parsed)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Decimal serialization goes through float64 and is documented as lossy;
// these assertions cover representability, not losslessness.
func TestSerialize_Numeric(t *testing.T) {
	var n pgtype.Numeric
	require.NoError(t, n.Scan("12.50"))

	got, err := Serialize(n)

	require.NoError(t, err)
	assert.InDelta(t, 12.50, got.(float64), 1e-9)
}

func TestSerialize_NullValuedTypes(t *testing.T) {
	for _, v := range []any{pgtype.Numeric{}, pgtype.UUID{}, pgtype.Timestamptz{}} {
		got, err := Serialize(v)

		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestSerialize_UnsupportedTypeIsHardFailure(t *testing.T) {
	type opaque struct{ x int }

	_, err := Serialize(opaque{x: 1})

	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CODEC_UNSUPPORTED_TYPE", appErr.Code)
}

func TestSerializeRows_PropagatesFailure(t *testing.T) {
	_, err := SerializeRows([][]any{{1, "ok"}, {make(chan int)}})

	assert.Error(t, err)
}

func TestRowToMap(t *testing.T) {
	m := RowToMap([]string{"id", "title"}, []any{"abc", "Biology 101"})

	assert.Equal(t, map[string]any{"id": "abc", "title": "Biology 101"}, m)
}
