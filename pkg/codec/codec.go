// Package codec converts database-native values into transport-safe JSON
// values. The bridge protocol is schema-less JSON, so timestamps, decimals and
// UUIDs must be flattened before they cross the wire. Unrecognized types are a
// hard failure rather than a silent stringification, so a new driver type
// surfaces immediately instead of corrupting data.
package codec

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"quizcore-backend/pkg/errors"
)

// Serialize converts a single database value to a JSON-native value.
//
// Conversion rules:
//   - timestamps and dates become ISO-8601 (RFC 3339) strings in UTC
//   - arbitrary-precision decimals become float64; the precision loss is
//     accepted and documented, these paths are not used for money
//   - 128-bit identifiers become canonical lowercase hyphenated strings
//   - JSON-native scalars pass through unchanged
func Serialize(v any) (any, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case bool, string, float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return value, nil

	case time.Time:
		return value.UTC().Format(time.RFC3339Nano), nil

	case uuid.UUID:
		return value.String(), nil
	case [16]byte:
		return uuid.UUID(value).String(), nil
	case pgtype.UUID:
		if !value.Valid {
			return nil, nil
		}
		return uuid.UUID(value.Bytes).String(), nil

	case pgtype.Numeric:
		if !value.Valid {
			return nil, nil
		}
		f, err := value.Float64Value()
		if err != nil {
			return nil, errors.NewInternalError("numeric value is not representable as float64").WithCause(err)
		}
		if !f.Valid {
			return nil, nil
		}
		return f.Float64, nil
	case *big.Int:
		if value == nil {
			return nil, nil
		}
		f, _ := new(big.Float).SetInt(value).Float64()
		return f, nil

	case pgtype.Date:
		if !value.Valid {
			return nil, nil
		}
		return value.Time.UTC().Format(time.RFC3339Nano), nil
	case pgtype.Timestamp:
		if !value.Valid {
			return nil, nil
		}
		return value.Time.UTC().Format(time.RFC3339Nano), nil
	case pgtype.Timestamptz:
		if !value.Valid {
			return nil, nil
		}
		return value.Time.UTC().Format(time.RFC3339Nano), nil

	default:
		return nil, errors.NewInternalError(
			fmt.Sprintf("unsupported value type %T", v),
		).WithCode("CODEC_UNSUPPORTED_TYPE")
	}
}

// SerializeRow converts every value of one row.
func SerializeRow(row []any) ([]any, error) {
	out := make([]any, len(row))
	for i, v := range row {
		sv, err := Serialize(v)
		if err != nil {
			return nil, err
		}
		out[i] = sv
	}
	return out, nil
}

// SerializeRows converts a full result set.
func SerializeRows(rows [][]any) ([][]any, error) {
	out := make([][]any, len(rows))
	for i, row := range rows {
		sr, err := SerializeRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = sr
	}
	return out, nil
}

// RowToMap zips column names with an already-serialized row. The column
// metadata has to travel with the data because the transport is schema-less.
func RowToMap(columns []string, row []any) map[string]any {
	m := make(map[string]any, len(columns))
	for i, col := range columns {
		if i < len(row) {
			m[col] = row[i]
		}
	}
	return m
}

// RowsToMaps converts a serialized result set into column-keyed rows.
func RowsToMaps(columns []string, rows [][]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = RowToMap(columns, row)
	}
	return out
}
