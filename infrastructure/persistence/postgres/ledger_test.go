package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quizcore-backend/application/ports"
	"quizcore-backend/domain/migration"
	apperrors "quizcore-backend/pkg/errors"
	"quizcore-backend/tests/mocks"
)

func TestLedgerStore_EnsureTable(t *testing.T) {
	// Arrange
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("ExecScript", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "CREATE TABLE IF NOT EXISTS schema_migrations") &&
			strings.Contains(sql, "CREATE INDEX IF NOT EXISTS")
	})).Return(nil)

	store := NewLedgerStore(exec, "schema_migrations", zap.NewNop())

	// Act
	err := store.EnsureTable(ctx)

	// Assert
	require.NoError(t, err)
	exec.AssertExpectations(t)
}

func TestLedgerStore_AppliedVersions(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "DISTINCT ON (version)") &&
			strings.Contains(sql, "WHERE success = true")
	}), []any(nil)).Return(&ports.QueryResult{
		Columns: []string{"version", "checksum"},
		Rows: [][]any{
			{"001", "aaa"},
			{"002", "bbb"},
		},
		RowCount: 2,
	}, nil)

	store := NewLedgerStore(exec, "schema_migrations", zap.NewNop())

	applied, err := store.AppliedVersions(ctx)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"001": "aaa", "002": "bbb"}, applied)
}

func TestLedgerStore_AppliedVersions_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.AnythingOfType("string"), []any(nil)).
		Return(&ports.QueryResult{Columns: []string{"version", "checksum"}, Rows: [][]any{}}, nil)

	store := NewLedgerStore(exec, "schema_migrations", zap.NewNop())

	applied, err := store.AppliedVersions(ctx)

	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestLedgerStore_AppliedVersions_QueryFailure(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.AnythingOfType("string"), []any(nil)).
		Return(nil, errors.New("connection reset"))

	store := NewLedgerStore(exec, "schema_migrations", zap.NewNop())

	_, err := store.AppliedVersions(ctx)

	require.Error(t, err)
	assert.True(t, apperrors.IsDatabase(err))
}

func TestLedgerStore_Record(t *testing.T) {
	ctx := context.Background()
	appliedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "INSERT INTO schema_migrations") &&
			strings.Contains(sql, "$6")
	}), []any{"003", "create_questions", "abc123", int64(42), true, appliedAt}).
		Return(&ports.QueryResult{RowCount: 1}, nil)

	store := NewLedgerStore(exec, "schema_migrations", zap.NewNop())

	err := store.Record(ctx, migration.LedgerEntry{
		Version:         "003",
		Name:            "create_questions",
		Checksum:        "abc123",
		ExecutionTimeMs: 42,
		Success:         true,
		AppliedAt:       appliedAt,
	})

	require.NoError(t, err)
	exec.AssertExpectations(t)
}

func TestLedgerStore_Record_FailedAttemptIsStillInserted(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	var params []any
	exec.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			params = args.Get(2).([]any)
		}).
		Return(&ports.QueryResult{RowCount: 1}, nil)

	store := NewLedgerStore(exec, "schema_migrations", zap.NewNop())

	err := store.Record(ctx, migration.LedgerEntry{
		Version:  "004",
		Name:     "create_attempts",
		Checksum: "def456",
		Success:  false,
	})

	require.NoError(t, err)
	require.Len(t, params, 6)
	assert.Equal(t, false, params[4])
	// A zero AppliedAt is filled in rather than inserted as the zero time.
	assert.False(t, params[5].(time.Time).IsZero())
}
