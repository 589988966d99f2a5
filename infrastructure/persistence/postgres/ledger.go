package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quizcore-backend/application/ports"
	"quizcore-backend/domain/migration"
	"quizcore-backend/pkg/errors"
)

// LedgerStore persists migration application attempts. The table is
// append-only: every attempt inserts one row and rows are never updated or
// deleted, which makes the ledger an audit log as well as the pending-set
// source.
type LedgerStore struct {
	exec   ports.QueryExecutor
	table  string
	logger *zap.Logger
}

// NewLedgerStore creates a ledger store on top of a query executor.
func NewLedgerStore(exec ports.QueryExecutor, table string, logger *zap.Logger) *LedgerStore {
	return &LedgerStore{
		exec:   exec,
		table:  table,
		logger: logger,
	}
}

// EnsureTable creates the ledger table when missing. It is idempotent and
// leaves an existing ledger untouched.
func (s *LedgerStore) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                BIGSERIAL PRIMARY KEY,
			version           VARCHAR(64) NOT NULL,
			name              VARCHAR(255) NOT NULL,
			checksum          CHAR(64) NOT NULL,
			execution_time_ms BIGINT NOT NULL,
			success           BOOLEAN NOT NULL,
			applied_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_%s_version ON %s (version);
	`, s.table, s.table, s.table)

	if err := s.exec.ExecScript(ctx, ddl); err != nil {
		return errors.NewDatabaseError("ensure ledger table", err)
	}
	return nil
}

// AppliedVersions returns the checksum of the most recent successful attempt
// per version. Versions with only failed attempts are absent, so they stay in
// the pending set.
func (s *LedgerStore) AppliedVersions(ctx context.Context) (map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (version) version, checksum
		FROM %s
		WHERE success = true
		ORDER BY version, applied_at DESC
	`, s.table)

	result, err := s.exec.Query(ctx, query, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("read ledger", err)
	}

	applied := make(map[string]string, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) != 2 {
			return nil, errors.NewInternalError("unexpected ledger row shape")
		}
		version, ok := row[0].(string)
		if !ok {
			return nil, errors.NewInternalError("ledger version is not a string")
		}
		checksum, ok := row[1].(string)
		if !ok {
			return nil, errors.NewInternalError("ledger checksum is not a string")
		}
		applied[version] = checksum
	}

	return applied, nil
}

// Record appends one application attempt.
func (s *LedgerStore) Record(ctx context.Context, entry migration.LedgerEntry) error {
	appliedAt := entry.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (version, name, checksum, execution_time_ms, success, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.table)

	params := []any{
		entry.Version,
		entry.Name,
		entry.Checksum,
		entry.ExecutionTimeMs,
		entry.Success,
		appliedAt,
	}

	if _, err := s.exec.Query(ctx, query, params); err != nil {
		return errors.NewDatabaseError("record ledger entry", err)
	}

	s.logger.Info("ledger entry recorded",
		zap.String("version", entry.Version),
		zap.Bool("success", entry.Success),
		zap.Int64("execution_time_ms", entry.ExecutionTimeMs),
	)

	return nil
}
