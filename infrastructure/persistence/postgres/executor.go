// Package postgres implements the query-executor and migration-ledger ports
// against PostgreSQL using a pgx connection pool.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"quizcore-backend/application/ports"
	"quizcore-backend/pkg/errors"
)

// Executor runs parameterized SQL against a pgx pool and normalizes results.
// It carries no business logic; connections are acquired per call and never
// held across invocations.
type Executor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewExecutor creates an Executor from an existing pool.
func NewExecutor(pool *pgxpool.Pool, logger *zap.Logger) *Executor {
	return &Executor{
		pool:   pool,
		logger: logger,
	}
}

// NewPool opens a connection pool for the given DSN.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.NewDatabaseError("connect", err)
	}
	return pool, nil
}

// Query runs one statement. SELECT-shaped statements return columns and rows;
// statements without a result set (DML without RETURNING) return only the
// affected-row count.
func (e *Executor) Query(ctx context.Context, sql string, params []any) (*ports.QueryResult, error) {
	rows, err := e.pool.Query(ctx, sql, params...)
	if err != nil {
		return nil, errors.NewDatabaseError("query", err)
	}

	fields := rows.FieldDescriptions()
	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			rows.Close()
			return nil, errors.NewDatabaseError("scan", err)
		}
		data = append(data, values)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("query", err)
	}

	if len(fields) == 0 {
		// No result set: the command tag carries the affected-row count.
		return &ports.QueryResult{RowCount: rows.CommandTag().RowsAffected()}, nil
	}

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f.Name)
	}

	return &ports.QueryResult{
		Columns:  columns,
		Rows:     data,
		RowCount: int64(len(data)),
	}, nil
}

// ExecBatch runs sql once per parameter tuple inside a single transaction, in
// list order on one connection. Any failure rolls the whole batch back, so
// callers never see partial application.
func (e *Executor) ExecBatch(ctx context.Context, sql string, paramsList [][]any) (int64, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("begin", err)
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, params := range paramsList {
		tag, err := tx.Exec(ctx, sql, params...)
		if err != nil {
			return 0, errors.NewDatabaseError("batch", err)
		}
		total += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.NewDatabaseError("commit", err)
	}

	e.logger.Debug("batch executed",
		zap.Int("statements", len(paramsList)),
		zap.Int64("rows_affected", total),
	)

	return total, nil
}

// ExecScript runs a migration script. Scripts may contain multiple statements
// separated by semicolons, which requires the simple protocol.
func (e *Executor) ExecScript(ctx context.Context, sql string) error {
	if _, err := e.pool.Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol); err != nil {
		return errors.NewDatabaseError("script", err)
	}
	return nil
}

// Ping issues a trivial liveness query.
func (e *Executor) Ping(ctx context.Context) error {
	if err := e.pool.Ping(ctx); err != nil {
		return errors.NewDatabaseError("ping", err)
	}
	return nil
}
