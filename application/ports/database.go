// Package ports defines the interfaces the application layer depends on.
// Implementations live under infrastructure.
package ports

import (
	"context"

	"quizcore-backend/domain/migration"
)

// QueryResult is the normalized outcome of one statement execution. For
// statements that return a result set, Columns and Rows are populated and
// RowCount is the number of rows returned. For DML without RETURNING, Columns
// is nil and RowCount is the number of affected rows.
type QueryResult struct {
	Columns  []string
	Rows     [][]any
	RowCount int64
}

// QueryExecutor runs parameterized SQL against the relational store. It holds
// no business logic; every invocation acquires, uses and releases a pooled
// connection, and nothing is held across invocations.
type QueryExecutor interface {
	// Query runs one statement with optional positional params.
	Query(ctx context.Context, sql string, params []any) (*QueryResult, error)

	// ExecBatch runs one statement once per parameter tuple inside a single
	// transaction, in list order on one connection. It returns the total
	// affected-row count. On any failure the whole batch is rolled back.
	ExecBatch(ctx context.Context, sql string, paramsList [][]any) (int64, error)

	// ExecScript runs a migration script, which may contain multiple
	// statements and takes no parameters.
	ExecScript(ctx context.Context, sql string) error

	// Ping issues a trivial liveness query.
	Ping(ctx context.Context) error
}

// Ledger is the durable, append-only record of migration application
// attempts.
type Ledger interface {
	// EnsureTable creates the ledger table when it does not exist yet.
	EnsureTable(ctx context.Context) error

	// AppliedVersions returns, for every version with at least one successful
	// entry, the checksum recorded by the most recent successful attempt.
	AppliedVersions(ctx context.Context) (map[string]string, error)

	// Record appends one attempt. Entries are never updated or deleted.
	Record(ctx context.Context, entry migration.LedgerEntry) error
}

// EventPublisher notifies the deployment pipeline about apply outcomes.
type EventPublisher interface {
	PublishMigrationEvent(ctx context.Context, event migration.Event) error
}
