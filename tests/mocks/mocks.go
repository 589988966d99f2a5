// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"quizcore-backend/application/ports"
	"quizcore-backend/domain/migration"
)

// MockQueryExecutor mocks ports.QueryExecutor
type MockQueryExecutor struct {
	mock.Mock
}

func (m *MockQueryExecutor) Query(ctx context.Context, sql string, params []any) (*ports.QueryResult, error) {
	args := m.Called(ctx, sql, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.QueryResult), args.Error(1)
}

func (m *MockQueryExecutor) ExecBatch(ctx context.Context, sql string, paramsList [][]any) (int64, error) {
	args := m.Called(ctx, sql, paramsList)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueryExecutor) ExecScript(ctx context.Context, sql string) error {
	args := m.Called(ctx, sql)
	return args.Error(0)
}

func (m *MockQueryExecutor) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLedger mocks ports.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) EnsureTable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedger) AppliedVersions(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockLedger) Record(ctx context.Context, entry migration.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishMigrationEvent(ctx context.Context, event migration.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockInvoker mocks the bridge client's transport
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
