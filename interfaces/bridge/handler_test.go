package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quizcore-backend/application/ports"
	domainbridge "quizcore-backend/domain/bridge"
	"quizcore-backend/tests/mocks"
)

func newTestHandler(exec ports.QueryExecutor) *Handler {
	return NewHandler(exec, nil, nil, zap.NewNop())
}

func decodeBody(t *testing.T, resp domainbridge.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func TestHandle_SelectOne(t *testing.T) {
	// Arrange
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, "SELECT 1", []any(nil)).Return(&ports.QueryResult{
		Columns:  []string{"?column?"},
		Rows:     [][]any{{int32(1)}},
		RowCount: 1,
	}, nil)

	handler := newTestHandler(exec)

	// Act
	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQuery,
		Query:     "SELECT 1",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"result":[[1]],"row_count":1}`, resp.Body)
}

func TestHandle_ExecuteQuery_ReturnDict(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.Anything, mock.Anything).Return(&ports.QueryResult{
		Columns:  []string{"id", "title"},
		Rows:     [][]any{{"q1", "Biology 101"}, {"q2", "Chemistry"}},
		RowCount: 2,
	}, nil)

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation:  domainbridge.OperationExecuteQuery,
		Query:      "SELECT id, title FROM quizzes",
		ReturnDict: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{
		"result": [
			{"id": "q1", "title": "Biology 101"},
			{"id": "q2", "title": "Chemistry"}
		],
		"row_count": 2
	}`, resp.Body)
}

func TestHandle_ExecuteQuery_CodecAppliedToRows(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exec.On("Query", ctx, mock.Anything, mock.Anything).Return(&ports.QueryResult{
		Columns:  []string{"created_at"},
		Rows:     [][]any{{ts}},
		RowCount: 1,
	}, nil)

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQuery,
		Query:     "SELECT created_at FROM users",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"result":[["2025-06-01T12:00:00Z"]],"row_count":1}`, resp.Body)
}

func TestHandle_ExecuteQuery_DMLWithoutResultSet(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.Anything, mock.Anything).Return(&ports.QueryResult{
		RowCount: 4,
	}, nil)

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQuery,
		Query:     "UPDATE quizzes SET is_published = true WHERE owner_id = $1",
		Params:    []any{"u1"},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"result":[],"row_count":4}`, resp.Body)
}

func TestHandle_ExecuteQueryOne_ZeroRowsIsNullNotEmptyArray(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.Anything, mock.Anything).Return(&ports.QueryResult{
		Columns:  []string{"id"},
		Rows:     nil,
		RowCount: 0,
	}, nil)

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQueryOne,
		Query:     "SELECT id FROM users WHERE email = $1",
		Params:    []any{"nobody@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"result":null,"row_count":0}`, resp.Body)
}

func TestHandle_ExecuteQueryOne_NoResultSetIsNullNotEmptyArray(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.Anything, mock.Anything).Return(&ports.QueryResult{
		RowCount: 1,
	}, nil)

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQueryOne,
		Query:     "UPDATE users SET display_name = $1 WHERE id = $2",
		Params:    []any{"Ada", "u1"},
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"result":null,"row_count":1}`, resp.Body)
}

func TestHandle_ExecuteQueryOne_OneRowIsNotAnArrayOfRows(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.Anything, mock.Anything).Return(&ports.QueryResult{
		Columns:  []string{"id", "email"},
		Rows:     [][]any{{"u1", "a@example.com"}},
		RowCount: 1,
	}, nil)

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQueryOne,
		Query:     "SELECT id, email FROM users LIMIT 1",
	})

	require.NoError(t, err)
	// A single row, not an array containing one row.
	assert.JSONEq(t, `{"result":["u1","a@example.com"],"row_count":1}`, resp.Body)
}

func TestHandle_ExecuteMany(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	paramsList := [][]any{{"a"}, {"b"}, {"c"}}
	exec.On("ExecBatch", ctx, mock.Anything, paramsList).Return(int64(3), nil)

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation:  domainbridge.OperationExecuteMany,
		Query:      "INSERT INTO quizzes (title) VALUES ($1)",
		ParamsList: paramsList,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"result":[],"row_count":3}`, resp.Body)
}

func TestHandle_ExecuteMany_FailureIsFatalForWholeCall(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("ExecBatch", ctx, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("duplicate key value violates unique constraint"))

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation:  domainbridge.OperationExecuteMany,
		Query:      "INSERT INTO users (cognito_sub, email) VALUES ($1, $2)",
		ParamsList: [][]any{{"s1", "a@x"}, {"s1", "a@x"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "operation failed")
	assert.Contains(t, body["message"], "duplicate key")
}

func TestHandle_MissingOperationIs400(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{Query: "SELECT 1"})

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	exec.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_MissingQueryIs400(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQuery,
	})

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "query is required")
}

func TestHandle_EmptyParamsListIs400(t *testing.T) {
	ctx := context.Background()
	handler := newTestHandler(new(mocks.MockQueryExecutor))

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteMany,
		Query:     "INSERT INTO quizzes (title) VALUES ($1)",
	})

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandle_ExecutionErrorIsSanitized500(t *testing.T) {
	ctx := context.Background()
	exec := new(mocks.MockQueryExecutor)
	exec.On("Query", ctx, mock.Anything, mock.Anything).
		Return(nil, errors.New(`relation "nope" does not exist`))

	handler := newTestHandler(exec)

	resp, err := handler.Handle(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQuery,
		Query:     "SELECT * FROM nope",
	})

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "operation failed: execute_query", body["error"])
	assert.Equal(t, `relation "nope" does not exist`, body["message"])
	// No stack traces or raw error objects in the body.
	assert.NotContains(t, resp.Body, "goroutine")
	assert.NotContains(t, resp.Body, ".go:")
}

func TestHandle_HealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy", func(t *testing.T) {
		exec := new(mocks.MockQueryExecutor)
		exec.On("Ping", ctx).Return(nil)

		resp, err := newTestHandler(exec).Handle(ctx, domainbridge.Request{
			Operation: domainbridge.OperationHealthCheck,
		})

		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.JSONEq(t, `{"healthy":true}`, resp.Body)
	})

	t.Run("unhealthy is a 500 envelope, never an error", func(t *testing.T) {
		exec := new(mocks.MockQueryExecutor)
		exec.On("Ping", ctx).Return(errors.New("connection refused"))

		resp, err := newTestHandler(exec).Handle(ctx, domainbridge.Request{
			Operation: domainbridge.OperationHealthCheck,
		})

		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.JSONEq(t, `{"healthy":false}`, resp.Body)
	})
}
