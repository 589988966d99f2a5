// Package bridge provides the caller-side client for the database bridge.
// Callers outside the database's VPC construct a Client with an Invoker and
// get typed results or typed errors back; the Lambda invocation that stands
// in for a network connection is hidden behind the Invoker interface.
package bridge

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	domainbridge "quizcore-backend/domain/bridge"
	"quizcore-backend/pkg/errors"
)

// Invoker performs one synchronous request/response invocation of the bridge.
type Invoker interface {
	Invoke(ctx context.Context, payload []byte) ([]byte, error)
}

// Client wraps the bridge protocol: it builds operation envelopes, invokes
// the bridge, and translates response envelopes into typed results.
type Client struct {
	invoker Invoker
	logger  *zap.Logger
}

// NewClient creates a bridge client. The invoker is injected so tests can use
// a fake transport and deployments can swap Lambda for an in-process bridge.
func NewClient(invoker Invoker, logger *zap.Logger) *Client {
	return &Client{
		invoker: invoker,
		logger:  logger,
	}
}

// ExecuteQuery runs a query and returns all rows as positional tuples.
func (c *Client) ExecuteQuery(ctx context.Context, query string, params []any) ([][]any, error) {
	body, err := c.call(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQuery,
		Query:     query,
		Params:    params,
	})
	if err != nil {
		return nil, err
	}

	var rows [][]any
	if err := decodeResult(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecuteQueryDict runs a query and returns all rows keyed by column name.
func (c *Client) ExecuteQueryDict(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	body, err := c.call(ctx, domainbridge.Request{
		Operation:  domainbridge.OperationExecuteQuery,
		Query:      query,
		Params:     params,
		ReturnDict: true,
	})
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := decodeResult(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecuteQueryOne runs a query and returns at most one row, nil when the
// query matched nothing.
func (c *Client) ExecuteQueryOne(ctx context.Context, query string, params []any) ([]any, error) {
	body, err := c.call(ctx, domainbridge.Request{
		Operation: domainbridge.OperationExecuteQueryOne,
		Query:     query,
		Params:    params,
	})
	if err != nil {
		return nil, err
	}

	if isJSONNull(body.Result) {
		return nil, nil
	}
	var row []any
	if err := decodeResult(body, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// ExecuteQueryOneDict is ExecuteQueryOne with a column-keyed row.
func (c *Client) ExecuteQueryOneDict(ctx context.Context, query string, params []any) (map[string]any, error) {
	body, err := c.call(ctx, domainbridge.Request{
		Operation:  domainbridge.OperationExecuteQueryOne,
		Query:      query,
		Params:     params,
		ReturnDict: true,
	})
	if err != nil {
		return nil, err
	}

	if isJSONNull(body.Result) {
		return nil, nil
	}
	var row map[string]any
	if err := decodeResult(body, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// ExecuteMany runs a statement once per parameter tuple and returns the total
// affected-row count. The whole batch commits or rolls back as one unit.
func (c *Client) ExecuteMany(ctx context.Context, query string, paramsList [][]any) (int64, error) {
	body, err := c.call(ctx, domainbridge.Request{
		Operation:  domainbridge.OperationExecuteMany,
		Query:      query,
		ParamsList: paramsList,
	})
	if err != nil {
		return 0, err
	}

	if body.RowCount == nil {
		return 0, errors.NewInternalError("bridge response is missing row_count")
	}
	return *body.RowCount, nil
}

// HealthCheck reports whether the bridge can reach the database. It never
// returns an error: callers use it as a readiness probe, so transport and
// execution failures alike read as unhealthy.
func (c *Client) HealthCheck(ctx context.Context) bool {
	body, err := c.call(ctx, domainbridge.Request{
		Operation: domainbridge.OperationHealthCheck,
	})
	if err != nil {
		c.logger.Warn("health check failed", zap.Error(err))
		return false
	}
	return body.Healthy != nil && *body.Healthy
}

// call performs one envelope round trip. A transport failure surfaces as a
// TRANSPORT error (the bridge itself is unreachable); a non-200 envelope
// surfaces as a DATABASE or VALIDATION error carrying the bridge's message.
func (c *Client) call(ctx context.Context, req domainbridge.Request) (*domainbridge.Body, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode bridge request").WithCause(err)
	}

	raw, err := c.invoker.Invoke(ctx, payload)
	if err != nil {
		return nil, errors.NewTransportError("bridge invocation failed", err)
	}

	var resp domainbridge.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewTransportError("bridge returned a malformed envelope", err)
	}

	var body domainbridge.Body
	if resp.Body != "" {
		if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
			return nil, errors.NewTransportError("bridge returned a malformed body", err)
		}
	}

	if resp.StatusCode != http.StatusOK {
		message := body.Error
		if message == "" {
			message = "bridge operation failed"
		}
		if resp.StatusCode == http.StatusBadRequest {
			return nil, errors.NewValidationError(message)
		}
		appErr := errors.NewDatabaseError(string(req.Operation), nil)
		appErr.Message = message
		if body.Message != "" {
			appErr.Details = map[string]interface{}{"message": body.Message}
		}
		return nil, appErr
	}

	return &body, nil
}

func decodeResult(body *domainbridge.Body, out any) error {
	if len(body.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(body.Result, out); err != nil {
		return errors.NewInternalError("failed to decode bridge result").WithCause(err)
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
