// Package bridge defines the wire contract between the database bridge Lambda
// and its callers. The bridge is the only network-facing surface into the
// database from outside its VPC, so these shapes are the stable protocol both
// sides are deployed against.
package bridge

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"quizcore-backend/pkg/errors"
)

// Operation identifies which database interaction a request asks for.
type Operation string

const (
	OperationExecuteQuery    Operation = "execute_query"
	OperationExecuteQueryOne Operation = "execute_query_one"
	OperationExecuteMany     Operation = "execute_many"
	OperationHealthCheck     Operation = "health_check"
)

// Request is the operation envelope sent to the bridge. Exactly one database
// interaction happens per envelope; there are no cursors or streaming calls.
type Request struct {
	Operation  Operation `json:"operation" validate:"required"`
	Query      string    `json:"query,omitempty"`
	Params     []any     `json:"params,omitempty"`
	ParamsList [][]any   `json:"params_list,omitempty"`
	ReturnDict bool      `json:"return_dict,omitempty"`
}

var validate = validator.New()

// Validate enforces the per-operation field requirements. A failure here maps
// to a 400 response and never reaches the database.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.NewValidationError("operation is required")
	}

	switch r.Operation {
	case OperationHealthCheck:
		return nil
	case OperationExecuteQuery, OperationExecuteQueryOne:
		if r.Query == "" {
			return errors.NewValidationError("query is required for " + string(r.Operation))
		}
	case OperationExecuteMany:
		if r.Query == "" {
			return errors.NewValidationError("query is required for " + string(r.Operation))
		}
		if len(r.ParamsList) == 0 {
			return errors.NewValidationError("params_list is required and must be non-empty for execute_many")
		}
	default:
		return errors.NewValidationError("unknown operation: " + string(r.Operation))
	}

	return nil
}

// Response is the uniform envelope returned by the bridge. Body carries the
// JSON-encoded payload as a string, mirroring the Lambda proxy convention.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// QueryBody is the success payload for execute_query and execute_query_one.
// Result is [][]any (or []map[string]any with return_dict) for row sets, nil
// for a zero-row execute_query_one, and [] for DML without a result set.
type QueryBody struct {
	Result   any   `json:"result"`
	RowCount int64 `json:"row_count"`
}

// HealthBody is the payload for health_check.
type HealthBody struct {
	Healthy bool `json:"healthy"`
}

// ErrorBody is the payload for any non-2xx response. Message preserves the
// underlying driver text; stack traces never cross the wire.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Body is the decoded form of Response.Body as seen by the client, which has
// to accept any of the payload shapes above.
type Body struct {
	Result   json.RawMessage `json:"result,omitempty"`
	RowCount *int64          `json:"row_count,omitempty"`
	Healthy  *bool           `json:"healthy,omitempty"`
	Error    string          `json:"error,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// NewResponse marshals payload into a response envelope. Marshal failures are
// reported as a 500 with a static body so the envelope shape always holds.
func NewResponse(statusCode int, payload any) Response {
	data, err := json.Marshal(payload)
	if err != nil {
		return Response{
			StatusCode: 500,
			Body:       `{"error":"failed to encode response body"}`,
		}
	}
	return Response{StatusCode: statusCode, Body: string(data)}
}
