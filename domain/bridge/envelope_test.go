package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizcore-backend/pkg/errors"
)

func TestRequestValidate_HealthCheckNeedsNoQuery(t *testing.T) {
	req := Request{Operation: OperationHealthCheck}

	assert.NoError(t, req.Validate())
}

func TestRequestValidate_MissingOperation(t *testing.T) {
	req := Request{Query: "SELECT 1"}

	err := req.Validate()

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRequestValidate_QueryRequired(t *testing.T) {
	for _, op := range []Operation{OperationExecuteQuery, OperationExecuteQueryOne, OperationExecuteMany} {
		t.Run(string(op), func(t *testing.T) {
			req := Request{Operation: op}

			err := req.Validate()

			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestRequestValidate_ExecuteManyNeedsParamsList(t *testing.T) {
	req := Request{
		Operation: OperationExecuteMany,
		Query:     "INSERT INTO quizzes (title) VALUES ($1)",
	}

	err := req.Validate()

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "params_list")
}

func TestRequestValidate_UnknownOperation(t *testing.T) {
	req := Request{Operation: "drop_everything", Query: "SELECT 1"}

	err := req.Validate()

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestNewResponse_BodyIsEncodedString(t *testing.T) {
	resp := NewResponse(200, QueryBody{Result: [][]any{{1}}, RowCount: 1})

	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"result":[[1]],"row_count":1}`, resp.Body)

	// The envelope itself round-trips with body as a string.
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded Response
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, resp.Body, decoded.Body)
}

func TestNewResponse_NullResultSurvivesEncoding(t *testing.T) {
	resp := NewResponse(200, QueryBody{Result: nil, RowCount: 0})

	assert.JSONEq(t, `{"result":null,"row_count":0}`, resp.Body)
}
