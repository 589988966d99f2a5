// Package bridge implements the database bridge Lambda: the single
// network-facing surface through which VPC-external compute reaches the
// database. One operation envelope in, one response envelope out; no
// operation spans multiple invocations.
package bridge

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"quizcore-backend/application/ports"
	domainbridge "quizcore-backend/domain/bridge"
	"quizcore-backend/pkg/codec"
	"quizcore-backend/pkg/errors"
	"quizcore-backend/pkg/observability"
)

// Handler dispatches operation envelopes to the query executor.
type Handler struct {
	exec    ports.QueryExecutor
	tracer  *observability.Tracer
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewHandler creates a bridge handler. tracer and metrics may be nil.
func NewHandler(exec ports.QueryExecutor, tracer *observability.Tracer, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		exec:    exec,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle processes one operation envelope. It never returns an error to the
// Lambda runtime: every failure, including malformed requests, is expressed
// as a response envelope so the caller always gets {statusCode, body}.
func (h *Handler) Handle(ctx context.Context, req domainbridge.Request) (domainbridge.Response, error) {
	start := time.Now()
	resp := h.dispatch(ctx, req)

	h.metrics.RecordDuration(ctx, "BridgeOperationLatency", time.Since(start), map[string]string{
		"Operation": string(req.Operation),
	})
	h.logger.Info("bridge operation handled",
		zap.String("operation", string(req.Operation)),
		zap.Int("statusCode", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

func (h *Handler) dispatch(ctx context.Context, req domainbridge.Request) domainbridge.Response {
	if err := req.Validate(); err != nil {
		message := err.Error()
		if appErr := errors.GetAppError(err); appErr != nil {
			message = appErr.Message
		}
		return domainbridge.NewResponse(http.StatusBadRequest, domainbridge.ErrorBody{
			Error: message,
		})
	}

	switch req.Operation {
	case domainbridge.OperationHealthCheck:
		return h.healthCheck(ctx)
	case domainbridge.OperationExecuteQuery:
		return h.executeQuery(ctx, req, false)
	case domainbridge.OperationExecuteQueryOne:
		return h.executeQuery(ctx, req, true)
	case domainbridge.OperationExecuteMany:
		return h.executeMany(ctx, req)
	}

	// Validate rejects unknown operations, so this is unreachable.
	return domainbridge.NewResponse(http.StatusBadRequest, domainbridge.ErrorBody{
		Error: "unknown operation",
	})
}

// healthCheck never propagates a failure; an unhealthy database is a 500 with
// healthy=false, not an error.
func (h *Handler) healthCheck(ctx context.Context) domainbridge.Response {
	err := h.tracer.TraceOperation(ctx, "health_check", func(ctx context.Context) error {
		return h.exec.Ping(ctx)
	})
	if err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		return domainbridge.NewResponse(http.StatusInternalServerError, domainbridge.HealthBody{Healthy: false})
	}
	return domainbridge.NewResponse(http.StatusOK, domainbridge.HealthBody{Healthy: true})
}

func (h *Handler) executeQuery(ctx context.Context, req domainbridge.Request, single bool) domainbridge.Response {
	var result *ports.QueryResult
	err := h.tracer.TraceOperation(ctx, string(req.Operation), func(ctx context.Context) error {
		var err error
		result, err = h.exec.Query(ctx, req.Query, req.Params)
		return err
	})
	if err != nil {
		return h.executionFailure(req, err)
	}

	// DML without a result set: the row count is all there is to report.
	// execute_query_one keeps its no-row shape, null rather than an array.
	if result.Columns == nil {
		body := domainbridge.QueryBody{Result: []any{}, RowCount: result.RowCount}
		if single {
			body.Result = nil
		}
		return domainbridge.NewResponse(http.StatusOK, body)
	}

	rows, err := codec.SerializeRows(result.Rows)
	if err != nil {
		return h.executionFailure(req, err)
	}

	if single {
		return domainbridge.NewResponse(http.StatusOK, singleRowBody(result.Columns, rows, req.ReturnDict))
	}

	body := domainbridge.QueryBody{RowCount: int64(len(rows))}
	if req.ReturnDict {
		body.Result = codec.RowsToMaps(result.Columns, rows)
	} else {
		body.Result = rows
	}
	return domainbridge.NewResponse(http.StatusOK, body)
}

// singleRowBody returns at most one row: null when the query matched nothing,
// never an array.
func singleRowBody(columns []string, rows [][]any, returnDict bool) domainbridge.QueryBody {
	if len(rows) == 0 {
		return domainbridge.QueryBody{Result: nil, RowCount: 0}
	}
	if returnDict {
		return domainbridge.QueryBody{Result: codec.RowToMap(columns, rows[0]), RowCount: 1}
	}
	return domainbridge.QueryBody{Result: rows[0], RowCount: 1}
}

func (h *Handler) executeMany(ctx context.Context, req domainbridge.Request) domainbridge.Response {
	var total int64
	err := h.tracer.TraceOperation(ctx, "execute_many", func(ctx context.Context) error {
		var err error
		total, err = h.exec.ExecBatch(ctx, req.Query, req.ParamsList)
		return err
	})
	if err != nil {
		return h.executionFailure(req, err)
	}

	return domainbridge.NewResponse(http.StatusOK, domainbridge.QueryBody{
		Result:   []any{},
		RowCount: total,
	})
}

// executionFailure maps any execution error to a sanitized 500 envelope. The
// driver's message text is preserved; stack traces and raw error objects are
// not.
func (h *Handler) executionFailure(req domainbridge.Request, err error) domainbridge.Response {
	h.logger.Error("bridge operation failed",
		zap.String("operation", string(req.Operation)),
		zap.Error(err),
	)

	message := err.Error()
	if appErr := errors.GetAppError(err); appErr != nil && appErr.Cause != nil {
		message = appErr.Cause.Error()
	}

	return domainbridge.NewResponse(http.StatusInternalServerError, domainbridge.ErrorBody{
		Error:   "operation failed: " + string(req.Operation),
		Message: message,
	})
}
