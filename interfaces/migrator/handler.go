// Package migrator implements the migration-runner Lambda invoked by the
// deployment pipeline. The pipeline serializes apply calls; the runner itself
// provides no mutual exclusion.
package migrator

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"quizcore-backend/application/migration"
)

// Actions accepted by the runner.
const (
	ActionMigrate  = "migrate"
	ActionStatus   = "status"
	ActionValidate = "validate"
)

// Request is the runner's invocation payload.
type Request struct {
	Action string `json:"action"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// PendingMigration describes one not-yet-applied unit in a status or dry-run
// response.
type PendingMigration struct {
	Version string `json:"version"`
	Name    string `json:"name"`
}

// ResponseBody is the runner's result payload.
type ResponseBody struct {
	Message           string             `json:"message"`
	Success           *bool              `json:"success,omitempty"`
	Migrations        []migration.Report `json:"migrations,omitempty"`
	PendingMigrations []PendingMigration `json:"pending_migrations,omitempty"`
	PendingCount      *int               `json:"pending_count,omitempty"`
	AppliedCount      *int               `json:"applied_count,omitempty"`
	Validation        map[string]bool    `json:"validation,omitempty"`
}

// Response is the runner's invocation envelope.
type Response struct {
	StatusCode int          `json:"statusCode"`
	Body       ResponseBody `json:"body"`
}

// Handler routes runner actions to the migration runner.
type Handler struct {
	runner *migration.Runner
	logger *zap.Logger
}

// NewHandler creates a migrator handler.
func NewHandler(runner *migration.Runner, logger *zap.Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger,
	}
}

// Handle processes one runner invocation.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	h.logger.Info("migration runner invoked",
		zap.String("action", req.Action),
		zap.Bool("dry_run", req.DryRun),
	)

	switch req.Action {
	case ActionStatus:
		return h.status(ctx)
	case ActionMigrate:
		if req.DryRun {
			return h.dryRun(ctx)
		}
		return h.apply(ctx)
	case ActionValidate:
		return h.validate(ctx)
	default:
		return Response{
			StatusCode: http.StatusBadRequest,
			Body:       ResponseBody{Message: fmt.Sprintf("unknown action %q", req.Action)},
		}, nil
	}
}

func (h *Handler) status(ctx context.Context) (Response, error) {
	status, err := h.runner.Status(ctx)
	if err != nil {
		return h.internalError("failed to compute migration status", err), nil
	}

	return Response{
		StatusCode: http.StatusOK,
		Body: ResponseBody{
			Message:           fmt.Sprintf("%d applied, %d pending", status.AppliedCount, status.PendingCount),
			PendingCount:      &status.PendingCount,
			AppliedCount:      &status.AppliedCount,
			PendingMigrations: pendingList(status.PendingVersions),
		},
	}, nil
}

func (h *Handler) dryRun(ctx context.Context) (Response, error) {
	pending, err := h.runner.Plan(ctx)
	if err != nil {
		return h.internalError("failed to compute pending set", err), nil
	}

	list := make([]PendingMigration, len(pending))
	for i, u := range pending {
		list[i] = PendingMigration{Version: u.Version, Name: u.Name}
	}
	count := len(pending)

	return Response{
		StatusCode: http.StatusOK,
		Body: ResponseBody{
			Message:           fmt.Sprintf("dry run: %d migrations would be applied", count),
			PendingCount:      &count,
			PendingMigrations: list,
		},
	}, nil
}

func (h *Handler) apply(ctx context.Context) (Response, error) {
	result, err := h.runner.Apply(ctx)
	if err != nil {
		return h.internalError("migration run failed before applying anything", err), nil
	}

	body := ResponseBody{
		Success:    &result.Success,
		Migrations: result.Applied,
		Validation: result.Validation,
	}

	if result.Success {
		body.Message = fmt.Sprintf("migrations applied: %d", len(result.Applied))
		return Response{StatusCode: http.StatusOK, Body: body}, nil
	}

	// No failed version means every migration ran; the post-apply schema
	// validation is what failed.
	if result.FailedVersion == "" {
		body.Message = fmt.Sprintf("migrations applied: %d, post-apply schema validation failed",
			len(result.Applied))
		return Response{StatusCode: http.StatusInternalServerError, Body: body}, nil
	}

	reason := ""
	for _, report := range result.Applied {
		if !report.Success {
			reason = report.Error
			break
		}
	}
	body.Message = fmt.Sprintf("migrations applied: %d, failed at version %s: %s",
		len(result.Applied)-1, result.FailedVersion, reason)

	return Response{StatusCode: http.StatusInternalServerError, Body: body}, nil
}

func (h *Handler) validate(ctx context.Context) (Response, error) {
	checks, err := h.runner.Validate(ctx)
	if err != nil {
		return h.internalError("failed to run schema validation", err), nil
	}

	valid := migration.AllValid(checks)
	message := "schema is valid"
	if !valid {
		message = "schema validation failed"
	}

	return Response{
		StatusCode: http.StatusOK,
		Body: ResponseBody{
			Message:    message,
			Success:    &valid,
			Validation: checks,
		},
	}, nil
}

func (h *Handler) internalError(message string, err error) Response {
	h.logger.Error(message, zap.Error(err))
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body:       ResponseBody{Message: message + ": " + err.Error()},
	}
}

func pendingList(versions []string) []PendingMigration {
	list := make([]PendingMigration, len(versions))
	for i, v := range versions {
		list[i] = PendingMigration{Version: v}
	}
	return list
}
