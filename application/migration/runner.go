// Package migration implements the migration runner: it computes the pending
// set (catalog minus successful ledger entries), applies pending units
// strictly in version order, records every attempt, and halts on the first
// failure. The runner is not safe under concurrent execution; deployments
// serialize apply calls through the pipeline.
package migration

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quizcore-backend/application/ports"
	"quizcore-backend/domain/migration"
	"quizcore-backend/pkg/observability"
)

// Runner drives the migration state machine. Per version:
// pending -> applying -> applied on a success entry, or back to pending after
// a failure entry, so a crashed or failed attempt is always safe to retry.
type Runner struct {
	catalog     *migration.Catalog
	ledger      ports.Ledger
	exec        ports.QueryExecutor
	validator   *SchemaValidator
	events      ports.EventPublisher
	metrics     *observability.Metrics
	environment string
	failOnDrift bool
	logger      *zap.Logger
}

// RunnerOption configures optional collaborators.
type RunnerOption func(*Runner)

// WithEventPublisher attaches a deployment-pipeline event publisher.
func WithEventPublisher(events ports.EventPublisher) RunnerOption {
	return func(r *Runner) { r.events = events }
}

// WithMetrics attaches a metrics publisher.
func WithMetrics(metrics *observability.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = metrics }
}

// WithEnvironment tags published events with the environment name.
func WithEnvironment(environment string) RunnerOption {
	return func(r *Runner) { r.environment = environment }
}

// WithFailOnDrift makes validation fail when an already-applied version's
// source text changed after the fact.
func WithFailOnDrift(failOnDrift bool) RunnerOption {
	return func(r *Runner) { r.failOnDrift = failOnDrift }
}

// NewRunner creates a runner over a catalog, ledger and executor.
func NewRunner(
	catalog *migration.Catalog,
	ledger ports.Ledger,
	exec ports.QueryExecutor,
	validator *SchemaValidator,
	logger *zap.Logger,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		catalog:   catalog,
		ledger:    ledger,
		exec:      exec,
		validator: validator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Status reports pending and applied versions without executing anything.
type Status struct {
	PendingCount    int      `json:"pending_count"`
	AppliedCount    int      `json:"applied_count"`
	PendingVersions []string `json:"pending_versions"`
	AppliedVersions []string `json:"applied_versions"`
}

// Report describes one application attempt inside an apply run.
type Report struct {
	Version         string `json:"version"`
	Name            string `json:"name"`
	Success         bool   `json:"success"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Error           string `json:"error,omitempty"`
}

// ApplyResult summarizes an apply run. Skipped lists the versions left
// un-attempted after a failure; Validation is the post-apply checklist when
// the run succeeded.
type ApplyResult struct {
	Applied       []Report        `json:"migrations"`
	Skipped       []string        `json:"skipped,omitempty"`
	FailedVersion string          `json:"failed_version,omitempty"`
	Success       bool            `json:"success"`
	Validation    map[string]bool `json:"validation,omitempty"`
}

// Status computes the pending set without side effects on ledger content.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		AppliedCount:    len(applied),
		PendingVersions: []string{},
		AppliedVersions: []string{},
	}
	for _, u := range r.catalog.Units() {
		if _, ok := applied[u.Version]; ok {
			status.AppliedVersions = append(status.AppliedVersions, u.Version)
		} else {
			status.PendingVersions = append(status.PendingVersions, u.Version)
		}
	}
	status.PendingCount = len(status.PendingVersions)

	return status, nil
}

// Plan returns the pending units in application order without executing
// anything (dry run).
func (r *Runner) Plan(ctx context.Context) ([]migration.Unit, error) {
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	return r.catalog.Pending(applied), nil
}

// Apply executes every pending unit strictly in version order, recording each
// attempt in the ledger. The first failure halts the run; later units may
// depend on earlier ones, so the remaining pending versions are left
// untouched. After a fully successful run the schema validator confirms the
// intended end state.
func (r *Runner) Apply(ctx context.Context) (*ApplyResult, error) {
	pending, err := r.Plan(ctx)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{Applied: []Report{}, Success: true}

	for i, unit := range pending {
		report := r.applyUnit(ctx, unit)
		result.Applied = append(result.Applied, report)

		if !report.Success {
			result.Success = false
			result.FailedVersion = unit.Version
			for _, remaining := range pending[i+1:] {
				result.Skipped = append(result.Skipped, remaining.Version)
			}
			break
		}
	}

	if result.Success && r.validator != nil {
		checks, err := r.Validate(ctx)
		if err != nil {
			return nil, err
		}
		result.Validation = checks
		if !AllValid(checks) {
			result.Success = false
			r.logger.Error("post-apply schema validation failed")
		}
	}

	r.publishEvent(ctx, result)

	return result, nil
}

// applyUnit executes one unit, times it, and records the attempt. Ledger
// write failures are returned inside the report so the run halts: continuing
// without a record would break later pending-set computations.
func (r *Runner) applyUnit(ctx context.Context, unit migration.Unit) Report {
	r.logger.Info("applying migration",
		zap.String("version", unit.Version),
		zap.String("name", unit.Name),
	)

	start := time.Now()
	execErr := r.exec.ExecScript(ctx, unit.SQL)
	elapsed := time.Since(start)

	report := Report{
		Version:         unit.Version,
		Name:            unit.Name,
		Success:         execErr == nil,
		ExecutionTimeMs: elapsed.Milliseconds(),
	}
	if execErr != nil {
		report.Error = execErr.Error()
		r.logger.Error("migration failed",
			zap.String("version", unit.Version),
			zap.Error(execErr),
		)
	}

	entry := migration.LedgerEntry{
		Version:         unit.Version,
		Name:            unit.Name,
		Checksum:        unit.Checksum,
		ExecutionTimeMs: report.ExecutionTimeMs,
		Success:         execErr == nil,
		AppliedAt:       time.Now().UTC(),
	}
	if err := r.ledger.Record(ctx, entry); err != nil {
		report.Success = false
		if report.Error == "" {
			report.Error = err.Error()
		}
		r.logger.Error("failed to record ledger entry",
			zap.String("version", unit.Version),
			zap.Error(err),
		)
	}

	r.metrics.RecordDuration(ctx, "MigrationExecutionTime", elapsed, map[string]string{
		"Version": unit.Version,
	})

	return report
}

// Validate evaluates the schema checklist, extended with per-version drift
// checks when drift enforcement is configured.
func (r *Runner) Validate(ctx context.Context) (map[string]bool, error) {
	checks := map[string]bool{}
	if r.validator != nil {
		checks = r.validator.Validate(ctx)
	}

	if r.failOnDrift {
		applied, err := r.appliedVersions(ctx)
		if err != nil {
			return nil, err
		}
		drifted := map[string]struct{}{}
		for _, version := range r.catalog.Drifted(applied) {
			drifted[version] = struct{}{}
		}
		for version := range applied {
			_, bad := drifted[version]
			checks["checksum_drift:"+version] = !bad
		}
	}

	return checks, nil
}

// AllValid is the logical AND over a validation checklist.
func AllValid(checks map[string]bool) bool {
	for _, ok := range checks {
		if !ok {
			return false
		}
	}
	return true
}

func (r *Runner) appliedVersions(ctx context.Context) (map[string]string, error) {
	if err := r.ledger.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return r.ledger.AppliedVersions(ctx)
}

func (r *Runner) publishEvent(ctx context.Context, result *ApplyResult) {
	if r.events == nil {
		return
	}

	event := migration.Event{
		Type:          migration.EventMigrationsApplied,
		Environment:   r.environment,
		AppliedCount:  len(result.Applied),
		FailedVersion: result.FailedVersion,
		Timestamp:     time.Now().UTC(),
	}
	if !result.Success {
		event.Type = migration.EventMigrationsFailed
		for _, report := range result.Applied {
			if !report.Success {
				event.Error = report.Error
				break
			}
		}
		if event.Error == "" {
			event.Error = "post-apply schema validation failed"
		}
	}

	if err := r.events.PublishMigrationEvent(ctx, event); err != nil {
		// Event delivery never fails the migration run itself.
		r.logger.Warn("failed to publish migration event", zap.Error(err))
	}
}
