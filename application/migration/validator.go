package migration

import (
	"context"

	"go.uber.org/zap"

	"quizcore-backend/application/ports"
)

// Check is a single named boolean schema assertion. The query must return one
// row with one boolean column. Checks are independent of each other; there is
// no ordering between them.
type Check struct {
	Name   string
	Query  string
	Params []any
}

// TableExists builds a check that the named table exists.
func TableExists(table string) Check {
	return Check{
		Name:   "table_exists:" + table,
		Query:  `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`,
		Params: []any{table},
	}
}

// ColumnShape builds a check that a column exists with the expected type.
func ColumnShape(table, column, dataType string) Check {
	return Check{
		Name:   "column_shape:" + table + "." + column,
		Query:  `SELECT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2 AND data_type = $3)`,
		Params: []any{table, column, dataType},
	}
}

// IndexExists builds a check that the named index exists.
func IndexExists(index string) Check {
	return Check{
		Name:   "index_exists:" + index,
		Query:  `SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = $1)`,
		Params: []any{index},
	}
}

// SchemaValidator evaluates a fixed checklist against the live schema.
// Validation failures are normal boolean-false results, never errors: a check
// whose query cannot be evaluated reads as false.
type SchemaValidator struct {
	exec   ports.QueryExecutor
	checks []Check
	logger *zap.Logger
}

// NewSchemaValidator creates a validator over the given checklist.
func NewSchemaValidator(exec ports.QueryExecutor, checks []Check, logger *zap.Logger) *SchemaValidator {
	return &SchemaValidator{
		exec:   exec,
		checks: checks,
		logger: logger,
	}
}

// Validate evaluates every check and returns the name -> bool checklist.
func (v *SchemaValidator) Validate(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(v.checks))
	for _, check := range v.checks {
		results[check.Name] = v.evaluate(ctx, check)
	}
	return results
}

func (v *SchemaValidator) evaluate(ctx context.Context, check Check) bool {
	result, err := v.exec.Query(ctx, check.Query, check.Params)
	if err != nil {
		v.logger.Warn("schema check could not be evaluated",
			zap.String("check", check.Name),
			zap.Error(err),
		)
		return false
	}
	if len(result.Rows) != 1 || len(result.Rows[0]) != 1 {
		return false
	}
	ok, isBool := result.Rows[0][0].(bool)
	return isBool && ok
}
