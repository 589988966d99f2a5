// Package migrations embeds the quiz schema's migration catalog and the
// checklist the schema validator runs against it.
package migrations

import (
	"embed"

	appmigration "quizcore-backend/application/migration"
	"quizcore-backend/domain/migration"
)

//go:embed *.sql
var files embed.FS

// Catalog loads the embedded migration units in version order.
func Catalog() (*migration.Catalog, error) {
	return migration.LoadCatalog(files, ".")
}

// Checks is the schema checklist for the quiz database: every table the
// catalog creates, the columns other components depend on, and the indexes
// the hot query paths need.
func Checks() []appmigration.Check {
	return []appmigration.Check{
		appmigration.TableExists("users"),
		appmigration.TableExists("quizzes"),
		appmigration.TableExists("questions"),
		appmigration.TableExists("quiz_attempts"),
		appmigration.TableExists("attempt_answers"),

		appmigration.ColumnShape("users", "cognito_sub", "text"),
		appmigration.ColumnShape("quizzes", "owner_id", "uuid"),
		appmigration.ColumnShape("questions", "expected_answer", "text"),
		appmigration.ColumnShape("quiz_attempts", "score", "numeric"),
		appmigration.ColumnShape("attempt_answers", "similarity_score", "numeric"),

		appmigration.IndexExists("idx_quizzes_owner_id"),
		appmigration.IndexExists("idx_questions_quiz_id"),
		appmigration.IndexExists("idx_quiz_attempts_quiz_id"),
		appmigration.IndexExists("idx_quiz_attempts_user_id"),
		appmigration.IndexExists("idx_attempt_answers_attempt_id"),
	}
}
