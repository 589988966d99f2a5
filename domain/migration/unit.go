// Package migration defines the schema-migration catalog: an ordered set of
// named, versioned SQL units. Units are defined at deploy time and read-only
// at runtime; their identity is the version string.
package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Unit is a single versioned migration. Versions are monotonically sortable
// strings (zero-padded integers), so lexical order is application order.
type Unit struct {
	Version  string
	Name     string
	SQL      string
	Checksum string
}

// NewUnit builds a unit and computes its content checksum.
func NewUnit(version, name, sql string) Unit {
	return Unit{
		Version:  version,
		Name:     name,
		SQL:      sql,
		Checksum: Checksum(sql),
	}
}

// Checksum returns the hex-encoded SHA-256 of the SQL text. It is stored in
// the ledger on every application attempt so that drift of an already-applied
// unit's source can be detected later.
func Checksum(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return hex.EncodeToString(sum[:])
}

// LedgerEntry is one row of the append-only application ledger. Entries are
// created once per attempt and never mutated; a version counts as applied only
// if some entry for it has Success=true.
type LedgerEntry struct {
	Version         string
	Name            string
	Checksum        string
	ExecutionTimeMs int64
	Success         bool
	AppliedAt       time.Time
}

// Event summarizes one apply run for the deployment pipeline.
type Event struct {
	Type          string    `json:"type"`
	Environment   string    `json:"environment"`
	AppliedCount  int       `json:"applied_count"`
	FailedVersion string    `json:"failed_version,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Event types published after an apply run.
const (
	EventMigrationsApplied = "MigrationsApplied"
	EventMigrationsFailed  = "MigrationsFailed"
)
