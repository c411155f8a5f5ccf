// Package listmode persists flat categorized list sessions. Each session owns
// a dedicated PostgreSQL schema holding a diagram_data table plus one view per
// category, so sessions can be inspected, exported, and dropped independently.
package listmode

import (
	"context"
	"database/sql"
	"log/slog"

	"causemap/pkg/database"
	"causemap/pkg/pagination"
)

// System manages session schemas and their records.
type System interface {
	// Provision creates the session schema and its diagram_data table.
	// Both operations are idempotent.
	Provision(ctx context.Context, sessionID string) error
	// Insert stores the records transactionally and returns the number inserted.
	// Every record is validated before any row is written.
	Insert(ctx context.Context, sessionID string, records []Record) (int, error)
	// DistinctCategories returns the distinct non-empty categories present in
	// the session. Empty slice, not an error, when there are none.
	DistinctCategories(ctx context.Context, sessionID string) ([]string, error)
	// MaterializeViews creates or replaces one view per distinct category in
	// the session and returns the created view names. Categories whose
	// sanitized identifier is empty are skipped.
	MaterializeViews(ctx context.Context, sessionID string) ([]string, error)
	// Views lists the category view names present in the session schema.
	Views(ctx context.Context, sessionID string) ([]string, error)
	// Sessions lists the provisioned session identifiers.
	Sessions(ctx context.Context) ([]string, error)
	// Exists reports whether the session schema has been provisioned.
	Exists(ctx context.Context, sessionID string) (bool, error)
	// FetchAll returns every record in the session in insertion order.
	FetchAll(ctx context.Context, sessionID string) ([]Record, error)
	// FetchAllSessions returns the records of every session, fetched concurrently.
	FetchAllSessions(ctx context.Context) ([]SessionRecords, error)
	// List returns a page of session records with optional search and sorting.
	List(ctx context.Context, sessionID string, req pagination.PageRequest) (*pagination.PageResult[Record], error)
	// Delete drops the session schema and everything in it.
	// Returns ErrNotFound if the schema does not exist.
	Delete(ctx context.Context, sessionID string) error
}

type system struct {
	db     *sql.DB
	pager  pagination.Config
	logger *slog.Logger
}

// New creates a list-mode system backed by the given database.
func New(db database.System, pager pagination.Config, logger *slog.Logger) System {
	return &system{
		db:     db.Connection(),
		pager:  pager,
		logger: logger.With("system", "listmode"),
	}
}
