// Package fishbone persists flattened cause-and-effect hierarchies. Unlike
// list-mode sessions, fishbone rows from all sessions share global tables and
// are scoped by session name.
package fishbone

import (
	"context"
	"database/sql"
	"log/slog"

	"causemap/pkg/database"
)

// System manages fishbone session persistence.
type System interface {
	// Insert stores the records transactionally and returns the number inserted.
	// Every record is validated before any row is written.
	Insert(ctx context.Context, records []Record) (int, error)
	// Sessions lists the distinct session names with fishbone data.
	Sessions(ctx context.Context) ([]string, error)
	// FetchSession returns all rows for a session in insertion order.
	// Returns ErrNotFound if the session has no rows.
	FetchSession(ctx context.Context, sessionName string) ([]Record, error)
	// UpsertComment stores or replaces the session-level comment.
	UpsertComment(ctx context.Context, sessionName, comment string) error
	// Comment returns the session-level comment, or "" if none is set.
	Comment(ctx context.Context, sessionName string) (string, error)
	// DeleteSession removes a session's rows and comment.
	// Returns ErrNotFound if the session has no rows.
	DeleteSession(ctx context.Context, sessionName string) error
}

type system struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a fishbone system backed by the given database.
func New(db database.System, logger *slog.Logger) System {
	return &system{
		db:     db.Connection(),
		logger: logger.With("system", "fishbone"),
	}
}
