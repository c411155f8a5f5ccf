package listmode

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"causemap/pkg/formatting"
	"causemap/pkg/pagination"
	"causemap/pkg/query"
	"causemap/pkg/repository"
)

// maxIdentifierBytes is the PostgreSQL identifier length limit.
const maxIdentifierBytes = 63

// viewPrefix marks category views within a session schema.
const viewPrefix = "view_cat_"

// fetchSessionConcurrency bounds parallel per-session fetches in FetchAllSessions.
const fetchSessionConcurrency = 4

// ident validates that id is a safe schema identifier: non-empty, within the
// PostgreSQL length limit, and already in sanitized form. Identifiers pass
// through fmt.Sprintf into DDL, so nothing unsanitized may get this far.
func ident(id string) (string, error) {
	if id == "" || len(id) > maxIdentifierBytes {
		return "", ErrInvalidIdentifier
	}
	if formatting.Sanitize(id) != id {
		return "", ErrInvalidIdentifier
	}
	return id, nil
}

// escapeLiteral escapes a string for embedding in DDL, where parameter
// placeholders are not available.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func projection(schema string) *query.ProjectionMap {
	return query.NewProjectionMap(schema, "diagram_data", "d").
		Project("id", "id").
		Project("group_no", "groupNo").
		Project("description", "description").
		Project("category_name", "categoryName").
		Project("activity_name", "activityName").
		Project("created", "created")
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.GroupNo,
		&r.Description,
		&r.CategoryName,
		&r.ActivityName,
		&r.Created,
	)
	return r, err
}

func (s *system) Provision(ctx context.Context, sessionID string) error {
	schema, err := ident(sessionID)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
			return struct{}{}, err
		}

		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.diagram_data (
				id BIGSERIAL PRIMARY KEY,
				group_no INTEGER NOT NULL DEFAULT 0,
				description TEXT NOT NULL,
				category_name TEXT NOT NULL DEFAULT '',
				activity_name TEXT NOT NULL DEFAULT '',
				created TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, schema))
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("provision session %s: %w", schema, err)
	}

	s.logger.Info("session provisioned", "session", schema)
	return nil
}

func (s *system) Insert(ctx context.Context, sessionID string, records []Record) (int, error) {
	schema, err := ident(sessionID)
	if err != nil {
		return 0, err
	}

	if len(records) == 0 {
		return 0, ErrNoRecords
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s.diagram_data (group_no, description, category_name, activity_name)
		VALUES ($1, $2, $3, $4)`, schema)

	count, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int, error) {
		for _, r := range records {
			_, err := tx.ExecContext(ctx, insert,
				r.GroupNo, r.Description, r.CategoryName, r.ActivityName)
			if err != nil {
				return 0, err
			}
		}
		return len(records), nil
	})
	if err != nil {
		return 0, repository.MapError(
			fmt.Errorf("insert into session %s: %w", schema, err),
			ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("records inserted", "session", schema, "count", count)
	return count, nil
}

func (s *system) DistinctCategories(ctx context.Context, sessionID string) ([]string, error) {
	schema, err := ident(sessionID)
	if err != nil {
		return nil, err
	}

	categories, err := repository.QueryStrings(ctx, s.db, fmt.Sprintf(`
		SELECT DISTINCT category_name
		FROM %s.diagram_data
		WHERE category_name <> ''
		ORDER BY category_name`, schema))
	if err != nil {
		return nil, repository.MapError(
			fmt.Errorf("distinct categories for session %s: %w", schema, err),
			ErrNotFound, ErrDuplicate)
	}

	return categories, nil
}

func (s *system) MaterializeViews(ctx context.Context, sessionID string) ([]string, error) {
	schema, err := ident(sessionID)
	if err != nil {
		return nil, err
	}

	categories, err := s.DistinctCategories(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	views := make([]string, 0, len(categories))
	seen := make(map[string]bool)

	for _, category := range categories {
		sanitized := formatting.Sanitize(category)
		if sanitized == "" {
			s.logger.Warn("skipping unindexable category",
				"session", schema, "category", category)
			continue
		}

		view := viewPrefix + sanitized
		if len(view) > maxIdentifierBytes {
			view = view[:maxIdentifierBytes]
		}
		if seen[view] {
			continue
		}
		seen[view] = true

		stmt := fmt.Sprintf(`
			CREATE OR REPLACE VIEW %s.%s AS
			SELECT id, group_no, description, category_name, activity_name, created
			FROM %s.diagram_data
			WHERE category_name = '%s'`,
			schema, view, schema, escapeLiteral(category))

		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("materialize view %s.%s: %w", schema, view, err)
		}

		views = append(views, view)
	}

	s.logger.Info("category views materialized", "session", schema, "views", len(views))
	return views, nil
}

func (s *system) Views(ctx context.Context, sessionID string) ([]string, error) {
	schema, err := ident(sessionID)
	if err != nil {
		return nil, err
	}

	views, err := repository.QueryStrings(ctx, s.db, `
		SELECT table_name
		FROM information_schema.views
		WHERE table_schema = $1 AND table_name LIKE $2
		ORDER BY table_name`, schema, viewPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list views for session %s: %w", schema, err)
	}

	return views, nil
}

func (s *system) Sessions(ctx context.Context) ([]string, error) {
	// A session is any schema carrying a diagram_data table. This keeps
	// discovery honest even if unrelated schemas exist in the database.
	sessions, err := repository.QueryStrings(ctx, s.db, `
		SELECT table_schema
		FROM information_schema.tables
		WHERE table_name = 'diagram_data'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}

func (s *system) Exists(ctx context.Context, sessionID string) (bool, error) {
	schema, err := ident(sessionID)
	if err != nil {
		return false, err
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = 'diagram_data'
		)`, schema).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check session %s: %w", schema, err)
	}

	return exists, nil
}

func (s *system) FetchAll(ctx context.Context, sessionID string) ([]Record, error) {
	schema, err := ident(sessionID)
	if err != nil {
		return nil, err
	}

	records, err := repository.QueryMany(ctx, s.db, fmt.Sprintf(`
		SELECT id, group_no, description, category_name, activity_name, created
		FROM %s.diagram_data
		ORDER BY id`, schema), nil, scanRecord)
	if err != nil {
		return nil, repository.MapError(
			fmt.Errorf("fetch session %s: %w", schema, err),
			ErrNotFound, ErrDuplicate)
	}

	return records, nil
}

func (s *system) FetchAllSessions(ctx context.Context) ([]SessionRecords, error) {
	sessions, err := s.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SessionRecords, 0, len(sessions))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchSessionConcurrency)

	for _, session := range sessions {
		g.Go(func() error {
			records, err := s.FetchAll(gctx, session)
			if err != nil {
				return err
			}

			mu.Lock()
			results = append(results, SessionRecords{
				SessionID: session,
				Records:   records,
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].SessionID < results[j].SessionID
	})

	return results, nil
}

func (s *system) List(ctx context.Context, sessionID string, req pagination.PageRequest) (*pagination.PageResult[Record], error) {
	schema, err := ident(sessionID)
	if err != nil {
		return nil, err
	}

	req.Normalize(s.pager)

	builder := query.NewBuilder(projection(schema), query.SortField{Field: "id"}).
		WhereSearch(req.Search, "description", "categoryName", "activityName").
		OrderByFields(req.Sort)

	countSQL, countArgs := builder.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, repository.MapError(
			fmt.Errorf("count session %s: %w", schema, err),
			ErrNotFound, ErrDuplicate)
	}

	pageSQL, pageArgs := builder.BuildPage(req.Page, req.PageSize)
	records, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, repository.MapError(
			fmt.Errorf("list session %s: %w", schema, err),
			ErrNotFound, ErrDuplicate)
	}

	result := pagination.NewPageResult(records, total, req.Page, req.PageSize)
	return &result, nil
}

func (s *system) Delete(ctx context.Context, sessionID string) error {
	schema, err := ident(sessionID)
	if err != nil {
		return err
	}

	exists, err := s.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DROP SCHEMA %s CASCADE`, schema)); err != nil {
		return repository.MapError(
			fmt.Errorf("delete session %s: %w", schema, err),
			ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("session deleted", "session", schema)
	return nil
}
