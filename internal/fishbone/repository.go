package fishbone

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"causemap/pkg/repository"
)

const insertQuery = `
	INSERT INTO fishbone_data (
		session_name, problem_statement, main_cause,
		sub_cause, detail, group_name, row_comment
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const fetchSessionQuery = `
	SELECT
		id, session_name, problem_statement, main_cause,
		sub_cause, detail, group_name, row_comment, created
	FROM fishbone_data
	WHERE session_name = $1
	ORDER BY id`

const sessionsQuery = `
	SELECT DISTINCT session_name
	FROM fishbone_data
	ORDER BY session_name`

const upsertCommentQuery = `
	INSERT INTO session_comments (session_name, comment, updated)
	VALUES ($1, $2, now())
	ON CONFLICT (session_name)
	DO UPDATE SET comment = EXCLUDED.comment, updated = now()`

const commentQuery = `
	SELECT comment
	FROM session_comments
	WHERE session_name = $1`

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.SessionName,
		&r.ProblemStatement,
		&r.MainCause,
		&r.SubCause,
		&r.Detail,
		&r.GroupName,
		&r.RowComment,
		&r.Created,
	)
	return r, err
}

func (s *system) Insert(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, ErrNoRows
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	count, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int, error) {
		for _, r := range records {
			_, err := tx.ExecContext(ctx, insertQuery,
				r.SessionName,
				r.ProblemStatement,
				r.MainCause,
				r.SubCause,
				r.Detail,
				r.GroupName,
				r.RowComment,
			)
			if err != nil {
				return 0, err
			}
		}
		return len(records), nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert fishbone records: %w", err)
	}

	s.logger.Info("fishbone records inserted",
		"session", records[0].SessionName,
		"count", count)

	return count, nil
}

func (s *system) Sessions(ctx context.Context) ([]string, error) {
	names, err := repository.QueryStrings(ctx, s.db, sessionsQuery)
	if err != nil {
		return nil, fmt.Errorf("list fishbone sessions: %w", err)
	}
	return names, nil
}

func (s *system) FetchSession(ctx context.Context, sessionName string) ([]Record, error) {
	records, err := repository.QueryMany(ctx, s.db, fetchSessionQuery,
		[]any{sessionName}, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("fetch fishbone session %s: %w", sessionName, err)
	}

	if len(records) == 0 {
		return nil, ErrNotFound
	}

	return records, nil
}

func (s *system) UpsertComment(ctx context.Context, sessionName, comment string) error {
	if sessionName == "" {
		return ErrEmptySession
	}

	if err := repository.ExecExpectOne(ctx, s.db, upsertCommentQuery, sessionName, comment); err != nil {
		return fmt.Errorf("upsert session comment %s: %w", sessionName, err)
	}

	return nil
}

func (s *system) Comment(ctx context.Context, sessionName string) (string, error) {
	comment, err := repository.QueryOne(ctx, s.db, commentQuery, []any{sessionName},
		func(sc repository.Scanner) (string, error) {
			var v string
			err := sc.Scan(&v)
			return v, err
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("fetch session comment %s: %w", sessionName, err)
	}

	return comment, nil
}

func (s *system) DeleteSession(ctx context.Context, sessionName string) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM fishbone_data WHERE session_name = $1`, sessionName)
		if err != nil {
			return struct{}{}, err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return struct{}{}, err
		}
		if rows == 0 {
			return struct{}{}, ErrNotFound
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM session_comments WHERE session_name = $1`, sessionName)
		return struct{}{}, err
	})
	if err != nil {
		if err == ErrNotFound {
			return err
		}
		return fmt.Errorf("delete fishbone session %s: %w", sessionName, err)
	}

	s.logger.Info("fishbone session deleted", "session", sessionName)
	return nil
}
