package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

const sessionSelect = `SELECT s.id, s.user_id, s.tag_id, s.name, s.start_at, s.end_at, s.planned_end_at,
		s.break_time, s.status, s.created_at,
		t.id, t.user_id, t.name, t.color, t.created_at
	FROM sessions s
	JOIN tags t ON t.id = s.tag_id`

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO sessions (id, user_id, tag_id, name, start_at, end_at, planned_end_at, break_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.TagID,
		s.Name,
		formatTime(s.StartAt),
		nullableTimeToString(s.EndAt),
		nullableTimeToString(s.PlannedEndAt),
		s.BreakTime,
		string(s.Status),
		formatTime(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, userID, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, sessionSelect+` WHERE s.id = ? AND s.user_id = ?`, id, userID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s, err
}

func (r *SQLiteSessionRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	return r.list(ctx, "listing sessions",
		sessionSelect+` WHERE s.user_id = ? ORDER BY s.created_at DESC`, userID)
}

func (r *SQLiteSessionRepo) ListScheduledFrom(ctx context.Context, userID string, from time.Time) ([]*domain.Session, error) {
	return r.list(ctx, "listing scheduled sessions",
		sessionSelect+` WHERE s.user_id = ? AND s.status = 'SCHEDULED' AND s.start_at >= ?
		ORDER BY s.start_at ASC`, userID, formatTime(from))
}

func (r *SQLiteSessionRepo) ListCompletedInRange(ctx context.Context, userID string, from, to time.Time, tagID *string) ([]*domain.Session, error) {
	query := sessionSelect + ` WHERE s.user_id = ? AND s.status = 'COMPLETED'
		AND s.start_at >= ? AND s.start_at < ?`
	args := []any{userID, formatTime(from), formatTime(to)}
	if tagID != nil {
		query += ` AND s.tag_id = ?`
		args = append(args, *tagID)
	}
	query += ` ORDER BY s.start_at ASC`
	return r.list(ctx, "listing completed sessions", query, args...)
}

func (r *SQLiteSessionRepo) MarkStarted(ctx context.Context, userID, id string, now time.Time) (bool, error) {
	query := `UPDATE sessions
		SET status = 'IN_PROGRESS', start_at = ?, end_at = NULL, planned_end_at = NULL, break_time = 0
		WHERE id = ? AND user_id = ? AND status = 'SCHEDULED'`
	res, err := r.db.ExecContext(ctx, query, formatTime(now), id, userID)
	if err != nil {
		return false, fmt.Errorf("starting session: %w", err)
	}
	return affected(res)
}

func (r *SQLiteSessionRepo) MarkCompleted(ctx context.Context, userID, id string, now time.Time) (bool, error) {
	ts := formatTime(now)
	query := `UPDATE sessions
		SET status = 'COMPLETED', end_at = CASE WHEN start_at > ? THEN start_at ELSE ? END
		WHERE id = ? AND user_id = ? AND status = 'IN_PROGRESS'`
	res, err := r.db.ExecContext(ctx, query, ts, ts, id, userID)
	if err != nil {
		return false, fmt.Errorf("completing session: %w", err)
	}
	return affected(res)
}

func (r *SQLiteSessionRepo) AddBreakTime(ctx context.Context, id string, minutes int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET break_time = break_time + ? WHERE id = ?`, minutes, id)
	if err != nil {
		return fmt.Errorf("adding break time: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) UpdateScheduled(ctx context.Context, s *domain.Session) (bool, error) {
	query := `UPDATE sessions SET name = ?, tag_id = ?, start_at = ?, planned_end_at = ?
		WHERE id = ? AND user_id = ? AND status = 'SCHEDULED'`
	res, err := r.db.ExecContext(ctx, query,
		s.Name,
		s.TagID,
		formatTime(s.StartAt),
		nullableTimeToString(s.PlannedEndAt),
		s.ID,
		s.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("updating scheduled session: %w", err)
	}
	return affected(res)
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteSessionRepo) list(ctx context.Context, what, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	sessions := []*domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// scanSession reads a session joined with its tag. sql.ErrNoRows is returned
// unwrapped.
func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var t domain.Tag
	var startAt, createdAt, status, tagCreatedAt string
	var endAt, plannedEndAt sql.NullString

	err := row.Scan(
		&s.ID, &s.UserID, &s.TagID, &s.Name, &startAt, &endAt, &plannedEndAt,
		&s.BreakTime, &status, &createdAt,
		&t.ID, &t.UserID, &t.Name, &t.Color, &tagCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	s.Status = domain.SessionStatus(status)
	if s.StartAt, err = parseTime(startAt); err != nil {
		return nil, fmt.Errorf("parsing start_at: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.EndAt, err = parseNullableTime(endAt); err != nil {
		return nil, fmt.Errorf("parsing end_at: %w", err)
	}
	if s.PlannedEndAt, err = parseNullableTime(plannedEndAt); err != nil {
		return nil, fmt.Errorf("parsing planned_end_at: %w", err)
	}
	if t.CreatedAt, err = parseTime(tagCreatedAt); err != nil {
		return nil, fmt.Errorf("parsing tag created_at: %w", err)
	}
	s.Tag = &t
	return &s, nil
}
