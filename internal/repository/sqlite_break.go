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

// SQLiteBreakRepo implements BreakRepo using a SQLite database.
type SQLiteBreakRepo struct {
	db db.DBTX
}

// NewSQLiteBreakRepo creates a new SQLiteBreakRepo.
func NewSQLiteBreakRepo(conn db.DBTX) *SQLiteBreakRepo {
	return &SQLiteBreakRepo{db: conn}
}

const breakColumns = `id, session_id, type, start_time, end_time`

// Create fails with domain.ErrConflict when the session already has an open break.
func (r *SQLiteBreakRepo) Create(ctx context.Context, b *domain.Break) error {
	query := `INSERT INTO breaks (` + breakColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.SessionID, string(b.Type), formatTime(b.StartTime), nullableTimeToString(b.EndTime))
	if err != nil {
		return fmt.Errorf("inserting break: %w", translateConstraint(err, "session already has an active break"))
	}
	return nil
}

func (r *SQLiteBreakRepo) GetActive(ctx context.Context, sessionID string) (*domain.Break, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+breakColumns+` FROM breaks WHERE session_id = ? AND end_time IS NULL`, sessionID)
	b, err := scanBreak(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active break for session %s: %w", sessionID, ErrNotFound)
	}
	return b, err
}

// Close sets end_time on an open break. It reports false if the break was
// already closed.
func (r *SQLiteBreakRepo) Close(ctx context.Context, id string, end time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE breaks SET end_time = ? WHERE id = ? AND end_time IS NULL`, formatTime(end), id)
	if err != nil {
		return false, fmt.Errorf("closing break: %w", err)
	}
	return affected(res)
}

func (r *SQLiteBreakRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Break, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+breakColumns+` FROM breaks WHERE session_id = ? ORDER BY start_time`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing breaks: %w", err)
	}
	defer rows.Close()

	breaks := []*domain.Break{}
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breaks: %w", err)
	}
	return breaks, nil
}

func scanBreak(row rowScanner) (*domain.Break, error) {
	var b domain.Break
	var typ, start string
	var end sql.NullString
	if err := row.Scan(&b.ID, &b.SessionID, &typ, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning break: %w", err)
	}
	b.Type = domain.BreakType(typ)
	var err error
	if b.StartTime, err = parseTime(start); err != nil {
		return nil, fmt.Errorf("parsing break start_time: %w", err)
	}
	if b.EndTime, err = parseNullableTime(end); err != nil {
		return nil, fmt.Errorf("parsing break end_time: %w", err)
	}
	return &b, nil
}
