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

// SQLiteAuthSessionRepo implements AuthSessionRepo using a SQLite database.
type SQLiteAuthSessionRepo struct {
	db db.DBTX
}

func NewSQLiteAuthSessionRepo(conn db.DBTX) *SQLiteAuthSessionRepo {
	return &SQLiteAuthSessionRepo{db: conn}
}

func (r *SQLiteAuthSessionRepo) Create(ctx context.Context, a *domain.AuthSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (token_hash, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		a.TokenHash, a.UserID, formatTime(a.ExpiresAt), formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting auth session: %w", err)
	}
	return nil
}

// GetValid returns ErrNotFound for unknown and expired tokens alike.
func (r *SQLiteAuthSessionRepo) GetValid(ctx context.Context, tokenHash string, now time.Time) (*domain.AuthSession, error) {
	var a domain.AuthSession
	var expires, created string
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, expires_at, created_at FROM auth_sessions
		WHERE token_hash = ? AND expires_at > ?`, tokenHash, formatTime(now),
	).Scan(&a.TokenHash, &a.UserID, &expires, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auth session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning auth session: %w", err)
	}
	if a.ExpiresAt, err = parseTime(expires); err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &a, nil
}

func (r *SQLiteAuthSessionRepo) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("deleting auth session: %w", err)
	}
	return nil
}

func (r *SQLiteAuthSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("pruning auth sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}
