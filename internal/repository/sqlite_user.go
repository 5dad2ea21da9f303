package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	db db.DBTX
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo.
func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

const userColumns = `id, auth_user_id, name, avatar, timezone, settings, created_at`

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	settings := u.Settings
	if len(settings) == 0 {
		settings = json.RawMessage(`{}`)
	}
	tz := u.Timezone
	if tz == "" {
		tz = "UTC"
	}
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.AuthUserID,
		u.Name,
		nullableString(u.Avatar),
		tz,
		string(settings),
		formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", translateConstraint(err, "user "+u.AuthUserID))
	}
	u.Settings = settings
	u.Timezone = tz
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteUserRepo) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE auth_user_id = ?`, authUserID)
	return scanUser(row)
}

func (r *SQLiteUserRepo) UpdateSettings(ctx context.Context, id string, settings json.RawMessage) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET settings = ? WHERE id = ?`, string(settings), id)
	if err != nil {
		return fmt.Errorf("updating user settings: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var avatar sql.NullString
	var settings, createdAt string

	err := row.Scan(&u.ID, &u.AuthUserID, &u.Name, &avatar, &u.Timezone, &settings, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	u.Settings = json.RawMessage(settings)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing user created_at: %w", err)
	}
	return &u, nil
}
