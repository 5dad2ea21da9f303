package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteTagRepo implements TagRepo using a SQLite database.
type SQLiteTagRepo struct {
	db db.DBTX
}

// NewSQLiteTagRepo creates a new SQLiteTagRepo.
func NewSQLiteTagRepo(conn db.DBTX) *SQLiteTagRepo {
	return &SQLiteTagRepo{db: conn}
}

const tagColumns = `id, user_id, name, color, created_at`

func (r *SQLiteTagRepo) Create(ctx context.Context, t *domain.Tag) error {
	query := `INSERT INTO tags (` + tagColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, t.Name, t.Color, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting tag: %w", translateConstraint(err, fmt.Sprintf("tag %q already exists", t.Name)))
	}
	return nil
}

func (r *SQLiteTagRepo) GetByID(ctx context.Context, userID, id string) (*domain.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (r *SQLiteTagRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (r *SQLiteTagRepo) InUse(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE tag_id = ?)`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking tag usage: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteTagRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting tag: %w", translateConstraint(err, "tag "+id+" is in use"))
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanTag returns sql.ErrNoRows unwrapped so callers can attach their own context.
func scanTag(row rowScanner) (*domain.Tag, error) {
	var t domain.Tag
	var createdAt string
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning tag: %w", err)
	}
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing tag created_at: %w", err)
	}
	return &t, nil
}
