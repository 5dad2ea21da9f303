package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByAuthUserID(ctx context.Context, authUserID string) (*domain.User, error)
	UpdateSettings(ctx context.Context, id string, settings json.RawMessage) error
}

type TagRepo interface {
	Create(ctx context.Context, t *domain.Tag) error
	GetByID(ctx context.Context, userID, id string) (*domain.Tag, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Tag, error)
	InUse(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

// SessionRepo scopes every lookup by owner. A session owned by another user
// is indistinguishable from a missing one.
type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, userID, id string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	ListScheduledFrom(ctx context.Context, userID string, from time.Time) ([]*domain.Session, error)
	ListCompletedInRange(ctx context.Context, userID string, from, to time.Time, tagID *string) ([]*domain.Session, error)
	// MarkStarted and MarkCompleted are conditional on the prior status and
	// report false when no row matched.
	MarkStarted(ctx context.Context, userID, id string, now time.Time) (bool, error)
	MarkCompleted(ctx context.Context, userID, id string, now time.Time) (bool, error)
	AddBreakTime(ctx context.Context, id string, minutes int) error
	UpdateScheduled(ctx context.Context, s *domain.Session) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

type BreakRepo interface {
	Create(ctx context.Context, b *domain.Break) error
	GetActive(ctx context.Context, sessionID string) (*domain.Break, error)
	Close(ctx context.Context, id string, end time.Time) (bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Break, error)
}

type AuthSessionRepo interface {
	Create(ctx context.Context, a *domain.AuthSession) error
	GetValid(ctx context.Context, tokenHash string, now time.Time) (*domain.AuthSession, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
