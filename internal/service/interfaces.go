package service

import (
	"context"
	"encoding/json"

	"github.com/alexanderramin/tempo/internal/domain"
)

// CreateSessionInput carries raw request values. Timestamps are RFC3339
// strings and are parsed by the service so that every caller gets the same
// validation.
type CreateSessionInput struct {
	Name        string
	StartAt     string
	EndAt       *string
	TagID       *string
	NewTagName  *string
	NewTagColor *string
	BreakTime   *int
	Status      string
}

// RescheduleInput updates a scheduled session. Nil fields are left unchanged.
type RescheduleInput struct {
	Name    *string
	StartAt *string
	EndAt   *string
	TagID   *string
}

// StopBreakResult is the closed break and the session's new accumulated break time.
type StopBreakResult struct {
	Break     *domain.Break
	BreakTime int
}

// SessionService owns the session lifecycle: SCHEDULED -> IN_PROGRESS -> COMPLETED
// with nested breaks. Every method is scoped to userID.
type SessionService interface {
	Create(ctx context.Context, userID string, in CreateSessionInput) (*domain.Session, error)
	Get(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	Start(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	Stop(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	StartBreak(ctx context.Context, userID, sessionID, breakType string) (*domain.Break, error)
	StopBreak(ctx context.Context, userID, sessionID string) (*StopBreakResult, error)
	List(ctx context.Context, userID string) ([]*domain.Session, error)
	Scheduled(ctx context.Context, userID string) ([]*domain.Session, error)
	Reschedule(ctx context.Context, userID, sessionID string, in RescheduleInput) (*domain.Session, error)
	Delete(ctx context.Context, userID, sessionID string) error
}

type QueryService interface {
	History(ctx context.Context, userID string, days int, tagID *string) (*HistoryResult, error)
	Upcoming(ctx context.Context, userID string) ([]*domain.Session, error)
	Analytics(ctx context.Context, userID string, days int, tagID *string) (*AnalyticsResult, error)
}

type TagService interface {
	List(ctx context.Context, userID string) ([]*domain.Tag, error)
	Create(ctx context.Context, userID, name, color string) (*domain.Tag, error)
	Delete(ctx context.Context, userID, tagID string) error
}

type UserService interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateSettings(ctx context.Context, userID string, settings json.RawMessage) (*domain.User, error)
	// Provision finds the user for an identity-provider subject, creating it on first sight.
	Provision(ctx context.Context, authUserID, name string) (*domain.User, error)
}
