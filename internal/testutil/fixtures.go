package testutil

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/google/uuid"
)

var testAuthIDCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithTimezone(tz string) UserOption {
	return func(u *domain.User) {
		u.Timezone = tz
	}
}

func WithSettings(raw string) UserOption {
	return func(u *domain.User) {
		u.Settings = json.RawMessage(raw)
	}
}

func NewTestUser(name string, opts ...UserOption) *domain.User {
	u := &domain.User{
		ID:         uuid.New().String(),
		AuthUserID: fmt.Sprintf("test|%s-%d", name, testAuthIDCounter.Add(1)),
		Name:       name,
		Timezone:   "UTC",
		Settings:   json.RawMessage(`{}`),
		CreatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Tag options
type TagOption func(*domain.Tag)

func WithColor(c string) TagOption {
	return func(t *domain.Tag) {
		t.Color = c
	}
}

func NewTestTag(userID, name string, opts ...TagOption) *domain.Tag {
	t := &domain.Tag{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Color:     "#1e90ff",
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Session options
type SessionOption func(*domain.Session)

func WithStartAt(t time.Time) SessionOption {
	return func(s *domain.Session) {
		s.StartAt = t
	}
}

func WithPlannedEnd(t time.Time) SessionOption {
	return func(s *domain.Session) {
		s.PlannedEndAt = &t
	}
}

func WithBreakTime(m int) SessionOption {
	return func(s *domain.Session) {
		s.BreakTime = m
	}
}

func WithCreatedAt(t time.Time) SessionOption {
	return func(s *domain.Session) {
		s.CreatedAt = t
	}
}

// InProgress marks the session as started at start.
func InProgress(start time.Time) SessionOption {
	return func(s *domain.Session) {
		s.Status = domain.SessionInProgress
		s.StartAt = start
		s.EndAt = nil
		s.PlannedEndAt = nil
	}
}

// Completed marks the session as finished over [start, end].
func Completed(start, end time.Time) SessionOption {
	return func(s *domain.Session) {
		s.Status = domain.SessionCompleted
		s.StartAt = start
		s.EndAt = &end
		s.PlannedEndAt = nil
	}
}

// NewTestSession returns a SCHEDULED session starting an hour from now.
func NewTestSession(userID, tagID, name string, opts ...SessionOption) *domain.Session {
	now := time.Now().UTC()
	s := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		TagID:     tagID,
		Name:      name,
		StartAt:   now.Add(time.Hour),
		Status:    domain.SessionScheduled,
		CreatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Break options
type BreakOption func(*domain.Break)

func WithBreakType(t domain.BreakType) BreakOption {
	return func(b *domain.Break) {
		b.Type = t
	}
}

func WithBreakEnd(t time.Time) BreakOption {
	return func(b *domain.Break) {
		b.EndTime = &t
	}
}

// NewTestBreak returns an open CUSTOM break starting at start.
func NewTestBreak(sessionID string, start time.Time, opts ...BreakOption) *domain.Break {
	b := &domain.Break{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      domain.BreakCustom,
		StartTime: start,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
