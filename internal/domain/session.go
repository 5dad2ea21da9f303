package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Session is a tracked work interval owned by a user and tagged by category.
type Session struct {
	ID           string
	UserID       string
	TagID        string
	Name         string
	StartAt      time.Time
	EndAt        *time.Time
	PlannedEndAt *time.Time
	BreakTime    int // accumulated break minutes
	Status       SessionStatus
	CreatedAt    time.Time

	// Joined data; nil/empty unless the query loaded it.
	Tag    *Tag
	Breaks []*Break
}

// Validate checks the field invariants that hold in every status.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if s.StartAt.IsZero() {
		return fmt.Errorf("%w: start_at is required", ErrValidation)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: unknown session status %q", ErrValidation, s.Status)
	}
	if s.BreakTime < 0 {
		return fmt.Errorf("%w: break_time must be >= 0", ErrValidation)
	}
	switch s.Status {
	case SessionCompleted:
		if s.EndAt == nil {
			return fmt.Errorf("%w: end_at is required for a completed session", ErrValidation)
		}
		if s.EndAt.Before(s.StartAt) {
			return fmt.Errorf("%w: end_at must not be before start_at", ErrValidation)
		}
	default:
		if s.EndAt != nil {
			return fmt.Errorf("%w: end_at must be empty until the session is completed", ErrValidation)
		}
	}
	if s.PlannedEndAt != nil && s.PlannedEndAt.Before(s.StartAt) {
		return fmt.Errorf("%w: end_at must not be before start_at", ErrValidation)
	}
	return nil
}

func (s *Session) transition(to SessionStatus) error {
	next, ok := s.Status.next()
	if !ok || next != to {
		return fmt.Errorf("%w: cannot move session from %s to %s", ErrInvalidTransition, s.Status, to)
	}
	return nil
}

// Start moves a scheduled session into progress. The scheduled start time is
// discarded in favour of now.
func (s *Session) Start(now time.Time) error {
	if err := s.transition(SessionInProgress); err != nil {
		return err
	}
	s.Status = SessionInProgress
	s.StartAt = now
	s.EndAt = nil
	s.PlannedEndAt = nil
	s.BreakTime = 0
	return nil
}

// Stop completes an in-progress session. end_at never precedes start_at,
// even if the clock moved backwards.
func (s *Session) Stop(now time.Time) error {
	if err := s.transition(SessionCompleted); err != nil {
		return err
	}
	end := now
	if end.Before(s.StartAt) {
		end = s.StartAt
	}
	s.Status = SessionCompleted
	s.EndAt = &end
	return nil
}

// CanBreak reports whether a break may be opened on the session.
func (s *Session) CanBreak() error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("%w: breaks require an in-progress session (status %s)", ErrInvalidState, s.Status)
	}
	return nil
}

// AddBreakMinutes accumulates a closed break into BreakTime.
func (s *Session) AddBreakMinutes(minutes int) {
	if minutes > 0 {
		s.BreakTime += minutes
	}
}

// ActiveBreak returns the open break among the loaded breaks, or nil.
func (s *Session) ActiveBreak() *Break {
	for _, b := range s.Breaks {
		if b.Active() {
			return b
		}
	}
	return nil
}

// TotalMinutes is the wall-clock length of a completed session, rounded to
// the nearest minute. Zero until the session has an end.
func (s *Session) TotalMinutes() int {
	if s.EndAt == nil {
		return 0
	}
	return int(math.Round(s.EndAt.Sub(s.StartAt).Minutes()))
}

// FocusMinutes is TotalMinutes minus accumulated breaks, floored at zero.
func (s *Session) FocusMinutes() int {
	return max(s.TotalMinutes()-s.BreakTime, 0)
}

// Break is a pause nested within an in-progress session.
type Break struct {
	ID        string
	SessionID string
	Type      BreakType
	StartTime time.Time
	EndTime   *time.Time
}

func (b *Break) Active() bool {
	return b.EndTime == nil
}

// Close ends an open break and returns its Minutes.
func (b *Break) Close(now time.Time) (int, error) {
	if !b.Active() {
		return 0, fmt.Errorf("%w: break %s is already closed", ErrInvalidState, b.ID)
	}
	end := now
	if end.Before(b.StartTime) {
		end = b.StartTime
	}
	b.EndTime = &end
	return b.Minutes(), nil
}

// Minutes returns the length of a closed break rounded to the nearest
// minute, the same way TotalMinutes rounds; zero while open.
func (b *Break) Minutes() int {
	if b.EndTime == nil {
		return 0
	}
	return int(math.Round(b.EndTime.Sub(b.StartTime).Minutes()))
}
