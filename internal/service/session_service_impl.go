package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

type sessionService struct {
	sessions repository.SessionRepo
	breaks   repository.BreakRepo
	uow      db.UnitOfWork
	now      func() time.Time
	observer UseCaseObserver
}

// NewSessionService wires the lifecycle engine. sessions and breaks serve
// reads; writes run on tx-scoped repositories inside uow.
func NewSessionService(sessions repository.SessionRepo, breaks repository.BreakRepo, uow db.UnitOfWork, opts ...Option) SessionService {
	o := buildOptions(opts)
	return &sessionService{
		sessions: sessions,
		breaks:   breaks,
		uow:      uow,
		now:      o.now,
		observer: o.observer,
	}
}

func (s *sessionService) Create(ctx context.Context, userID string, in CreateSessionInput) (created *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID}
	defer func() { observe(ctx, s.observer, "create-session", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}

	var draft *domain.Session
	var newTag *domain.Tag
	draft, newTag, err = s.buildSession(userID, in)
	if err != nil {
		return nil, err
	}
	fields["status"] = string(draft.Status)
	fields["new_tag"] = newTag != nil

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tags := repository.NewSQLiteTagRepo(tx)
		sessions := repository.NewSQLiteSessionRepo(tx)

		if newTag != nil {
			if err := tags.Create(ctx, newTag); err != nil {
				return err
			}
		} else if _, err := tags.GetByID(ctx, userID, draft.TagID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: tag_id %s does not exist", domain.ErrValidation, draft.TagID)
			}
			return err
		}

		if err := sessions.Create(ctx, draft); err != nil {
			return err
		}
		var err error
		created, err = sessions.GetByID(ctx, userID, draft.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["session_id"] = created.ID
	return created, nil
}

// buildSession validates a create request and returns the session to insert
// plus the tag to create alongside it, if any.
func (s *sessionService) buildSession(userID string, in CreateSessionInput) (*domain.Session, *domain.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	startAt, err := parseTimestamp("start_at", in.StartAt)
	if err != nil {
		return nil, nil, err
	}
	endAt, err := optionalTimestamp("end_at", in.EndAt)
	if err != nil {
		return nil, nil, err
	}
	if endAt != nil && endAt.Before(startAt) {
		return nil, nil, fmt.Errorf("%w: end_at must not be before start_at", domain.ErrValidation)
	}
	status, err := domain.ParseSessionStatus(in.Status)
	if err != nil {
		return nil, nil, err
	}
	breakTime := domain.ValueOr(in.BreakTime, 0)
	if breakTime < 0 {
		return nil, nil, fmt.Errorf("%w: break_time must be >= 0", domain.ErrValidation)
	}

	now := s.now()
	sess := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		StartAt:   startAt,
		BreakTime: breakTime,
		Status:    status,
		CreatedAt: now,
	}
	switch status {
	case domain.SessionScheduled:
		sess.PlannedEndAt = endAt
	case domain.SessionInProgress:
		if endAt != nil {
			return nil, nil, fmt.Errorf("%w: end_at must be empty for an in-progress session", domain.ErrValidation)
		}
	case domain.SessionCompleted:
		if endAt == nil {
			return nil, nil, fmt.Errorf("%w: end_at is required for a completed session", domain.ErrValidation)
		}
		sess.EndAt = endAt
	}

	tag, err := resolveTagSource(userID, in, now)
	if err != nil {
		return nil, nil, err
	}
	if tag != nil {
		sess.TagID = tag.ID
	} else {
		sess.TagID = trimmed(in.TagID)
	}

	if err := sess.Validate(); err != nil {
		return nil, nil, err
	}
	return sess, tag, nil
}

// resolveTagSource enforces exactly one of tag_id or (new_tag_name, new_tag_color).
// It returns the tag to create, or nil when an existing tag_id was given.
func resolveTagSource(userID string, in CreateSessionInput, now time.Time) (*domain.Tag, error) {
	tagID := trimmed(in.TagID)
	newName := trimmed(in.NewTagName)
	newColor := trimmed(in.NewTagColor)
	wantsNew := newName != "" || newColor != ""

	switch {
	case tagID != "" && wantsNew:
		return nil, fmt.Errorf("%w: provide either tag_id or new_tag_name/new_tag_color, not both", domain.ErrValidation)
	case tagID != "":
		return nil, nil
	case !wantsNew:
		return nil, fmt.Errorf("%w: tag_id or new_tag_name and new_tag_color are required", domain.ErrValidation)
	case newName == "" || newColor == "":
		return nil, fmt.Errorf("%w: new_tag_name and new_tag_color must be provided together", domain.ErrValidation)
	}

	tag := &domain.Tag{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      newName,
		Color:     newColor,
		CreatedAt: now,
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sess, err := s.sessions.GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Breaks, err = s.breaks.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) Start(ctx context.Context, userID, sessionID string) (started *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "session_id": sessionID}
	defer func() { observe(ctx, s.observer, "start-session", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)

		sess, err := sessions.GetByID(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if err := sess.Start(now); err != nil {
			return err
		}
		ok, err := sessions.MarkStarted(ctx, userID, sessionID, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: session %s is no longer scheduled", domain.ErrInvalidTransition, sessionID)
		}
		started, err = sessions.GetByID(ctx, userID, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// Stop completes an in-progress session, closing any open break first so its
// minutes land in break_time.
func (s *sessionService) Stop(ctx context.Context, userID, sessionID string) (stopped *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "session_id": sessionID}
	defer func() { observe(ctx, s.observer, "stop-session", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		breaks := repository.NewSQLiteBreakRepo(tx)

		sess, err := sessions.GetByID(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if err := sess.Stop(now); err != nil {
			return err
		}

		active, err := breaks.GetActive(ctx, sessionID)
		switch {
		case err == nil:
			minutes, err := closeBreak(ctx, breaks, sessions, active, now)
			if err != nil {
				return err
			}
			fields["closed_break_minutes"] = minutes
		case errors.Is(err, domain.ErrNotFound):
		default:
			return err
		}

		ok, err := sessions.MarkCompleted(ctx, userID, sessionID, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: session %s is no longer in progress", domain.ErrInvalidTransition, sessionID)
		}
		stopped, err = sessions.GetByID(ctx, userID, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["total_minutes"] = stopped.TotalMinutes()
	return stopped, nil
}

func (s *sessionService) StartBreak(ctx context.Context, userID, sessionID, breakType string) (created *domain.Break, err error) {
	startedAt := time.Now()
	typ := domain.ParseBreakType(breakType)
	fields := map[string]any{"user_id": userID, "session_id": sessionID, "type": string(typ)}
	defer func() { observe(ctx, s.observer, "start-break", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		breaks := repository.NewSQLiteBreakRepo(tx)

		sess, err := sessions.GetByID(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if err := sess.CanBreak(); err != nil {
			return err
		}
		if _, err := breaks.GetActive(ctx, sessionID); err == nil {
			return fmt.Errorf("%w: session %s already has an active break", domain.ErrConflict, sessionID)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		b := &domain.Break{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Type:      typ,
			StartTime: now,
		}
		if err := breaks.Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *sessionService) StopBreak(ctx context.Context, userID, sessionID string) (result *StopBreakResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "session_id": sessionID}
	defer func() { observe(ctx, s.observer, "stop-break", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		breaks := repository.NewSQLiteBreakRepo(tx)

		if _, err := sessions.GetByID(ctx, userID, sessionID); err != nil {
			return err
		}
		active, err := breaks.GetActive(ctx, sessionID)
		if err != nil {
			return err
		}
		minutes, err := closeBreak(ctx, breaks, sessions, active, now)
		if err != nil {
			return err
		}
		fields["minutes"] = minutes

		sess, err := sessions.GetByID(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		result = &StopBreakResult{Break: active, BreakTime: sess.BreakTime}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// closeBreak ends b at now and adds its rounded minutes to the session.
func closeBreak(ctx context.Context, breaks repository.BreakRepo, sessions repository.SessionRepo, b *domain.Break, now time.Time) (int, error) {
	minutes, err := b.Close(now)
	if err != nil {
		return 0, err
	}
	ok, err := breaks.Close(ctx, b.ID, *b.EndTime)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: break %s is already closed", domain.ErrNotFound, b.ID)
	}
	if err := sessions.AddBreakTime(ctx, b.SessionID, minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}

func (s *sessionService) List(ctx context.Context, userID string) ([]*domain.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.sessions.ListByUser(ctx, userID)
}

func (s *sessionService) Scheduled(ctx context.Context, userID string) ([]*domain.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.sessions.ListScheduledFrom(ctx, userID, s.now())
}

func (s *sessionService) Reschedule(ctx context.Context, userID, sessionID string, in RescheduleInput) (updated *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "session_id": sessionID}
	defer func() { observe(ctx, s.observer, "reschedule-session", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		tags := repository.NewSQLiteTagRepo(tx)

		sess, err := sessions.GetByID(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if sess.Status != domain.SessionScheduled {
			return fmt.Errorf("%w: only scheduled sessions can be edited (status %s)", domain.ErrInvalidTransition, sess.Status)
		}
		if err := applyReschedule(sess, in); err != nil {
			return err
		}
		if in.TagID != nil {
			if _, err := tags.GetByID(ctx, userID, sess.TagID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: tag_id %s does not exist", domain.ErrValidation, sess.TagID)
				}
				return err
			}
		}

		ok, err := sessions.UpdateScheduled(ctx, sess)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: session %s is no longer scheduled", domain.ErrInvalidTransition, sessionID)
		}
		updated, err = sessions.GetByID(ctx, userID, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyReschedule(sess *domain.Session, in RescheduleInput) error {
	if in.Name != nil {
		sess.Name = strings.TrimSpace(*in.Name)
	}
	if in.StartAt != nil {
		start, err := parseTimestamp("start_at", *in.StartAt)
		if err != nil {
			return err
		}
		sess.StartAt = start
	}
	if in.EndAt != nil {
		end, err := optionalTimestamp("end_at", in.EndAt)
		if err != nil {
			return err
		}
		sess.PlannedEndAt = end
	}
	if in.TagID != nil {
		tagID := strings.TrimSpace(*in.TagID)
		if tagID == "" {
			return fmt.Errorf("%w: tag_id must not be empty", domain.ErrValidation)
		}
		sess.TagID = tagID
	}
	return sess.Validate()
}

func (s *sessionService) Delete(ctx context.Context, userID, sessionID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "session_id": sessionID}
	defer func() { observe(ctx, s.observer, "delete-session", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, userID, sessionID)
}
