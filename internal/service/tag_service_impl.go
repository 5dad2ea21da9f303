package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

type tagService struct {
	tags     repository.TagRepo
	uow      db.UnitOfWork
	now      func() time.Time
	observer UseCaseObserver
}

func NewTagService(tags repository.TagRepo, uow db.UnitOfWork, opts ...Option) TagService {
	o := buildOptions(opts)
	return &tagService{tags: tags, uow: uow, now: o.now, observer: o.observer}
}

func (s *tagService) List(ctx context.Context, userID string) ([]*domain.Tag, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.tags.ListByUser(ctx, userID)
}

func (s *tagService) Create(ctx context.Context, userID, name, color string) (tag *domain.Tag, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID}
	defer func() { observe(ctx, s.observer, "create-tag", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}
	tag = &domain.Tag{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: s.now(),
	}
	if err = tag.Validate(); err != nil {
		return nil, err
	}
	if err = s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	fields["tag_id"] = tag.ID
	return tag, nil
}

// Delete refuses to remove a tag that any session still references.
func (s *tagService) Delete(ctx context.Context, userID, tagID string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "tag_id": tagID}
	defer func() { observe(ctx, s.observer, "delete-tag", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tags := repository.NewSQLiteTagRepo(tx)
		if _, err := tags.GetByID(ctx, userID, tagID); err != nil {
			return err
		}
		inUse, err := tags.InUse(ctx, tagID)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: tag %s is used by existing sessions", domain.ErrConflict, tagID)
		}
		return tags.Delete(ctx, userID, tagID)
	})
}
