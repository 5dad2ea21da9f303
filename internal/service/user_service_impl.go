package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

type userService struct {
	users    repository.UserRepo
	uow      db.UnitOfWork
	now      func() time.Time
	observer UseCaseObserver
}

func NewUserService(users repository.UserRepo, uow db.UnitOfWork, opts ...Option) UserService {
	o := buildOptions(opts)
	return &userService{users: users, uow: uow, now: o.now, observer: o.observer}
}

func (s *userService) Get(ctx context.Context, userID string) (*domain.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *userService) UpdateSettings(ctx context.Context, userID string, settings json.RawMessage) (user *domain.User, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "bytes": len(settings)}
	defer func() { observe(ctx, s.observer, "update-settings", startedAt, fields, &err) }()

	if err = requireUser(userID); err != nil {
		return nil, err
	}
	if err = domain.ValidateSettings(settings); err != nil {
		return nil, err
	}
	if err = s.users.UpdateSettings(ctx, userID, settings); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *userService) Provision(ctx context.Context, authUserID, name string) (user *domain.User, err error) {
	startedAt := time.Now()
	fields := map[string]any{"auth_user_id": authUserID}
	defer func() { observe(ctx, s.observer, "provision-user", startedAt, fields, &err) }()

	authUserID = strings.TrimSpace(authUserID)
	if authUserID == "" {
		return nil, fmt.Errorf("%w: identity subject is required", domain.ErrValidation)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		users := repository.NewSQLiteUserRepo(tx)
		existing, err := users.GetByAuthUserID(ctx, authUserID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		user = &domain.User{
			ID:         uuid.New().String(),
			AuthUserID: authUserID,
			Name:       domain.Coalesce(strings.TrimSpace(name), authUserID),
			Timezone:   "UTC",
			Settings:   json.RawMessage(`{}`),
			CreatedAt:  s.now(),
		}
		fields["created"] = true
		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	fields["user_id"] = user.ID
	return user, nil
}
