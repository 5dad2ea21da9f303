package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/require"
)

var baseNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

type fixture struct {
	db       *sql.DB
	clock    *testClock
	observer *recordingObserver

	sessionRepo repository.SessionRepo
	tagRepo     repository.TagRepo
	userRepo    repository.UserRepo

	sessions SessionService
	queries  QueryService
	tags     TagService
	users    UserService

	user *domain.User
	tag  *domain.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithDB(t, testutil.NewTestDB(t), nil)
}

func newFixtureWithDB(t *testing.T, database *sql.DB, uow db.UnitOfWork) *fixture {
	t.Helper()
	if uow == nil {
		uow = testutil.NewTestUoW(database)
	}
	f := &fixture{
		db:          database,
		clock:       newTestClock(baseNow),
		observer:    &recordingObserver{},
		sessionRepo: repository.NewSQLiteSessionRepo(database),
		tagRepo:     repository.NewSQLiteTagRepo(database),
		userRepo:    repository.NewSQLiteUserRepo(database),
	}
	opts := []Option{WithClock(f.clock.Now), WithObserver(f.observer)}
	f.sessions = NewSessionService(f.sessionRepo, repository.NewSQLiteBreakRepo(database), uow, opts...)
	f.queries = NewQueryService(f.sessionRepo, f.userRepo, opts...)
	f.tags = NewTagService(f.tagRepo, uow, opts...)
	f.users = NewUserService(f.userRepo, uow, opts...)

	ctx := context.Background()
	f.user = testutil.NewTestUser("alice")
	require.NoError(t, f.userRepo.Create(ctx, f.user))
	f.tag = testutil.NewTestTag(f.user.ID, "work")
	require.NoError(t, f.tagRepo.Create(ctx, f.tag))
	return f
}

func (f *fixture) otherUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(name)
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func ts(t time.Time) *string {
	s := t.Format(time.RFC3339)
	return &s
}

// scheduled creates a SCHEDULED session on the fixture tag starting at start.
func (f *fixture) scheduled(t *testing.T, name string, start time.Time) *domain.Session {
	t.Helper()
	s, err := f.sessions.Create(context.Background(), f.user.ID, CreateSessionInput{
		Name:    name,
		StartAt: start.Format(time.RFC3339),
		TagID:   &f.tag.ID,
	})
	require.NoError(t, err)
	return s
}

// completed creates a COMPLETED session on tagID covering [start, end].
func (f *fixture) completed(t *testing.T, name, tagID string, start, end time.Time, breakTime int) *domain.Session {
	t.Helper()
	s, err := f.sessions.Create(context.Background(), f.user.ID, CreateSessionInput{
		Name:      name,
		StartAt:   start.Format(time.RFC3339),
		EndAt:     ts(end),
		TagID:     &tagID,
		BreakTime: intPtr(breakTime),
		Status:    "COMPLETED",
	})
	require.NoError(t, err)
	return s
}
