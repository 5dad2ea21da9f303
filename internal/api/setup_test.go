package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/identity"
	"github.com/alexanderramin/tempo/internal/logging"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/telemetry"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

var apiNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type apiClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *apiClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *apiClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type apiFixture struct {
	db     *sql.DB
	router *gin.Engine
	clock  *apiClock
	auth   *identity.TokenAuthenticator
	users  service.UserService
	user   *domain.User
	token  string
}

type fixtureOption func(*config.Config, *Deps)

func withEnv(env string) fixtureOption {
	return func(cfg *config.Config, _ *Deps) { cfg.App.Env = env }
}

func withRateLimit(perSecond float64, burst int) fixtureOption {
	return func(cfg *config.Config, _ *Deps) {
		cfg.Server.RateLimit = perSecond
		cfg.Server.RateBurst = burst
	}
}

func withSessionService(s service.SessionService) fixtureOption {
	return func(_ *config.Config, d *Deps) { d.Sessions = s }
}

func newAPIFixture(t *testing.T, opts ...fixtureOption) *apiFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	clock := &apiClock{now: apiNow}

	sessionRepo := repository.NewSQLiteSessionRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)
	svcOpts := []service.Option{service.WithClock(clock.Now)}

	users := service.NewUserService(userRepo, uow, svcOpts...)
	auth := identity.NewTokenAuthenticator(repository.NewSQLiteAuthSessionRepo(database), "sid", 5*24*time.Hour)

	cfg := config.DefaultConfig()
	cfg.Server.RateLimit = 0
	deps := Deps{
		Logger:   logging.Discard(),
		Sessions: service.NewSessionService(sessionRepo, repository.NewSQLiteBreakRepo(database), uow, svcOpts...),
		Queries:  service.NewQueryService(sessionRepo, userRepo, svcOpts...),
		Tags:     service.NewTagService(repository.NewSQLiteTagRepo(database), uow, svcOpts...),
		Users:    users,
		Auth:     auth,
		Metrics:  telemetry.NewMetrics(prometheus.NewRegistry()),
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}
	deps.Config = cfg

	f := &apiFixture{
		db:     database,
		router: NewRouter(deps),
		clock:  clock,
		auth:   auth,
		users:  users,
	}
	f.user, f.token = f.login(t, "ada")
	return f
}

func (f *apiFixture) login(t *testing.T, subject string) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()
	user, err := f.users.Provision(ctx, subject, "")
	require.NoError(t, err)
	token, _, err := f.auth.Issue(ctx, user.ID)
	require.NoError(t, err)
	return user, token
}

// do sends a request authenticated with token (none when empty) and returns
// the recorder.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a {status, data} body and returns data.
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decode(t, w)
	require.Equal(t, "success", body["status"], w.Body.String())
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %s", w.Body.String())
	return data
}

func listOf(t *testing.T, w *httptest.ResponseRecorder, key string) []any {
	t.Helper()
	body := decode(t, w)
	require.Equal(t, "success", body["status"], w.Body.String())
	list, ok := body[key].([]any)
	require.True(t, ok, "%s is not a list: %s", key, w.Body.String())
	return list
}

func (f *apiFixture) createTag(t *testing.T, name string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/tags", f.token, map[string]any{"name": name, "color": "#336699"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf(t, w)["id"].(string)
}

func (f *apiFixture) createSession(t *testing.T, body map[string]any) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/sessions", f.token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf(t, w)["id"].(string)
}

func (f *apiFixture) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
