package identity

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func setupTokens(t *testing.T) (*sql.DB, *TokenAuthenticator, *clock, *domain.User) {
	t.Helper()
	database := testutil.NewTestDB(t)
	user := testutil.NewTestUser("ada")
	require.NoError(t, repository.NewSQLiteUserRepo(database).Create(context.Background(), user))

	clk := &clock{now: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)}
	auth := NewTokenAuthenticator(repository.NewSQLiteAuthSessionRepo(database), "sid", 5*24*time.Hour,
		WithTokenClock(clk.Now), WithSecureCookie(true))
	return database, auth, clk, user
}

func TestTokenAuthenticator_CookieAndBearer(t *testing.T) {
	_, auth, _, user := setupTokens(t)
	ctx := context.Background()

	token, expires, err := auth.Issue(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC), expires)

	byCookie := httptest.NewRequest(http.MethodGet, "/", nil)
	byCookie.AddCookie(&http.Cookie{Name: "sid", Value: token})
	got, err := auth.Authenticate(ctx, byCookie)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)

	byHeader := httptest.NewRequest(http.MethodGet, "/", nil)
	byHeader.Header.Set("Authorization", "Bearer "+token)
	got, err = auth.Authenticate(ctx, byHeader)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)
}

func TestTokenAuthenticator_RejectsUnknownAndExpired(t *testing.T) {
	_, auth, clk, user := setupTokens(t)
	ctx := context.Background()

	_, err := auth.Authenticate(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	bogus := httptest.NewRequest(http.MethodGet, "/", nil)
	bogus.Header.Set("Authorization", "Bearer nope")
	_, err = auth.Authenticate(ctx, bogus)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	token, _, err := auth.Issue(ctx, user.ID)
	require.NoError(t, err)
	clk.now = clk.now.Add(5 * 24 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	_, err = auth.Authenticate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTokenAuthenticator_StoresOnlyHash(t *testing.T) {
	database, auth, _, user := setupTokens(t)
	token, _, err := auth.Issue(context.Background(), user.ID)
	require.NoError(t, err)

	var stored string
	require.NoError(t, database.QueryRow(`SELECT token_hash FROM auth_sessions`).Scan(&stored))
	assert.Equal(t, HashToken(token), stored)
	assert.NotEqual(t, token, stored)
}

func TestTokenAuthenticator_LogoutRevokesAndClearsCookie(t *testing.T) {
	_, auth, _, user := setupTokens(t)
	ctx := context.Background()
	token, _, err := auth.Issue(ctx, user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	w := httptest.NewRecorder()
	require.NoError(t, auth.Logout(ctx, w, req))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	_, err = auth.Authenticate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestPruner_RemovesExpiredOnly(t *testing.T) {
	database, auth, clk, user := setupTokens(t)
	ctx := context.Background()

	_, _, err := auth.Issue(ctx, user.ID)
	require.NoError(t, err)
	clk.now = clk.now.Add(3 * 24 * time.Hour)
	fresh, _, err := auth.Issue(ctx, user.ID)
	require.NoError(t, err)
	clk.now = clk.now.Add(3 * 24 * time.Hour)

	var pruned int64
	p := NewPruner(auth, time.Minute, nil, func(n int64) { pruned += n })
	assert.Equal(t, int64(1), p.PruneOnce(ctx))
	assert.Equal(t, int64(1), pruned)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM auth_sessions`).Scan(&count))
	assert.Equal(t, 1, count)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: fresh})
	_, err = auth.Authenticate(ctx, req)
	assert.NoError(t, err)
}

func TestPruner_RunStopsOnCancel(t *testing.T) {
	_, auth, _, _ := setupTokens(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewPruner(auth, time.Hour, nil, nil).Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pruner did not stop")
	}
}

func TestNewPruner_NonPositiveIntervalFallsBack(t *testing.T) {
	_, auth, _, _ := setupTokens(t)
	for _, d := range []time.Duration{0, -time.Second} {
		p := NewPruner(auth, d, nil, nil)
		assert.Equal(t, DefaultPruneInterval, p.interval)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx) }()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("pruner did not stop")
		}
	}
}

func TestHeaderAuthenticator_ProvisionsOnce(t *testing.T) {
	database := testutil.NewTestDB(t)
	users := service.NewUserService(repository.NewSQLiteUserRepo(database), testutil.NewTestUoW(database))
	auth := NewHeaderAuthenticator(users, "X-Forwarded-User", "X-Forwarded-Preferred-Username")
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-User", "github|7")
	req.Header.Set("X-Forwarded-Preferred-Username", "Grace")

	first, err := auth.Authenticate(ctx, req)
	require.NoError(t, err)
	second, err := auth.Authenticate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	u, err := users.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.Name)

	_, err = auth.Authenticate(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestMiddleware_AbortsWithoutUser(t *testing.T) {
	_, auth, _, user := setupTokens(t)
	token, _, err := auth.Issue(context.Background(), user.ID)
	require.NoError(t, err)

	var reached string
	r := gin.New()
	r.GET("/me", Middleware(auth), func(c *gin.Context) {
		reached = UserID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Empty(t, reached)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, reached)
}
