package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

const tokenBytes = 32

// TokenAuthenticator issues opaque login tokens and resolves them from the
// login cookie or an Authorization: Bearer header. Only token hashes reach
// the database.
type TokenAuthenticator struct {
	logins     repository.AuthSessionRepo
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

type TokenOption func(*TokenAuthenticator)

// WithSecureCookie marks the login cookie Secure.
func WithSecureCookie(secure bool) TokenOption {
	return func(a *TokenAuthenticator) { a.secure = secure }
}

func WithTokenClock(now func() time.Time) TokenOption {
	return func(a *TokenAuthenticator) { a.now = now }
}

func NewTokenAuthenticator(logins repository.AuthSessionRepo, cookieName string, maxAge time.Duration, opts ...TokenOption) *TokenAuthenticator {
	a := &TokenAuthenticator{
		logins:     logins,
		cookieName: cookieName,
		maxAge:     maxAge,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HashToken returns the hex SHA-256 of a raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue creates a login for userID and returns the raw token. The token is
// not recoverable afterwards.
func (a *TokenAuthenticator) Issue(ctx context.Context, userID string) (string, time.Time, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generating token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	now := a.now()
	login := &domain.AuthSession{
		TokenHash: HashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.maxAge),
	}
	if err := a.logins.Create(ctx, login); err != nil {
		return "", time.Time{}, err
	}
	return token, login.ExpiresAt, nil
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, r *http.Request) (string, error) {
	token := a.token(r)
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	login, err := a.logins.GetValid(ctx, HashToken(token), a.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthenticated
		}
		return "", err
	}
	return login.UserID, nil
}

// Logout deletes the login and expires the cookie. Requests without a token
// succeed.
func (a *TokenAuthenticator) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token := a.token(r); token != "" {
		if err := a.logins.Delete(ctx, HashToken(token)); err != nil {
			return err
		}
	}
	http.SetCookie(w, a.cookie("", -1))
	return nil
}

// SetCookie writes the login cookie for a freshly issued token.
func (a *TokenAuthenticator) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, a.cookie(token, int(a.maxAge.Seconds())))
}

// Prune removes expired logins.
func (a *TokenAuthenticator) Prune(ctx context.Context) (int64, error) {
	return a.logins.DeleteExpired(ctx, a.now())
}

func (a *TokenAuthenticator) token(r *http.Request) string {
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return extractBearerToken(r)
}

func (a *TokenAuthenticator) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

var _ Authenticator = (*TokenAuthenticator)(nil)
