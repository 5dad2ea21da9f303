// Package identity resolves the user behind an HTTP request. Two modes are
// supported: opaque login tokens stored hashed in auth_sessions (cookie or
// bearer header), and a subject header set by a trusted upstream proxy.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "tempo_user_id"

// Authenticator maps a request to a user id. It returns an error wrapping
// domain.ErrUnauthenticated when no user can be resolved.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (string, error)
	// Logout ends whatever login the request carries and clears client state.
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// UserID returns the id stored by Middleware, or "" on unauthenticated routes.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Middleware aborts with an error wrapping domain.ErrUnauthenticated when
// auth cannot resolve a user; handlers behind it never run in that case.
func Middleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.Authenticate(c.Request.Context(), c.Request)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		SetUserID(c, userID)
		c.Next()
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
