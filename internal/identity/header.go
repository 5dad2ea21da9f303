package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
)

// HeaderAuthenticator trusts a subject header set by an authenticating
// proxy and provisions users on first sight. Only deploy it behind such a
// proxy.
type HeaderAuthenticator struct {
	users      service.UserService
	header     string
	nameHeader string
}

func NewHeaderAuthenticator(users service.UserService, header, nameHeader string) *HeaderAuthenticator {
	return &HeaderAuthenticator{users: users, header: header, nameHeader: nameHeader}
}

func (a *HeaderAuthenticator) Authenticate(ctx context.Context, r *http.Request) (string, error) {
	subject := strings.TrimSpace(r.Header.Get(a.header))
	if subject == "" {
		return "", domain.ErrUnauthenticated
	}
	var name string
	if a.nameHeader != "" {
		name = strings.TrimSpace(r.Header.Get(a.nameHeader))
	}
	user, err := a.users.Provision(ctx, subject, name)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Logout is a no-op; the proxy owns the login.
func (a *HeaderAuthenticator) Logout(context.Context, http.ResponseWriter, *http.Request) error {
	return nil
}

var _ Authenticator = (*HeaderAuthenticator)(nil)
