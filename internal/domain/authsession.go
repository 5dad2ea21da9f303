package domain

import "time"

// AuthSession is a login issued to a user. Only the SHA-256 hash of the
// bearer token is stored.
type AuthSession struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (a *AuthSession) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
