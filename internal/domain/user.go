package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is created by the identity layer; only Settings changes afterwards.
type User struct {
	ID         string
	AuthUserID string
	Name       string
	Avatar     *string
	Timezone   string
	Settings   json.RawMessage
	CreatedAt  time.Time
}

// Location resolves the user's timezone, falling back to UTC when unset or unknown.
func (u *User) Location() *time.Location {
	if u == nil || u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidateSettings requires the opaque settings blob to be a JSON object.
func ValidateSettings(raw json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return fmt.Errorf("%w: settings must be a JSON object", ErrValidation)
	}
	return nil
}
