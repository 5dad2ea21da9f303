package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

const maxTagNameLen = 64

// Tag is a user-defined category label attached to sessions.
type Tag struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt time.Time
}

// Validate trims the name and checks it together with the display color.
func (t *Tag) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: tag name is required", ErrValidation)
	}
	if utf8.RuneCountInString(t.Name) > maxTagNameLen {
		return fmt.Errorf("%w: tag name must be at most %d characters", ErrValidation, maxTagNameLen)
	}
	if !colorPattern.MatchString(t.Color) {
		return fmt.Errorf("%w: tag color %q must be a hex color like #1e90ff", ErrValidation, t.Color)
	}
	return nil
}
