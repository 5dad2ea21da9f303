package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

const (
	DefaultHistoryDays = 7
	MaxHistoryDays     = 90
)

// ClampDays turns a raw "days" query value into a window length. Fractions
// are truncated toward zero. Missing, non-numeric and non-positive values
// yield DefaultHistoryDays; anything above MaxHistoryDays is capped.
func ClampDays(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) {
		return DefaultHistoryDays
	}
	if f > MaxHistoryDays {
		return MaxHistoryDays
	}
	return clampDayCount(int(f))
}

func clampDayCount(n int) int {
	switch {
	case n <= 0:
		return DefaultHistoryDays
	case n > MaxHistoryDays:
		return MaxHistoryDays
	}
	return n
}

// Range is a half-open reporting window [From, To).
type Range struct {
	From time.Time
	To   time.Time
	Days int
}

// RangeFromDays returns the window that ends at now and begins at local
// midnight days-1 days earlier, so "7 days" covers today plus the six
// preceding calendar days in loc.
func RangeFromDays(now time.Time, days int, loc *time.Location) Range {
	if loc == nil {
		loc = time.UTC
	}
	days = clampDayCount(days)
	local := now.In(loc)
	first := local.AddDate(0, 0, -(days - 1))
	from := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	return Range{From: from, To: now, Days: days}
}

// IsClientError reports whether err was caused by the caller rather than the system.
func IsClientError(err error) bool {
	for _, target := range []error{
		domain.ErrUnauthenticated,
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrInvalidTransition,
		domain.ErrInvalidState,
		domain.ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

func parseTimestamp(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC3339 timestamp", domain.ErrValidation, field)
	}
	return t.UTC(), nil
}

// optionalTimestamp treats a nil or blank value as absent.
func optionalTimestamp(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
