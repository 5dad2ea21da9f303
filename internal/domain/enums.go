package domain

import (
	"fmt"
	"strings"
)

type SessionStatus string

const (
	SessionScheduled  SessionStatus = "SCHEDULED"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
)

// ParseSessionStatus accepts a status string case-insensitively.
// An empty string yields SessionScheduled.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case "", SessionScheduled:
		return SessionScheduled, nil
	case SessionInProgress:
		return SessionInProgress, nil
	case SessionCompleted:
		return SessionCompleted, nil
	}
	return "", fmt.Errorf("%w: unknown session status %q", ErrValidation, s)
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionCompleted:
		return true
	}
	return false
}

// next returns the only status a session may move to from s.
func (s SessionStatus) next() (SessionStatus, bool) {
	switch s {
	case SessionScheduled:
		return SessionInProgress, true
	case SessionInProgress:
		return SessionCompleted, true
	}
	return "", false
}

type BreakType string

const (
	BreakShort  BreakType = "SHORT"
	BreakLong   BreakType = "LONG"
	BreakCustom BreakType = "CUSTOM"
)

// ParseBreakType is lenient: anything outside the known set becomes BreakCustom.
func ParseBreakType(s string) BreakType {
	switch t := BreakType(strings.ToUpper(strings.TrimSpace(s))); t {
	case BreakShort, BreakLong, BreakCustom:
		return t
	}
	return BreakCustom
}

func (t BreakType) Valid() bool {
	switch t {
	case BreakShort, BreakLong, BreakCustom:
		return true
	}
	return false
}
