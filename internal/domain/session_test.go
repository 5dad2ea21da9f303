package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestParseSessionStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    SessionStatus
		wantErr bool
	}{
		{"", SessionScheduled, false},
		{"SCHEDULED", SessionScheduled, false},
		{"in_progress", SessionInProgress, false},
		{" Completed ", SessionCompleted, false},
		{"PAUSED", "", true},
		{"done", "", true},
	}
	for _, tc := range cases {
		got, err := ParseSessionStatus(tc.in)
		if tc.wantErr {
			require.Error(t, err, "input=%q", tc.in)
			assert.ErrorIs(t, err, ErrValidation)
			continue
		}
		require.NoError(t, err, "input=%q", tc.in)
		assert.Equal(t, tc.want, got, "input=%q", tc.in)
	}
}

func TestParseBreakType_DefaultsToCustom(t *testing.T) {
	assert.Equal(t, BreakShort, ParseBreakType("short"))
	assert.Equal(t, BreakLong, ParseBreakType("LONG"))
	assert.Equal(t, BreakCustom, ParseBreakType("custom"))
	assert.Equal(t, BreakCustom, ParseBreakType(""))
	assert.Equal(t, BreakCustom, ParseBreakType("coffee"))
}

func TestStart_FromScheduled(t *testing.T) {
	planned := testNow.Add(2 * time.Hour)
	s := &Session{
		Status:       SessionScheduled,
		StartAt:      testNow.Add(time.Hour),
		PlannedEndAt: &planned,
		BreakTime:    5,
	}
	require.NoError(t, s.Start(testNow))
	assert.Equal(t, SessionInProgress, s.Status)
	assert.Equal(t, testNow, s.StartAt, "scheduled start should be replaced by the actual start")
	assert.Nil(t, s.EndAt)
	assert.Nil(t, s.PlannedEndAt)
	assert.Equal(t, 0, s.BreakTime)
}

func TestStart_RejectsNonScheduled(t *testing.T) {
	for _, status := range []SessionStatus{SessionInProgress, SessionCompleted} {
		s := &Session{Status: status, StartAt: testNow.Add(-time.Hour)}
		err := s.Start(testNow)
		require.Error(t, err, "status=%s", status)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, status, s.Status, "status should not change")
	}
}

func TestStop_FromInProgress(t *testing.T) {
	s := &Session{Status: SessionInProgress, StartAt: testNow.Add(-90 * time.Minute), BreakTime: 10}
	require.NoError(t, s.Stop(testNow))
	assert.Equal(t, SessionCompleted, s.Status)
	require.NotNil(t, s.EndAt)
	assert.Equal(t, testNow, *s.EndAt)
	assert.Equal(t, 10, s.BreakTime, "break time is kept as accumulated")
	assert.Equal(t, 90, s.TotalMinutes())
	assert.Equal(t, 80, s.FocusMinutes())
}

func TestStop_ClampsEndToStart(t *testing.T) {
	s := &Session{Status: SessionInProgress, StartAt: testNow.Add(time.Minute)}
	require.NoError(t, s.Stop(testNow))
	assert.False(t, s.EndAt.Before(s.StartAt), "end_at must be >= start_at")
}

func TestStop_RejectsNonInProgress(t *testing.T) {
	for _, status := range []SessionStatus{SessionScheduled, SessionCompleted} {
		s := &Session{Status: status, StartAt: testNow}
		err := s.Stop(testNow)
		require.Error(t, err, "status=%s", status)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestCanBreak(t *testing.T) {
	assert.NoError(t, (&Session{Status: SessionInProgress}).CanBreak())
	assert.ErrorIs(t, (&Session{Status: SessionScheduled}).CanBreak(), ErrInvalidState)
	assert.ErrorIs(t, (&Session{Status: SessionCompleted}).CanBreak(), ErrInvalidState)
}

func TestValidate(t *testing.T) {
	end := testNow.Add(time.Hour)
	before := testNow.Add(-time.Hour)

	cases := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{"scheduled ok", Session{Name: "Write", StartAt: testNow, Status: SessionScheduled}, false},
		{"scheduled with plan", Session{Name: "Write", StartAt: testNow, Status: SessionScheduled, PlannedEndAt: &end}, false},
		{"completed ok", Session{Name: "Write", StartAt: testNow, EndAt: &end, Status: SessionCompleted}, false},
		{"missing name", Session{Name: "  ", StartAt: testNow, Status: SessionScheduled}, true},
		{"missing start", Session{Name: "Write", Status: SessionScheduled}, true},
		{"bad status", Session{Name: "Write", StartAt: testNow, Status: "PAUSED"}, true},
		{"negative break", Session{Name: "Write", StartAt: testNow, Status: SessionScheduled, BreakTime: -1}, true},
		{"completed without end", Session{Name: "Write", StartAt: testNow, Status: SessionCompleted}, true},
		{"completed end before start", Session{Name: "Write", StartAt: testNow, EndAt: &before, Status: SessionCompleted}, true},
		{"in progress with end", Session{Name: "Write", StartAt: testNow, EndAt: &end, Status: SessionInProgress}, true},
		{"plan before start", Session{Name: "Write", StartAt: testNow, PlannedEndAt: &before, Status: SessionScheduled}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.session.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTotalMinutes_RoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 1, 30, 0, 0, time.UTC)
	s := &Session{Status: SessionCompleted, StartAt: start, EndAt: &end}
	assert.Equal(t, 90, s.TotalMinutes())
}

func TestTotalMinutes_OpenSessionIsZero(t *testing.T) {
	s := &Session{Status: SessionInProgress, StartAt: testNow}
	assert.Equal(t, 0, s.TotalMinutes())
	assert.Equal(t, 0, s.FocusMinutes())
}

func TestFocusMinutes_FloorsAtZero(t *testing.T) {
	s := &Session{Status: SessionCompleted, StartAt: testNow, EndAt: timePtr(testNow.Add(10 * time.Minute)), BreakTime: 30}
	assert.Equal(t, 0, s.FocusMinutes())
}

func TestBreakClose_RoundsToNearestMinute(t *testing.T) {
	b := &Break{StartTime: testNow}
	assert.True(t, b.Active())

	minutes, err := b.Close(testNow.Add(7*time.Minute + 45*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 8, minutes)
	assert.False(t, b.Active())
}

func TestBreakMinutes_SubMinute(t *testing.T) {
	cases := map[time.Duration]int{
		0:                            0,
		20 * time.Second:             0,
		30 * time.Second:             1,
		50 * time.Second:             1,
		time.Minute + 29*time.Second: 1,
		time.Minute + 30*time.Second: 2,
	}
	for d, want := range cases {
		b := &Break{StartTime: testNow, EndTime: timePtr(testNow.Add(d))}
		assert.Equal(t, want, b.Minutes(), "duration=%s", d)
	}
	assert.Equal(t, 0, (&Break{StartTime: testNow}).Minutes(), "open break")
}

func TestBreakClose_AlreadyClosed(t *testing.T) {
	b := &Break{StartTime: testNow, EndTime: timePtr(testNow.Add(time.Minute))}
	_, err := b.Close(testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestActiveBreak(t *testing.T) {
	closed := &Break{ID: "b1", StartTime: testNow, EndTime: timePtr(testNow.Add(time.Minute))}
	open := &Break{ID: "b2", StartTime: testNow.Add(2 * time.Minute)}

	s := &Session{Breaks: []*Break{closed}}
	assert.Nil(t, s.ActiveBreak())

	s.Breaks = append(s.Breaks, open)
	assert.Equal(t, "b2", s.ActiveBreak().ID)
}

func TestAddBreakMinutes_IgnoresNonPositive(t *testing.T) {
	s := &Session{BreakTime: 3}
	s.AddBreakMinutes(0)
	s.AddBreakMinutes(-4)
	s.AddBreakMinutes(5)
	assert.Equal(t, 8, s.BreakTime)
}
