package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_WindowAndOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := func(d int, h int) time.Time {
		return time.Date(2025, 6, d, h, 0, 0, 0, time.UTC)
	}
	f.completed(t, "Old", f.tag.ID, day(8, 10), day(8, 11), 0)
	late := f.completed(t, "Late", f.tag.ID, day(14, 15), day(14, 16), 15)
	early := f.completed(t, "Early", f.tag.ID, day(9, 0), day(9, 2), 0)
	f.scheduled(t, "Not done", day(12, 9))

	hist, err := f.queries.History(ctx, f.user.ID, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, hist.Range.Days)
	assert.True(t, hist.Range.From.Equal(day(9, 0)))
	assert.True(t, hist.Range.To.Equal(baseNow))

	require.Len(t, hist.Sessions, 2)
	assert.Equal(t, early.ID, hist.Sessions[0].Session.ID)
	assert.Equal(t, 120, hist.Sessions[0].TotalMinutes)
	assert.Equal(t, late.ID, hist.Sessions[1].Session.ID)
	assert.Equal(t, 60, hist.Sessions[1].TotalMinutes)
	assert.Equal(t, 45, hist.Sessions[1].FocusMinutes)
}

func TestHistory_TagFilterOnlyWhenProvided(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.tags.Create(ctx, f.user.ID, "errands", "#aaa")
	require.NoError(t, err)

	start := baseNow.Add(-3 * time.Hour)
	f.completed(t, "Work", f.tag.ID, start, start.Add(time.Hour), 0)
	f.completed(t, "Errand", other.ID, start.Add(time.Hour), start.Add(2*time.Hour), 0)

	all, err := f.queries.History(ctx, f.user.ID, 7, nil)
	require.NoError(t, err)
	assert.Len(t, all.Sessions, 2)

	blank, err := f.queries.History(ctx, f.user.ID, 7, strPtr(""))
	require.NoError(t, err)
	assert.Len(t, blank.Sessions, 2, "an empty tag id is treated as absent")

	filtered, err := f.queries.History(ctx, f.user.ID, 7, &other.ID)
	require.NoError(t, err)
	require.Len(t, filtered.Sessions, 1)
	assert.Equal(t, "Errand", filtered.Sessions[0].Session.Name)
}

func TestHistory_ClampsDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for days, want := range map[int]int{0: 7, -5: 7, 1: 1, 90: 90, 365: 90} {
		hist, err := f.queries.History(ctx, f.user.ID, days, nil)
		require.NoError(t, err)
		assert.Equal(t, want, hist.Range.Days, "days=%d", days)
	}
}

func TestHistory_UsesUserTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	f := newFixture(t)
	ctx := context.Background()

	tokyoUser := testutil.NewTestUser("kenji", testutil.WithTimezone("Asia/Tokyo"))
	require.NoError(t, f.userRepo.Create(ctx, tokyoUser))
	tag := testutil.NewTestTag(tokyoUser.ID, "work")
	require.NoError(t, f.tagRepo.Create(ctx, tag))

	// baseNow is 18:00 in Tokyo; a one-day window starts at Tokyo midnight (15:00 UTC the day before).
	start := time.Date(2025, 6, 14, 16, 0, 0, 0, time.UTC)
	_, err = f.sessions.Create(ctx, tokyoUser.ID, CreateSessionInput{
		Name: "Early Tokyo", StartAt: start.Format(time.RFC3339), EndAt: ts(start.Add(time.Hour)),
		TagID: &tag.ID, Status: "COMPLETED",
	})
	require.NoError(t, err)

	hist, err := f.queries.History(ctx, tokyoUser.ID, 1, nil)
	require.NoError(t, err)
	assert.True(t, hist.Range.From.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, tokyo)))
	assert.Len(t, hist.Sessions, 1)

	utcHist, err := f.queries.History(ctx, f.user.ID, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, utcHist.Sessions)
}

func TestHistory_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	_, err := f.queries.History(context.Background(), "", 7, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAnalytics_ZeroFilledBucketsAndTagTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.tags.Create(ctx, f.user.ID, "errands", "#aaa")
	require.NoError(t, err)

	d13 := time.Date(2025, 6, 13, 8, 0, 0, 0, time.UTC)
	d15 := time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)
	f.completed(t, "A", f.tag.ID, d13, d13.Add(time.Hour), 10)
	f.completed(t, "B", other.ID, d15, d15.Add(30*time.Minute), 0)
	f.completed(t, "C", f.tag.ID, d15.Add(time.Hour), d15.Add(2*time.Hour), 0)

	res, err := f.queries.Analytics(ctx, f.user.ID, 3, nil)
	require.NoError(t, err)

	require.Len(t, res.Days, 3)
	assert.Equal(t, DayBucket{Date: "2025-06-13", TotalMinutes: 60, FocusMinutes: 50, Sessions: 1}, res.Days[0])
	assert.Equal(t, DayBucket{Date: "2025-06-14"}, res.Days[1])
	assert.Equal(t, DayBucket{Date: "2025-06-15", TotalMinutes: 90, FocusMinutes: 90, Sessions: 2}, res.Days[2])

	require.Len(t, res.Tags, 2)
	assert.Equal(t, "work", res.Tags[0].Name)
	assert.Equal(t, 120, res.Tags[0].TotalMinutes)
	assert.Equal(t, 110, res.Tags[0].FocusMinutes)
	assert.Equal(t, 2, res.Tags[0].Sessions)
	assert.Equal(t, "errands", res.Tags[1].Name)
	assert.Equal(t, 30, res.Tags[1].TotalMinutes)
}

func TestAnalytics_EmptyRange(t *testing.T) {
	f := newFixture(t)

	res, err := f.queries.Analytics(context.Background(), f.user.ID, 7, nil)
	require.NoError(t, err)
	assert.Len(t, res.Days, 7)
	assert.Empty(t, res.Tags)
	assert.NotNil(t, res.Tags)
}

func TestTagService_CreateListDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tag, err := f.tags.Create(ctx, f.user.ID, " admin ", "#abcdef")
	require.NoError(t, err)
	assert.Equal(t, "admin", tag.Name)

	_, err = f.tags.Create(ctx, f.user.ID, "Admin", "#000")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.tags.Create(ctx, f.user.ID, "", "#000")
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, err := f.tags.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "admin", list[0].Name)

	require.NoError(t, f.tags.Delete(ctx, f.user.ID, tag.ID))
	assert.ErrorIs(t, f.tags.Delete(ctx, f.user.ID, tag.ID), domain.ErrNotFound)
}

func TestTagService_DeleteInUseIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scheduled(t, "Uses tag", baseNow.Add(time.Hour))

	assert.ErrorIs(t, f.tags.Delete(ctx, f.user.ID, f.tag.ID), domain.ErrConflict)

	bob := f.otherUser(t, "bob")
	assert.ErrorIs(t, f.tags.Delete(ctx, bob.ID, f.tag.ID), domain.ErrNotFound)
}

func TestUserService_ProvisionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.users.Provision(ctx, "github|42", "")
	require.NoError(t, err)
	assert.Equal(t, "github|42", first.Name, "name falls back to the subject")
	assert.Equal(t, "UTC", first.Timezone)

	second, err := f.users.Provision(ctx, "github|42", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = f.users.Provision(ctx, " ", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserService_UpdateSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.UpdateSettings(ctx, f.user.ID, json.RawMessage(`{"pomodoro":25}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"pomodoro":25}`, string(u.Settings))

	_, err = f.users.UpdateSettings(ctx, f.user.ID, json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.users.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pomodoro":25}`, string(got.Settings))
}
