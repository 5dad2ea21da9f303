package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

const dayKeyLayout = "2006-01-02"

// HistoryEntry is a completed session with its derived durations.
type HistoryEntry struct {
	Session      *domain.Session
	TotalMinutes int
	FocusMinutes int
}

type HistoryResult struct {
	Range    Range
	Sessions []HistoryEntry
}

// DayBucket aggregates completed sessions that started on Date (user timezone).
type DayBucket struct {
	Date         string
	TotalMinutes int
	FocusMinutes int
	Sessions     int
}

type TagTotal struct {
	TagID        string
	Name         string
	Color        string
	TotalMinutes int
	FocusMinutes int
	Sessions     int
}

type AnalyticsResult struct {
	Range Range
	Days  []DayBucket
	Tags  []TagTotal
}

type queryService struct {
	sessions repository.SessionRepo
	users    repository.UserRepo
	now      func() time.Time
	observer UseCaseObserver
}

func NewQueryService(sessions repository.SessionRepo, users repository.UserRepo, opts ...Option) QueryService {
	o := buildOptions(opts)
	return &queryService{
		sessions: sessions,
		users:    users,
		now:      o.now,
		observer: o.observer,
	}
}

// History lists completed sessions that started inside the last days calendar
// days of the user's timezone. tagID narrows the result only when non-empty.
func (q *queryService) History(ctx context.Context, userID string, days int, tagID *string) (result *HistoryResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "days": days}
	defer func() { observe(ctx, q.observer, "history", startedAt, fields, &err) }()

	var rng Range
	var sessions []*domain.Session
	rng, sessions, err = q.completedInWindow(ctx, userID, days, tagID)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(sessions))
	for _, s := range sessions {
		entries = append(entries, HistoryEntry{
			Session:      s,
			TotalMinutes: s.TotalMinutes(),
			FocusMinutes: s.FocusMinutes(),
		})
	}
	fields["sessions"] = len(entries)
	return &HistoryResult{Range: rng, Sessions: entries}, nil
}

func (q *queryService) Upcoming(ctx context.Context, userID string) ([]*domain.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return q.sessions.ListScheduledFrom(ctx, userID, q.now())
}

// Analytics buckets the History window per local day, zero-filling empty
// days, and totals it per tag (largest first).
func (q *queryService) Analytics(ctx context.Context, userID string, days int, tagID *string) (result *AnalyticsResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID, "days": days}
	defer func() { observe(ctx, q.observer, "analytics", startedAt, fields, &err) }()

	var rng Range
	var sessions []*domain.Session
	rng, sessions, err = q.completedInWindow(ctx, userID, days, tagID)
	if err != nil {
		return nil, err
	}
	loc := rng.From.Location()

	buckets := make([]DayBucket, rng.Days)
	index := make(map[string]int, rng.Days)
	for i := range buckets {
		key := rng.From.AddDate(0, 0, i).Format(dayKeyLayout)
		buckets[i].Date = key
		index[key] = i
	}

	byTag := map[string]*TagTotal{}
	for _, s := range sessions {
		total, focus := s.TotalMinutes(), s.FocusMinutes()
		if i, ok := index[s.StartAt.In(loc).Format(dayKeyLayout)]; ok {
			buckets[i].TotalMinutes += total
			buckets[i].FocusMinutes += focus
			buckets[i].Sessions++
		}
		tt, ok := byTag[s.TagID]
		if !ok {
			tt = &TagTotal{TagID: s.TagID}
			if s.Tag != nil {
				tt.Name, tt.Color = s.Tag.Name, s.Tag.Color
			}
			byTag[s.TagID] = tt
		}
		tt.TotalMinutes += total
		tt.FocusMinutes += focus
		tt.Sessions++
	}

	tags := make([]TagTotal, 0, len(byTag))
	for _, tt := range byTag {
		tags = append(tags, *tt)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].TotalMinutes != tags[j].TotalMinutes {
			return tags[i].TotalMinutes > tags[j].TotalMinutes
		}
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})

	fields["sessions"] = len(sessions)
	return &AnalyticsResult{Range: rng, Days: buckets, Tags: tags}, nil
}

func (q *queryService) completedInWindow(ctx context.Context, userID string, days int, tagID *string) (Range, []*domain.Session, error) {
	if err := requireUser(userID); err != nil {
		return Range{}, nil, err
	}
	user, err := q.users.GetByID(ctx, userID)
	if err != nil {
		return Range{}, nil, err
	}
	rng := RangeFromDays(q.now(), days, user.Location())

	var filter *string
	if id := trimmed(tagID); id != "" {
		filter = &id
	}
	sessions, err := q.sessions.ListCompletedInRange(ctx, userID, rng.From, rng.To, filter)
	if err != nil {
		return Range{}, nil, err
	}
	return rng, sessions, nil
}
