package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/gin-gonic/gin"
)

const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

type successBody struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, successBody{Status: "success", Data: data})
}

func wireTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}

func wireTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := wireTime(*t)
	return &s
}

type tagView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

func newTagView(t *domain.Tag) *tagView {
	if t == nil {
		return nil
	}
	return &tagView{ID: t.ID, Name: t.Name, Color: t.Color, CreatedAt: wireTime(t.CreatedAt)}
}

func newTagViews(tags []*domain.Tag) []*tagView {
	out := make([]*tagView, 0, len(tags))
	for _, t := range tags {
		out = append(out, newTagView(t))
	}
	return out
}

type breakView struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	Type      string  `json:"type"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

func newBreakView(b *domain.Break) *breakView {
	return &breakView{
		ID:        b.ID,
		SessionID: b.SessionID,
		Type:      string(b.Type),
		StartTime: wireTime(b.StartTime),
		EndTime:   wireTimePtr(b.EndTime),
	}
}

type sessionView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       string       `json:"status"`
	StartAt      string       `json:"start_at"`
	EndAt        *string      `json:"end_at"`
	PlannedEndAt *string      `json:"planned_end_at,omitempty"`
	BreakTime    int          `json:"break_time"`
	TagID        string       `json:"tag_id"`
	Tag          *tagView     `json:"tag,omitempty"`
	CreatedAt    string       `json:"created_at"`
	Breaks       []*breakView `json:"breaks,omitempty"`
}

func newSessionView(s *domain.Session) *sessionView {
	v := &sessionView{
		ID:           s.ID,
		Name:         s.Name,
		Status:       string(s.Status),
		StartAt:      wireTime(s.StartAt),
		EndAt:        wireTimePtr(s.EndAt),
		PlannedEndAt: wireTimePtr(s.PlannedEndAt),
		BreakTime:    s.BreakTime,
		TagID:        s.TagID,
		Tag:          newTagView(s.Tag),
		CreatedAt:    wireTime(s.CreatedAt),
	}
	for _, b := range s.Breaks {
		v.Breaks = append(v.Breaks, newBreakView(b))
	}
	return v
}

func newSessionViews(sessions []*domain.Session) []*sessionView {
	out := make([]*sessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSessionView(s))
	}
	return out
}

type userView struct {
	ID         string          `json:"id"`
	AuthUserID string          `json:"auth_user_id"`
	Name       string          `json:"name"`
	Avatar     *string         `json:"avatar"`
	Timezone   string          `json:"timezone"`
	Settings   json.RawMessage `json:"settings"`
	CreatedAt  string          `json:"created_at"`
}

func newUserView(u *domain.User) *userView {
	return &userView{
		ID:         u.ID,
		AuthUserID: u.AuthUserID,
		Name:       u.Name,
		Avatar:     u.Avatar,
		Timezone:   u.Timezone,
		Settings:   u.Settings,
		CreatedAt:  wireTime(u.CreatedAt),
	}
}

type rangeView struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

func newRangeView(r service.Range) rangeView {
	return rangeView{From: wireTime(r.From), To: wireTime(r.To), Days: r.Days}
}

type historySessionView struct {
	sessionView
	TotalMinutes int `json:"total_minutes"`
	FocusMinutes int `json:"focus_minutes"`
}

type historyView struct {
	Range    rangeView            `json:"range"`
	Sessions []historySessionView `json:"sessions"`
}

func newHistoryView(h *service.HistoryResult) historyView {
	rows := make([]historySessionView, 0, len(h.Sessions))
	for _, e := range h.Sessions {
		rows = append(rows, historySessionView{
			sessionView:  *newSessionView(e.Session),
			TotalMinutes: e.TotalMinutes,
			FocusMinutes: e.FocusMinutes,
		})
	}
	return historyView{Range: newRangeView(h.Range), Sessions: rows}
}

type dayView struct {
	Date         string `json:"date"`
	TotalMinutes int    `json:"total_minutes"`
	FocusMinutes int    `json:"focus_minutes"`
	Sessions     int    `json:"sessions"`
}

type tagTotalView struct {
	TagID        string `json:"tag_id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	TotalMinutes int    `json:"total_minutes"`
	FocusMinutes int    `json:"focus_minutes"`
	Sessions     int    `json:"sessions"`
}

type analyticsView struct {
	Range rangeView      `json:"range"`
	Days  []dayView      `json:"days"`
	Tags  []tagTotalView `json:"tags"`
}

func newAnalyticsView(a *service.AnalyticsResult) analyticsView {
	v := analyticsView{
		Range: newRangeView(a.Range),
		Days:  make([]dayView, 0, len(a.Days)),
		Tags:  make([]tagTotalView, 0, len(a.Tags)),
	}
	for _, d := range a.Days {
		v.Days = append(v.Days, dayView(d))
	}
	for _, t := range a.Tags {
		v.Tags = append(v.Tags, tagTotalView(t))
	}
	return v
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
