package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
)

const barWidth = 24

// FormatSessions renders a session list as a table.
func FormatSessions(sessions []*domain.Session, loc *time.Location) string {
	if len(sessions) == 0 {
		return Dim("No sessions.") + "\n"
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			TruncID(s.ID),
			s.Name,
			TagLabel(s.Tag),
			LocalStamp(s.StartAt, loc),
			StatusPill(s.Status),
		})
	}
	return RenderTable([]string{"ID", "NAME", "TAG", "START", "STATUS"}, rows)
}

// FormatSession renders one session with its breaks.
func FormatSession(s *domain.Session, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(s.Name), StatusPill(s.Status))
	fmt.Fprintf(&b, "%s %s\n", Dim("id:   "), s.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("tag:  "), TagLabel(s.Tag))
	fmt.Fprintf(&b, "%s %s\n", Dim("start:"), LocalStamp(s.StartAt, loc))
	if s.EndAt != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("end:  "), LocalStamp(*s.EndAt, loc))
		fmt.Fprintf(&b, "%s %s (focus %s)\n", Dim("total:"), FormatMinutes(s.TotalMinutes()), FormatMinutes(s.FocusMinutes()))
	} else if s.PlannedEndAt != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("until:"), LocalStamp(*s.PlannedEndAt, loc))
	}
	if s.BreakTime > 0 {
		fmt.Fprintf(&b, "%s %s\n", Dim("break:"), FormatMinutes(s.BreakTime))
	}
	for _, br := range s.Breaks {
		end := StyleGreen.Render("active")
		if br.EndTime != nil {
			end = LocalStamp(*br.EndTime, loc) + " " + Dim("("+FormatMinutes(br.Minutes())+")")
		}
		fmt.Fprintf(&b, "  %s %s → %s\n", BreakBadge(br.Type), LocalStamp(br.StartTime, loc), end)
	}
	return b.String()
}

// FormatHistory renders completed sessions with a per-window total line.
func FormatHistory(h *service.HistoryResult, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("History · last %d days", h.Range.Days)))
	b.WriteString("\n")
	if len(h.Sessions) == 0 {
		b.WriteString(Dim("No completed sessions in this window.") + "\n")
		return b.String()
	}

	var total, focus int
	rows := make([][]string, 0, len(h.Sessions))
	for _, e := range h.Sessions {
		total += e.TotalMinutes
		focus += e.FocusMinutes
		rows = append(rows, []string{
			LocalStamp(e.Session.StartAt, loc),
			e.Session.Name,
			TagLabel(e.Session.Tag),
			FormatMinutes(e.TotalMinutes),
			FormatMinutes(e.FocusMinutes),
		})
	}
	b.WriteString(RenderTable([]string{"START", "NAME", "TAG", "TOTAL", "FOCUS"}, rows, 3, 4))
	fmt.Fprintf(&b, "\n%s %s  %s %s\n", Dim("total"), Bold(FormatMinutes(total)), Dim("focus"), Bold(FormatMinutes(focus)))
	return b.String()
}

// FormatAnalytics renders per-day bars and the per-tag breakdown.
func FormatAnalytics(a *service.AnalyticsResult) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Focus by day · last %d days", a.Range.Days)))
	b.WriteString("\n")

	peak := 0
	for _, d := range a.Days {
		peak = max(peak, d.FocusMinutes)
	}
	for _, d := range a.Days {
		fmt.Fprintf(&b, "%s  %s  %s\n", Dim(d.Date), RenderBar(d.FocusMinutes, peak, barWidth), FormatMinutes(d.FocusMinutes))
	}

	b.WriteString("\n")
	b.WriteString(Header("By tag"))
	b.WriteString("\n")
	if len(a.Tags) == 0 {
		b.WriteString(Dim("Nothing tracked yet.") + "\n")
		return b.String()
	}
	rows := make([][]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		rows = append(rows, []string{
			TagLabel(&domain.Tag{Name: t.Name, Color: t.Color}),
			fmt.Sprint(t.Sessions),
			FormatMinutes(t.TotalMinutes),
			FormatMinutes(t.FocusMinutes),
		})
	}
	b.WriteString(RenderTable([]string{"TAG", "SESSIONS", "TOTAL", "FOCUS"}, rows, 1, 2, 3))
	return b.String()
}
