package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
)

// Result counts what Apply wrote.
type Result struct {
	TagsCreated     int
	TagsReused      int
	SessionsCreated int
}

// Apply validates schema and writes it for userID through the services, so
// imported rows obey the same rules as API requests. Tags that already exist
// (case-insensitive name) are reused. Nothing is written when validation fails.
func Apply(ctx context.Context, userID string, schema *Schema, tags service.TagService, sessions service.SessionService) (*Result, error) {
	if errs := ValidateSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}

	existing, err := tags.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	tagIDs := make(map[string]string, len(existing)+len(schema.Tags))
	for _, t := range existing {
		tagIDs[strings.ToLower(t.Name)] = t.ID
	}

	res := &Result{}
	for _, t := range schema.Tags {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if _, ok := tagIDs[key]; ok {
			res.TagsReused++
			continue
		}
		created, err := tags.Create(ctx, userID, t.Name, t.Color)
		if err != nil {
			return res, fmt.Errorf("creating tag %q: %w", t.Name, err)
		}
		tagIDs[key] = created.ID
		res.TagsCreated++
	}

	for i, s := range schema.Sessions {
		tagID := tagIDs[strings.ToLower(strings.TrimSpace(s.Tag))]
		if _, err := sessions.Create(ctx, userID, toCreateInput(s, tagID)); err != nil {
			return res, fmt.Errorf("sessions[%d]: %w", i, err)
		}
		res.SessionsCreated++
	}
	return res, nil
}

func toCreateInput(s SessionImport, tagID string) service.CreateSessionInput {
	return service.CreateSessionInput{
		Name:      s.Name,
		StartAt:   s.StartAt,
		EndAt:     s.EndAt,
		TagID:     &tagID,
		BreakTime: s.BreakTime,
		Status:    s.Status,
	}
}

// Export builds a document that Apply can load back. Scheduled sessions keep
// their planned end as end_at. Sessions are written oldest first.
func Export(tags []*domain.Tag, sessions []*domain.Session) *Schema {
	schema := &Schema{
		Version:  SchemaVersion,
		Tags:     make([]TagImport, 0, len(tags)),
		Sessions: make([]SessionImport, 0, len(sessions)),
	}
	names := make(map[string]string, len(tags))
	for _, t := range tags {
		names[t.ID] = t.Name
		schema.Tags = append(schema.Tags, TagImport{Name: t.Name, Color: t.Color})
	}

	ordered := append([]*domain.Session(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartAt.Before(ordered[j].StartAt) })

	for _, s := range ordered {
		out := SessionImport{
			Name:    s.Name,
			Tag:     names[s.TagID],
			Status:  string(s.Status),
			StartAt: s.StartAt.UTC().Format(time.RFC3339),
		}
		end := s.EndAt
		if end == nil {
			end = s.PlannedEndAt
		}
		if end != nil {
			v := end.UTC().Format(time.RFC3339)
			out.EndAt = &v
		}
		if s.BreakTime > 0 {
			b := s.BreakTime
			out.BreakTime = &b
		}
		schema.Sessions = append(schema.Sessions, out)
	}
	return schema
}
