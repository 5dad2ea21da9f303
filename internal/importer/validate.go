package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// ValidateSchema checks the whole document before anything is written and
// returns every problem found, each prefixed with its JSON path.
func ValidateSchema(schema *Schema) []error {
	var errs []error

	if schema.Version != SchemaVersion {
		errs = append(errs, fmt.Errorf("version: unsupported value %d (expected %d)", schema.Version, SchemaVersion))
	}

	tagNames := make(map[string]bool, len(schema.Tags))
	for i, t := range schema.Tags {
		path := fmt.Sprintf("tags[%d]", i)
		tag := domain.Tag{Name: t.Name, Color: t.Color}
		if err := tag.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		key := strings.ToLower(tag.Name)
		if tagNames[key] {
			errs = append(errs, fmt.Errorf("%s.name: duplicate tag %q", path, tag.Name))
		}
		tagNames[key] = true
	}

	for i := range schema.Sessions {
		errs = append(errs, validateSession(fmt.Sprintf("sessions[%d]", i), &schema.Sessions[i], tagNames)...)
	}
	return errs
}

func validateSession(path string, s *SessionImport, tagNames map[string]bool) []error {
	var errs []error

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, fmt.Errorf("%s.name is required", path))
	}
	if s.Tag == "" {
		errs = append(errs, fmt.Errorf("%s.tag is required", path))
	} else if !tagNames[strings.ToLower(strings.TrimSpace(s.Tag))] {
		errs = append(errs, fmt.Errorf("%s.tag: %q is not listed in tags", path, s.Tag))
	}

	status, err := domain.ParseSessionStatus(s.Status)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s.status: invalid value %q", path, s.Status))
	}

	start, startErr := time.Parse(time.RFC3339, s.StartAt)
	if startErr != nil {
		errs = append(errs, fmt.Errorf("%s.start_at: invalid timestamp %q (expected RFC3339)", path, s.StartAt))
	}
	if s.EndAt != nil {
		end, err := time.Parse(time.RFC3339, *s.EndAt)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s.end_at: invalid timestamp %q (expected RFC3339)", path, *s.EndAt))
		case startErr == nil && end.Before(start):
			errs = append(errs, fmt.Errorf("%s.end_at must not be before start_at", path))
		}
	}
	if status == domain.SessionCompleted && s.EndAt == nil {
		errs = append(errs, fmt.Errorf("%s.end_at is required for a completed session", path))
	}
	if status == domain.SessionInProgress && s.EndAt != nil {
		errs = append(errs, fmt.Errorf("%s.end_at must be empty for a session in progress", path))
	}
	if s.BreakTime != nil && *s.BreakTime < 0 {
		errs = append(errs, fmt.Errorf("%s.break_time must be >= 0", path))
	}
	return errs
}
