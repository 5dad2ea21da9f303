package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

// resolveSessionID accepts a full id or a unique prefix (as printed by the
// list commands).
func resolveSessionID(ctx context.Context, app *App, userID, ref string) (string, error) {
	sessions, err := app.Sessions.List(ctx, userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return matchPrefix("session", ref, ids)
}

// resolveTagID accepts a tag id, a unique id prefix or a tag name.
func resolveTagID(ctx context.Context, app *App, userID, ref string) (string, error) {
	tags, err := app.Tags.List(ctx, userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.EqualFold(t.Name, strings.TrimSpace(ref)) {
			return t.ID, nil
		}
		ids = append(ids, t.ID)
	}
	return matchPrefix("tag", ref, ids)
}

func matchPrefix(kind, ref string, ids []string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: %s id is required", domain.ErrValidation, kind)
	}
	var match string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: %s prefix %q is ambiguous", domain.ErrValidation, kind, ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("%s %q: %w", kind, ref, domain.ErrNotFound)
	}
	return match, nil
}
