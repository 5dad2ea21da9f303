package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// Local timestamps typed on the command line; RFC3339 is accepted as well.
var localLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"15:04",
}

// newTagChoice is the select value that switches the form to a new tag.
const newTagChoice = "__new__"

type planInput struct {
	Name     string
	Start    string
	End      string
	Tag      string
	NewTag   string
	NewColor string
	Status   string
	Break    int
}

func newPlanCmd(app *App) *cobra.Command {
	var subject string
	var in planInput

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Schedule a session, or log a finished one with --status COMPLETED",
		Long: `Schedule a session.

Times are "YYYY-MM-DD HH:MM" or "HH:MM" (today) in your timezone, or RFC3339.
When --name or --start is missing and the terminal is interactive, a form
asks for the rest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			if in.Name == "" || in.Start == "" {
				if !app.IsInteractive() {
					return fmt.Errorf("%w: --name and --start are required", domain.ErrValidation)
				}
				tags, err := app.Tags.List(ctx, user.ID)
				if err != nil {
					return err
				}
				if in.Tag != "" {
					if id, err := resolveTagID(ctx, app, user.ID, in.Tag); err == nil {
						in.Tag = id
					}
				}
				if err := planForm(tags, &in).RunWithContext(ctx); err != nil {
					return err
				}
			}

			loc := user.Location()
			now := app.Now()
			create, err := in.toCreateInput(ctx, app, user.ID, now, loc)
			if err != nil {
				return err
			}
			sess, err := app.Sessions.Create(ctx, user.ID, create)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s %s %s %s\n", formatter.StatusPill(sess.Status),
				formatter.Bold(sess.Name), formatter.LocalStamp(sess.StartAt, loc),
				formatter.Dim(sess.ID))
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Session name")
	f.StringVar(&in.Start, "start", "", "Start time")
	f.StringVar(&in.End, "end", "", "Planned end (or actual end for COMPLETED)")
	f.StringVar(&in.Tag, "tag", "", "Existing tag (name or id)")
	f.StringVar(&in.NewTag, "new-tag", "", "Create a tag with this name")
	f.StringVar(&in.NewColor, "color", "#1e90ff", "Color for --new-tag")
	f.StringVar(&in.Status, "status", "", "SCHEDULED (default), IN_PROGRESS or COMPLETED")
	f.IntVar(&in.Break, "break", 0, "Break minutes already taken (COMPLETED only)")
	cmd.MarkFlagsMutuallyExclusive("tag", "new-tag")
	return cmd
}

func (in planInput) toCreateInput(ctx context.Context, app *App, userID string, now time.Time, loc *time.Location) (service.CreateSessionInput, error) {
	start, err := parseLocalTime(in.Start, now, loc)
	if err != nil {
		return service.CreateSessionInput{}, fmt.Errorf("%w: start: %v", domain.ErrValidation, err)
	}
	req := service.CreateSessionInput{
		Name:    in.Name,
		StartAt: start.Format(time.RFC3339),
		Status:  strings.ToUpper(strings.TrimSpace(in.Status)),
	}
	if in.End != "" {
		end, err := parseLocalTime(in.End, now, loc)
		if err != nil {
			return service.CreateSessionInput{}, fmt.Errorf("%w: end: %v", domain.ErrValidation, err)
		}
		s := end.Format(time.RFC3339)
		req.EndAt = &s
	}
	if in.Break > 0 {
		b := in.Break
		req.BreakTime = &b
	}

	switch {
	case strings.TrimSpace(in.NewTag) != "":
		name, color := in.NewTag, in.NewColor
		req.NewTagName, req.NewTagColor = &name, &color
	case in.Tag != "" && in.Tag != newTagChoice:
		id, err := resolveTagID(ctx, app, userID, in.Tag)
		if err != nil {
			return service.CreateSessionInput{}, err
		}
		req.TagID = &id
	}
	return req, nil
}

// parseLocalTime reads a timestamp in loc. A bare HH:MM means that time on
// now's date in loc.
func parseLocalTime(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "15:04" {
			n := now.In(loc)
			t = time.Date(n.Year(), n.Month(), n.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("use YYYY-MM-DD HH:MM, HH:MM or RFC3339")
}

// tempoHuhTheme returns a huh theme using the formatter palette.
func tempoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = formatter.StyleHeader
	t.Focused.SelectSelector = formatter.StyleHeader.UnsetBold()
	t.Focused.SelectedOption = formatter.StyleGreen
	t.Focused.UnselectedOption = formatter.StyleFg
	t.Focused.FocusedButton = formatter.StyleFg.Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = formatter.StyleDim.Padding(0, 1)
	t.Focused.TextInput.Cursor = formatter.StyleHeader.UnsetBold()
	t.Focused.TextInput.Prompt = formatter.StyleHeader.UnsetBold()
	t.Focused.TextInput.Text = formatter.StyleFg
	t.Focused.TextInput.Placeholder = formatter.StyleDim
	t.Focused.Description = formatter.StyleDim

	t.Blurred.Title = formatter.StyleDim
	t.Blurred.SelectSelector = formatter.StyleDim
	t.Blurred.SelectedOption = formatter.StyleDim
	t.Blurred.UnselectedOption = formatter.StyleDim
	t.Blurred.TextInput.Prompt = formatter.StyleDim
	t.Blurred.TextInput.Text = formatter.StyleDim

	return t
}

// planForm asks for whatever the flags left out. The new-tag group is
// hidden unless the tag select picks newTagChoice.
func planForm(tags []*domain.Tag, in *planInput) *huh.Form {
	options := make([]huh.Option[string], 0, len(tags)+1)
	for _, t := range tags {
		options = append(options, huh.NewOption(t.Name, t.ID))
	}
	options = append(options, huh.NewOption("+ new tag", newTagChoice))
	switch {
	case in.NewTag != "":
		in.Tag = newTagChoice
	case in.Tag == "":
		in.Tag = options[0].Value
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Deep work").
				Value(&in.Name).
				Validate(validateRequired("name")),
			huh.NewInput().
				Title("Start").
				Description("YYYY-MM-DD HH:MM or HH:MM").
				Value(&in.Start).
				Validate(validateTimestamp(true)),
			huh.NewInput().
				Title("Planned end").
				Description("Optional").
				Value(&in.End).
				Validate(validateTimestamp(false)),
			huh.NewSelect[string]().
				Title("Tag").
				Options(options...).
				Value(&in.Tag),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("New tag name").
				Value(&in.NewTag).
				Validate(validateRequired("tag name")),
			huh.NewInput().
				Title("Color").
				Value(&in.NewColor).
				Validate(validateColor),
		).WithHideFunc(func() bool { return in.Tag != newTagChoice }),
	).WithTheme(tempoHuhTheme()).WithShowHelp(false)
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateTimestamp(required bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if required {
				return fmt.Errorf("a time is required")
			}
			return nil
		}
		_, err := parseLocalTime(s, time.Now(), time.UTC)
		return err
	}
}

func validateColor(s string) error {
	t := domain.Tag{Name: "x", Color: strings.TrimSpace(s)}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("use a hex color like #1e90ff")
	}
	return nil
}
