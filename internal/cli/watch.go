package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "watch [ID]",
		Short: "Live timer for an in-progress session, with break and stop keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !app.IsInteractive() {
				return fmt.Errorf("watch needs an interactive terminal")
			}
			user, err := app.asUser(ctx, subject)
			if err != nil {
				return err
			}
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			sess, err := watchTarget(ctx, app, user.ID, ref)
			if err != nil {
				return err
			}

			m := newWatchModel(ctx, app.Sessions, user.ID, sess, app.Now, user.Location())
			p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(out(cmd)))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if wm, ok := final.(watchModel); ok && wm.err != nil {
				return wm.err
			}
			return nil
		},
	}
	addUserFlag(cmd, &subject)
	return cmd
}

// watchTarget loads the session to watch: the given one, or the most recent
// in-progress session when ref is empty.
func watchTarget(ctx context.Context, app *App, userID, ref string) (*domain.Session, error) {
	if ref != "" {
		id, err := resolveSessionID(ctx, app, userID, ref)
		if err != nil {
			return nil, err
		}
		return app.Sessions.Get(ctx, userID, id)
	}
	sessions, err := app.Sessions.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.Status == domain.SessionInProgress {
			return app.Sessions.Get(ctx, userID, s.ID)
		}
	}
	return nil, fmt.Errorf("no session in progress: %w", domain.ErrNotFound)
}

type watchKeyMap struct {
	Break key.Binding
	Stop  key.Binding
	Quit  key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Break, k.Stop, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultWatchKeys() watchKeyMap {
	return watchKeyMap{
		Break: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break on/off")),
		Stop:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop session")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

type (
	watchTickMsg    time.Time
	watchSessionMsg struct {
		session *domain.Session
		note    string
	}
	watchErrMsg struct{ err error }
)

// watchModel renders a running session. Elapsed and focus time are derived
// from the stored session on every tick, so the display never drifts from
// what the API reports.
type watchModel struct {
	ctx      context.Context
	sessions service.SessionService
	userID   string
	now      func() time.Time
	loc      *time.Location

	session *domain.Session
	note    string
	err     error
	done    bool

	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap
}

func newWatchModel(ctx context.Context, sessions service.SessionService, userID string, sess *domain.Session, now func() time.Time, loc *time.Location) watchModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StyleGreen))
	return watchModel{
		ctx:      ctx,
		sessions: sessions,
		userID:   userID,
		now:      now,
		loc:      loc,
		session:  sess,
		done:     sess.Status == domain.SessionCompleted,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultWatchKeys(),
	}
}

func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, watchTick())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case m.done:
			return m, nil
		case key.Matches(msg, m.keys.Break):
			return m, m.toggleBreak()
		case key.Matches(msg, m.keys.Stop):
			return m, m.stop()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case watchTickMsg:
		if m.done {
			return m, nil
		}
		return m, watchTick()

	case watchSessionMsg:
		m.session = msg.session
		m.note = msg.note
		m.err = nil
		if m.session.Status == domain.SessionCompleted {
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case watchErrMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) toggleBreak() tea.Cmd {
	ctx, sessions, userID, id := m.ctx, m.sessions, m.userID, m.session.ID
	open := m.session.ActiveBreak() != nil
	return func() tea.Msg {
		var note string
		if open {
			res, err := sessions.StopBreak(ctx, userID, id)
			if err != nil {
				return watchErrMsg{err}
			}
			note = fmt.Sprintf("break over after %s", formatter.FormatMinutes(res.Break.Minutes()))
		} else {
			if _, err := sessions.StartBreak(ctx, userID, id, string(domain.BreakShort)); err != nil {
				return watchErrMsg{err}
			}
			note = "break started"
		}
		sess, err := sessions.Get(ctx, userID, id)
		if err != nil {
			return watchErrMsg{err}
		}
		return watchSessionMsg{session: sess, note: note}
	}
}

func (m watchModel) stop() tea.Cmd {
	ctx, sessions, userID, id := m.ctx, m.sessions, m.userID, m.session.ID
	return func() tea.Msg {
		sess, err := sessions.Stop(ctx, userID, id)
		if err != nil {
			return watchErrMsg{err}
		}
		return watchSessionMsg{session: sess, note: "session completed"}
	}
}

// elapsed returns wall time since start and the part of it not spent on breaks.
func (m watchModel) elapsed() (total, focus time.Duration) {
	s := m.session
	end := m.now()
	if s.EndAt != nil {
		end = *s.EndAt
	}
	total = end.Sub(s.StartAt)
	if total < 0 {
		total = 0
	}
	focus = total - time.Duration(s.BreakTime)*time.Minute
	if b := s.ActiveBreak(); b != nil {
		focus -= end.Sub(b.StartTime)
	}
	if focus < 0 {
		focus = 0
	}
	return total, focus
}

func (m watchModel) View() string {
	s := m.session
	var b strings.Builder

	indicator := m.spinner.View()
	if m.done || s.Status != domain.SessionInProgress {
		indicator = " "
	}
	fmt.Fprintf(&b, "%s %s  %s", indicator, formatter.Bold(s.Name), formatter.StatusPill(s.Status))
	if s.Tag != nil {
		fmt.Fprintf(&b, "  %s", formatter.TagLabel(s.Tag))
	}
	b.WriteString("\n\n")

	total, focus := m.elapsed()
	fmt.Fprintf(&b, "  elapsed %s   focus %s\n",
		formatter.Bold(formatter.FormatElapsed(total)), formatter.FormatElapsed(focus))
	if br := s.ActiveBreak(); br != nil {
		fmt.Fprintf(&b, "  %s %s since %s\n", formatter.BreakBadge(br.Type),
			formatter.FormatElapsed(m.now().Sub(br.StartTime)), formatter.LocalStamp(br.StartTime, m.loc))
	} else if s.Status == domain.SessionScheduled {
		fmt.Fprintf(&b, "  %s\n", formatter.Dim("not started; run tempo session start "+formatter.TruncID(s.ID)))
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\n  %s\n", formatter.StyleRed.Render(m.err.Error()))
	} else if m.note != "" {
		fmt.Fprintf(&b, "\n  %s\n", formatter.Dim(m.note))
	}
	if !m.done {
		b.WriteString("\n" + m.help.View(m.keys) + "\n")
	}
	return b.String()
}
