package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/teams-cli/internal/adapters/render/profile"
	"github.com/bnema/teams-cli/internal/adapters/watch"
	"github.com/bnema/teams-cli/internal/application"
	"github.com/bnema/teams-cli/internal/cache"
	"github.com/bnema/teams-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var watchHelpStyle = lipgloss.NewStyle().Faint(true)

type profileLoadedMsg struct {
	view application.ProfileView
	err  error
}

type cacheEventMsg struct {
	event cache.Event
}

type sessionFileChangedMsg struct{}

type refreshTickMsg struct{}

// watchModel follows one profile. A zero userID follows whoever is logged
// in, including across logins made by other teams processes.
type watchModel struct {
	ctx     context.Context
	service *application.Service
	userID  domain.EntityID
	refresh time.Duration
	now     func() time.Time

	view   application.ProfileView
	shown  domain.EntityID
	err    error
	loaded bool
}

func newWatchModel(ctx context.Context, service *application.Service, userID domain.EntityID, refresh time.Duration, now func() time.Time) watchModel {
	return watchModel{
		ctx:     ctx,
		service: service,
		userID:  userID,
		refresh: refresh,
		now:     now,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m watchModel) load() tea.Cmd {
	return func() tea.Msg {
		view, err := m.service.Profile(m.ctx, m.userID)
		return profileLoadedMsg{view: view, err: err}
	}
}

func (m watchModel) syncSession() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.service.SyncSession(m.ctx); err != nil {
			return profileLoadedMsg{err: fmt.Errorf("reload session: %w", err)}
		}
		view, err := m.service.Profile(m.ctx, m.userID)
		return profileLoadedMsg{view: view, err: err}
	}
}

func (m watchModel) invalidateUsers() tea.Cmd {
	return func() tea.Msg {
		m.service.Cache().InvalidateType(domain.EntityUser)
		return nil
	}
}

func (m watchModel) tick() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	case profileLoadedMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.view = msg.view
			m.shown = msg.view.User.ID
		}
		return m, nil
	case cacheEventMsg:
		if m.shown == 0 || msg.event.Key != domain.UserKey(m.shown) {
			return m, nil
		}
		// A failed fetch leaves the entry failed and the next load would
		// fetch again. Retries wait for the refresh tick.
		if msg.event.Kind == cache.EventFailed {
			return m, nil
		}
		return m, m.load()
	case sessionFileChangedMsg:
		return m, m.syncSession()
	case refreshTickMsg:
		// Invalidation events trigger the reload.
		return m, tea.Batch(m.invalidateUsers(), m.tick())
	default:
		return m, nil
	}
}

func (m watchModel) View() string {
	var body string
	switch {
	case !m.loaded:
		body = "Loading profile..."
	case errors.Is(m.err, domain.ErrNotLoggedIn):
		body = "Not logged in. Waiting for `teams auth login`..."
	case m.err != nil && m.shown == 0:
		body = "Error: " + m.err.Error()
	default:
		opts := profile.RenderOptions{Now: m.now()}
		if entry, ok := m.service.Cache().Entry(domain.UserKey(m.shown)); ok {
			opts.Status = entry.Status
		}
		body = profile.Profile(m.view, opts)
		if m.err != nil {
			body += "\n" + "Error: " + m.err.Error()
		}
	}

	return strings.Join([]string{body, "", watchHelpStyle.Render("q: quit")}, "\n")
}

func newWatchCmd(app *app) *cobra.Command {
	var userID string
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a profile live until q or ctrl+c",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseOptionalID(userID)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			p := tea.NewProgram(
				newWatchModel(ctx, app.service, id, refresh, app.now),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)

			// Listeners must not block the cache, so events are forwarded
			// from their own goroutine.
			unsubscribe := app.service.Cache().Subscribe(func(event cache.Event) {
				go p.Send(cacheEventMsg{event: event})
			})
			defer unsubscribe()

			watcher, err := watch.File(ctx, app.config.Session.Path, func() {
				p.Send(sessionFileChangedMsg{})
			}, watch.WithLogger(app.logger))
			if err != nil {
				return fmt.Errorf("watch session file: %w", err)
			}
			defer watcher.Close()

			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID (defaults to the logged-in user)")
	cmd.Flags().DurationVar(&refresh, "refresh", 0, "Refetch the profile at this interval (0 disables)")

	return cmd
}
