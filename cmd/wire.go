package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bnema/teams-cli/internal/adapters/api"
	profileadapter "github.com/bnema/teams-cli/internal/adapters/render/profile"
	tomlrepo "github.com/bnema/teams-cli/internal/adapters/repo/toml"
	chainvault "github.com/bnema/teams-cli/internal/adapters/secrets/chain"
	"github.com/bnema/teams-cli/internal/application"
	"github.com/bnema/teams-cli/internal/config"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
	"github.com/bnema/teams-cli/internal/session"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	service         *application.Service
	config          config.Config
	logger          *slog.Logger
	profileRenderer func(application.ProfileView, profileadapter.RenderOptions) (string, error)
	projectRenderer func(application.ProjectView) (string, error)
	teamRenderer    func(application.TeamView, profileadapter.RenderOptions) (string, error)
	now             func() time.Time
}

func wireApp(logOutput io.Writer) (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Log.NewLogger(logOutput)

	sessions, err := tomlrepo.NewSessionRepository(cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	vault, err := chainvault.NewPassFirstWithFileFallback(cfg.Secrets.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire token vault chain: %w", err)
	}

	store := session.NewStore()
	gateway := api.Client{
		BaseURL:        cfg.API.BaseURL,
		HTTPClient:     &http.Client{},
		RequestTimeout: cfg.API.Timeout,
		Tokens:         store,
	}

	return &app{
		service: application.NewService(application.Dependencies{
			Session:  store,
			Gateway:  gateway,
			Sessions: sessions,
			Vault:    vault,
			Clock:    ports.SystemClock{},
			Logger:   logger,
		}),
		config:          cfg,
		logger:          logger,
		profileRenderer: profileadapter.RenderProfile,
		projectRenderer: profileadapter.RenderProject,
		teamRenderer:    profileadapter.RenderTeam,
		now:             time.Now,
	}, nil
}

// restoreSession loads the saved session before a command runs. A broken
// session file is logged and the command continues logged out.
func (a *app) restoreSession(ctx context.Context) {
	if _, err := a.service.Restore(ctx); err != nil {
		a.logger.Warn("restore session failed", slog.Any("error", err))
	}
}

// withProgress runs fn behind a spinner when stderr is a terminal.
func (a *app) withProgress(cmd *cobra.Command, label string, quiet bool, fn func(context.Context) error) error {
	if quiet || !isTerminal(cmd.ErrOrStderr()) {
		return fn(cmd.Context())
	}
	return runSpinner(cmd.Context(), cmd.ErrOrStderr(), label, fn)
}

// selfID is zero when logged out.
func (a *app) selfID() domain.EntityID {
	current := a.service.SessionStore().Snapshot()
	if !current.LoggedIn {
		return 0
	}
	return current.UserID
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
