package application

import (
	"log/slog"

	"github.com/bnema/teams-cli/internal/domain"
)

func logLoggedIn(logger *slog.Logger, user domain.User) {
	logger.Info("logged in", slog.String("user", user.Key().String()))
}

func logLoggedOut(logger *slog.Logger, id domain.EntityID) {
	logger.Info("logged out", slog.String("user", domain.UserKey(id).String()))
}

func logRestoreSkipped(logger *slog.Logger, reason string, err error) {
	logger.Warn("saved session not restored", slog.String("reason", reason), slog.Any("error", err))
}

func logSelfInvalidated(logger *slog.Logger, key domain.Key) {
	logger.Debug("invalidated former self", slog.String("key", key.String()))
}
