package cache

import (
	"log/slog"

	"github.com/bnema/teams-cli/internal/domain"
)

func logHit(logger *slog.Logger, key domain.Key) {
	logger.Debug("cache hit", slog.String("key", key.String()))
}

func logFetchStarted(logger *slog.Logger, key domain.Key) {
	logger.Debug("fetching entity", slog.String("key", key.String()))
}

func logFetchFailed(logger *slog.Logger, key domain.Key, err error) {
	logger.Warn("fetch failed", slog.String("key", key.String()), slog.Any("error", err))
}

func logInvalidated(logger *slog.Logger, key domain.Key) {
	logger.Debug("entry invalidated", slog.String("key", key.String()))
}
