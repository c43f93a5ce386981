package mutation

import "log/slog"

func logSubmitted(logger *slog.Logger, m PendingMutation) {
	logger.Debug("optimistic edit applied",
		slog.String("mutation", m.ID),
		slog.String("key", m.Key.String()),
		slog.String("field", m.Field),
	)
}

func logConfirmed(logger *slog.Logger, m PendingMutation) {
	logger.Debug("edit confirmed",
		slog.String("mutation", m.ID),
		slog.String("key", m.Key.String()),
		slog.String("field", m.Field),
	)
}

func logRolledBack(logger *slog.Logger, m PendingMutation, err error) {
	logger.Warn("edit rolled back",
		slog.String("mutation", m.ID),
		slog.String("key", m.Key.String()),
		slog.String("field", m.Field),
		slog.Any("error", err),
	)
}
