package ports

import (
	"context"

	"github.com/bnema/teams-cli/internal/domain"
)

type SessionRepository interface {
	// Load returns domain.ErrNoSession when nothing is saved.
	Load(ctx context.Context) (domain.SessionRecord, error)
	Save(ctx context.Context, record domain.SessionRecord) error
	Delete(ctx context.Context) error
	Path() string
}
