package ports

import (
	"context"

	"github.com/bnema/teams-cli/internal/domain"
)

type EntityLoader interface {
	Load(ctx context.Context, key domain.Key) (domain.Entity, error)
}

type EntityLoaderFunc func(ctx context.Context, key domain.Key) (domain.Entity, error)

func (f EntityLoaderFunc) Load(ctx context.Context, key domain.Key) (domain.Entity, error) {
	return f(ctx, key)
}

// FieldWriter persists a single field. The returned value is the canonical
// value chosen by the server, or "" when the server echoes nothing back.
type FieldWriter interface {
	WriteField(ctx context.Context, key domain.Key, field, value string) (string, error)
}

type FieldWriterFunc func(ctx context.Context, key domain.Key, field, value string) (string, error)

func (f FieldWriterFunc) WriteField(ctx context.Context, key domain.Key, field, value string) (string, error) {
	return f(ctx, key, field, value)
}
