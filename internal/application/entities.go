package application

import (
	"context"
	"fmt"

	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
)

// gatewayLoader feeds the resource cache.
type gatewayLoader struct {
	gateway ports.Gateway
}

var _ ports.EntityLoader = gatewayLoader{}

func (l gatewayLoader) Load(ctx context.Context, key domain.Key) (domain.Entity, error) {
	switch key.Type {
	case domain.EntityUser:
		user, err := l.gateway.FetchUser(ctx, key.ID)
		if err != nil {
			return nil, err
		}
		return user, nil
	case domain.EntityProject:
		project, err := l.gateway.FetchProject(ctx, key.ID)
		if err != nil {
			return nil, err
		}
		return project, nil
	default:
		return nil, &domain.RemoteFetchError{Type: key.Type, ID: key.ID, Cause: fmt.Errorf("unsupported entity type %q", key.Type)}
	}
}

// gatewayWriter routes single-field edits to the matching gateway call.
type gatewayWriter struct {
	gateway ports.Gateway
}

var _ ports.FieldWriter = gatewayWriter{}

func (w gatewayWriter) WriteField(ctx context.Context, key domain.Key, field, value string) (string, error) {
	if key.Type != domain.EntityUser {
		return "", &domain.RemoteWriteError{Type: key.Type, ID: key.ID, Field: field, Cause: fmt.Errorf("%s entities are read-only", key.Type)}
	}

	switch field {
	case domain.FieldUsername:
		return "", w.gateway.UpdateUsername(ctx, key.ID, value)
	case domain.FieldImage:
		return w.gateway.UploadImage(ctx, key.ID, value)
	default:
		return "", &domain.RemoteWriteError{Type: key.Type, ID: key.ID, Field: field, Cause: fmt.Errorf("%w: %q", domain.ErrUnknownField, field)}
	}
}
