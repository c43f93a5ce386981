package ports

import (
	"context"

	"github.com/bnema/teams-cli/internal/domain"
)

type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Gateway is the remote API boundary. Implementations translate transport
// failures into domain.AuthError, domain.RemoteFetchError and
// domain.RemoteWriteError.
type Gateway interface {
	Login(ctx context.Context, email, password string) (domain.LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (domain.LoginResult, error)
	FetchUser(ctx context.Context, id domain.EntityID) (domain.User, error)
	FetchProject(ctx context.Context, id domain.EntityID) (domain.Project, error)
	UpdateUsername(ctx context.Context, id domain.EntityID, name string) error
	UploadImage(ctx context.Context, id domain.EntityID, fileHandle string) (string, error)
}

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the request goes out anonymously.
type TokenSource interface {
	Token() string
}
