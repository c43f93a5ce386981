package ports

import "context"

// TokenVault keeps bearer tokens out of the session file.
type TokenVault interface {
	Load(ctx context.Context, ref string) (string, error)
	Store(ctx context.Context, ref string, token string) error
	Erase(ctx context.Context, ref string) error
}
