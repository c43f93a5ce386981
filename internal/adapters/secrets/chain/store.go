// Package chain tries pass first and falls back to the file vault.
package chain

import (
	"context"
	"errors"
	"fmt"

	filevault "github.com/bnema/teams-cli/internal/adapters/secrets/file"
	passvault "github.com/bnema/teams-cli/internal/adapters/secrets/pass"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
)

type Vault struct {
	primary  ports.TokenVault
	fallback ports.TokenVault
}

var _ ports.TokenVault = (*Vault)(nil)

var (
	errNilPrimaryVault  = errors.New("primary token vault is nil")
	errNilFallbackVault = errors.New("fallback token vault is nil")
)

func NewVault(primary ports.TokenVault, fallback ports.TokenVault) (*Vault, error) {
	if primary == nil {
		return nil, errNilPrimaryVault
	}
	if fallback == nil {
		return nil, errNilFallbackVault
	}

	return &Vault{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Vault, error) {
	return NewVault(passvault.NewVault(), filevault.NewVault(fileRoot))
}

func (v *Vault) Store(ctx context.Context, ref string, token string) error {
	err := v.primary.Store(ctx, ref, token)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := v.fallback.Store(ctx, ref, token)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary vault store failed: %w; fallback vault store failed: %w", err, fallbackErr)
}

// Load also consults the fallback when the primary has no entry: the token
// may have been stored while pass was unavailable.
func (v *Vault) Load(ctx context.Context, ref string) (string, error) {
	token, err := v.primary.Load(ctx, ref)
	if err == nil {
		return token, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackToken, fallbackErr := v.fallback.Load(ctx, ref)
	if fallbackErr == nil {
		return fallbackToken, nil
	}
	if errors.Is(err, domain.ErrTokenNotFound) && errors.Is(fallbackErr, domain.ErrTokenNotFound) {
		return "", fmt.Errorf("token %q: %w", ref, domain.ErrTokenNotFound)
	}

	return "", fmt.Errorf("primary vault load failed: %w; fallback vault load failed: %w", err, fallbackErr)
}

// Erase clears both vaults so a token written to the fallback cannot outlive
// a logout.
func (v *Vault) Erase(ctx context.Context, ref string) error {
	err := v.primary.Erase(ctx, ref)
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := v.fallback.Erase(ctx, ref)
	if err != nil && fallbackErr != nil {
		return fmt.Errorf("primary vault erase failed: %w; fallback vault erase failed: %w", err, fallbackErr)
	}
	if err != nil && !errors.Is(err, passvault.ErrUnavailable) {
		return fmt.Errorf("primary vault erase failed: %w", err)
	}
	if fallbackErr != nil {
		return fmt.Errorf("fallback vault erase failed: %w", fallbackErr)
	}

	return nil
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
