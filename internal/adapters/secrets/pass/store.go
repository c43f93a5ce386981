// Package pass keeps bearer tokens in the pass(1) password store.
//
// Each token lives at its own entry path (the session's token ref). The
// token is the first line of the entry so users can annotate it by hand.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
)

// ErrUnavailable means no pass binary is on PATH.
var ErrUnavailable = errors.New("pass command unavailable")

const missingEntry = "is not in the password store"

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Vault implements ports.TokenVault on top of the pass CLI.
type Vault struct {
	run runFunc
}

var _ ports.TokenVault = (*Vault)(nil)

func NewVault() *Vault {
	return &Vault{run: execPass}
}

// CommandError is a failed pass invocation.
type CommandError struct {
	Verb   string
	Ref    string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("pass %s %q: %v", e.Verb, e.Ref, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

func (e *CommandError) missing() bool {
	return strings.Contains(e.Stderr, missingEntry)
}

func (v *Vault) Store(ctx context.Context, ref string, token string) error {
	_, err := v.invoke(ctx, token+"\n", "insert", ref, "-m", "-f")
	return err
}

func (v *Vault) Load(ctx context.Context, ref string) (string, error) {
	out, err := v.invoke(ctx, "", "show", ref)
	var cmdErr *CommandError
	switch {
	case errors.As(err, &cmdErr) && cmdErr.missing():
		return "", fmt.Errorf("pass entry %q: %w", ref, domain.ErrTokenNotFound)
	case err != nil:
		return "", err
	}

	first, _, _ := strings.Cut(out, "\n")
	if token := strings.TrimRight(first, "\r"); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("pass entry %q is empty: %w", ref, domain.ErrTokenNotFound)
}

// Erase succeeds when the entry is already gone.
func (v *Vault) Erase(ctx context.Context, ref string) error {
	_, err := v.invoke(ctx, "", "rm", ref, "-f")
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.missing() {
		return nil
	}
	return err
}

// invoke runs "pass verb [flags...] ref". Flags precede the entry path on
// the command line.
func (v *Vault) invoke(ctx context.Context, input, verb, ref string, flags ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	args := append(append([]string{verb}, flags...), ref)
	stdout, stderr, err := v.run(ctx, input, args...)
	if err != nil {
		return "", &CommandError{Verb: verb, Ref: ref, Stderr: stderr, Err: err}
	}
	return stdout, nil
}

func execPass(ctx context.Context, input string, args ...string) (string, string, error) {
	bin, err := exec.LookPath("pass")
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return "", "", ErrUnavailable
	case err != nil:
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	runErr := cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), runErr
}
