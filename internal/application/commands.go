package application

import (
	"fmt"

	"github.com/bnema/teams-cli/internal/domain"
)

type LoginCommand struct {
	Email    string
	Password string
}

type RegisterCommand struct {
	Username string
	Email    string
	Password string
}

// TokenRef is the vault reference under which a user's bearer token lives.
func TokenRef(id domain.EntityID) string {
	return fmt.Sprintf("teams/users/%d/token", id)
}
