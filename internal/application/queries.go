package application

import (
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/mutation"
)

type ProfileView struct {
	User   domain.User
	IsSelf bool
	// Pending lists unconfirmed edits of the user, oldest first.
	Pending []mutation.PendingMutation
}

type ProjectView struct {
	Project domain.Project
	Owner   domain.User
	IsOwner bool
}

// TeamView lists the owner first, then the members in project order.
type TeamView struct {
	Project domain.Project
	Members []domain.User
}
