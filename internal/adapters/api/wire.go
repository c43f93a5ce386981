package api

import "github.com/bnema/teams-cli/internal/domain"

type credentialsRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

type refPayload struct {
	ID int64 `json:"id"`
}

type projectPayload struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Owner       refPayload   `json:"owner"`
	Members     []refPayload `json:"members"`
}

type loginPayload struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type imagePayload struct {
	ImageURL string `json:"imageUrl"`
}

type errorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{
		ID:       domain.EntityID(p.ID),
		Username: p.Username,
		Email:    p.Email,
		Image:    p.Image,
	}
}

func (p projectPayload) toDomain() domain.Project {
	members := make([]domain.EntityID, 0, len(p.Members))
	for _, member := range p.Members {
		members = append(members, domain.EntityID(member.ID))
	}
	return domain.Project{
		ID:          domain.EntityID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		OwnerID:     domain.EntityID(p.Owner.ID),
		Members:     members,
	}
}
