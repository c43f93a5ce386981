package domain

import "fmt"

const (
	FieldUsername = "username"
	FieldImage    = "image"
)

type User struct {
	ID       EntityID
	Username string
	Email    string
	Image    string
}

var _ Entity = User{}

func (u User) Key() Key {
	return UserKey(u.ID)
}

func (u User) Field(name string) (string, error) {
	switch name {
	case FieldUsername:
		return u.Username, nil
	case FieldImage:
		return u.Image, nil
	default:
		return "", fmt.Errorf("%w: user has no field %q", ErrUnknownField, name)
	}
}

func (u User) WithField(name, value string) (Entity, error) {
	switch name {
	case FieldUsername:
		u.Username = value
	case FieldImage:
		u.Image = value
	default:
		return nil, fmt.Errorf("%w: user has no field %q", ErrUnknownField, name)
	}
	return u, nil
}

// DisplayName falls back to the email when the username is still empty, which
// happens right after registration on some backends.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("user %s", u.ID)
}
