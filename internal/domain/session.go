package domain

import "time"

// Session is the authentication state of the client. The zero value is the
// logged-out session.
type Session struct {
	Token    string
	UserID   EntityID
	LoggedIn bool
}

// Valid reports whether the token, user id and flag agree with each other.
func (s Session) Valid() bool {
	if s.LoggedIn != (s.Token != "") {
		return false
	}
	return (s.Token != "") == (s.UserID != 0)
}

func (s Session) IsSelf(id EntityID) bool {
	return s.LoggedIn && s.UserID == id
}

// SessionRecord is the persisted part of a session. The token lives in the
// token vault and is referenced by TokenRef.
type SessionRecord struct {
	UserID     EntityID
	Email      string
	TokenRef   string
	LoggedInAt time.Time
}

type LoginResult struct {
	Token string
	User  User
}
