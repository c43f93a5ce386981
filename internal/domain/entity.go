package domain

import (
	"fmt"
	"strconv"
)

type EntityID int64

func (id EntityID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseEntityID(raw string) (EntityID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid entity id %q: must be a positive number", raw)
	}
	return EntityID(n), nil
}

type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityProject EntityType = "project"
)

type Key struct {
	Type EntityType
	ID   EntityID
}

func UserKey(id EntityID) Key {
	return Key{Type: EntityUser, ID: id}
}

func ProjectKey(id EntityID) Key {
	return Key{Type: EntityProject, ID: id}
}

func (k Key) String() string {
	return string(k.Type) + "/" + k.ID.String()
}

// Entity is a record fetched from the remote API. Field values are addressed
// by their wire name so edits can be tracked per field.
type Entity interface {
	Key() Key
	Field(name string) (string, error)
	WithField(name, value string) (Entity, error)
}
