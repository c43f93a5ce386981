package domain

import "fmt"

type Project struct {
	ID          EntityID
	Name        string
	Description string
	Image       string
	OwnerID     EntityID
	Members     []EntityID
}

var _ Entity = Project{}

func (p Project) Key() Key {
	return ProjectKey(p.ID)
}

func (p Project) Field(name string) (string, error) {
	switch name {
	case "name":
		return p.Name, nil
	case "description":
		return p.Description, nil
	case FieldImage:
		return p.Image, nil
	default:
		return "", fmt.Errorf("%w: project has no field %q", ErrUnknownField, name)
	}
}

// WithField rejects every field: projects are read-only in this client.
func (p Project) WithField(name, _ string) (Entity, error) {
	return nil, fmt.Errorf("%w: project field %q is read-only", ErrUnknownField, name)
}

// TeamIDs returns the owner followed by the members, without duplicates.
func (p Project) TeamIDs() []EntityID {
	ids := make([]EntityID, 0, len(p.Members)+1)
	seen := make(map[EntityID]struct{}, len(p.Members)+1)
	for _, id := range append([]EntityID{p.OwnerID}, p.Members...) {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
