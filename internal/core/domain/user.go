package domain

import (
	"encoding/json"
	"sort"
)

// User is the identity cached alongside a Session.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

// PermissionSet is an immutable set of permission identifiers.
// The zero value is the empty set.
type PermissionSet struct {
	ids map[string]struct{}
}

// NewPermissionSet builds a set from ids, dropping empty strings and duplicates.
func NewPermissionSet(ids ...string) PermissionSet {
	set := PermissionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		set.ids[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (p PermissionSet) Has(id string) bool {
	_, ok := p.ids[id]
	return ok
}

// Len returns the number of permissions in the set.
func (p PermissionSet) Len() int { return len(p.ids) }

// List returns the identifiers sorted lexically.
func (p PermissionSet) List() []string {
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array of strings.
func (p PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.List())
}

// UnmarshalJSON decodes an array of strings, replacing any previous content.
func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*p = NewPermissionSet(ids...)
	return nil
}
