package domain

// Session is the operator's cached identity, token and permission set.
// Once loaded, a Session is treated as read-only: a permission refresh
// produces a new Session rather than mutating this one.
type Session struct {
	Token       string        `json:"-"`
	User        User          `json:"user"`
	Permissions PermissionSet `json:"permissions"`
	Remember    bool          `json:"remember"`
}

// Authenticated reports whether the session carries a token at all. Token
// validity (expiry, signature) is checked by the route guard.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// HasAnyPermission reports whether the session holds at least one of the
// required permissions. An empty requirement is always satisfied.
func (s *Session) HasAnyPermission(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	if s == nil {
		return false
	}
	for _, id := range required {
		if s.Permissions.Has(id) {
			return true
		}
	}
	return false
}

// HasPermission is the list check used by UI affordances and search. It has
// OR semantics: a single identifier behaves exactly like a one-element list.
func (s *Session) HasPermission(required ...string) bool {
	return s.HasAnyPermission(required...)
}

// HasAllPermissions reports whether the session holds every required
// permission. This is the admission rule of the route guard.
func (s *Session) HasAllPermissions(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	if s == nil {
		return false
	}
	for _, id := range required {
		if !s.Permissions.Has(id) {
			return false
		}
	}
	return true
}
