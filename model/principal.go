package model

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type PrincipalKind string

const (
	// PrincipalEnvAdmin is the synthetic administrator configured through
	// environment variables. It has no backing user row: it owns no
	// notifications and cannot edit a profile.
	PrincipalEnvAdmin PrincipalKind = "env"
	PrincipalStored   PrincipalKind = "stored"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Kind   PrincipalKind
	UserID string
	Name   string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Stored reports whether the principal is backed by a user row.
func (p Principal) Stored() bool {
	return p.Kind == PrincipalStored
}
