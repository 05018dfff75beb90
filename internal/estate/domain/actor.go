package domain

// Role is the kind of actor invoking an operation.
type Role string

const (
	RoleSeller    Role = "seller"
	RoleAgent     Role = "agent"
	RoleAdmin     Role = "admin"
	RoleAnonymous Role = "anonymous"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSeller, RoleAgent, RoleAdmin, RoleAnonymous:
		return true
	}
	return false
}

// Actor is the already-authenticated caller of an engine operation.
type Actor struct {
	ID   string
	Role Role
}

// Anonymous returns the actor used for unauthenticated requests.
func Anonymous() Actor {
	return Actor{Role: RoleAnonymous}
}

// IsStaff reports whether the actor is an agent or an administrator.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAgent || a.Role == RoleAdmin
}
