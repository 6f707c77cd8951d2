package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
