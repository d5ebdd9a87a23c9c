package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAgent      = "agent"       // places calls and reads call status
	RoleAdmin      = "admin"       // manages the Exotel account (whitelist, exophones)
	RoleSuperAdmin = "super_admin" // bypasses all role checks
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }
