package domain

// Role gates which API operations a caller may perform.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Allows reports whether r grants at least the permissions of min.
func (r Role) Allows(min Role) bool {
	switch min {
	case RoleViewer:
		return r == RoleViewer || r == RoleOperator || r == RoleAdmin
	case RoleOperator:
		return r == RoleOperator || r == RoleAdmin
	case RoleAdmin:
		return r == RoleAdmin
	default:
		return false
	}
}

// Principal is the authenticated caller of an API request.
type Principal struct {
	Subject string
	Role    Role
}
