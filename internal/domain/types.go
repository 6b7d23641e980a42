package domain

// ID is used across domain entities.
type ID int64

// Roles known to the backend. Capture endpoints require operator roles;
// drivers only hit the bus-trigger endpoints.
const (
	RoleRider      = "rider"
	RoleDriver     = "driver"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// RequestContext carries authenticated user info resolved by the auth
// middleware.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Role   string `json:"role"`
}

// IsOperator reports whether the role may record taps and issue tickets.
func (rc RequestContext) IsOperator() bool {
	return rc.Role == RoleSupervisor || rc.Role == RoleAdmin
}
