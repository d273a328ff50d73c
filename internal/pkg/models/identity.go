package models

// Role is the role claim carried by an authenticated identity
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

// Principal is a verified identity
type Principal struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
