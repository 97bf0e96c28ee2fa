package types

import "github.com/golang-jwt/jwt/v5"

type OperatorRole string

const (
	ROLE_ADMIN OperatorRole = "admin"
	ROLE_GATE  OperatorRole = "gate"
)

// Claims are issued by the external session service for gate scanners and
// admins; this service only validates them.
type Claims struct {
	Username string       `json:"username"`
	Role     OperatorRole `json:"role"`
	Venue    string       `json:"venue,omitempty"`
	jwt.RegisteredClaims
}
