package auth

// Role del usuario dentro de la plataforma.
type Role string

const (
	RoleUser    Role = "user"
	RoleBreeder Role = "breeder"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBreeder, RoleAdmin:
		return true
	}
	return false
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }
