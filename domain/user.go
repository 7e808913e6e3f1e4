package domain

// Roles recognized by the POS.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type User struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Password  string `json:"password,omitempty" db:"password"`
	Role      string `json:"role" db:"role"`
	IsActive  bool   `json:"is_active" db:"is_active"`
	CreatedAt string `json:"created_at,omitempty" db:"created_at"`
}

// ValidRole reports whether role is one the POS knows about.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCashier
}
