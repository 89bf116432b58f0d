package domain

// Roles. Managers can reach every screen; cashiers only the register.
const (
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
)

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}
