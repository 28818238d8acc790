package types

import "time"

type UserRole string

const (
	UserRolePublic       UserRole = "public"
	UserRoleOrganization UserRole = "organization"
)

// Valid reports whether the role is one of the two known roles.
func (r UserRole) Valid() bool {
	return r == UserRolePublic || r == UserRoleOrganization
}

type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         UserRole  `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UserView is the read-path representation of a user. The password hash
// never leaves the service layer.
type UserView struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (u *User) View() UserView {
	return UserView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
