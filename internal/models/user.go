package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
)

// User represents an application user stored in the users table. The id is
// the work email, mirroring the employees table.
type User struct {
	ID           string   `db:"id" json:"id"`
	Email        string   `db:"email" json:"email"`
	Name         string   `db:"name" json:"name"`
	PictureURL   string   `db:"picture_url" json:"pictureURL"`
	Role         UserRole `db:"role" json:"role"`
	PasswordHash string   `db:"password_hash" json:"-"`
}
