package user

import "time"

const (
	RoleManager  = "manager"
	RoleExecutor = "executor"
)

type Role struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RoleID       int64     `json:"role_id" db:"role_id"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsManager читает роль, подтянутую из таблицы roles при загрузке пользователя.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}
