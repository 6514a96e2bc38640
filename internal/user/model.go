package user

import "time"

// Role tiers match the seeded roles table.
const (
	RoleAdmin   int64 = 1
	RoleManager int64 = 2
	RoleStaff   int64 = 3
)

type User struct {
	ID                  int64      `json:"user_id"`
	FullName            string     `json:"full_name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	PINHash             string     `json:"-"`
	RoleID              int64      `json:"role_id"`
	IsActive            bool       `json:"is_active"`
	FailedLoginAttempts int        `json:"-"`
	LockoutUntil        *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
}
