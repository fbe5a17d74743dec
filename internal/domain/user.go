package domain

import (
	"context"
	"time"
)

// User is a platform account. Experts publish workout schedules and
// coach members; members follow schedules and sync health metrics.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	RoleMember = "member"
	RoleExpert = "expert"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
