package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/citycat-users/internal/model"
)

// UserRepository persists user records.
type UserRepository interface {
	// FindByEmail returns the user with the given email or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts u when u.ID is zero (assigning ID and timestamps) and
	// updates the existing row otherwise.
	Save(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (model.User, error)
	// FindAll returns every user ordered by id, deleted ones included.
	FindAll(ctx context.Context) ([]model.User, error)
}

// RoleRepository persists role records.
type RoleRepository interface {
	// FindAllByUserID never returns a nil slice on success.
	FindAllByUserID(ctx context.Context, userID uint64) ([]model.Role, error)
	Save(ctx context.Context, r *model.Role) error
}

// Manager hands out repositories bound to the same connection and runs
// units of work. Repositories obtained from the Manager passed to fn share
// fn's transaction; nested WithinTx calls join the outer one.
type Manager interface {
	Users() UserRepository
	Roles() RoleRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, m Manager) error) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
