package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/citycat-users/internal/dbx"
	"github.com/iliyamo/citycat-users/internal/model"
)

// RoleRepo is the MySQL implementation of RoleRepository.
type RoleRepo struct{ db dbx.DBTX }

func NewRoleRepo(db dbx.DBTX) *RoleRepo { return &RoleRepo{db: db} }

// FindAllByUserID lists the roles held by userID.
func (r *RoleRepo) FindAllByUserID(ctx context.Context, userID uint64) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name FROM roles WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	roles := []model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.UserID, &role.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return roles, nil
}

// Save inserts role and populates its ID.
func (r *RoleRepo) Save(ctx context.Context, role *model.Role) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO roles (user_id, name) VALUES (?, ?)", role.UserID, role.Name)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	role.ID = uint64(id)
	return nil
}
