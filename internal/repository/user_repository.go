package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/citycat-users/internal/dbx"
	"github.com/iliyamo/citycat-users/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for unique key violations.
const mysqlDuplicateEntry = 1062

const userColumns = "id, email, nick_name, password_hash, deleted, created_at, updated_at"

// UserRepo is the MySQL implementation of UserRepository.
type UserRepo struct{ db dbx.DBTX }

func NewUserRepo(db dbx.DBTX) *UserRepo { return &UserRepo{db: db} }

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", normalizeEmail(email))
	return scanUser(row)
}

// ExistsByEmail reports whether any user, deleted or not, holds email.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", normalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return scanUser(row)
}

// FindAll lists every user ordered by id.
func (r *UserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.NickName, &u.PasswordHash, &u.Deleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// Save inserts or updates u. Timestamps are set here in UTC.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	now := time.Now().UTC().Truncate(time.Second)
	u.Email = normalizeEmail(u.Email)

	if u.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO users (email, nick_name, password_hash, deleted, created_at, updated_at) VALUES (?,?,?,?,?,?)",
			u.Email, u.NickName, u.PasswordHash, u.Deleted, now, now)
		if err != nil {
			return translateWriteErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		u.ID = uint64(id)
		u.CreatedAt = now
		u.UpdatedAt = now
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET email = ?, nick_name = ?, password_hash = ?, deleted = ?, updated_at = ? WHERE id = ?",
		u.Email, u.NickName, u.PasswordHash, u.Deleted, now, u.ID)
	if err != nil {
		return translateWriteErr(err)
	}
	u.UpdatedAt = now
	return nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.NickName, &u.PasswordHash, &u.Deleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func translateWriteErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return ErrEmailExists
	}
	return fmt.Errorf("db error: %w", err)
}
