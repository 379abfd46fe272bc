package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/citycat-users/internal/dbx"
)

// MySQLManager binds the MySQL repositories to either the pool or an open
// transaction.
type MySQLManager struct {
	db *sql.DB
	q  dbx.DBTX
}

func NewMySQLManager(db *sql.DB) *MySQLManager {
	return &MySQLManager{db: db, q: db}
}

func (m *MySQLManager) Users() UserRepository { return NewUserRepo(m.q) }

func (m *MySQLManager) Roles() RoleRepository { return NewRoleRepo(m.q) }

// WithinTx runs fn in a transaction, committing when fn returns nil.
func (m *MySQLManager) WithinTx(ctx context.Context, fn func(ctx context.Context, m Manager) error) error {
	if _, inTx := m.q.(*sql.Tx); inTx {
		return fn(ctx, m)
	}
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &MySQLManager{db: m.db, q: tx})
	})
}
