package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/citycat-users/internal/model"
)

// memoryState is the shared storage behind MemoryManager. A single mutex
// guards it; a unit of work holds the mutex from start to finish.
type memoryState struct {
	mu         sync.Mutex
	users      map[uint64]model.User
	emails     map[string]uint64
	roles      []model.Role
	nextUserID uint64
	nextRoleID uint64
}

func (s *memoryState) snapshot() *memoryState {
	cp := &memoryState{
		users:      make(map[uint64]model.User, len(s.users)),
		emails:     make(map[string]uint64, len(s.emails)),
		roles:      append([]model.Role(nil), s.roles...),
		nextUserID: s.nextUserID,
		nextRoleID: s.nextRoleID,
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.emails {
		cp.emails[k] = v
	}
	return cp
}

func (s *memoryState) restore(cp *memoryState) {
	s.users = cp.users
	s.emails = cp.emails
	s.roles = cp.roles
	s.nextUserID = cp.nextUserID
	s.nextRoleID = cp.nextRoleID
}

// MemoryManager is an in-process Manager used for local runs and tests.
// Failed units of work leave the state exactly as it was before they began.
type MemoryManager struct {
	st   *memoryState
	inTx bool
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{st: &memoryState{
		users:  map[uint64]model.User{},
		emails: map[string]uint64{},
	}}
}

func (m *MemoryManager) Users() UserRepository { return memoryUsers{m} }

func (m *MemoryManager) Roles() RoleRepository { return memoryRoles{m} }

func (m *MemoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, m Manager) error) (err error) {
	if m.inTx {
		return fn(ctx, m)
	}
	m.st.mu.Lock()
	defer m.st.mu.Unlock()

	snap := m.st.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.st.restore(snap)
			panic(p)
		}
		if err != nil {
			m.st.restore(snap)
		}
	}()
	return fn(ctx, &MemoryManager{st: m.st, inTx: true})
}

// lock acquires the state mutex unless the caller already holds it as part
// of a unit of work.
func (m *MemoryManager) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.st.mu.Lock()
	return m.st.mu.Unlock
}

type memoryUsers struct{ m *MemoryManager }

func (r memoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	defer r.m.lock()()
	id, ok := r.m.st.emails[normalizeEmail(email)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return r.m.st.users[id], nil
}

func (r memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	defer r.m.lock()()
	_, ok := r.m.st.emails[normalizeEmail(email)]
	return ok, nil
}

func (r memoryUsers) FindByID(_ context.Context, id uint64) (model.User, error) {
	defer r.m.lock()()
	u, ok := r.m.st.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (r memoryUsers) FindAll(_ context.Context) ([]model.User, error) {
	defer r.m.lock()()
	out := make([]model.User, 0, len(r.m.st.users))
	for _, u := range r.m.st.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryUsers) Save(_ context.Context, u *model.User) error {
	defer r.m.lock()()
	st := r.m.st
	now := time.Now().UTC()
	email := normalizeEmail(u.Email)

	if u.ID == 0 {
		if _, taken := st.emails[email]; taken {
			return ErrEmailExists
		}
		st.nextUserID++
		u.ID = st.nextUserID
		u.Email = email
		u.CreatedAt = now
		u.UpdatedAt = now
		st.users[u.ID] = *u
		st.emails[email] = u.ID
		return nil
	}

	prev, ok := st.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := st.emails[email]; taken && owner != u.ID {
		return ErrEmailExists
	}
	delete(st.emails, prev.Email)
	u.Email = email
	u.CreatedAt = prev.CreatedAt
	u.UpdatedAt = now
	st.users[u.ID] = *u
	st.emails[email] = u.ID
	return nil
}

type memoryRoles struct{ m *MemoryManager }

func (r memoryRoles) FindAllByUserID(_ context.Context, userID uint64) ([]model.Role, error) {
	defer r.m.lock()()
	out := []model.Role{}
	for _, role := range r.m.st.roles {
		if role.UserID == userID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r memoryRoles) Save(_ context.Context, role *model.Role) error {
	defer r.m.lock()()
	r.m.st.nextRoleID++
	role.ID = r.m.st.nextRoleID
	r.m.st.roles = append(r.m.st.roles, *role)
	return nil
}
