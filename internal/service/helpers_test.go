package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/citycat-users/internal/logging"
	"github.com/iliyamo/citycat-users/internal/model"
	"github.com/iliyamo/citycat-users/internal/queue"
	"github.com/iliyamo/citycat-users/internal/repository"
	"github.com/iliyamo/citycat-users/internal/utils"
)

const testSecret = "11112222333344445555666677778888"

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.UserEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func eventOf(typ string, userID uint64) interface{} {
	return mock.MatchedBy(func(ev queue.UserEvent) bool {
		return ev.Type == typ && ev.UserID == userID
	})
}

type fixture struct {
	repos  *repository.MemoryManager
	hasher utils.PasswordHasher
	codec  *utils.TokenCodec
	pub    *mockPublisher
	users  *UserService
	auth   *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codec, err := utils.NewTokenCodec(testSecret, time.Hour)
	require.NoError(t, err)

	f := &fixture{
		repos:  repository.NewMemoryManager(),
		hasher: utils.NewPasswordHasher(bcrypt.MinCost),
		codec:  codec,
		pub:    &mockPublisher{},
	}
	f.users = NewUserService(f.repos, f.hasher, f.pub, logging.Nop())
	f.auth = NewAuthService(f.repos, f.hasher, f.codec)
	return f
}

// register stores a user through the service with publishing stubbed out.
func (f *fixture) register(t *testing.T, email, nick, password string) model.User {
	t.Helper()
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
	u, err := f.users.Register(context.Background(), UserRegistration{Email: email, NickName: nick, Password: password})
	require.NoError(t, err)
	return u
}

// failingRoleManager wraps a Manager so that saving a role always fails.
type failingRoleManager struct{ repository.Manager }

type failingRoles struct{ repository.RoleRepository }

func (failingRoles) Save(context.Context, *model.Role) error { return errors.New("roles table unavailable") }

func (m failingRoleManager) Roles() repository.RoleRepository {
	return failingRoles{m.Manager.Roles()}
}

func (m failingRoleManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Manager) error) error {
	return m.Manager.WithinTx(ctx, func(ctx context.Context, tx repository.Manager) error {
		return fn(ctx, failingRoleManager{tx})
	})
}

// brokenManager fails every lookup with an infrastructure error.
type brokenManager struct{ repository.Manager }

type brokenUsers struct{ repository.UserRepository }

func (brokenUsers) FindByEmail(context.Context, string) (model.User, error) {
	return model.User{}, errors.New("db down")
}

func (brokenUsers) FindAll(context.Context) ([]model.User, error) {
	return nil, errors.New("db down")
}

func (m brokenManager) Users() repository.UserRepository { return brokenUsers{m.Manager.Users()} }
