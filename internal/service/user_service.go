package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/citycat-users/internal/apperror"
	"github.com/iliyamo/citycat-users/internal/logging"
	"github.com/iliyamo/citycat-users/internal/model"
	"github.com/iliyamo/citycat-users/internal/queue"
	"github.com/iliyamo/citycat-users/internal/repository"
)

// UserRegistration holds the fields accepted at sign-up.
type UserRegistration struct {
	Email    string
	NickName string
	Password string
}

// UserModification holds a partial profile update. Empty fields are left
// untouched.
type UserModification struct {
	NickName string
	Password string
}

// apply copies the set fields onto u, hashing a new password.
func (m UserModification) apply(u *model.User, hasher PasswordHasher) error {
	if m.NickName != "" {
		u.NickName = m.NickName
	}
	if m.Password != "" {
		hash, err := hasher.Hash(m.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	return nil
}

// UserService manages the user directory: registration, profile updates,
// soft deletion and listing. Every mutation runs in one unit of work.
type UserService struct {
	repos  repository.Manager
	hasher PasswordHasher
	events queue.Publisher
	log    logging.Logger
}

func NewUserService(repos repository.Manager, hasher PasswordHasher, events queue.Publisher, log logging.Logger) *UserService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &UserService{repos: repos, hasher: hasher, events: events, log: log.With("component", "user_service")}
}

// Register creates the user together with its default role.
func (s *UserService) Register(ctx context.Context, reg UserRegistration) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	var user model.User
	err = s.repos.WithinTx(ctx, func(ctx context.Context, tx repository.Manager) error {
		exists, err := tx.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apperror.ErrEmailDuplication
		}

		user = model.NewUser(email, reg.NickName, hash)
		if err := tx.Users().Save(ctx, &user); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return apperror.ErrEmailDuplication
			}
			return fmt.Errorf("save user: %w", err)
		}

		role := model.NewRole(user.ID, model.DefaultRoleName)
		if err := tx.Roles().Save(ctx, &role); err != nil {
			return fmt.Errorf("save role: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.publish(ctx, queue.UserRegistered, user)
	return user, nil
}

// Update applies mod to user id on behalf of callerID. Ownership is checked
// before existence, so a caller probing foreign ids always gets
// AccessDenied.
func (s *UserService) Update(ctx context.Context, id uint64, mod UserModification, callerID uint64) (model.User, error) {
	if err := Authorize(id, callerID); err != nil {
		return model.User{}, err
	}

	var user model.User
	err := s.repos.WithinTx(ctx, func(ctx context.Context, tx repository.Manager) error {
		var err error
		user, err = findUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if user.Deleted {
			return apperror.New(apperror.KindUserNotFound, "user %d not found", id)
		}
		if err := mod.apply(&user, s.hasher); err != nil {
			return err
		}
		if err := tx.Users().Save(ctx, &user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.publish(ctx, queue.UserUpdated, user)
	return user, nil
}

// Delete soft-deletes user id and returns the record with Deleted set.
// Deleting an already deleted user returns it unchanged.
func (s *UserService) Delete(ctx context.Context, id uint64) (model.User, error) {
	var (
		user    model.User
		changed bool
	)
	err := s.repos.WithinTx(ctx, func(ctx context.Context, tx repository.Manager) error {
		var err error
		user, err = findUser(ctx, tx, id)
		if err != nil {
			return err
		}
		if user.Deleted {
			return nil
		}
		user.Destroy()
		if err := tx.Users().Save(ctx, &user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	if changed {
		s.publish(ctx, queue.UserDeleted, user)
	}
	return user, nil
}

// Find returns user id, soft-deleted or not.
func (s *UserService) Find(ctx context.Context, id uint64) (model.User, error) {
	return findUser(ctx, s.repos, id)
}

// List returns every known user, deleted ones included, ordered by id.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repos.Users().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func findUser(ctx context.Context, repos repository.Manager, id uint64) (model.User, error) {
	user, err := repos.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperror.New(apperror.KindUserNotFound, "user %d not found", id)
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// publish emits ev after the unit of work committed. Failures are logged
// and never fail the request.
func (s *UserService) publish(ctx context.Context, typ string, u model.User) {
	ev := queue.UserEvent{
		Type:       typ,
		UserID:     u.ID,
		Email:      u.Email,
		NickName:   u.NickName,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "publish user event failed", "type", typ, "user_id", u.ID, "error", err)
	}
}
