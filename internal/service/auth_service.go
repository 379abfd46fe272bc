package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/citycat-users/internal/apperror"
	"github.com/iliyamo/citycat-users/internal/model"
	"github.com/iliyamo/citycat-users/internal/repository"
)

// AuthService handles login, token parsing, role lookup and the ownership
// check guarding user mutations.
type AuthService struct {
	repos  repository.Manager
	hasher PasswordHasher
	tokens TokenCodec
}

func NewAuthService(repos repository.Manager, hasher PasswordHasher, tokens TokenCodec) *AuthService {
	return &AuthService{repos: repos, hasher: hasher, tokens: tokens}
}

// Login verifies the credentials and returns a signed access token.
// Soft-deleted accounts are treated as unknown emails.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repos.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperror.ErrLoginFailWithNotFoundEmail
		}
		return "", fmt.Errorf("find user by email: %w", err)
	}
	if user.Deleted {
		return "", apperror.ErrLoginFailWithNotFoundEmail
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", apperror.ErrEncoderFail
	}

	token, err := s.tokens.Encode(user.ID)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return token, nil
}

// ParseToken returns the user id carried by token or
// apperror.ErrInvalidToken.
func (s *AuthService) ParseToken(token string) (uint64, error) {
	return s.tokens.Decode(token)
}

// Roles lists the roles held by userID; an empty slice when there are none.
func (s *AuthService) Roles(ctx context.Context, userID uint64) ([]model.Role, error) {
	roles, err := s.repos.Roles().FindAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	if roles == nil {
		roles = []model.Role{}
	}
	return roles, nil
}

// Authorize reports whether callerID may modify the resource owned by
// ownerID. See Authorize.
func (s *AuthService) Authorize(ownerID, callerID uint64) error {
	return Authorize(ownerID, callerID)
}

// Authorize permits the operation iff the caller owns the resource. There
// is no role-based override.
func Authorize(ownerID, callerID uint64) error {
	if ownerID != callerID {
		return apperror.ErrAccessDenied
	}
	return nil
}
