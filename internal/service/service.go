// Package service contains the authentication and user directory logic.
// Services are stateless apart from their collaborators and are safe for
// concurrent use; all shared state lives behind repository.Manager.
package service

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenCodec issues and verifies access tokens carrying a user id.
type TokenCodec interface {
	Encode(userID uint64) (string, error)
	Decode(token string) (uint64, error)
}
