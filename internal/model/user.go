package model

import "time"

// DefaultRoleName is the role every user receives at registration.
const DefaultRoleName = "USER"

// User represents an account record as stored in the `users` table.
// JSON tags are omitted on purpose: handlers render their own response
// shapes so the password hash can never leak through serialization.
//
// Fields:
//  ID           – primary key, assigned by the store on creation.
//  Email        – unique email address.
//  NickName     – display name, freely mutable.
//  PasswordHash – bcrypt digest, never the plaintext.
//  Deleted      – soft-delete flag; only ever moves false → true.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    NickName     string    // users.nick_name
    PasswordHash string    // users.password_hash
    Deleted      bool      // users.deleted
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// NewUser builds an unsaved user from registration fields. The password is
// expected to be hashed already.
func NewUser(email, nickName, passwordHash string) User {
    return User{Email: email, NickName: nickName, PasswordHash: passwordHash}
}

// Destroy marks the user as deleted. Calling it again is a no-op.
func (u *User) Destroy() {
    u.Deleted = true
}

// Role represents a row in the `roles` table. A user may hold several
// roles; the set is unordered.
//
// Fields:
//  ID     – primary key.
//  UserID – owner of the role (users.id).
//  Name   – free-form role name, e.g. USER.
type Role struct {
    ID     uint64 // roles.id
    UserID uint64 // roles.user_id
    Name   string // roles.name
}

// NewRole builds an unsaved role for userID.
func NewRole(userID uint64, name string) Role {
    return Role{UserID: userID, Name: name}
}
