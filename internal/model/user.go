package model

import "time"

// User represents an account record as stored in the `users` table.
// PasswordHash is only populated when a repository is explicitly asked for
// it (login verification); handlers never serialize this struct directly.
//
// Fields:
//  ID           – opaque identifier (UUID) assigned at creation.
//  Name         – display name, 3 to 50 characters.
//  Email        – unique email address.
//  PasswordHash – bcrypt hash of the password.
//  IsAdmin      – administrator flag, false unless set out-of-band.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Public returns the client-safe projection of u.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}
