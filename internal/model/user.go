package model

import "time"

// User represents an application user record as stored in the `users`
// table.  PasswordHash and TwoFactorSecret must never be serialized to
// clients; handlers expose PublicUser instead.
type User struct {
    ID              string    // users.id (uuid)
    Email           string    // users.email (unique, lowercase)
    PasswordHash    string    // users.password_hash (bcrypt)
    TwoFactorSecret *string   // users.two_factor_secret (nil until provisioned)
    CreatedAt       time.Time // users.created_at
    UpdatedAt       time.Time // users.updated_at
}

// PublicUser is the client-facing projection of a User.
type PublicUser struct {
    ID    string `json:"id"`
    Email string `json:"email"`
}

// Public returns the projection of u that is safe to send to clients.
func (u User) Public() PublicUser {
    return PublicUser{ID: u.ID, Email: u.Email}
}
