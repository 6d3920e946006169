package model

import "time"

// Roles carried in the JWT "role" claim.
const (
    RoleClient = "CLIENT"
    RoleAdmin  = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  Clients own reservations and payments; admins manage
// inventory and see every reservation.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FullName     – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – CLIENT or ADMIN.
//  Enabled      – whether the account may act.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    FullName     string    // users.full_name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    Enabled      bool      // users.enabled
    CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
