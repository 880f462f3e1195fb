package model

import "time"

// User represents a dashboard operator as stored in the `users` table.
// Role is either ADMIN (may edit mappings and drive invoicing) or
// OPERATOR (recap, assignments and webhook review).
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or OPERATOR.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Operator roles.
const (
    RoleAdmin    = "ADMIN"
    RoleOperator = "OPERATOR"
)
