package entity

import "time"

// User is an account holder. The password hash is bcrypt; external identity
// providers create users with an empty hash.
type User struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	AvatarURL    string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
