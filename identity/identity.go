package identity

import (
	"time"
)

// User is an account created implicitly on first successful magic-link
// verification. Users are never deleted by this core.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Upsert is the tagged result of a create-if-absent lookup, so callers can
// tell a first login from a repeat login.
type Upsert struct {
	User    *User
	Created bool
}
