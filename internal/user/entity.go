package user

import (
	"time"
)

type User struct {
	ID                string     `db:"id"`
	Name              string     `db:"name"`
	Email             string     `db:"email"`
	PasswordHash      string     `db:"password_hash"`
	PasswordChangedAt *time.Time `db:"password_changed_at"`
	ResetTokenHash    *string    `db:"reset_token_hash"`
	ResetTokenExpiry  *time.Time `db:"reset_token_expires_at"`
	Status            string     `db:"status"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) HasPendingReset() bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil
}

// PasswordChangedAfter reports whether the password was changed after
// the given instant. Used to reject bearer tokens issued before a
// password change.
func (u *User) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(t)
}
