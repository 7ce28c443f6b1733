package models

import (
	"strings"
	"time"
)

// User is an account that owns broadcast messages.
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ReadableName turns the stored username into a display name:
// underscores become spaces and each word is capitalized.
func (u User) ReadableName() string {
	words := strings.Fields(strings.ReplaceAll(u.Username, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Profile holds the public-facing details for a user, including the
// opaque slug that visitors use to reach the status page.
type Profile struct {
	UserID       int       `db:"user_id" json:"user_id"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	Bio          string    `db:"bio" json:"bio"`
	Designation  string    `db:"designation" json:"designation"`
	Organization string    `db:"organization" json:"organization"`
	Slug         string    `db:"slug" json:"slug"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
