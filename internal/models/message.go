package models

import "time"

// BroadcastMessage is a status message owned by a single user. At most
// one message per owner is active at any committed point in time; the
// repository's Save path is the only place that flips the flag.
type BroadcastMessage struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StatusEvent is pushed over websocket connections watching a user's
// public status page.
type StatusEvent struct {
	Type    string            `json:"type"`
	Message *BroadcastMessage `json:"message,omitempty"`
}
