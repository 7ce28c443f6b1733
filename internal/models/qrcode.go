package models

import "time"

// QRCode is the one-time generated code image for a user. The payload
// encodes the public status URL for the user's slug.
type QRCode struct {
	UserID    int       `db:"user_id" json:"user_id"`
	Image     []byte    `db:"image" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
