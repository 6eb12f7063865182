package models

import "time"

// Notification is a persisted event signaling a user should be informed.
// Delivery (email, Telegram, in-app) is handled by collaborators that poll
// these rows; only the read flag is ever mutated after creation.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ReportID  *string   `db:"report_id" json:"report_id,omitempty"`
	Content   string    `db:"content" json:"content"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
