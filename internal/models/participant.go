package models

import "time"

// Participant is a registered player identified by a display name. Participants
// are created once at registration and never modified or deleted.
type Participant struct {
	ID          int64     `db:"id"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}
