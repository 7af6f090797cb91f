package models

import "time"

// TranscriptEntry is one prompt/response pair in the shared transcript: a
// yes/no question and its verdict, a hint reveal, a surrender, or a judged
// final guess. Entries are append-only and ordered by CreatedAt with ID as
// tie-break.
type TranscriptEntry struct {
	ID            int64     `db:"id"`
	PuzzleID      int64     `db:"puzzle_id"`
	ParticipantID int64     `db:"participant_id"`
	// DisplayName is joined from the participants table for rendering.
	DisplayName string    `db:"display_name"`
	Prompt      string    `db:"prompt"`
	Response    string    `db:"response"`
	CreatedAt   time.Time `db:"created_at"`
}
