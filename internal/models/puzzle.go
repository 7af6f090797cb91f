package models

import "time"

// Puzzle is a lateral-thinking riddle with a hidden solution and a hint.
// Puzzles are immutable once created. The current puzzle is the one with the
// latest CreatedAt, ties broken by ID, so "current" is derived from the store
// rather than tracked in a mutable pointer.
type Puzzle struct {
	ID        int64     `db:"id"`
	Text      string    `db:"text"`
	Solution  string    `db:"solution"`
	Hint      string    `db:"hint"`
	CreatedAt time.Time `db:"created_at"`
}
