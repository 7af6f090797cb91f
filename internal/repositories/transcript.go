package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/models"
	"github.com/myrjola/turtlesoup/internal/sqlite"
)

type TranscriptRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewTranscriptRepository(dbs *sqlite.Database, logger *slog.Logger) *TranscriptRepository {
	return &TranscriptRepository{
		dbs:    dbs,
		logger: logger.With("source", "TranscriptRepository"),
	}
}

// Append records one prompt/response pair for the given puzzle and participant.
// Entries are never updated or deleted afterwards.
func (r *TranscriptRepository) Append(
	ctx context.Context,
	puzzleID int64,
	participantID int64,
	prompt string,
	response string,
) error {
	stmt := `INSERT INTO transcript_entries (puzzle_id, participant_id, prompt, response)
	VALUES (?, ?, ?, ?)`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, puzzleID, participantID, prompt, response); err != nil {
		return errors.Wrap(err, "insert transcript entry",
			slog.Int64("puzzle_id", puzzleID),
			slog.Int64("participant_id", participantID))
	}
	return nil
}

// List returns the transcript for a puzzle joined with participant display
// names, oldest entry first. Visibility order is durable-write order
// (created_at, then id), not submission order.
func (r *TranscriptRepository) List(ctx context.Context, puzzleID int64) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry
	stmt := `SELECT t.id, t.puzzle_id, t.participant_id, p.display_name, t.prompt, t.response, t.created_at
	FROM transcript_entries t
	JOIN participants p ON p.id = t.participant_id
	WHERE t.puzzle_id = ?
	ORDER BY t.created_at, t.id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &entries, stmt, puzzleID); err != nil {
		return nil, errors.Wrap(err, "list transcript entries", slog.Int64("puzzle_id", puzzleID))
	}
	return entries, nil
}
