package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/models"
	"github.com/myrjola/turtlesoup/internal/sqlite"
)

type ParticipantRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewParticipantRepository(dbs *sqlite.Database, logger *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{
		dbs:    dbs,
		logger: logger.With("source", "ParticipantRepository"),
	}
}

// Create registers a display name and returns the assigned participant ID.
func (r *ParticipantRepository) Create(ctx context.Context, displayName string) (int64, error) {
	stmt := `INSERT INTO participants (display_name) VALUES (?)`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, displayName)
	if err != nil {
		return 0, errors.Wrap(err, "insert participant")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read participant id")
	}
	return id, nil
}

// Get returns the participant with the given ID.
func (r *ParticipantRepository) Get(ctx context.Context, id int64) (*models.Participant, error) {
	var participant models.Participant
	stmt := `SELECT id, display_name, created_at FROM participants WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &participant, stmt, id); err != nil {
		return nil, errors.Wrap(err, "read participant", slog.Int64("id", id))
	}
	return &participant, nil
}

// Exists reports whether a participant with the given ID is registered.
func (r *ParticipantRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	stmt := `SELECT EXISTS(SELECT 1 FROM participants WHERE id = ?)`
	if err := r.dbs.ReadOnly.GetContext(ctx, &exists, stmt, id); err != nil {
		return false, errors.Wrap(err, "check participant exists", slog.Int64("id", id))
	}
	return exists, nil
}
