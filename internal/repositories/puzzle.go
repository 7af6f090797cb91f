package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/models"
	"github.com/myrjola/turtlesoup/internal/sqlite"
)

// ErrNoPuzzle is returned by Current when no puzzle has been generated yet.
var ErrNoPuzzle = errors.NewSentinel("no puzzle generated")

type PuzzleRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewPuzzleRepository(dbs *sqlite.Database, logger *slog.Logger) *PuzzleRepository {
	return &PuzzleRepository{
		dbs:    dbs,
		logger: logger.With("source", "PuzzleRepository"),
	}
}

// Create stores a newly generated puzzle and returns it with its assigned ID.
// Inserting is the only way "current" advances: the row with the latest
// created_at (ties broken by id) wins, so concurrent creates need no
// coordination beyond insert atomicity.
func (r *PuzzleRepository) Create(ctx context.Context, text, solution, hint string) (*models.Puzzle, error) {
	stmt := `INSERT INTO puzzles (text, solution, hint) VALUES (?, ?, ?)`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, text, solution, hint)
	if err != nil {
		return nil, errors.Wrap(err, "insert puzzle")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "read puzzle id")
	}
	return r.get(ctx, id)
}

// Get returns the puzzle with the given ID.
func (r *PuzzleRepository) Get(ctx context.Context, id int64) (*models.Puzzle, error) {
	return r.get(ctx, id)
}

func (r *PuzzleRepository) get(ctx context.Context, id int64) (*models.Puzzle, error) {
	var puzzle models.Puzzle
	stmt := `SELECT id, text, solution, hint, created_at FROM puzzles WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &puzzle, stmt, id); err != nil {
		return nil, errors.Wrap(err, "read puzzle", slog.Int64("id", id))
	}
	return &puzzle, nil
}

// Current returns the most recently created puzzle. The read is always a fresh
// query so a regeneration racing with it resolves to whichever insert durably
// completed last. Returns ErrNoPuzzle when the store is empty.
func (r *PuzzleRepository) Current(ctx context.Context) (*models.Puzzle, error) {
	var puzzle models.Puzzle
	stmt := `SELECT id, text, solution, hint, created_at
	FROM puzzles
	ORDER BY created_at DESC, id DESC
	LIMIT 1`
	if err := r.dbs.ReadOnly.GetContext(ctx, &puzzle, stmt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPuzzle
		}
		return nil, errors.Wrap(err, "read current puzzle")
	}
	return &puzzle, nil
}

// Count returns the number of puzzles ever generated.
func (r *PuzzleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	stmt := `SELECT COUNT(*) FROM puzzles`
	if err := r.dbs.ReadOnly.GetContext(ctx, &count, stmt); err != nil {
		return 0, errors.Wrap(err, "count puzzles")
	}
	return count, nil
}

// List returns all puzzles, oldest first.
func (r *PuzzleRepository) List(ctx context.Context) ([]models.Puzzle, error) {
	var puzzles []models.Puzzle
	stmt := `SELECT id, text, solution, hint, created_at FROM puzzles ORDER BY created_at, id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &puzzles, stmt); err != nil {
		return nil, errors.Wrap(err, "list puzzles")
	}
	return puzzles, nil
}
