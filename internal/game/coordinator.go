package game

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/myrjola/turtlesoup/internal/ai"
	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/models"
	"github.com/myrjola/turtlesoup/internal/repositories"
)

// Oracle answers questions about a puzzle, judges final guesses, and generates
// new puzzles. Its latency is unbounded, so the coordinator only calls it from
// background tasks, except during the one-time session bootstrap.
type Oracle interface {
	GeneratePuzzle(ctx context.Context) (ai.GeneratedPuzzle, error)
	AnswerQuestion(ctx context.Context, puzzleText, solution, question string) (string, error)
	JudgeFinalAnswer(ctx context.Context, guess, solution string) (string, error)
}

// ErrValidation marks invalid user input. It is reported synchronously to the
// caller and never logged as a system fault.
var ErrValidation = errors.NewSentinel("validation failed")

// Transcript prompts for the non-question actions.
const (
	hintPrompt      = "ヒントを表示"
	surrenderPrompt = "降参"
	guessPrompt     = "【解答】"
)

// placeholderPuzzleText is shown when generation fails so the session is never
// left without a current puzzle.
const placeholderPuzzleText = "問題生成に失敗しました。「問題を再生成する」を押してもう一度お試しください。"

var taskTimeout = 2 * time.Minute

type revealKey struct {
	participantID int64
	puzzleID      int64
}

// Disclosure holds the ephemeral per-participant, per-puzzle display flags.
// Keying by puzzle ID means a regeneration implicitly resets them.
type Disclosure struct {
	HintRevealed   bool
	AnswerRevealed bool
}

// Coordinator owns the shared puzzle session: it arbitrates concurrent
// question, regenerate, hint, surrender, and final-answer operations against
// the append-only stores and dispatches oracle calls on background tasks so
// that no participant's request blocks on another's in-flight work.
type Coordinator struct {
	oracle       Oracle
	participants *repositories.ParticipantRepository
	puzzles      *repositories.PuzzleRepository
	transcripts  *repositories.TranscriptRepository
	logger       *slog.Logger

	// bootstrapMu serializes the synchronous generation when the puzzle store
	// is empty so that only the first caller generates.
	bootstrapMu sync.Mutex

	revealMu sync.Mutex
	revealed map[revealKey]*Disclosure

	tasks sync.WaitGroup
}

func NewCoordinator(
	oracle Oracle,
	participants *repositories.ParticipantRepository,
	puzzles *repositories.PuzzleRepository,
	transcripts *repositories.TranscriptRepository,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		oracle:       oracle,
		participants: participants,
		puzzles:      puzzles,
		transcripts:  transcripts,
		logger:       logger.With("source", "Coordinator"),
		revealed:     map[revealKey]*Disclosure{},
	}
}

// RegisterParticipant registers a display name and returns the participant ID.
func (c *Coordinator) RegisterParticipant(ctx context.Context, displayName string) (int64, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return 0, errors.Wrap(ErrValidation, "display name is empty")
	}
	id, err := c.participants.Create(ctx, displayName)
	if err != nil {
		return 0, errors.Wrap(err, "register participant")
	}
	return id, nil
}

// CurrentPuzzle returns the most recently created puzzle. When the store is
// empty it generates one synchronously, blocking the caller once at session
// bootstrap; this is the only synchronous generation path.
func (c *Coordinator) CurrentPuzzle(ctx context.Context) (*models.Puzzle, error) {
	puzzle, err := c.puzzles.Current(ctx)
	if err == nil {
		return puzzle, nil
	}
	if !errors.Is(err, repositories.ErrNoPuzzle) {
		return nil, errors.Wrap(err, "read current puzzle")
	}

	c.bootstrapMu.Lock()
	defer c.bootstrapMu.Unlock()

	// Another caller may have bootstrapped while we waited for the lock.
	if puzzle, err = c.puzzles.Current(ctx); err == nil {
		return puzzle, nil
	}
	if !errors.Is(err, repositories.ErrNoPuzzle) {
		return nil, errors.Wrap(err, "read current puzzle")
	}

	generated := c.generate(ctx)
	if puzzle, err = c.puzzles.Create(ctx, generated.Text, generated.Solution, generated.Hint); err != nil {
		return nil, errors.Wrap(err, "store bootstrap puzzle")
	}
	return puzzle, nil
}

// generate calls the oracle and substitutes a placeholder puzzle when the
// result is missing or malformed, so callers always get something to store.
func (c *Coordinator) generate(ctx context.Context) ai.GeneratedPuzzle {
	generated, err := c.oracle.GeneratePuzzle(ctx)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "puzzle generation failed, substituting placeholder",
			errors.SlogError(err))
		return ai.GeneratedPuzzle{Text: placeholderPuzzleText, Solution: "", Hint: ""}
	}
	return generated
}

// SubmitQuestion validates the question and schedules a background task that
// asks the oracle and appends the verdict to the transcript. The entry is
// tagged with the puzzle ID snapshotted here, so a regeneration completing
// before the oracle call returns cannot contaminate another puzzle's history.
func (c *Coordinator) SubmitQuestion(ctx context.Context, puzzleID, participantID int64, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return errors.Wrap(ErrValidation, "question is empty")
	}
	puzzle, err := c.puzzles.Get(ctx, puzzleID)
	if err != nil {
		return errors.Wrap(err, "read puzzle for question")
	}

	c.schedule("answer question", func(taskCtx context.Context) error {
		reply, answerErr := c.oracle.AnswerQuestion(taskCtx, puzzle.Text, puzzle.Solution, question)
		verdict := models.VerdictUnknown
		if answerErr != nil {
			c.logger.LogAttrs(taskCtx, slog.LevelWarn, "oracle failed to answer, degrading to unknown",
				slog.Int64("puzzle_id", puzzle.ID), errors.SlogError(answerErr))
		} else {
			verdict = models.NormalizeVerdict(reply)
		}
		// The oracle call may have consumed the whole task budget; the write
		// must still land or the submission would vanish from the transcript.
		return c.transcripts.Append(context.WithoutCancel(taskCtx), puzzle.ID, participantID, question, verdict)
	})
	return nil
}

// RequestRegenerate schedules a background generation. Storing the new puzzle
// is what advances "current"; in-flight questions about the previous puzzle
// run to completion and stay filed under their original puzzle ID.
func (c *Coordinator) RequestRegenerate(_ context.Context) error {
	c.schedule("regenerate puzzle", func(taskCtx context.Context) error {
		generated := c.generate(taskCtx)
		// A generation timeout degrades to the placeholder; storing it must
		// not fail on the same expired context.
		puzzle, err := c.puzzles.Create(context.WithoutCancel(taskCtx), generated.Text, generated.Solution, generated.Hint)
		if err != nil {
			return errors.Wrap(err, "store regenerated puzzle")
		}
		c.pruneDisclosures(puzzle.ID)
		return nil
	})
	return nil
}

// RevealHint returns the hint. The first call per (participant, puzzle)
// appends a transcript entry; repeated calls return the hint without logging
// again.
func (c *Coordinator) RevealHint(ctx context.Context, puzzleID, participantID int64) (string, error) {
	puzzle, err := c.puzzles.Get(ctx, puzzleID)
	if err != nil {
		return "", errors.Wrap(err, "read puzzle for hint")
	}

	c.revealMu.Lock()
	defer c.revealMu.Unlock()
	disclosure := c.disclosure(puzzleID, participantID)
	if disclosure.HintRevealed {
		return puzzle.Hint, nil
	}
	if err = c.transcripts.Append(ctx, puzzleID, participantID, hintPrompt, puzzle.Hint); err != nil {
		return "", errors.Wrap(err, "record hint reveal")
	}
	disclosure.HintRevealed = true
	return puzzle.Hint, nil
}

// Surrender returns the solution and appends a transcript entry on every
// call. Unlike the hint reveal, surrendering is a repeatable declaration and
// each press is recorded.
func (c *Coordinator) Surrender(ctx context.Context, puzzleID, participantID int64) (string, error) {
	puzzle, err := c.puzzles.Get(ctx, puzzleID)
	if err != nil {
		return "", errors.Wrap(err, "read puzzle for surrender")
	}
	if err = c.transcripts.Append(ctx, puzzleID, participantID, surrenderPrompt, puzzle.Solution); err != nil {
		return "", errors.Wrap(err, "record surrender")
	}

	c.revealMu.Lock()
	defer c.revealMu.Unlock()
	c.disclosure(puzzleID, participantID).AnswerRevealed = true
	return puzzle.Solution, nil
}

// SubmitFinalAnswer validates the guess and schedules background judging. A
// failed or unparseable judging call degrades to 不正解 so the submission
// never stays unresolved.
func (c *Coordinator) SubmitFinalAnswer(ctx context.Context, puzzleID, participantID int64, guess string) error {
	guess = strings.TrimSpace(guess)
	if guess == "" {
		return errors.Wrap(ErrValidation, "final answer is empty")
	}
	puzzle, err := c.puzzles.Get(ctx, puzzleID)
	if err != nil {
		return errors.Wrap(err, "read puzzle for final answer")
	}

	c.schedule("judge final answer", func(taskCtx context.Context) error {
		reply, judgeErr := c.oracle.JudgeFinalAnswer(taskCtx, guess, puzzle.Solution)
		verdict := models.VerdictIncorrect
		if judgeErr != nil {
			c.logger.LogAttrs(taskCtx, slog.LevelWarn, "oracle failed to judge, degrading to incorrect",
				slog.Int64("puzzle_id", puzzle.ID), errors.SlogError(judgeErr))
		} else {
			verdict = models.NormalizeJudgement(reply)
		}
		return c.transcripts.Append(context.WithoutCancel(taskCtx), puzzle.ID, participantID, guessPrompt+" "+guess, verdict)
	})
	return nil
}

// Transcript returns the puzzle's transcript joined with display names,
// oldest entry first.
func (c *Coordinator) Transcript(ctx context.Context, puzzleID int64) ([]models.TranscriptEntry, error) {
	entries, err := c.transcripts.List(ctx, puzzleID)
	if err != nil {
		return nil, errors.Wrap(err, "list transcript")
	}
	return entries, nil
}

// Disclosures returns the participant's display flags for a puzzle.
func (c *Coordinator) Disclosures(puzzleID, participantID int64) Disclosure {
	c.revealMu.Lock()
	defer c.revealMu.Unlock()
	return *c.disclosure(puzzleID, participantID)
}

// pruneDisclosures drops the flags of every puzzle except the given one.
// Superseded puzzles take no further reveal actions, so their entries would
// otherwise accumulate for the lifetime of the process.
func (c *Coordinator) pruneDisclosures(currentPuzzleID int64) {
	c.revealMu.Lock()
	defer c.revealMu.Unlock()
	for key := range c.revealed {
		if key.puzzleID != currentPuzzleID {
			delete(c.revealed, key)
		}
	}
}

// disclosure returns the mutable flags for the key. Callers must hold revealMu.
func (c *Coordinator) disclosure(puzzleID, participantID int64) *Disclosure {
	key := revealKey{participantID: participantID, puzzleID: puzzleID}
	if c.revealed[key] == nil {
		c.revealed[key] = &Disclosure{}
	}
	return c.revealed[key]
}

// Wait blocks until all scheduled background tasks have completed. Used
// during shutdown so that accepted work is not lost.
func (c *Coordinator) Wait() {
	c.tasks.Wait()
}

// schedule runs fn as a fire-and-forget background task with its own timeout
// context detached from the submitting request. Tasks are never cancelled;
// they run to completion and write their result.
func (c *Coordinator) schedule(name string, fn func(ctx context.Context) error) {
	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				c.logger.LogAttrs(ctx, slog.LevelError, "background task panicked",
					slog.String("task", name), slog.Any("panic", r))
			}
		}()
		if err := fn(ctx); err != nil {
			// Losing a transcript write silently would corrupt the shared
			// history, so store failures are logged as task failures.
			c.logger.LogAttrs(ctx, slog.LevelError, "background task failed",
				slog.String("task", name), errors.SlogError(err))
		}
	}()
}
