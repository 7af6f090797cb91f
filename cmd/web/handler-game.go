package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/turtlesoup/internal/models"
)

// puzzleView is the disclosure-gated projection of a puzzle. The hint and
// solution are only populated once the participant has revealed them, so the
// markup can never leak them early.
type puzzleView struct {
	ID             int64
	Text           string
	Hint           string
	HintRevealed   bool
	Solution       string
	AnswerRevealed bool
}

type gameTemplateData struct {
	BaseTemplateData
	Puzzle       puzzleView
	Transcript   []models.TranscriptEntry
	PollInterval string
}

func (app *application) newGameTemplateData(r *http.Request, participantID int64) (gameTemplateData, error) {
	var data gameTemplateData

	puzzle, err := app.coordinator.CurrentPuzzle(r.Context())
	if err != nil {
		return data, err
	}

	transcript, err := app.coordinator.Transcript(r.Context(), puzzle.ID)
	if err != nil {
		return data, err
	}

	disclosure := app.coordinator.Disclosures(puzzle.ID, participantID)
	view := puzzleView{
		ID:             puzzle.ID,
		Text:           puzzle.Text,
		HintRevealed:   disclosure.HintRevealed,
		AnswerRevealed: disclosure.AnswerRevealed,
	}
	if disclosure.HintRevealed {
		view.Hint = puzzle.Hint
	}
	if disclosure.AnswerRevealed {
		view.Solution = puzzle.Solution
	}

	data = gameTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Puzzle:           view,
		Transcript:       transcript,
		PollInterval:     app.pollInterval.Truncate(time.Millisecond).String(),
	}
	return data, nil
}

// gamePuzzle serves the polled puzzle fragment.
func (app *application) gamePuzzle(w http.ResponseWriter, r *http.Request) {
	participantID, _ := participantIDFromContext(r.Context())
	data, err := app.newGameTemplateData(r, participantID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "game", "puzzle", data)
}

// gameTranscript serves the polled transcript fragment.
func (app *application) gameTranscript(w http.ResponseWriter, r *http.Request) {
	participantID, _ := participantIDFromContext(r.Context())
	data, err := app.newGameTemplateData(r, participantID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "game", "transcript", data)
}

// formPuzzleID reads the puzzle ID the form was rendered against. Actions are
// recorded against this ID even if a regeneration lands in between.
func (app *application) formPuzzleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return 0, false
	}
	puzzleID, err := strconv.ParseInt(r.PostForm.Get("puzzle_id"), 10, 64)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return 0, false
	}
	return puzzleID, true
}

// respondWithFragment re-renders the given fragment for htmx requests and
// falls back to a redirect for plain form posts.
func (app *application) respondWithFragment(w http.ResponseWriter, r *http.Request, name string) {
	h := app.htmx.NewHandler(w, r)
	if !h.IsHxRequest() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	participantID, _ := participantIDFromContext(r.Context())
	data, err := app.newGameTemplateData(r, participantID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "game", name, data)
}

func (app *application) gameQuestion(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := app.formPuzzleID(w, r)
	if !ok {
		return
	}
	participantID, _ := participantIDFromContext(r.Context())

	err := app.coordinator.SubmitQuestion(r.Context(), puzzleID, participantID, r.PostForm.Get("question"))
	if err != nil {
		app.handleCoordinatorError(w, r, err)
		return
	}

	app.respondWithFragment(w, r, "transcript")
}

func (app *application) gameRegenerate(w http.ResponseWriter, r *http.Request) {
	if err := app.coordinator.RequestRegenerate(r.Context()); err != nil {
		app.handleCoordinatorError(w, r, err)
		return
	}

	app.respondWithFragment(w, r, "puzzle")
}

func (app *application) gameHint(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := app.formPuzzleID(w, r)
	if !ok {
		return
	}
	participantID, _ := participantIDFromContext(r.Context())

	if _, err := app.coordinator.RevealHint(r.Context(), puzzleID, participantID); err != nil {
		app.handleCoordinatorError(w, r, err)
		return
	}

	app.respondWithFragment(w, r, "puzzle")
}

func (app *application) gameSurrender(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := app.formPuzzleID(w, r)
	if !ok {
		return
	}
	participantID, _ := participantIDFromContext(r.Context())

	if _, err := app.coordinator.Surrender(r.Context(), puzzleID, participantID); err != nil {
		app.handleCoordinatorError(w, r, err)
		return
	}

	app.respondWithFragment(w, r, "puzzle")
}

func (app *application) gameAnswer(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := app.formPuzzleID(w, r)
	if !ok {
		return
	}
	participantID, _ := participantIDFromContext(r.Context())

	err := app.coordinator.SubmitFinalAnswer(r.Context(), puzzleID, participantID, r.PostForm.Get("guess"))
	if err != nil {
		app.handleCoordinatorError(w, r, err)
		return
	}

	app.respondWithFragment(w, r, "transcript")
}
