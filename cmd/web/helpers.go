package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/game"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri, slog.Any("formdata", r.Form))
	http.Error(w, http.StatusText(status), status)
}

// handleCoordinatorError maps validation failures to 422 and everything else
// to a server error.
func (app *application) handleCoordinatorError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, game.ErrValidation) {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}
	app.serverError(w, r, err)
}
