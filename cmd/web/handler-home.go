package main

import (
	"net/http"
)

type homeTemplateData struct {
	BaseTemplateData
}

// home shows the join form for anonymous visitors and the shared game view
// for registered participants.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	participantID, ok := participantIDFromContext(r.Context())
	if !ok {
		data := homeTemplateData{
			BaseTemplateData: newBaseTemplateData(r),
		}
		app.render(w, r, http.StatusOK, "home", "base", data)
		return
	}

	data, err := app.newGameTemplateData(r, participantID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "game", "base", data)
}

// join registers a participant and binds the ID to the session.
func (app *application) join(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	participantID, err := app.coordinator.RegisterParticipant(r.Context(), r.PostForm.Get("display_name"))
	if err != nil {
		app.handleCoordinatorError(w, r, err)
		return
	}

	// Renew the token to protect against session fixation.
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), participantIDSessionKey, participantID)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
