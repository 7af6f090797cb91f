package main

import (
	"net/http"

	"github.com/justinas/alice"
	"github.com/myrjola/turtlesoup/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	fileServer := http.FileServer(http.FS(ui.Files))
	mux.Handle("GET /static/", cacheForeverHeaders(fileServer))

	mux.HandleFunc("GET /api/healthy", app.healthy)

	dynamic := alice.New(app.sessionManager.LoadAndSave, noSurf, app.identifyParticipant)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.home))
	mux.Handle("POST /join", dynamic.ThenFunc(app.join))

	// Participants refresh these fragments on a poll interval, so they sit
	// behind the same session chain as the actions that mutate them.
	game := dynamic.Append(app.requireParticipant)

	mux.Handle("GET /game/puzzle", game.ThenFunc(app.gamePuzzle))
	mux.Handle("GET /game/transcript", game.ThenFunc(app.gameTranscript))
	mux.Handle("POST /game/question", game.ThenFunc(app.gameQuestion))
	mux.Handle("POST /game/regenerate", game.ThenFunc(app.gameRegenerate))
	mux.Handle("POST /game/hint", game.ThenFunc(app.gameHint))
	mux.Handle("POST /game/surrender", game.ThenFunc(app.gameSurrender))
	mux.Handle("POST /game/answer", game.ThenFunc(app.gameAnswer))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
