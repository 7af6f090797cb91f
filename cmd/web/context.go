package main

import (
	"context"
	"net/http"
)

type contextKey string

const participantIDContextKey = contextKey("participantID")

const participantIDSessionKey = "participantID"

func withParticipantID(r *http.Request, participantID int64) *http.Request {
	ctx := context.WithValue(r.Context(), participantIDContextKey, participantID)
	return r.WithContext(ctx)
}

func participantIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(participantIDContextKey).(int64)
	return id, ok
}
