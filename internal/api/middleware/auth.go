package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/autosnake/internal/api/apierr"
	"github.com/mcoot/autosnake/internal/model"
)

type contextKey string

const gameIDContextKey contextKey = "game_id"

// Authorizer checks a control token against a game
type Authorizer interface {
	Authorize(id model.GameID, token string) error
}

// ControlAuth requires the game's control token as a Bearer token.
// The game ID is taken from the {id} route variable.
func ControlAuth(authorizer Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			id := model.GameID(mux.Vars(r)["id"])
			if err := authorizer.Authorize(id, token); err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), gameIDContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the control token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetGameID returns the authorized game ID from the request context
func GetGameID(ctx context.Context) (model.GameID, bool) {
	id, ok := ctx.Value(gameIDContextKey).(model.GameID)
	return id, ok
}

// MustGetGameID returns the authorized game ID or panics
func MustGetGameID(ctx context.Context) model.GameID {
	id, ok := GetGameID(ctx)
	if !ok {
		panic("no game id in context - control auth middleware not applied?")
	}
	return id
}
