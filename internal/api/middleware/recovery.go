package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/autosnake/internal/api/apierr"
	"github.com/mcoot/autosnake/internal/middleware"
)

// Recovery creates panic recovery middleware that answers with the JSON error envelope
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writeInternalError)
}

func writeInternalError(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
