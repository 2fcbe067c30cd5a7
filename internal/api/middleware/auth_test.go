package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/autosnake/internal/api/apierr"
	"github.com/mcoot/autosnake/internal/api/middleware"
	"github.com/mcoot/autosnake/internal/model"
)

type stubAuthorizer map[model.GameID]string

func (s stubAuthorizer) Authorize(id model.GameID, token string) error {
	want, ok := s[id]
	if !ok {
		return model.ErrGameNotFound
	}
	if token != want {
		return model.ErrInvalidControlToken
	}
	return nil
}

func newRouter() http.Handler {
	r := mux.NewRouter()
	auth := middleware.ControlAuth(stubAuthorizer{"GAME01": "secret"})
	r.Handle("/games/{id}", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(middleware.MustGetGameID(r.Context())))
	})))
	return r
}

func TestControlAuth(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   string
	}{
		{"missing token", "/games/GAME01", "", http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"not bearer", "/games/GAME01", "Basic secret", http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"wrong token", "/games/GAME01", "Bearer nope", http.StatusForbidden, apierr.CodeInvalidControlToken},
		{"unknown game", "/games/GAME02", "Bearer secret", http.StatusNotFound, apierr.CodeGameNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			newRouter().ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			var resp apierr.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestControlAuth_PassesGameID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/games/GAME01", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "GAME01", rr.Body.String())
}

func TestMustGetGameID_PanicsWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Panics(t, func() { middleware.MustGetGameID(req.Context()) })
}
