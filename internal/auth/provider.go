// Package auth identifies the user behind a request: Ed25519 signed
// challenges or Clerk sessions for people, bearer tokens for the editing service.
package auth

import (
	"errors"
	"net/http"

	"github.com/debemdeboas/editorial/internal/model"
	"github.com/rs/zerolog"
)

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

var ErrNoUser = errors.New("no user ID in context")

type AuthProvider interface {
	WithHeaderAuthorization() func(http.Handler) http.Handler

	GetUserIDFromSession(r *http.Request) (model.UserID, error)

	EnforceUserAndGetID(w http.ResponseWriter, r *http.Request) (model.UserID, error)
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Unauthorized access attempt")
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
