package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/rs/zerolog"
)

// TokenChecker validates the bearer token of an event's editing service.
type TokenChecker interface {
	Authenticate(ctx context.Context, event model.EventID, token string) bool
}

func BearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get(config.HAuthorization), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// WithServiceToken lets the editing service in on a route carrying an
// {event} path value. Requests without a bearer token pass through
// untouched; a wrong token is rejected.
func WithServiceToken(checker TokenChecker, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			next(w, r)
			return
		}

		event := model.EventID(r.PathValue("event"))
		if event == "" || !checker.Authenticate(r.Context(), event, token) {
			zerolog.Ctx(r.Context()).Warn().Str("event_id", string(event)).Msg("Invalid service token")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(ContextWithService(r.Context(), event)))
	}
}
