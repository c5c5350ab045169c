package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/rs/zerolog"
)

func writeChallenge(w http.ResponseWriter, challenge []byte) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	json.NewEncoder(w).Encode(map[string]string{
		"challenge": base64.StdEncoding.EncodeToString(challenge),
	})
}

// Ed25519ChallengeHandler serves the current challenge on GET and replaces
// it on POST. Replacing requires a signed-in user.
func Ed25519ChallengeHandler(provider *Ed25519AuthProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := zerolog.Ctx(r.Context())
		switch r.Method {
		case http.MethodGet:
			writeChallenge(w, provider.GetChallenge())

		case http.MethodPost:
			if _, err := provider.EnforceUserAndGetID(w, r); err != nil {
				return
			}
			if err := provider.RefreshChallenge(); err != nil {
				l.Error().Err(err).Msg("Failed to refresh challenge")
				http.Error(w, config.ErrRefreshChallengeFmt, http.StatusInternalServerError)
				return
			}
			writeChallenge(w, provider.GetChallenge())

		default:
			http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		}
	}
}

// Ed25519VerifyHandler checks the token in the auth header and stores it in
// a cookie.
func Ed25519VerifyHandler(provider *Ed25519AuthProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}

		token := r.Header.Get(provider.headerName)
		if token == "" {
			http.Error(w, config.ErrAuthHeaderRequired, http.StatusUnauthorized)
			return
		}

		user, ok := provider.Verify(token)
		if !ok {
			zerolog.Ctx(r.Context()).Warn().Msg("Signature verification failed")
			http.Error(w, config.ErrInvalidSignature, http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     provider.cookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
			Secure:   r.TLS != nil,
			MaxAge:   3600 * 24, // 24 hours
		})

		w.Header().Set(config.HCType, config.CTypeJSON)
		json.NewEncoder(w).Encode(map[string]string{"user_id": string(user)})
	}
}

// RegisterEd25519AuthRoutes registers the challenge and verification endpoints.
func RegisterEd25519AuthRoutes(mux *http.ServeMux, provider *Ed25519AuthProvider) {
	mux.HandleFunc(config.AuthPath+"/challenge", Ed25519ChallengeHandler(provider))
	mux.HandleFunc(config.AuthPath+"/verify", Ed25519VerifyHandler(provider))
}
