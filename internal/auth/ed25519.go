package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/rs/zerolog"
)

// Ed25519AuthProvider implements AuthProvider with Ed25519 signed challenges.
// A token is "<user id>:<base64 signature of the current challenge>".
type Ed25519AuthProvider struct {
	keys       map[model.UserID]ed25519.PublicKey
	headerName string
	cookieName string

	mu        sync.RWMutex
	challenge []byte
}

func ParsePublicKey(publicKeyPEM string) (ed25519.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	publicKey, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("key is not an Ed25519 public key")
	}
	return publicKey, nil
}

// NewEd25519AuthProvider creates a provider for users, a map of user ID to
// PEM encoded public key.
func NewEd25519AuthProvider(users map[string]string, headerName string) (*Ed25519AuthProvider, error) {
	keys := make(map[model.UserID]ed25519.PublicKey, len(users))
	for id, publicKeyPEM := range users {
		if id == "" || id == string(model.SystemUserID) || strings.Contains(id, ":") {
			return nil, fmt.Errorf("invalid user ID %q", id)
		}
		key, err := ParsePublicKey(publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", id, err)
		}
		keys[model.UserID(id)] = key
	}

	p := &Ed25519AuthProvider{
		keys:       keys,
		headerName: headerName,
		cookieName: config.CookieAuthToken,
	}
	if err := p.RefreshChallenge(); err != nil {
		return nil, err
	}
	return p, nil
}

func FormatToken(user model.UserID, signature []byte) string {
	return string(user) + ":" + base64.StdEncoding.EncodeToString(signature)
}

// Verify returns the user a token belongs to.
func (p *Ed25519AuthProvider) Verify(token string) (model.UserID, bool) {
	id, sig, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return "", false
	}

	key, ok := p.keys[model.UserID(id)]
	if !ok {
		return "", false
	}

	signature, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if !ed25519.Verify(key, p.challenge, signature) {
		return "", false
	}
	return model.UserID(id), true
}

// WithHeaderAuthorization returns middleware that validates Ed25519-signed tokens
func (p *Ed25519AuthProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := zerolog.Ctx(r.Context())

			// The header wins over the cookie, even when it is invalid
			token := r.Header.Get(p.headerName)
			if token == "" {
				if cookie, err := r.Cookie(p.cookieName); err == nil {
					token = cookie.Value
				}
			}

			if token != "" {
				if user, ok := p.Verify(token); ok {
					next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), user)))
					return
				}
				l.Debug().Msg("Ignoring invalid auth token")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (p *Ed25519AuthProvider) GetUserIDFromSession(r *http.Request) (model.UserID, error) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return "", ErrNoUser
	}
	return userID, nil
}

func (p *Ed25519AuthProvider) EnforceUserAndGetID(w http.ResponseWriter, r *http.Request) (model.UserID, error) {
	userID, err := p.GetUserIDFromSession(r)
	if err != nil {
		unauthorized(w, r, err)
		return "", err
	}
	return userID, nil
}

// GetChallenge returns the current challenge that needs to be signed
func (p *Ed25519AuthProvider) GetChallenge() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.challenge
}

// RefreshChallenge generates a new random challenge, invalidating every token.
func (p *Ed25519AuthProvider) RefreshChallenge() error {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		authLogger.Error().Err(err).Msg("Failed to generate challenge")
		return fmt.Errorf("failed to generate challenge: %w", err)
	}

	p.mu.Lock()
	p.challenge = challenge
	p.mu.Unlock()
	return nil
}
