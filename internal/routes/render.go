package routes

import (
	"io"
	"net/http"
	"slices"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/render"
	"github.com/debemdeboas/editorial/internal/util"
)

func (a *API) syntaxCSS(w http.ResponseWriter, r *http.Request) {
	theme := r.PathValue("theme")
	if !slices.Contains(render.Themes(), theme) {
		http.Error(w, config.ErrNotFound, http.StatusNotFound)
		return
	}

	css := []byte(render.SyntaxCSS(theme))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HCacheControl, "public, max-age=3600")
	w.Header().Set(config.HETag, util.ContentHash(css))
	w.WriteHeader(http.StatusOK)
	w.Write(css)
}

// preview renders comment Markdown the way it will be shown once posted.
func (a *API) preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	text, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, config.ErrInvalidBody, http.StatusBadRequest)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(a.renderText(string(text))))
}

func SecureHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h.ServeHTTP(w, r)
	})
}
