package routes

import (
	"errors"
	"net/http"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/editing"
	"github.com/debemdeboas/editorial/internal/extension"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/debemdeboas/editorial/internal/storage"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// writeError maps domain errors to responses. Stale revisions must be
// checked before invalid states since they match both.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	l := zerolog.Ctx(r.Context())

	var (
		status = http.StatusInternalServerError
		body   = errorBody{Error: config.ErrInternalServerError}
	)

	var invalid *editing.InvalidStateError
	var validation *editing.ValidationError

	switch {
	case errors.Is(err, editing.ErrStaleRevision), errors.Is(err, repository.ErrConcurrency):
		status, body = http.StatusConflict, errorBody{Error: config.ErrStaleRevision}
	case errors.As(err, &invalid):
		status, body = http.StatusBadRequest, errorBody{Error: config.ErrActionNotPossible, Reason: invalid.Reason}
	case errors.Is(err, editing.ErrInvalidState):
		status, body = http.StatusBadRequest, errorBody{Error: config.ErrActionNotPossible}
	case errors.As(err, &validation):
		status, body = http.StatusBadRequest, errorBody{Error: config.ErrInvalidBody, Reason: validation.Reason}
	case errors.Is(err, extension.ErrRequestFailed):
		status, body = http.StatusServiceUnavailable, errorBody{Error: config.ErrSubmissionFailed}
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		status, body = http.StatusNotFound, errorBody{Error: config.ErrNotFound}
	case errors.Is(err, editing.ErrForbidden):
		status, body = http.StatusForbidden, errorBody{Error: config.ErrForbidden}
	case errors.Is(err, repository.ErrDuplicateEditable):
		status, body = http.StatusConflict, errorBody{Error: config.ErrActionNotPossible, Reason: err.Error()}
	case errors.Is(err, editing.ErrServiceAlreadyConnected):
		status, body = http.StatusConflict, errorBody{Error: config.ErrActionNotPossible, Reason: err.Error()}
	case errors.Is(err, editing.ErrServiceNotConnected):
		status, body = http.StatusBadRequest, errorBody{Error: config.ErrActionNotPossible, Reason: err.Error()}
	}

	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")
	} else {
		l.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request rejected")
	}

	writeJSON(w, r, status, body)
}
