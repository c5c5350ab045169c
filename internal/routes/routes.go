// Package routes exposes the editing operations as a JSON API.
package routes

import (
	"encoding/json"
	"net/http"

	"github.com/debemdeboas/editorial/internal/auth"
	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/editing"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/notify"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/rs/zerolog"
)

var routesLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	routesLogger = l
}

type API struct {
	svc       *editing.Service
	auth      auth.AuthProvider
	events    *notify.Broadcaster
	rendering config.RenderingConfig
}

func NewAPI(svc *editing.Service, provider auth.AuthProvider, events *notify.Broadcaster, rendering config.RenderingConfig) *API {
	return &API{
		svc:       svc,
		auth:      provider,
		events:    events,
		rendering: rendering,
	}
}

// Register adds every API route to mux. Routes the editing service calls
// back into also accept its bearer token.
func (a *API) Register(mux *http.ServeMux) {
	service := func(h http.HandlerFunc) http.HandlerFunc {
		return auth.WithServiceToken(a.svc, h)
	}

	mux.HandleFunc("GET "+config.FilesPath+"/{file}", service(a.downloadFile))
	mux.HandleFunc("GET "+config.EventPath+"/editing/tags", service(a.listTags))
	mux.HandleFunc("GET "+config.EventPath+"/editing/file-types", service(a.listFileTypes))
	mux.HandleFunc("GET "+config.EventPath+"/editing/editables", service(a.listEditables))

	mux.HandleFunc("GET "+config.ServicePath, a.serviceStatus)
	mux.HandleFunc("PUT "+config.ServicePath, a.connectService)
	mux.HandleFunc("DELETE "+config.ServicePath, a.disconnectService)

	mux.HandleFunc("GET "+config.EditablePath, service(a.timeline))
	mux.HandleFunc("POST "+config.EditablePath, a.createEditable)
	mux.HandleFunc("DELETE "+config.EditablePath, a.deleteEditable)
	mux.HandleFunc("POST "+config.EditablePath+"/resync", a.resyncEditable)
	mux.HandleFunc("PUT "+config.EditablePath+"/editor", a.assignEditor)
	mux.HandleFunc("DELETE "+config.EditablePath+"/editor", a.unassignEditor)
	mux.HandleFunc("POST "+config.EditablePath+"/upload", service(a.uploadFile))

	mux.HandleFunc("GET "+config.RevisionPath, a.revision)
	mux.HandleFunc("POST "+config.RevisionPath+"/review", a.review)
	mux.HandleFunc("POST "+config.RevisionPath+"/review/undo", service(a.undoReview))
	mux.HandleFunc("POST "+config.RevisionPath+"/confirm", a.confirm)
	mux.HandleFunc("POST "+config.RevisionPath+"/replace", service(a.replace))
	mux.HandleFunc("POST "+config.RevisionPath+"/new", a.submitterRevision)
	mux.HandleFunc("GET "+config.RevisionPath+"/export", service(a.export))
	mux.HandleFunc("GET "+config.RevisionPath+"/actions", a.customActions)
	mux.HandleFunc("POST "+config.RevisionPath+"/actions/{action}", a.triggerCustomAction)

	mux.HandleFunc("POST "+config.RevisionPath+"/comments", a.createComment)
	mux.HandleFunc("PATCH "+config.RevisionPath+"/comments/{comment}", a.updateComment)
	mux.HandleFunc("DELETE "+config.RevisionPath+"/comments/{comment}", a.deleteComment)

	mux.HandleFunc("GET "+config.APIPrefix+"/syntax-theme/{theme}", a.syntaxCSS)
	mux.HandleFunc("POST "+config.APIPrefix+"/preview", a.preview)

	mux.HandleFunc("GET "+config.NotificationsPath, a.notifications)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error encoding response")
	}
}

// decode reads a JSON body into v. It answers the request itself when the
// body is unusable.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Invalid request body")
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: config.ErrInvalidBody})
		return false
	}
	return true
}

// user returns the acting user. The editing service acts as the system user.
func (a *API) user(w http.ResponseWriter, r *http.Request) (model.UserID, bool) {
	if _, ok := auth.ServiceFromContext(r.Context()); ok {
		return model.SystemUserID, true
	}
	userID, err := a.auth.EnforceUserAndGetID(w, r)
	return userID, err == nil
}

// editable resolves the {event}/{contrib}/{type} path values.
func (a *API) editable(w http.ResponseWriter, r *http.Request) (*model.Editable, bool) {
	typ, err := model.ParseEditableType(r.PathValue("type"))
	if err != nil {
		writeJSON(w, r, http.StatusNotFound, errorBody{Error: config.ErrNotFound})
		return nil, false
	}

	e, err := a.svc.FindEditable(r.Context(),
		model.EventID(r.PathValue("event")), model.ContributionID(r.PathValue("contrib")), typ)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return e, true
}

// revisionOf resolves {revision} and checks it belongs to the editable in the path.
func (a *API) revisionOf(w http.ResponseWriter, r *http.Request) (*model.Editable, *model.Revision, bool) {
	e, ok := a.editable(w, r)
	if !ok {
		return nil, nil, false
	}

	rev, err := a.svc.GetRevision(r.Context(), model.RevisionID(r.PathValue("revision")))
	if err == nil && rev.EditableID != e.ID {
		err = repository.ErrNotFound
	}
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	return e, rev, true
}
