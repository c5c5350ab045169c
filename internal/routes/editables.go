package routes

import (
	"net/http"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/editing"
	"github.com/debemdeboas/editorial/internal/model"
)

type createEditableRequest struct {
	Files editing.FileSelection `json:"files"`
}

type assignEditorRequest struct {
	Editor model.UserID `json:"editor"`
}

func (a *API) timeline(w http.ResponseWriter, r *http.Request) {
	viewer, ok := a.user(w, r)
	if !ok {
		return
	}
	e, ok := a.editable(w, r)
	if !ok {
		return
	}

	t, err := a.svc.Timeline(r.Context(), e.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, a.newTimelineView(t, viewer))
}

// createEditable answers 201 even when the editing service could not be
// told about the new editable; the error is then reported alongside it and
// the submission can be retried with resync.
func (a *API) createEditable(w http.ResponseWriter, r *http.Request) {
	submitter, ok := a.user(w, r)
	if !ok {
		return
	}
	typ, err := model.ParseEditableType(r.PathValue("type"))
	if err != nil {
		writeJSON(w, r, http.StatusNotFound, errorBody{Error: config.ErrNotFound})
		return
	}

	var req createEditableRequest
	if !decode(w, r, &req) {
		return
	}

	e, err := a.svc.CreateEditable(r.Context(),
		model.EventID(r.PathValue("event")), model.ContributionID(r.PathValue("contrib")), typ, submitter, req.Files)
	if e == nil {
		writeError(w, r, err)
		return
	}

	t, tErr := a.svc.Timeline(r.Context(), e.ID)
	if tErr != nil {
		writeError(w, r, tErr)
		return
	}

	view := struct {
		timelineView
		Warning string `json:"warning,omitempty"`
	}{timelineView: a.newTimelineView(t, submitter)}
	if err != nil {
		view.Warning = err.Error()
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (a *API) deleteEditable(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}
	e, ok := a.editable(w, r)
	if !ok {
		return
	}

	if err := a.svc.DeleteEditable(r.Context(), e.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) resyncEditable(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.user(w, r)
	if !ok {
		return
	}
	e, ok := a.editable(w, r)
	if !ok {
		return
	}

	if err := a.svc.ResyncEditable(r.Context(), e.ID, actor); err != nil {
		writeError(w, r, err)
		return
	}
	a.timeline(w, r)
}

func (a *API) assignEditor(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}
	e, ok := a.editable(w, r)
	if !ok {
		return
	}

	var req assignEditorRequest
	if !decode(w, r, &req) {
		return
	}
	if err := a.svc.AssignEditor(r.Context(), e.ID, req.Editor); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) unassignEditor(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}
	e, ok := a.editable(w, r)
	if !ok {
		return
	}

	if err := a.svc.UnassignEditor(r.Context(), e.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listEditables(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	editables, err := a.svc.ListEditables(r.Context(), model.EventID(r.PathValue("event")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]editableView, 0, len(editables))
	for _, e := range editables {
		views = append(views, newEditableView(e, a.svc.State(r.Context(), e)))
	}
	writeJSON(w, r, http.StatusOK, views)
}

func (a *API) listTags(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	tags, err := a.svc.Tags(r.Context(), model.EventID(r.PathValue("event")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newTagViews(tags))
}

type fileTypeView struct {
	ID            model.FileTypeID `json:"id"`
	Name          string           `json:"name"`
	Extensions    []string         `json:"extensions"`
	AllowMultiple bool             `json:"allow_multiple_files"`
	Required      bool             `json:"required"`
	Publishable   bool             `json:"publishable"`
}

func (a *API) listFileTypes(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	types, err := a.svc.FileTypes(r.Context(), model.EventID(r.PathValue("event")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]fileTypeView, 0, len(types))
	for _, ft := range types {
		views = append(views, fileTypeView{
			ID:            ft.ID,
			Name:          ft.Name,
			Extensions:    ft.Extensions,
			AllowMultiple: ft.AllowMultiple,
			Required:      ft.Required,
			Publishable:   ft.Publishable,
		})
	}
	writeJSON(w, r, http.StatusOK, views)
}
