package routes

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/editing"
	"github.com/debemdeboas/editorial/internal/extension"
	"github.com/debemdeboas/editorial/internal/model"
)

type reviewRequest struct {
	Action  editing.ReviewAction  `json:"action"`
	Comment string                `json:"comment"`
	Tags    []model.TagID         `json:"tags"`
	Files   editing.FileSelection `json:"files"`
}

type confirmRequest struct {
	Action  editing.ConfirmAction `json:"action"`
	Comment string                `json:"comment"`
}

type replaceRequest struct {
	Comment string                `json:"comment"`
	Files   editing.FileSelection `json:"files"`
	Tags    []model.TagID         `json:"tags"`
}

type submitterRevisionRequest struct {
	Files editing.FileSelection `json:"files"`
}

type customActionResponse struct {
	Redirect string        `json:"redirect,omitempty"`
	Reset    *revisionView `json:"reset,omitempty"`
}

func (a *API) revision(w http.ResponseWriter, r *http.Request) {
	viewer, ok := a.user(w, r)
	if !ok {
		return
	}
	e, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, a.newRevisionView(e, rev, viewer))
}

// created answers with the revision an action produced.
func (a *API) created(w http.ResponseWriter, r *http.Request, e *model.Editable, rev *model.Revision, viewer model.UserID) {
	writeJSON(w, r, http.StatusCreated, a.newRevisionView(e, rev, viewer))
}

func (a *API) review(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.user(w, r)
	if !ok {
		return
	}
	e, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if !decode(w, r, &req) {
		return
	}

	next, err := a.svc.Review(r.Context(), rev.ID, actor, req.Action, req.Comment, req.Tags, req.Files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.created(w, r, e, next, actor)
}

func (a *API) confirm(w http.ResponseWriter, r *http.Request) {
	submitter, ok := a.user(w, r)
	if !ok {
		return
	}
	e, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if !decode(w, r, &req) {
		return
	}

	next, err := a.svc.Confirm(r.Context(), rev.ID, submitter, req.Action, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.created(w, r, e, next, submitter)
}

func (a *API) replace(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.user(w, r)
	if !ok {
		return
	}
	e, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	var req replaceRequest
	if !decode(w, r, &req) {
		return
	}

	next, err := a.svc.Replace(r.Context(), rev.ID, actor, req.Comment, req.Files, req.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.created(w, r, e, next, actor)
}

func (a *API) submitterRevision(w http.ResponseWriter, r *http.Request) {
	submitter, ok := a.user(w, r)
	if !ok {
		return
	}
	e, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	var req submitterRevisionRequest
	if !decode(w, r, &req) {
		return
	}

	next, err := a.svc.CreateSubmitterRevision(r.Context(), rev.ID, submitter, req.Files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.created(w, r, e, next, submitter)
}

func (a *API) undoReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}
	_, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	if err := a.svc.UndoReview(r.Context(), rev.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) export(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}
	e, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := a.svc.ExportRevision(r.Context(), rev.ID, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	name := fmt.Sprintf("%s-%s-%d.zip", e.ContributionID, e.Type, rev.Seq)
	w.Header().Set(config.HCType, config.CTypeZip)
	w.Header().Set(config.HContentDispose, fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (a *API) customActions(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.user(w, r)
	if !ok {
		return
	}
	_, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	actions, err := a.svc.CustomActions(r.Context(), rev.ID, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if actions == nil {
		actions = []extension.CustomAction{}
	}
	writeJSON(w, r, http.StatusOK, actions)
}

func (a *API) triggerCustomAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.user(w, r)
	if !ok {
		return
	}
	e, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	res, err := a.svc.TriggerCustomAction(r.Context(), rev.ID, actor, r.PathValue("action"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := customActionResponse{Redirect: res.Redirect}
	if res.Reset != nil {
		view := a.newRevisionView(e, res.Reset, actor)
		resp.Reset = &view
	}
	writeJSON(w, r, http.StatusOK, resp)
}
