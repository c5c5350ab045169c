package routes

import (
	"net/http"

	"github.com/debemdeboas/editorial/internal/model"
)

type createCommentRequest struct {
	Text     string `json:"text"`
	Internal bool   `json:"internal"`
}

type updateCommentRequest struct {
	Text     *string `json:"text"`
	Internal *bool   `json:"internal"`
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	user, ok := a.user(w, r)
	if !ok {
		return
	}
	_, rev, ok := a.revisionOf(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := a.svc.CreateComment(r.Context(), rev.ID, user, req.Text, req.Internal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, a.newCommentView(c))
}

func (a *API) updateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := a.user(w, r)
	if !ok {
		return
	}
	if _, _, ok := a.revisionOf(w, r); !ok {
		return
	}

	var req updateCommentRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := a.svc.UpdateComment(r.Context(), model.CommentID(r.PathValue("comment")), user, req.Text, req.Internal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, a.newCommentView(c))
}

func (a *API) deleteComment(w http.ResponseWriter, r *http.Request) {
	user, ok := a.user(w, r)
	if !ok {
		return
	}
	if _, _, ok := a.revisionOf(w, r); !ok {
		return
	}

	if err := a.svc.DeleteComment(r.Context(), model.CommentID(r.PathValue("comment")), user); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
