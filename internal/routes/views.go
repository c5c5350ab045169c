package routes

import (
	"time"

	"github.com/debemdeboas/editorial/internal/editing"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/render"
)

type editableView struct {
	ID                  model.EditableID     `json:"id"`
	EventID             model.EventID        `json:"event_id"`
	ContributionID      model.ContributionID `json:"contribution_id"`
	Type                model.EditableType   `json:"type"`
	State               model.EditableState  `json:"state,omitempty"`
	EditorID            model.UserID         `json:"editor_id,omitempty"`
	PublishedRevisionID model.RevisionID     `json:"published_revision_id,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

type fileView struct {
	ID          model.FileID     `json:"id"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"content_type"`
	Size        int64            `json:"size"`
	Hash        string           `json:"hash"`
	FileTypeID  model.FileTypeID `json:"file_type,omitempty"`
}

type tagView struct {
	ID     model.TagID `json:"id"`
	Code   string      `json:"code"`
	Title  string      `json:"title"`
	Color  string      `json:"color,omitempty"`
	System bool        `json:"system"`
}

type commentView struct {
	ID         model.CommentID `json:"id"`
	UserID     model.UserID    `json:"user_id,omitempty"`
	Text       string          `json:"text"`
	HTML       string          `json:"html"`
	Internal   bool            `json:"internal"`
	System     bool            `json:"system"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt *time.Time      `json:"modified_at,omitempty"`
}

type revisionView struct {
	ID          model.RevisionID   `json:"id"`
	Seq         int                `json:"seq"`
	Type        model.RevisionType `json:"type"`
	UserID      model.UserID       `json:"user_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Comment     string             `json:"comment"`
	CommentHTML string             `json:"comment_html"`
	IsUndone    bool               `json:"is_undone"`
	Files       []fileView         `json:"files"`
	Tags        []tagView          `json:"tags"`
	Comments    []commentView      `json:"comments"`
}

type timelineView struct {
	Editable  editableView   `json:"editable"`
	Revisions []revisionView `json:"revisions"`
}

func newEditableView(e *model.Editable, state model.EditableState) editableView {
	return editableView{
		ID:                  e.ID,
		EventID:             e.EventID,
		ContributionID:      e.ContributionID,
		Type:                e.Type,
		State:               state,
		EditorID:            e.EditorID,
		PublishedRevisionID: e.PublishedRevisionID,
		CreatedAt:           e.CreatedAt,
	}
}

func newFileView(f *model.File, typ model.FileTypeID) fileView {
	return fileView{
		ID:          f.ID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Hash:        f.Hash,
		FileTypeID:  typ,
	}
}

func newTagViews(tags []model.Tag) []tagView {
	res := make([]tagView, 0, len(tags))
	for _, t := range tags {
		res = append(res, tagView{ID: t.ID, Code: t.Code, Title: t.Title, Color: t.Color, System: t.System})
	}
	return res
}

func (a *API) renderText(text string) string {
	if text == "" {
		return ""
	}
	return string(render.RenderComment(text, a.rendering.Renderer, a.rendering.SyntaxTheme))
}

func (a *API) newCommentView(c *model.Comment) commentView {
	return commentView{
		ID:         c.ID,
		UserID:     c.UserID,
		Text:       c.Text,
		HTML:       a.renderText(c.Text),
		Internal:   c.Internal,
		System:     c.System,
		CreatedAt:  c.CreatedAt,
		ModifiedAt: c.ModifiedAt,
	}
}

// newRevisionView renders rev for viewer. Internal comments are only shown
// to the editor of the editable and to the editing service.
func (a *API) newRevisionView(e *model.Editable, rev *model.Revision, viewer model.UserID) revisionView {
	files := make([]fileView, 0, len(rev.Files))
	for _, f := range rev.Files {
		files = append(files, newFileView(&f.File, f.FileType.ID))
	}

	seesInternal := viewer == model.SystemUserID || (e.HasEditor() && viewer == e.EditorID)
	comments := make([]commentView, 0, len(rev.Comments))
	for i := range rev.Comments {
		c := &rev.Comments[i]
		if c.IsDeleted || (c.Internal && !seesInternal) {
			continue
		}
		comments = append(comments, a.newCommentView(c))
	}

	return revisionView{
		ID:          rev.ID,
		Seq:         rev.Seq,
		Type:        rev.Type,
		UserID:      rev.UserID,
		CreatedAt:   rev.CreatedAt,
		Comment:     rev.Comment,
		CommentHTML: a.renderText(rev.Comment),
		IsUndone:    rev.IsUndone,
		Files:       files,
		Tags:        newTagViews(rev.Tags),
		Comments:    comments,
	}
}

func (a *API) newTimelineView(t *editing.Timeline, viewer model.UserID) timelineView {
	revs := make([]revisionView, 0, len(t.Revisions))
	for _, rev := range t.Revisions {
		revs = append(revs, a.newRevisionView(t.Editable, rev, viewer))
	}
	return timelineView{
		Editable:  newEditableView(t.Editable, t.State),
		Revisions: revs,
	}
}
