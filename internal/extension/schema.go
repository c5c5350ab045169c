package extension

import (
	"fmt"
	"strings"
	"time"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/model"
)

// Payloads sent to the service.

type ServiceEndpoints struct {
	Tags      string `json:"tags"`
	FileTypes string `json:"file_types"`
	Editables string `json:"editables"`
}

type EnabledRequest struct {
	EventID   model.EventID    `json:"event_id"`
	URL       string           `json:"url"`
	Token     string           `json:"token"`
	Endpoints ServiceEndpoints `json:"endpoints"`
}

type EditablePayload struct {
	ID                  model.EditableID     `json:"id"`
	EventID             model.EventID        `json:"event_id"`
	ContributionID      model.ContributionID `json:"contribution_id"`
	Type                model.EditableType   `json:"type"`
	State               model.EditableState  `json:"state"`
	EditorID            model.UserID         `json:"editor,omitempty"`
	PublishedRevisionID model.RevisionID     `json:"published_revision,omitempty"`
}

type FilePayload struct {
	ID          model.FileID `json:"id"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
	Hash        string       `json:"hash"`
	FileType    string       `json:"file_type"`
	Publishable bool         `json:"publishable"`
	DownloadURL string       `json:"download_url"`
}

type TagPayload struct {
	ID     model.TagID `json:"id"`
	Code   string      `json:"code"`
	Title  string      `json:"title"`
	Color  string      `json:"color"`
	System bool        `json:"system"`
}

// RevisionURLs are the callbacks the service may use to act on a revision.
type RevisionURLs struct {
	Details    string `json:"details"`
	Upload     string `json:"upload"`
	Replace    string `json:"replace"`
	UndoReview string `json:"undo_review"`
	Export     string `json:"export"`
}

type RevisionPayload struct {
	ID        model.RevisionID   `json:"id"`
	Seq       int                `json:"number"`
	Type      model.RevisionType `json:"type"`
	UserID    model.UserID       `json:"user"`
	CreatedAt time.Time          `json:"created_dt"`
	Comment   string             `json:"comment"`
	IsUndone  bool               `json:"is_undone"`
	Files     []FilePayload      `json:"files"`
	Tags      []TagPayload       `json:"tags"`
	URLs      RevisionURLs       `json:"urls"`
}

type NewEditableRequest struct {
	Editable EditablePayload `json:"editable"`
	Revision RevisionPayload `json:"revision"`
	User     model.UserID    `json:"user"`
}

type ReviewRequest struct {
	Action   string          `json:"action"`
	Editable EditablePayload `json:"editable"`
	Revision RevisionPayload `json:"revision"`
	// The revision that was reviewed.
	Parent RevisionPayload `json:"parent"`
	User   model.UserID    `json:"user"`
}

type RevisionRequest struct {
	Editable EditablePayload `json:"editable"`
	Revision RevisionPayload `json:"revision"`
	User     model.UserID    `json:"user"`
}

type CustomActionRequest struct {
	Action   string          `json:"action"`
	Editable EditablePayload `json:"editable"`
	Revision RevisionPayload `json:"revision"`
	User     model.UserID    `json:"user"`
}

// Responses read from the service.

type ServiceComment struct {
	Text     string `json:"text"`
	Internal bool   `json:"internal"`
}

type StatusResponse struct {
	Status        string `json:"status"`
	CanDisconnect bool   `json:"can_disconnect"`
}

type NewEditableResponse struct {
	ReadyForReview bool `json:"ready_for_review"`
}

type ReviewResponse struct {
	Publish  *bool            `json:"publish"`
	Comment  *string          `json:"comment"`
	Tags     *[]model.TagID   `json:"tags"`
	Comments []ServiceComment `json:"comments"`
}

// ShouldPublish is true unless the service explicitly said otherwise.
func (r *ReviewResponse) ShouldPublish() bool {
	return r == nil || r.Publish == nil || *r.Publish
}

type CustomAction struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Color   string `json:"color,omitempty"`
	Icon    string `json:"icon,omitempty"`
	Confirm string `json:"confirm,omitempty"`
}

type CustomActionResponse struct {
	Publish  *bool            `json:"publish"`
	Tags     *[]model.TagID   `json:"tags"`
	Comments []ServiceComment `json:"comments"`
	Redirect string           `json:"redirect"`
	Reset    bool             `json:"reset"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validator interface {
	validate() error
}

func validateComments(comments []ServiceComment) error {
	for i, c := range comments {
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("comment %d has no text", i)
		}
	}
	return nil
}

func (r *ReviewResponse) validate() error {
	return validateComments(r.Comments)
}

func (r *CustomActionResponse) validate() error {
	return validateComments(r.Comments)
}

func (a *customActionsResponse) validate() error {
	for i, action := range a.Actions {
		if action.Name == "" {
			return fmt.Errorf("custom action %d has no name", i)
		}
	}
	return nil
}

type customActionsResponse struct {
	Actions []CustomAction `json:"actions"`
}

// URLBuilder renders absolute callback URLs from the route patterns.
type URLBuilder struct {
	PublicURL string
}

func (b URLBuilder) expand(pattern string, kv ...string) string {
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", escapeSegment(kv[i+1]))
	}
	return strings.TrimRight(b.PublicURL, "/") + strings.NewReplacer(pairs...).Replace(pattern)
}

func (b URLBuilder) Endpoints(event model.EventID) ServiceEndpoints {
	base := b.expand(config.EventPath, "event", string(event))
	return ServiceEndpoints{
		Tags:      base + "/editing/tags",
		FileTypes: base + "/editing/file-types",
		Editables: base + "/editing/editables",
	}
}

func (b URLBuilder) Revision(e *model.Editable, rev *model.Revision) RevisionURLs {
	editable := b.expand(config.EditablePath,
		"event", string(e.EventID), "contrib", string(e.ContributionID), "type", string(e.Type))
	revision := b.expand(config.RevisionPath,
		"event", string(e.EventID), "contrib", string(e.ContributionID), "type", string(e.Type),
		"revision", string(rev.ID))

	return RevisionURLs{
		Details:    editable,
		Upload:     editable + "/upload",
		Replace:    revision + "/replace",
		UndoReview: revision + "/review/undo",
		Export:     revision + "/export",
	}
}

func (b URLBuilder) File(e *model.Editable, id model.FileID) string {
	return b.expand(config.FilePath, "event", string(e.EventID), "file", string(id))
}

func NewEditablePayload(e *model.Editable, state model.EditableState) EditablePayload {
	return EditablePayload{
		ID:                  e.ID,
		EventID:             e.EventID,
		ContributionID:      e.ContributionID,
		Type:                e.Type,
		State:               state,
		EditorID:            e.EditorID,
		PublishedRevisionID: e.PublishedRevisionID,
	}
}

func (b URLBuilder) RevisionPayload(e *model.Editable, rev *model.Revision) RevisionPayload {
	files := make([]FilePayload, 0, len(rev.Files))
	for _, f := range rev.Files {
		files = append(files, FilePayload{
			ID:          f.File.ID,
			Filename:    f.File.Filename,
			ContentType: f.File.ContentType,
			Size:        f.File.Size,
			Hash:        f.File.Hash,
			FileType:    f.FileType.Name,
			Publishable: f.FileType.Publishable,
			DownloadURL: b.File(e, f.File.ID),
		})
	}

	tags := make([]TagPayload, 0, len(rev.Tags))
	for _, t := range rev.Tags {
		tags = append(tags, TagPayload{ID: t.ID, Code: t.Code, Title: t.Title, Color: t.Color, System: t.System})
	}

	return RevisionPayload{
		ID:        rev.ID,
		Seq:       rev.Seq,
		Type:      rev.Type,
		UserID:    rev.UserID,
		CreatedAt: rev.CreatedAt,
		Comment:   rev.Comment,
		IsUndone:  rev.IsUndone,
		Files:     files,
		Tags:      tags,
		URLs:      b.Revision(e, rev),
	}
}
