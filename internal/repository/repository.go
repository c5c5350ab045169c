// Package repository persists editables, their revision history, comments and the
// event scoped pools (tags, file types, service settings).
package repository

import (
	"context"
	"errors"

	"github.com/debemdeboas/editorial/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConcurrency is returned by AppendRevision and UpdateLatestRevision
	// when the editable's latest revision is no longer the one the write was
	// predicated on.
	ErrConcurrency = errors.New("latest revision changed concurrently")

	ErrDuplicateEditable = errors.New("an editable of this type already exists for the contribution")
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

type EditableRepository interface {
	// CreateEditable stores e together with its first revision.
	CreateEditable(ctx context.Context, e *model.Editable, first *model.Revision) error
	GetEditable(ctx context.Context, id model.EditableID) (*model.Editable, error)
	FindEditable(ctx context.Context, event model.EventID, contrib model.ContributionID, typ model.EditableType) (*model.Editable, error)
	ListEditables(ctx context.Context, event model.EventID) ([]*model.Editable, error)

	SetEditor(ctx context.Context, id model.EditableID, editor model.UserID) error
	// SetPublishedRevision points the editable at rev; an empty rev clears it.
	SetPublishedRevision(ctx context.Context, id model.EditableID, rev model.RevisionID) error
	DeleteEditable(ctx context.Context, id model.EditableID) error
}

type RevisionRepository interface {
	// Revisions returns the full history, undone revisions included, oldest first.
	Revisions(ctx context.Context, editable model.EditableID) ([]*model.Revision, error)
	// Latest returns the newest revision that is not undone.
	Latest(ctx context.Context, editable model.EditableID) (*model.Revision, error)
	GetRevision(ctx context.Context, id model.RevisionID) (*model.Revision, error)

	// AppendRevision adds rev after predecessor, which must still be the
	// editable's latest revision.
	AppendRevision(ctx context.Context, predecessor model.RevisionID, rev *model.Revision) error
	// UpdateRevision persists the mutable parts of rev: type, comment, tags and
	// the undone flag.
	UpdateRevision(ctx context.Context, rev *model.Revision) error
	// UpdateLatestRevision is UpdateRevision for a revision that must still be
	// its editable's latest; otherwise it fails with ErrConcurrency.
	UpdateLatestRevision(ctx context.Context, rev *model.Revision) error
}

type CommentRepository interface {
	AddComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id model.CommentID) (*model.Comment, error)
	UpdateComment(ctx context.Context, c *model.Comment) error
}

type PoolRepository interface {
	Tags(ctx context.Context, event model.EventID) ([]model.Tag, error)
	SaveTag(ctx context.Context, tag *model.Tag) error
	FileTypes(ctx context.Context, event model.EventID) ([]model.FileType, error)
	SaveFileType(ctx context.Context, ft *model.FileType) error

	SaveFile(ctx context.Context, f *model.File) error
	GetFile(ctx context.Context, id model.FileID) (*model.File, error)
}

type SettingsRepository interface {
	// Settings returns empty settings for events that were never configured.
	Settings(ctx context.Context, event model.EventID) (*model.EditingSettings, error)
	SaveSettings(ctx context.Context, s *model.EditingSettings) error
}

type Repository interface {
	EditableRepository
	RevisionRepository
	CommentRepository
	PoolRepository
	SettingsRepository
}
