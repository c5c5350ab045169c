package model

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

type RevisionType string

const (
	RevisionTypeNew                        RevisionType = "new"
	RevisionTypeReadyForReview             RevisionType = "ready_for_review"
	RevisionTypeNeedsSubmitterConfirmation RevisionType = "needs_submitter_confirmation"
	RevisionTypeChangesAcceptance          RevisionType = "changes_acceptance"
	RevisionTypeChangesRejection           RevisionType = "changes_rejection"
	RevisionTypeNeedsSubmitterChanges      RevisionType = "needs_submitter_changes"
	RevisionTypeAcceptance                 RevisionType = "acceptance"
	RevisionTypeRejection                  RevisionType = "rejection"
	RevisionTypeReplacement                RevisionType = "replacement"
	RevisionTypeReset                      RevisionType = "reset"
)

var ErrUndoneNewRevision = errors.New("a revision of type new cannot be undone")

func ParseRevisionType(s string) (RevisionType, error) {
	t := RevisionType(s)
	if _, ok := revisionStates[t]; !ok {
		return "", fmt.Errorf("unknown revision type: %q", s)
	}
	return t, nil
}

// IsEditorType reports whether revisions of this type are created by an editor
// rather than by a submitter or the system.
func (t RevisionType) IsEditorType() bool {
	switch t {
	case RevisionTypeNeedsSubmitterConfirmation, RevisionTypeNeedsSubmitterChanges,
		RevisionTypeAcceptance, RevisionTypeRejection:
		return true
	}
	return false
}

// IsSubmitterType reports whether revisions of this type are created by a submitter.
func (t RevisionType) IsSubmitterType() bool {
	switch t {
	case RevisionTypeNew, RevisionTypeReadyForReview,
		RevisionTypeChangesAcceptance, RevisionTypeChangesRejection:
		return true
	}
	return false
}

type Tag struct {
	ID      TagID
	EventID EventID
	Code    string
	Title   string
	Color   string
	System  bool
}

type FileType struct {
	ID      FileTypeID
	EventID EventID
	Name    string

	Extensions    []string
	AllowMultiple bool
	Required      bool
	Publishable   bool
}

type File struct {
	ID          FileID
	EventID     EventID
	Filename    string
	ContentType string
	Size        int64

	// SHA-256 of the uploaded bytes, hex encoded.
	Hash string

	UserID    UserID
	CreatedAt time.Time
}

type RevisionFile struct {
	File     File
	FileType FileType
}

// Revision is one step of an Editable's history. Content is immutable once
// appended; only tags, the comment text (extension override) and the undone
// flag of a revision are ever updated.
type Revision struct {
	ID         RevisionID
	EditableID EditableID

	// Position in the editable's history, starting at 1.
	Seq int

	UserID    UserID
	CreatedAt time.Time
	Type      RevisionType

	// State a replacement revision stands in for. Unused for other types.
	ReplacedState InitialState

	Comment  string
	Files    []RevisionFile
	Tags     []Tag
	IsUndone bool

	Comments []Comment
}

// Validate checks the integrity rules a persisted revision must satisfy.
func (r *Revision) Validate() error {
	if _, ok := revisionStates[r.Type]; !ok {
		return fmt.Errorf("unknown revision type: %q", r.Type)
	}
	if r.Type == RevisionTypeNew && r.IsUndone {
		return ErrUndoneNewRevision
	}
	if r.Type == RevisionTypeReplacement {
		switch r.ReplacedState {
		case InitialStateNew, InitialStateReadyForReview:
		default:
			return fmt.Errorf("replacement revision with invalid state %q", r.ReplacedState)
		}
	}
	return nil
}

func (r *Revision) HasPublishableFiles() bool {
	return slices.ContainsFunc(r.Files, func(f RevisionFile) bool {
		return f.FileType.Publishable
	})
}

func (r *Revision) TagIDs() []TagID {
	ids := make([]TagID, 0, len(r.Tags))
	for _, t := range r.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// CloneTags returns a copy of the tag set so carried-forward tags never alias.
func (r *Revision) CloneTags() []Tag {
	return slices.Clone(r.Tags)
}

// LatestWithFiles returns the newest revision in revs that has any files,
// or nil. revs must be ordered oldest first.
func LatestWithFiles(revs []*Revision) *Revision {
	for i := len(revs) - 1; i >= 0; i-- {
		if !revs[i].IsUndone && len(revs[i].Files) > 0 {
			return revs[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the revision.
func (r *Revision) Clone() *Revision {
	c := *r
	c.Files = slices.Clone(r.Files)
	c.Tags = slices.Clone(r.Tags)
	c.Comments = slices.Clone(r.Comments)
	for i := range c.Files {
		c.Files[i].FileType.Extensions = slices.Clone(r.Files[i].FileType.Extensions)
	}
	return &c
}
