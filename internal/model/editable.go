package model

import (
	"fmt"
	"time"
)

type EditableType string

const (
	EditableTypePaper  EditableType = "paper"
	EditableTypeSlides EditableType = "slides"
	EditableTypePoster EditableType = "poster"
)

var editableTypes = []EditableType{EditableTypePaper, EditableTypeSlides, EditableTypePoster}

func ParseEditableType(s string) (EditableType, error) {
	for _, t := range editableTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown editable type: %q", s)
}

// Editable tracks the editing lifecycle of one document type of a contribution.
// Its state is never stored; see DeriveState.
type Editable struct {
	ID EditableID

	EventID        EventID
	ContributionID ContributionID
	Type           EditableType

	// Empty when no editor is assigned.
	EditorID UserID

	// Empty until a revision has been published.
	PublishedRevisionID RevisionID

	CreatedAt time.Time
	IsDeleted bool
}

func (e *Editable) HasEditor() bool {
	return e.EditorID != ""
}

func (e *Editable) IsPublished() bool {
	return e.PublishedRevisionID != ""
}
