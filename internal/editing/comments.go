package editing

import (
	"context"
	"slices"

	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/notify"
)

func (s *Service) CreateComment(ctx context.Context, revID model.RevisionID, user model.UserID, text string, internal bool) (*model.Comment, error) {
	rev, editable, _, err := s.revisionContext(ctx, revID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:         model.CommentID(s.newID()),
		RevisionID: rev.ID,
		UserID:     user,
		Text:       text,
		Internal:   internal,
		CreatedAt:  s.now(),
	}
	if err := comment.Validate(); err != nil {
		return nil, invalidInput("%s", err.Error())
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	history, err := s.repo.Revisions(ctx, editable.ID)
	if err != nil {
		return nil, err
	}
	recipients := slices.DeleteFunc(append(submitters(history), editors(editable)...), func(u model.UserID) bool {
		return u == user
	})
	// Internal comments are for the editing team only.
	if internal {
		recipients = slices.DeleteFunc(recipients, func(u model.UserID) bool {
			return u != editable.EditorID
		})
	}
	s.sink.Notify(ctx, notify.KindCommentAdded, rev, recipients)

	return comment, nil
}

// editableComment loads a comment that user may change.
func (s *Service) editableComment(ctx context.Context, id model.CommentID, user model.UserID) (*model.Comment, error) {
	c, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, invalidInput("comment %s was deleted", id)
	}
	if c.System {
		return nil, &InvalidStateError{Op: "modify comment", Reason: "system comments cannot be changed"}
	}
	if c.UserID != user {
		return nil, ErrForbidden
	}
	return c, nil
}

// UpdateComment changes the text or visibility of a comment; nil leaves a
// field unchanged.
func (s *Service) UpdateComment(ctx context.Context, id model.CommentID, user model.UserID, text *string, internal *bool) (*model.Comment, error) {
	c, err := s.editableComment(ctx, id, user)
	if err != nil {
		return nil, err
	}

	if text != nil {
		c.Text = *text
	}
	if internal != nil {
		c.Internal = *internal
	}
	now := s.now()
	c.ModifiedAt = &now

	if err := c.Validate(); err != nil {
		return nil, invalidInput("%s", err.Error())
	}
	if err := s.repo.UpdateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, id model.CommentID, user model.UserID) error {
	c, err := s.editableComment(ctx, id, user)
	if err != nil {
		return err
	}

	c.IsDeleted = true
	return s.repo.UpdateComment(ctx, c)
}
