package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrCommentUserMismatch = errors.New("comment must have a user unless it is a system comment")
	ErrEmptyComment        = errors.New("comment text cannot be empty")
)

type Comment struct {
	ID         CommentID
	RevisionID RevisionID

	// Empty for system comments.
	UserID UserID

	Text     string
	Internal bool
	System   bool

	IsDeleted  bool
	CreatedAt  time.Time
	ModifiedAt *time.Time
}

func (c *Comment) Validate() error {
	if (c.UserID == "") != c.System {
		return ErrCommentUserMismatch
	}
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyComment
	}
	return nil
}
