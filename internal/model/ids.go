// Package model defines the editing entities: editables, revisions, comments, tags and files.
package model

type UserID string

// SystemUserID authors revisions created on behalf of the extension service.
const SystemUserID UserID = "system"

type EventID string

type ContributionID string

type EditableID string

type RevisionID string

type CommentID string

type FileID string

type TagID int64

type FileTypeID int64
