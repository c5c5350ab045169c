// Package editing implements the editing workflow of contribution documents:
// the revision state machine and the service that coordinates it with storage,
// notifications and the optional external editing service.
package editing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/notify"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/debemdeboas/editorial/internal/util"
	"github.com/rs/zerolog"
)

var editingLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editingLogger = l
}

// Store is the persistence the state machine needs.
type Store interface {
	GetEditable(ctx context.Context, id model.EditableID) (*model.Editable, error)
	SetPublishedRevision(ctx context.Context, id model.EditableID, rev model.RevisionID) error

	Revisions(ctx context.Context, editable model.EditableID) ([]*model.Revision, error)
	Latest(ctx context.Context, editable model.EditableID) (*model.Revision, error)
	AppendRevision(ctx context.Context, predecessor model.RevisionID, rev *model.Revision) error
	UpdateLatestRevision(ctx context.Context, rev *model.Revision) error
}

type ReviewAction string

const (
	ReviewAccept        ReviewAction = "accept"
	ReviewReject        ReviewAction = "reject"
	ReviewUpdate        ReviewAction = "update"
	ReviewRequestUpdate ReviewAction = "request_update"
)

var reviewRevisionTypes = map[ReviewAction]model.RevisionType{
	ReviewAccept:        model.RevisionTypeAcceptance,
	ReviewReject:        model.RevisionTypeRejection,
	ReviewUpdate:        model.RevisionTypeNeedsSubmitterConfirmation,
	ReviewRequestUpdate: model.RevisionTypeNeedsSubmitterChanges,
}

type ConfirmAction string

const (
	ConfirmAccept ConfirmAction = "accept"
	ConfirmReject ConfirmAction = "reject"
)

var confirmRevisionTypes = map[ConfirmAction]model.RevisionType{
	ConfirmAccept: model.RevisionTypeChangesAcceptance,
	ConfirmReject: model.RevisionTypeChangesRejection,
}

// Machine enforces the revision state transitions. Every operation takes the
// revision the caller believes is the latest one and fails with a
// StaleRevisionError before touching anything if it is not.
type Machine struct {
	store Store
	sink  notify.Sink

	now   func() time.Time
	newID func() string
}

func NewMachine(store Store, sink notify.Sink) *Machine {
	return &Machine{
		store: store,
		sink:  sink,
		now:   func() time.Time { return time.Now().UTC() },
		newID: util.NewID,
	}
}

// current is what an operation acts on once the latest revision is confirmed.
type current struct {
	editable *model.Editable
	latest   *model.Revision
	history  []*model.Revision
	state    model.EditableState
}

func (m *Machine) ensureLatest(ctx context.Context, op string, rev *model.Revision) (*current, error) {
	editable, err := m.store.GetEditable(ctx, rev.EditableID)
	if err != nil {
		return nil, err
	}

	latest, err := m.store.Latest(ctx, rev.EditableID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, model.ErrNoRevision)
	}
	if err != nil {
		return nil, err
	}
	if latest.ID != rev.ID {
		return nil, &StaleRevisionError{Op: op, Given: rev.ID, Latest: latest.ID}
	}

	history, err := m.store.Revisions(ctx, rev.EditableID)
	if err != nil {
		return nil, err
	}

	state, err := model.DeriveState(latest)
	if err != nil {
		return nil, err
	}

	return &current{editable: editable, latest: latest, history: history, state: state}, nil
}

func requireState(op string, state model.EditableState, allowed ...model.EditableState) error {
	if slices.Contains(allowed, state) {
		return nil
	}
	return &InvalidStateError{Op: op, State: state, Reason: fmt.Sprintf("requires %v", allowed)}
}

// requireReviewed rejects editables on which no judgment has been rendered yet.
func requireReviewed(op string, state model.EditableState) error {
	if state == model.StateNew || state == model.StateReadyForReview {
		return &InvalidStateError{Op: op, State: state, Reason: "the revision has not been reviewed"}
	}
	return nil
}

// requirePublishable checks the newest revision with files, counting files
// about to be added.
func requirePublishable(op string, c *current, files []model.RevisionFile) error {
	var withFiles *model.Revision
	if len(files) > 0 {
		withFiles = &model.Revision{Files: files}
	} else {
		withFiles = model.LatestWithFiles(c.history)
	}

	if withFiles == nil || !withFiles.HasPublishableFiles() {
		return &InvalidStateError{Op: op, State: c.state, Reason: "no publishable file"}
	}
	return nil
}

func (m *Machine) newRevision(c *current, user model.UserID, typ model.RevisionType) *model.Revision {
	return &model.Revision{
		ID:         model.RevisionID(m.newID()),
		EditableID: c.editable.ID,
		UserID:     user,
		CreatedAt:  m.now(),
		Type:       typ,
	}
}

func (m *Machine) append(ctx context.Context, op string, c *current, rev *model.Revision) error {
	err := m.store.AppendRevision(ctx, c.latest.ID, rev)
	if errors.Is(err, repository.ErrConcurrency) {
		return &StaleRevisionError{Op: op, Given: c.latest.ID}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	editingLogger.Info().
		Str("op", op).
		Str("editable_id", string(c.editable.ID)).
		Str("revision_id", string(rev.ID)).
		Str("type", string(rev.Type)).
		Msg("Revision created")
	return nil
}

// updateLatest writes the mutable fields of c.latest, failing if another
// revision was appended or undone since ensureLatest.
func (m *Machine) updateLatest(ctx context.Context, op string, c *current) error {
	err := m.store.UpdateLatestRevision(ctx, c.latest)
	if errors.Is(err, repository.ErrConcurrency) {
		return &StaleRevisionError{Op: op, Given: c.latest.ID}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// submitters are the authors of submitter revisions.
func submitters(history []*model.Revision) []model.UserID {
	users := make([]model.UserID, 0, 1)
	for _, r := range history {
		if r.Type.IsSubmitterType() && r.UserID != model.SystemUserID && !slices.Contains(users, r.UserID) {
			users = append(users, r.UserID)
		}
	}
	return users
}

func editors(e *model.Editable) []model.UserID {
	if !e.HasEditor() {
		return nil
	}
	return []model.UserID{e.EditorID}
}

// Review records an editor's judgment on a revision that is ready for review.
func (m *Machine) Review(ctx context.Context, rev *model.Revision, actor model.UserID, action ReviewAction, comment string, tags []model.Tag, files []model.RevisionFile) (*model.Revision, error) {
	const op = "review"

	typ, ok := reviewRevisionTypes[action]
	if !ok {
		return nil, invalidInput("unknown review action %q", action)
	}

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return nil, err
	}
	if err := requireState(op, c.state, model.StateReadyForReview); err != nil {
		return nil, err
	}

	if action == ReviewAccept || action == ReviewUpdate {
		if err := requirePublishable(op, c, files); err != nil {
			return nil, err
		}
	} else {
		files = nil
	}

	next := m.newRevision(c, actor, typ)
	next.Comment = comment
	next.Tags = slices.Clone(tags)
	next.Files = slices.Clone(files)

	if err := m.append(ctx, op, c, next); err != nil {
		return nil, err
	}

	m.sink.Notify(ctx, notify.KindReviewed, next, submitters(c.history))
	return next, nil
}

// Confirm is the submitter's answer to changes made by an editor.
func (m *Machine) Confirm(ctx context.Context, rev *model.Revision, submitter model.UserID, action ConfirmAction, comment string) (*model.Revision, error) {
	const op = "confirm"

	typ, ok := confirmRevisionTypes[action]
	if !ok {
		return nil, invalidInput("unknown confirmation action %q", action)
	}

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return nil, err
	}
	if err := requireState(op, c.state, model.StateNeedsSubmitterConfirmation); err != nil {
		return nil, err
	}
	if action == ConfirmAccept {
		if err := requirePublishable(op, c, nil); err != nil {
			return nil, err
		}
	}

	next := m.newRevision(c, submitter, typ)
	next.Comment = comment
	next.Tags = c.latest.CloneTags()

	if err := m.append(ctx, op, c, next); err != nil {
		return nil, err
	}

	m.sink.Notify(ctx, notify.KindConfirmed, next, editors(c.editable))
	return next, nil
}

// Replace swaps the files of a revision that has not been reviewed yet. The
// tags are set on the replaced revision, not on the replacement.
func (m *Machine) Replace(ctx context.Context, rev *model.Revision, actor model.UserID, comment string, files []model.RevisionFile, tags []model.Tag) (*model.Revision, error) {
	const op = "replace"

	if len(files) == 0 {
		return nil, invalidInput("a replacement needs files")
	}

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return nil, err
	}
	if err := requireState(op, c.state, model.StateNew, model.StateReadyForReview); err != nil {
		return nil, err
	}

	c.latest.Tags = slices.Clone(tags)
	if err := m.updateLatest(ctx, op, c); err != nil {
		return nil, err
	}

	next := m.newRevision(c, actor, model.RevisionTypeReplacement)
	next.ReplacedState = model.InitialState(c.state)
	next.Comment = comment
	next.Files = slices.Clone(files)

	if err := m.append(ctx, op, c, next); err != nil {
		return nil, err
	}

	m.sink.Notify(ctx, notify.KindReplaced, next, editors(c.editable))
	return next, nil
}

// CreateSubmitterRevision uploads new files as the submitter, either because
// changes were requested or because nobody has started reviewing yet.
func (m *Machine) CreateSubmitterRevision(ctx context.Context, rev *model.Revision, submitter model.UserID, files []model.RevisionFile) (*model.Revision, error) {
	const op = "create submitter revision"

	if len(files) == 0 {
		return nil, invalidInput("a revision needs files")
	}

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return nil, err
	}

	awaitingReview := c.state == model.StateReadyForReview && !c.editable.HasEditor()
	if !awaitingReview && c.state != model.StateNeedsSubmitterChanges {
		return nil, &InvalidStateError{
			Op:     op,
			State:  c.state,
			Reason: "changes must have been requested, or the editable must be ready for review without an editor",
		}
	}

	next := m.newRevision(c, submitter, model.RevisionTypeReadyForReview)
	next.Files = slices.Clone(files)
	next.Tags = c.latest.CloneTags()

	if err := m.append(ctx, op, c, next); err != nil {
		return nil, err
	}

	m.sink.Notify(ctx, notify.KindSubmitted, next, editors(c.editable))
	return next, nil
}

// UndoReview marks the judgment in rev as undone. No revision is created.
func (m *Machine) UndoReview(ctx context.Context, rev *model.Revision) error {
	const op = "undo review"

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return err
	}
	if err := requireReviewed(op, c.state); err != nil {
		return err
	}

	c.latest.IsUndone = true
	if err := m.updateLatest(ctx, op, c); err != nil {
		return err
	}
	rev.IsUndone = true

	if c.editable.IsPublished() {
		if err := m.store.SetPublishedRevision(ctx, c.editable.ID, ""); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	editingLogger.Info().
		Str("editable_id", string(c.editable.ID)).
		Str("revision_id", string(rev.ID)).
		Msg("Review undone")

	m.sink.Notify(ctx, notify.KindReviewUndone, c.latest, submitters(c.history))
	return nil
}

// Reset sends an accepted editable back to review on behalf of the system.
// It returns the reset revision, or nil when the editable was not accepted.
func (m *Machine) Reset(ctx context.Context, rev *model.Revision) (*model.Revision, error) {
	const op = "reset"

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return nil, err
	}
	if err := requireReviewed(op, c.state); err != nil {
		return nil, err
	}
	if c.state != model.StateAccepted {
		return nil, nil
	}

	next := m.newRevision(c, model.SystemUserID, model.RevisionTypeReset)
	next.Tags = c.latest.CloneTags()

	if err := m.append(ctx, op, c, next); err != nil {
		return nil, err
	}
	if err := m.store.SetPublishedRevision(ctx, c.editable.ID, ""); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.sink.Notify(ctx, notify.KindReset, next, append(submitters(c.history), editors(c.editable)...))
	return next, nil
}

// Publish makes rev the published revision. Publishing twice is harmless.
func (m *Machine) Publish(ctx context.Context, rev *model.Revision) error {
	const op = "publish"

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return err
	}

	if err := m.store.SetPublishedRevision(ctx, c.editable.ID, rev.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if c.editable.PublishedRevisionID != rev.ID {
		m.sink.Notify(ctx, notify.KindPublished, c.latest, submitters(c.history))
	}
	return nil
}

// Unpublish withdraws rev if it is the published revision.
func (m *Machine) Unpublish(ctx context.Context, rev *model.Revision) error {
	const op = "unpublish"

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return err
	}

	if c.editable.PublishedRevisionID != rev.ID {
		return nil
	}
	if err := m.store.SetPublishedRevision(ctx, c.editable.ID, ""); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkReadyForReview promotes a new first revision in place.
func (m *Machine) MarkReadyForReview(ctx context.Context, rev *model.Revision) error {
	const op = "mark ready for review"

	c, err := m.ensureLatest(ctx, op, rev)
	if err != nil {
		return err
	}
	if err := requireState(op, c.state, model.StateNew); err != nil {
		return err
	}
	if c.latest.Type != model.RevisionTypeNew {
		return &InvalidStateError{Op: op, State: c.state, Reason: "only a new revision can be promoted"}
	}

	c.latest.Type = model.RevisionTypeReadyForReview
	if err := m.updateLatest(ctx, op, c); err != nil {
		return err
	}
	rev.Type = model.RevisionTypeReadyForReview
	return nil
}
