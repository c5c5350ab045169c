package editing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/editorial/internal/extension"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/notify"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/debemdeboas/editorial/internal/storage"
	"github.com/debemdeboas/editorial/internal/util"
)

// Extension is the client of the external editing service.
type Extension interface {
	NotifyEnabled(ctx context.Context, s *model.EditingSettings) error
	NotifyDisconnected(ctx context.Context, s *model.EditingSettings) error
	Status(ctx context.Context, s *model.EditingSettings) (*extension.StatusResponse, error)

	NotifyNewEditable(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, rev *model.Revision, actor model.UserID) (*extension.NewEditableResponse, error)
	NotifyReview(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, actor model.UserID, action string, parent, rev *model.Revision) (*extension.ReviewResponse, error)
	CustomActions(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, rev *model.Revision, actor model.UserID) []extension.CustomAction
	HandleCustomAction(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, rev *model.Revision, actor model.UserID, action string) (*extension.CustomActionResponse, error)
	NotifyDeleteEditable(ctx context.Context, s *model.EditingSettings, e *model.Editable) error
}

// Service runs the editing operations end to end: it resolves revisions,
// drives the Machine and applies what the editing service answers.
type Service struct {
	repo    repository.Repository
	machine *Machine
	ext     Extension
	blobs   storage.Storage
	sink    notify.Sink

	now   func() time.Time
	newID func() string
}

func NewService(repo repository.Repository, ext Extension, blobs storage.Storage, sink notify.Sink) *Service {
	if sink == nil {
		sink = notify.LogSink{}
	}
	m := NewMachine(repo, sink)
	return &Service{
		repo:    repo,
		machine: m,
		ext:     ext,
		blobs:   blobs,
		sink:    sink,
		now:     m.now,
		newID:   m.newID,
	}
}

func (s *Service) Machine() *Machine {
	return s.machine
}

// FileSelection picks uploaded files per file type.
type FileSelection map[model.FileTypeID][]model.FileID

// resolveFiles checks a selection against the event's file types. Required
// types must be present only when requireAll is set.
func (s *Service) resolveFiles(ctx context.Context, event model.EventID, sel FileSelection, requireAll bool) ([]model.RevisionFile, error) {
	fileTypes, err := s.repo.FileTypes(ctx, event)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.FileTypeID]model.FileType, len(fileTypes))
	for _, ft := range fileTypes {
		byID[ft.ID] = ft
	}

	files := make([]model.RevisionFile, 0)
	for typeID, ids := range sel {
		ft, ok := byID[typeID]
		if !ok {
			return nil, invalidInput("file type %d does not belong to this event", typeID)
		}
		if len(ids) > 1 && !ft.AllowMultiple {
			return nil, invalidInput("file type %s accepts a single file", ft.Name)
		}

		for _, id := range ids {
			f, err := s.repo.GetFile(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalidInput("unknown file %s", id)
			}
			if err != nil {
				return nil, err
			}
			if f.EventID != event {
				return nil, invalidInput("unknown file %s", id)
			}
			if !util.HasExtension(f.Filename, ft.Extensions) {
				return nil, invalidInput("file %s is not allowed for file type %s", f.Filename, ft.Name)
			}
			files = append(files, model.RevisionFile{File: *f, FileType: ft})
		}
	}

	if len(files) == 0 {
		return nil, invalidInput("no files given")
	}

	if requireAll {
		for _, ft := range fileTypes {
			if ft.Required && len(sel[ft.ID]) == 0 {
				return nil, invalidInput("file type %s is required", ft.Name)
			}
		}
	}

	return files, nil
}

// resolveTags looks tag ids up in the event's pool. Unknown ids are dropped.
func (s *Service) resolveTags(ctx context.Context, event model.EventID, ids []model.TagID) ([]model.Tag, error) {
	pool, err := s.repo.Tags(ctx, event)
	if err != nil {
		return nil, err
	}

	tags := make([]model.Tag, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, t := range pool {
			if t.ID == id {
				tags = append(tags, t)
				found = true
				break
			}
		}
		if !found {
			editingLogger.Warn().Int64("tag_id", int64(id)).Str("event_id", string(event)).Msg("Ignoring unknown tag")
		}
	}
	return tags, nil
}

// editorTags are the tags an editor or submitter may set: system tags are
// reserved for the editing service.
func (s *Service) editorTags(ctx context.Context, event model.EventID, ids []model.TagID) ([]model.Tag, error) {
	tags, err := s.resolveTags(ctx, event, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if t.System {
			return nil, invalidInput("tag %s is managed by the editing service", t.Code)
		}
	}
	return tags, nil
}

func (s *Service) settings(ctx context.Context, event model.EventID) (*model.EditingSettings, error) {
	return s.repo.Settings(ctx, event)
}

// revisionContext loads a revision with its editable and the settings of the event.
func (s *Service) revisionContext(ctx context.Context, id model.RevisionID) (*model.Revision, *model.Editable, *model.EditingSettings, error) {
	rev, err := s.repo.GetRevision(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	editable, err := s.repo.GetEditable(ctx, rev.EditableID)
	if err != nil {
		return nil, nil, nil, err
	}
	settings, err := s.settings(ctx, editable.EventID)
	if err != nil {
		return nil, nil, nil, err
	}
	return rev, editable, settings, nil
}

// State derives the current state of e. It is empty when the history cannot be read.
func (s *Service) State(ctx context.Context, e *model.Editable) model.EditableState {
	latest, err := s.repo.Latest(ctx, e.ID)
	if err != nil {
		return ""
	}
	state, _ := model.DeriveState(latest)
	return state
}

// CreateEditable stores a new editable with its first revision. When an
// editing service is connected the revision starts as new and the service is
// told about it; if that call fails the editable is still returned, together
// with the error, because it has been committed.
func (s *Service) CreateEditable(ctx context.Context, event model.EventID, contrib model.ContributionID, typ model.EditableType, submitter model.UserID, sel FileSelection) (*model.Editable, error) {
	files, err := s.resolveFiles(ctx, event, sel, true)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings(ctx, event)
	if err != nil {
		return nil, err
	}

	revType := model.RevisionTypeReadyForReview
	if settings.ServiceConnected() {
		revType = model.RevisionTypeNew
	}

	now := s.now()
	editable := &model.Editable{
		ID:             model.EditableID(s.newID()),
		EventID:        event,
		ContributionID: contrib,
		Type:           typ,
		CreatedAt:      now,
	}
	first := &model.Revision{
		ID:        model.RevisionID(s.newID()),
		UserID:    submitter,
		CreatedAt: now,
		Type:      revType,
		Files:     files,
	}

	if err := s.repo.CreateEditable(ctx, editable, first); err != nil {
		if errors.Is(err, repository.ErrDuplicateEditable) {
			return nil, invalidInput("%s", err.Error())
		}
		return nil, err
	}

	editingLogger.Info().
		Str("editable_id", string(editable.ID)).
		Str("contribution_id", string(contrib)).
		Str("type", string(typ)).
		Str("revision_type", string(revType)).
		Msg("Editable created")

	if settings.ServiceConnected() {
		if err := s.notifyNewEditable(ctx, settings, editable, first, submitter); err != nil {
			return editable, err
		}
	}

	s.sink.Notify(ctx, notify.KindSubmitted, first, editors(editable))
	return editable, nil
}

func (s *Service) notifyNewEditable(ctx context.Context, settings *model.EditingSettings, e *model.Editable, rev *model.Revision, actor model.UserID) error {
	resp, err := s.ext.NotifyNewEditable(ctx, settings, e, model.StateNew, rev, actor)
	if err != nil {
		editingLogger.Error().Err(err).Str("editable_id", string(e.ID)).Msg("Editing service rejected new editable")
		return fmt.Errorf("notify new editable: %w", err)
	}

	if resp.ReadyForReview {
		return s.machine.MarkReadyForReview(ctx, rev)
	}
	return nil
}

// ResyncEditable repeats the new editable notification for an editable whose
// first revision is still waiting for the editing service.
func (s *Service) ResyncEditable(ctx context.Context, id model.EditableID, actor model.UserID) error {
	editable, err := s.repo.GetEditable(ctx, id)
	if err != nil {
		return err
	}
	settings, err := s.settings(ctx, editable.EventID)
	if err != nil {
		return err
	}
	if !settings.ServiceConnected() {
		return ErrServiceNotConnected
	}

	latest, err := s.repo.Latest(ctx, id)
	if err != nil {
		return err
	}
	if latest.Type != model.RevisionTypeNew {
		state, _ := model.DeriveState(latest)
		return &InvalidStateError{Op: "resync", State: state, Reason: "the editable was already processed"}
	}

	return s.notifyNewEditable(ctx, settings, editable, latest, actor)
}

// Review runs Machine.Review, hands the result to the editing service and
// publishes accepted revisions unless the service objects.
func (s *Service) Review(ctx context.Context, revID model.RevisionID, actor model.UserID, action ReviewAction, comment string, tagIDs []model.TagID, sel FileSelection) (*model.Revision, error) {
	rev, editable, settings, err := s.revisionContext(ctx, revID)
	if err != nil {
		return nil, err
	}

	tags, err := s.editorTags(ctx, editable.EventID, tagIDs)
	if err != nil {
		return nil, err
	}

	var files []model.RevisionFile
	if len(sel) > 0 {
		if files, err = s.resolveFiles(ctx, editable.EventID, sel, false); err != nil {
			return nil, err
		}
	}

	next, err := s.machine.Review(ctx, rev, actor, action, comment, tags, files)
	if err != nil {
		return nil, err
	}

	return next, s.afterReview(ctx, settings, editable, actor, string(action), action == ReviewAccept, rev, next)
}

// Confirm runs Machine.Confirm followed by the same service round trip as Review.
func (s *Service) Confirm(ctx context.Context, revID model.RevisionID, submitter model.UserID, action ConfirmAction, comment string) (*model.Revision, error) {
	rev, editable, settings, err := s.revisionContext(ctx, revID)
	if err != nil {
		return nil, err
	}

	next, err := s.machine.Confirm(ctx, rev, submitter, action, comment)
	if err != nil {
		return nil, err
	}

	return next, s.afterReview(ctx, settings, editable, submitter, string(action), action == ConfirmAccept, rev, next)
}

func (s *Service) afterReview(ctx context.Context, settings *model.EditingSettings, editable *model.Editable, actor model.UserID, action string, accepted bool, parent, next *model.Revision) error {
	var resp *extension.ReviewResponse
	if settings.ServiceConnected() {
		state, err := model.DeriveState(next)
		if err != nil {
			return err
		}

		resp, err = s.ext.NotifyReview(ctx, settings, editable, state, actor, action, parent, next)
		if err != nil {
			editingLogger.Error().Err(err).Str("revision_id", string(next.ID)).Msg("Editing service rejected review")
			return fmt.Errorf("notify review: %w", err)
		}

		if err := s.applyReviewResponse(ctx, editable, parent, next, resp); err != nil {
			return err
		}
	}

	if accepted && resp.ShouldPublish() {
		return s.machine.Publish(ctx, next)
	}
	return nil
}

func (s *Service) applyReviewResponse(ctx context.Context, editable *model.Editable, parent, next *model.Revision, resp *extension.ReviewResponse) error {
	if resp.Comment != nil {
		parent.Comment = *resp.Comment
		if err := s.repo.UpdateRevision(ctx, parent); err != nil {
			return err
		}
	}

	if resp.Tags != nil {
		if err := s.setTags(ctx, editable.EventID, next, *resp.Tags); err != nil {
			return err
		}
	}

	return s.addSystemComments(ctx, next, resp.Comments)
}

func (s *Service) setTags(ctx context.Context, event model.EventID, rev *model.Revision, ids []model.TagID) error {
	tags, err := s.resolveTags(ctx, event, ids)
	if err != nil {
		return err
	}
	rev.Tags = tags
	return s.repo.UpdateRevision(ctx, rev)
}

func (s *Service) addSystemComments(ctx context.Context, rev *model.Revision, comments []extension.ServiceComment) error {
	for _, c := range comments {
		comment := model.Comment{
			ID:         model.CommentID(s.newID()),
			RevisionID: rev.ID,
			Text:       c.Text,
			Internal:   c.Internal,
			System:     true,
			CreatedAt:  s.now(),
		}
		if err := s.repo.AddComment(ctx, &comment); err != nil {
			return err
		}
		rev.Comments = append(rev.Comments, comment)
	}
	return nil
}

// Replace swaps the files of an unreviewed revision.
func (s *Service) Replace(ctx context.Context, revID model.RevisionID, actor model.UserID, comment string, sel FileSelection, tagIDs []model.TagID) (*model.Revision, error) {
	rev, editable, _, err := s.revisionContext(ctx, revID)
	if err != nil {
		return nil, err
	}

	files, err := s.resolveFiles(ctx, editable.EventID, sel, true)
	if err != nil {
		return nil, err
	}
	tags, err := s.editorTags(ctx, editable.EventID, tagIDs)
	if err != nil {
		return nil, err
	}

	return s.machine.Replace(ctx, rev, actor, comment, files, tags)
}

func (s *Service) CreateSubmitterRevision(ctx context.Context, revID model.RevisionID, submitter model.UserID, sel FileSelection) (*model.Revision, error) {
	rev, editable, _, err := s.revisionContext(ctx, revID)
	if err != nil {
		return nil, err
	}

	files, err := s.resolveFiles(ctx, editable.EventID, sel, true)
	if err != nil {
		return nil, err
	}

	return s.machine.CreateSubmitterRevision(ctx, rev, submitter, files)
}

func (s *Service) UndoReview(ctx context.Context, revID model.RevisionID) error {
	rev, err := s.repo.GetRevision(ctx, revID)
	if err != nil {
		return err
	}
	return s.machine.UndoReview(ctx, rev)
}

// CustomActions lists the extra actions the editing service offers for a
// revision. It is empty when no service is connected or the service fails.
func (s *Service) CustomActions(ctx context.Context, revID model.RevisionID, actor model.UserID) ([]extension.CustomAction, error) {
	rev, editable, settings, err := s.revisionContext(ctx, revID)
	if err != nil {
		return nil, err
	}
	if !settings.ServiceConnected() {
		return nil, nil
	}
	return s.ext.CustomActions(ctx, settings, editable, s.State(ctx, editable), rev, actor), nil
}

// CustomActionResult is what the caller needs after a custom action ran.
type CustomActionResult struct {
	Redirect string
	Reset    *model.Revision
}

// TriggerCustomAction runs a named custom action and applies the response:
// tags and comments land on rev, a reset sends the editable back to review,
// and on acceptance revisions an explicit publish flag (un)publishes it.
func (s *Service) TriggerCustomAction(ctx context.Context, revID model.RevisionID, actor model.UserID, action string) (*CustomActionResult, error) {
	rev, editable, settings, err := s.revisionContext(ctx, revID)
	if err != nil {
		return nil, err
	}
	if !settings.ServiceConnected() {
		return nil, ErrServiceNotConnected
	}

	resp, err := s.ext.HandleCustomAction(ctx, settings, editable, s.State(ctx, editable), rev, actor, action)
	if err != nil {
		return nil, fmt.Errorf("custom action %s: %w", action, err)
	}

	if resp.Tags != nil {
		if err := s.setTags(ctx, editable.EventID, rev, *resp.Tags); err != nil {
			return nil, err
		}
	}
	if err := s.addSystemComments(ctx, rev, resp.Comments); err != nil {
		return nil, err
	}

	result := &CustomActionResult{Redirect: resp.Redirect}

	switch {
	case resp.Reset:
		if result.Reset, err = s.machine.Reset(ctx, rev); err != nil {
			return nil, err
		}
	case rev.Type == model.RevisionTypeAcceptance && resp.Publish != nil:
		if *resp.Publish {
			err = s.machine.Publish(ctx, rev)
		} else {
			err = s.machine.Unpublish(ctx, rev)
		}
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// DeleteEditable soft deletes an editable. The editing service is told
// afterwards; its failures are only logged.
func (s *Service) DeleteEditable(ctx context.Context, id model.EditableID) error {
	editable, err := s.repo.GetEditable(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEditable(ctx, id); err != nil {
		return err
	}

	settings, err := s.settings(ctx, editable.EventID)
	if err != nil {
		return err
	}
	if settings.ServiceConnected() {
		if err := s.ext.NotifyDeleteEditable(ctx, settings, editable); err != nil {
			editingLogger.Warn().Err(err).Str("editable_id", string(id)).Msg("Editing service delete notification failed")
		}
	}
	return nil
}

func (s *Service) AssignEditor(ctx context.Context, id model.EditableID, editor model.UserID) error {
	if editor == "" {
		return invalidInput("no editor given")
	}
	if err := s.repo.SetEditor(ctx, id, editor); err != nil {
		return err
	}

	latest, err := s.repo.Latest(ctx, id)
	if err != nil {
		return err
	}
	s.sink.Notify(ctx, notify.KindEditorAssigned, latest, []model.UserID{editor})
	return nil
}

func (s *Service) UnassignEditor(ctx context.Context, id model.EditableID) error {
	return s.repo.SetEditor(ctx, id, "")
}

// Timeline is the full history of an editable.
type Timeline struct {
	Editable  *model.Editable
	State     model.EditableState
	Revisions []*model.Revision
}

func (s *Service) Timeline(ctx context.Context, id model.EditableID) (*Timeline, error) {
	editable, err := s.repo.GetEditable(ctx, id)
	if err != nil {
		return nil, err
	}

	revs, err := s.repo.Revisions(ctx, id)
	if err != nil {
		return nil, err
	}

	state, err := model.DeriveState(model.LatestRevision(revs))
	if err != nil {
		return nil, err
	}

	return &Timeline{Editable: editable, State: state, Revisions: revs}, nil
}

func (s *Service) FindEditable(ctx context.Context, event model.EventID, contrib model.ContributionID, typ model.EditableType) (*model.Editable, error) {
	return s.repo.FindEditable(ctx, event, contrib, typ)
}

func (s *Service) GetRevision(ctx context.Context, id model.RevisionID) (*model.Revision, error) {
	return s.repo.GetRevision(ctx, id)
}

func (s *Service) Tags(ctx context.Context, event model.EventID) ([]model.Tag, error) {
	return s.repo.Tags(ctx, event)
}

func (s *Service) FileTypes(ctx context.Context, event model.EventID) ([]model.FileType, error) {
	return s.repo.FileTypes(ctx, event)
}

func (s *Service) ListEditables(ctx context.Context, event model.EventID) ([]*model.Editable, error) {
	return s.repo.ListEditables(ctx, event)
}
