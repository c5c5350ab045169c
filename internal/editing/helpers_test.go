package editing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/debemdeboas/editorial/internal/extension"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/notify"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/debemdeboas/editorial/internal/storage"
	"github.com/rs/zerolog"
)

const (
	errUnexpected  = "Unexpected error: %v"
	errExpectedErr = "Expected error %v, got %v"
	errExpectedTyp = "Expected revision type %q, got %q"
)

const (
	testEvent   = model.EventID("ev1")
	submitterID = model.UserID("alice")
	editorID    = model.UserID("bob")
)

type sent struct {
	kind       notify.Kind
	revision   model.RevisionID
	recipients []model.UserID
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingSink) Notify(_ context.Context, kind notify.Kind, rev *model.Revision, recipients []model.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{kind: kind, revision: rev.ID, recipients: recipients})
}

func (r *recordingSink) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]notify.Kind, 0, len(r.sent))
	for _, s := range r.sent {
		kinds = append(kinds, s.kind)
	}
	return kinds
}

func (r *recordingSink) last() sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return sent{}
	}
	return r.sent[len(r.sent)-1]
}

type fakeExtension struct {
	enabledErr     error
	newEditable    extension.NewEditableResponse
	newEditableErr error
	review         *extension.ReviewResponse
	reviewErr      error
	actions        []extension.CustomAction
	custom         *extension.CustomActionResponse
	customErr      error
	deleteErr      error

	calls       []string
	reviewState model.EditableState
}

func (f *fakeExtension) NotifyEnabled(context.Context, *model.EditingSettings) error {
	f.calls = append(f.calls, "enabled")
	return f.enabledErr
}

func (f *fakeExtension) NotifyDisconnected(context.Context, *model.EditingSettings) error {
	f.calls = append(f.calls, "disconnected")
	return nil
}

func (f *fakeExtension) Status(context.Context, *model.EditingSettings) (*extension.StatusResponse, error) {
	f.calls = append(f.calls, "status")
	return &extension.StatusResponse{Status: "ok", CanDisconnect: true}, nil
}

func (f *fakeExtension) NotifyNewEditable(_ context.Context, _ *model.EditingSettings, _ *model.Editable, _ model.EditableState, _ *model.Revision, _ model.UserID) (*extension.NewEditableResponse, error) {
	f.calls = append(f.calls, "new_editable")
	if f.newEditableErr != nil {
		return nil, f.newEditableErr
	}
	resp := f.newEditable
	return &resp, nil
}

func (f *fakeExtension) NotifyReview(_ context.Context, _ *model.EditingSettings, _ *model.Editable, state model.EditableState, _ model.UserID, action string, _, _ *model.Revision) (*extension.ReviewResponse, error) {
	f.calls = append(f.calls, "review:"+action)
	f.reviewState = state
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	if f.review == nil {
		return &extension.ReviewResponse{}, nil
	}
	return f.review, nil
}

func (f *fakeExtension) CustomActions(context.Context, *model.EditingSettings, *model.Editable, model.EditableState, *model.Revision, model.UserID) []extension.CustomAction {
	f.calls = append(f.calls, "actions")
	return f.actions
}

func (f *fakeExtension) HandleCustomAction(_ context.Context, _ *model.EditingSettings, _ *model.Editable, _ model.EditableState, _ *model.Revision, _ model.UserID, action string) (*extension.CustomActionResponse, error) {
	f.calls = append(f.calls, "action:"+action)
	if f.customErr != nil {
		return nil, f.customErr
	}
	if f.custom == nil {
		return &extension.CustomActionResponse{}, nil
	}
	return f.custom, nil
}

func (f *fakeExtension) NotifyDeleteEditable(context.Context, *model.EditingSettings, *model.Editable) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

type harness struct {
	ctx  context.Context
	repo *repository.MemoryRepository
	ext  *fakeExtension
	sink *recordingSink
	svc  *Service

	// pdf is publishable and optional, source is required and not publishable.
	pdf    model.FileType
	source model.FileType

	layout model.Tag
	qa     model.Tag
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	SetLogger(zerolog.Nop())
	repository.SetLogger(zerolog.Nop())

	h := &harness{
		ctx:  context.Background(),
		repo: repository.NewMemoryRepository(),
		ext:  &fakeExtension{},
		sink: &recordingSink{},
	}

	h.pdf = model.FileType{EventID: testEvent, Name: "PDF", Extensions: []string{"pdf"}, Publishable: true}
	h.source = model.FileType{EventID: testEvent, Name: "Source", Extensions: []string{"zip", "tex"}, AllowMultiple: true, Required: true}
	for _, ft := range []*model.FileType{&h.pdf, &h.source} {
		if err := h.repo.SaveFileType(h.ctx, ft); err != nil {
			t.Fatalf(errUnexpected, err)
		}
	}

	h.layout = model.Tag{EventID: testEvent, Code: "LAYOUT", Title: "Layout issue", Color: "red"}
	h.qa = model.Tag{EventID: testEvent, Code: "QA", Title: "Checked by the service", System: true}
	for _, tag := range []*model.Tag{&h.layout, &h.qa} {
		if err := h.repo.SaveTag(h.ctx, tag); err != nil {
			t.Fatalf(errUnexpected, err)
		}
	}

	h.svc = NewService(h.repo, h.ext, storage.NewMemoryStorage(), h.sink)
	return h
}

func (h *harness) connect(t *testing.T) {
	t.Helper()
	err := h.repo.SaveSettings(h.ctx, &model.EditingSettings{
		EventID:           testEvent,
		ServiceURL:        "https://service.example.com",
		ServiceToken:      "secret",
		ServiceIdentifier: "editorial-ev1",
	})
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
}

func (h *harness) upload(t *testing.T, name string) model.FileID {
	t.Helper()
	f, err := h.svc.UploadFile(h.ctx, testEvent, submitterID, name, "application/octet-stream", []byte("content of "+name))
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	return f.ID
}

func (h *harness) sourceOnly(t *testing.T) FileSelection {
	t.Helper()
	return FileSelection{h.source.ID: {h.upload(t, "source.zip")}}
}

func (h *harness) withPDF(t *testing.T) FileSelection {
	t.Helper()
	return FileSelection{
		h.source.ID: {h.upload(t, "source.zip")},
		h.pdf.ID:    {h.upload(t, "paper.pdf")},
	}
}

// create goes through the service and returns the editable with its first revision.
func (h *harness) create(t *testing.T, contrib model.ContributionID, sel FileSelection) (*model.Editable, *model.Revision) {
	t.Helper()
	e, err := h.svc.CreateEditable(h.ctx, testEvent, contrib, model.EditableTypePaper, submitterID, sel)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	return e, h.latest(t, e.ID)
}

// seed writes a history straight into the repository, bypassing the state
// machine. The first type must be new or ready_for_review.
func (h *harness) seed(t *testing.T, types ...model.RevisionType) (*model.Editable, []*model.Revision) {
	t.Helper()

	source := model.RevisionFile{File: model.File{ID: "f-src", Filename: "source.zip"}, FileType: h.source}
	e := &model.Editable{ID: model.EditableID("e-" + t.Name()), EventID: testEvent, ContributionID: "c-seed", Type: model.EditableTypePaper, CreatedAt: time.Now()}

	revs := make([]*model.Revision, 0, len(types))
	for i, typ := range types {
		rev := &model.Revision{
			ID:         model.RevisionID("r" + string(rune('1'+i))),
			EditableID: e.ID,
			UserID:     submitterID,
			CreatedAt:  time.Now(),
			Type:       typ,
		}
		if typ.IsEditorType() {
			rev.UserID = editorID
		}
		if typ == model.RevisionTypeReplacement {
			rev.ReplacedState = model.InitialStateReadyForReview
		}

		var err error
		if i == 0 {
			rev.Files = []model.RevisionFile{source}
			err = h.repo.CreateEditable(h.ctx, e, rev)
		} else {
			err = h.repo.AppendRevision(h.ctx, revs[i-1].ID, rev)
		}
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		revs = append(revs, rev)
	}
	return e, revs
}

func (h *harness) latest(t *testing.T, id model.EditableID) *model.Revision {
	t.Helper()
	rev, err := h.repo.Latest(h.ctx, id)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	return rev
}

func (h *harness) revisions(t *testing.T, id model.EditableID) []*model.Revision {
	t.Helper()
	revs, err := h.repo.Revisions(h.ctx, id)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	return revs
}

func (h *harness) editable(t *testing.T, id model.EditableID) *model.Editable {
	t.Helper()
	e, err := h.repo.GetEditable(h.ctx, id)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	return e
}

func (h *harness) state(t *testing.T, id model.EditableID) model.EditableState {
	t.Helper()
	state, err := model.DeriveState(h.latest(t, id))
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	return state
}

func tagCodes(tags []model.Tag) []string {
	codes := make([]string, 0, len(tags))
	for _, t := range tags {
		codes = append(codes, t.Code)
	}
	return codes
}
