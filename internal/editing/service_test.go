package editing

import (
	"bytes"
	"errors"
	"slices"
	"sort"
	"testing"

	"github.com/debemdeboas/editorial/internal/extension"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/klauspost/compress/zip"
)

func TestCreateEditableValidation(t *testing.T) {
	h := newHarness(t)

	testCases := []struct {
		name string
		sel  func() FileSelection
	}{
		{"no files", func() FileSelection { return FileSelection{} }},
		{"unknown file type", func() FileSelection { return FileSelection{999: {h.upload(t, "a.zip")}} }},
		{"unknown file", func() FileSelection { return FileSelection{h.source.ID: {"missing"}} }},
		{"wrong extension", func() FileSelection { return FileSelection{h.source.ID: {h.upload(t, "paper.docx")}} }},
		{"single file type", func() FileSelection {
			return FileSelection{
				h.source.ID: {h.upload(t, "a.zip")},
				h.pdf.ID:    {h.upload(t, "a.pdf"), h.upload(t, "b.pdf")},
			}
		}},
		{"required type missing", func() FileSelection { return FileSelection{h.pdf.ID: {h.upload(t, "a.pdf")}} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.CreateEditable(h.ctx, testEvent, "c1", model.EditableTypePaper, submitterID, tc.sel())
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf(errExpectedErr, ErrInvalidInput, err)
			}
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		h.create(t, "c2", h.sourceOnly(t))
		_, err := h.svc.CreateEditable(h.ctx, testEvent, "c2", model.EditableTypePaper, submitterID, h.sourceOnly(t))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf(errExpectedErr, ErrInvalidInput, err)
		}
	})
}

func TestCreateEditable(t *testing.T) {
	t.Run("without service", func(t *testing.T) {
		h := newHarness(t)
		e, first := h.create(t, "c1", h.sourceOnly(t))

		if first.Type != model.RevisionTypeReadyForReview {
			t.Errorf(errExpectedTyp, model.RevisionTypeReadyForReview, first.Type)
		}
		if len(h.ext.calls) != 0 {
			t.Errorf("Expected no service calls, got %v", h.ext.calls)
		}
		found, err := h.svc.FindEditable(h.ctx, testEvent, "c1", model.EditableTypePaper)
		if err != nil || found.ID != e.ID {
			t.Errorf("Expected to find editable %s, got %+v (err %v)", e.ID, found, err)
		}
	})

	t.Run("service keeps it new", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t)
		_, first := h.create(t, "c1", h.sourceOnly(t))

		if first.Type != model.RevisionTypeNew {
			t.Errorf(errExpectedTyp, model.RevisionTypeNew, first.Type)
		}
		if !slices.Equal(h.ext.calls, []string{"new_editable"}) {
			t.Errorf("Expected a new editable notification, got %v", h.ext.calls)
		}
	})

	t.Run("service marks it ready", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t)
		h.ext.newEditable.ReadyForReview = true
		e, first := h.create(t, "c1", h.sourceOnly(t))

		if first.Type != model.RevisionTypeReadyForReview {
			t.Errorf(errExpectedTyp, model.RevisionTypeReadyForReview, first.Type)
		}
		if len(h.revisions(t, e.ID)) != 1 {
			t.Error("Expected no additional revision")
		}
	})

	t.Run("service failure", func(t *testing.T) {
		h := newHarness(t)
		h.connect(t)
		h.ext.newEditableErr = &extension.RequestFailedError{Op: "new editable", Message: "boom", StatusCode: 500}

		e, err := h.svc.CreateEditable(h.ctx, testEvent, "c1", model.EditableTypePaper, submitterID, h.sourceOnly(t))
		if !errors.Is(err, extension.ErrRequestFailed) {
			t.Fatalf(errExpectedErr, extension.ErrRequestFailed, err)
		}
		if e == nil {
			t.Fatal("Expected the editable to be returned")
		}
		if typ := h.latest(t, e.ID).Type; typ != model.RevisionTypeNew {
			t.Errorf(errExpectedTyp, model.RevisionTypeNew, typ)
		}

		h.ext.newEditableErr = nil
		h.ext.newEditable.ReadyForReview = true
		if err := h.svc.ResyncEditable(h.ctx, e.ID, submitterID); err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if typ := h.latest(t, e.ID).Type; typ != model.RevisionTypeReadyForReview {
			t.Errorf(errExpectedTyp, model.RevisionTypeReadyForReview, typ)
		}
		if err := h.svc.ResyncEditable(h.ctx, e.ID, submitterID); !errors.Is(err, ErrInvalidState) {
			t.Errorf(errExpectedErr, ErrInvalidState, err)
		}
	})
}

func TestAcceptPublishes(t *testing.T) {
	h := newHarness(t)
	e, first := h.create(t, "c1", h.withPDF(t))

	next, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewAccept, "looks good", nil, nil)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}

	if next.Type != model.RevisionTypeAcceptance {
		t.Errorf(errExpectedTyp, model.RevisionTypeAcceptance, next.Type)
	}
	timeline, err := h.svc.Timeline(h.ctx, e.ID)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if timeline.State != model.StateAccepted {
		t.Errorf("Expected state %q, got %q", model.StateAccepted, timeline.State)
	}
	if timeline.Editable.PublishedRevisionID != next.ID {
		t.Errorf("Expected published revision %s, got %q", next.ID, timeline.Editable.PublishedRevisionID)
	}
	if len(timeline.Revisions) != 2 {
		t.Errorf("Expected 2 revisions, got %d", len(timeline.Revisions))
	}

	last := h.sink.last()
	if last.kind != "published" || !slices.Equal(last.recipients, []model.UserID{submitterID}) {
		t.Errorf("Expected the submitter to be told about publication, got %+v", last)
	}

	t.Run("undo unpublishes", func(t *testing.T) {
		if err := h.svc.UndoReview(h.ctx, next.ID); err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if h.editable(t, e.ID).IsPublished() {
			t.Error("Expected the editable to be unpublished")
		}
		if state := h.state(t, e.ID); state != model.StateReadyForReview {
			t.Errorf("Expected state %q, got %q", model.StateReadyForReview, state)
		}
	})
}

func TestReviewPublishableGate(t *testing.T) {
	h := newHarness(t)
	_, first := h.create(t, "c1", h.sourceOnly(t))

	for _, action := range []ReviewAction{ReviewAccept, ReviewUpdate} {
		if _, err := h.svc.Review(h.ctx, first.ID, editorID, action, "", nil, nil); !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s: "+errExpectedErr, action, ErrInvalidState, err)
		}
	}

	next, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewUpdate, "added a PDF", nil, FileSelection{h.pdf.ID: {h.upload(t, "paper.pdf")}})
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if next.Type != model.RevisionTypeNeedsSubmitterConfirmation || !next.HasPublishableFiles() {
		t.Errorf("Expected a confirmation request with a PDF, got %+v", next)
	}

	confirmed, err := h.svc.Confirm(h.ctx, next.ID, submitterID, ConfirmAccept, "")
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if confirmed.Type != model.RevisionTypeChangesAcceptance {
		t.Errorf(errExpectedTyp, model.RevisionTypeChangesAcceptance, confirmed.Type)
	}
}

func TestTagsCarryForward(t *testing.T) {
	h := newHarness(t)
	_, first := h.create(t, "c1", h.sourceOnly(t))

	requested, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewRequestUpdate, "fix the layout", []model.TagID{h.layout.ID}, nil)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}

	resubmitted, err := h.svc.CreateSubmitterRevision(h.ctx, requested.ID, submitterID, h.sourceOnly(t))
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if !slices.Equal(resubmitted.TagIDs(), requested.TagIDs()) {
		t.Errorf("Expected tags %v, got %v", requested.TagIDs(), resubmitted.TagIDs())
	}

	updated, err := h.svc.Review(h.ctx, resubmitted.ID, editorID, ReviewUpdate, "", []model.TagID{h.layout.ID}, FileSelection{h.pdf.ID: {h.upload(t, "paper.pdf")}})
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	confirmed, err := h.svc.Confirm(h.ctx, updated.ID, submitterID, ConfirmAccept, "")
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if codes := tagCodes(confirmed.Tags); !slices.Equal(codes, []string{"LAYOUT"}) {
		t.Errorf("Expected LAYOUT to carry forward, got %v", codes)
	}

	t.Run("system tags are reserved", func(t *testing.T) {
		h := newHarness(t)
		_, first := h.create(t, "c1", h.sourceOnly(t))
		_, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewReject, "", []model.TagID{h.qa.ID}, nil)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf(errExpectedErr, ErrInvalidInput, err)
		}
	})
}

func TestReviewServiceResponse(t *testing.T) {
	newConnected := func(t *testing.T) (*harness, *model.Editable, *model.Revision) {
		h := newHarness(t)
		h.connect(t)
		h.ext.newEditable.ReadyForReview = true
		e, first := h.create(t, "c1", h.withPDF(t))
		return h, e, first
	}

	t.Run("comment overrides parent", func(t *testing.T) {
		h, e, first := newConnected(t)
		comment := "foobar"
		h.ext.review = &extension.ReviewResponse{Comment: &comment}

		next, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewAccept, "looks good", nil, nil)
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}

		revs := h.revisions(t, e.ID)
		if revs[0].Comment != "foobar" {
			t.Errorf("Expected parent comment %q, got %q", "foobar", revs[0].Comment)
		}
		if revs[1].ID != next.ID || revs[1].Comment != "looks good" {
			t.Errorf("Expected the new revision to keep its comment, got %q", revs[1].Comment)
		}
		if h.ext.reviewState != model.StateAccepted {
			t.Errorf("Expected the service to see state %q, got %q", model.StateAccepted, h.ext.reviewState)
		}
		if !h.editable(t, e.ID).IsPublished() {
			t.Error("Expected the acceptance to be published")
		}
	})

	t.Run("publish false", func(t *testing.T) {
		h, e, first := newConnected(t)
		publish := false
		h.ext.review = &extension.ReviewResponse{Publish: &publish}

		if _, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewAccept, "", nil, nil); err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if h.editable(t, e.ID).IsPublished() {
			t.Error("Expected the service to prevent publication")
		}
	})

	t.Run("tags and comments", func(t *testing.T) {
		h, e, first := newConnected(t)
		tags := []model.TagID{h.qa.ID, 999}
		h.ext.review = &extension.ReviewResponse{
			Tags:     &tags,
			Comments: []extension.ServiceComment{{Text: "Checked", Internal: true}},
		}

		next, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewReject, "", nil, nil)
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}

		stored := h.latest(t, e.ID)
		if stored.ID != next.ID {
			t.Fatalf("Expected latest revision %s, got %s", next.ID, stored.ID)
		}
		if codes := tagCodes(stored.Tags); !slices.Equal(codes, []string{"QA"}) {
			t.Errorf("Expected the service tags without unknown ids, got %v", codes)
		}
		if len(stored.Comments) != 1 || !stored.Comments[0].System || !stored.Comments[0].Internal {
			t.Errorf("Expected one internal system comment, got %+v", stored.Comments)
		}
	})

	t.Run("service failure keeps revision", func(t *testing.T) {
		h, e, first := newConnected(t)
		h.ext.reviewErr = &extension.RequestFailedError{Op: "review", Message: "down", StatusCode: 502}

		next, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewReject, "", nil, nil)
		if !errors.Is(err, extension.ErrRequestFailed) {
			t.Fatalf(errExpectedErr, extension.ErrRequestFailed, err)
		}
		if next == nil || h.latest(t, e.ID).ID != next.ID {
			t.Error("Expected the rejection to be kept")
		}
	})
}

func TestCustomActions(t *testing.T) {
	accepted := func(t *testing.T) (*harness, *model.Editable, *model.Revision) {
		h := newHarness(t)
		e, first := h.create(t, "c1", h.withPDF(t))
		next, err := h.svc.Review(h.ctx, first.ID, editorID, ReviewAccept, "", nil, nil)
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		h.connect(t)
		return h, e, next
	}

	t.Run("not connected", func(t *testing.T) {
		h := newHarness(t)
		_, first := h.create(t, "c1", h.sourceOnly(t))

		actions, err := h.svc.CustomActions(h.ctx, first.ID, editorID)
		if err != nil || actions != nil {
			t.Errorf("Expected no actions, got %v (err %v)", actions, err)
		}
		if _, err := h.svc.TriggerCustomAction(h.ctx, first.ID, editorID, "check"); !errors.Is(err, ErrServiceNotConnected) {
			t.Errorf(errExpectedErr, ErrServiceNotConnected, err)
		}
	})

	t.Run("list", func(t *testing.T) {
		h, _, rev := accepted(t)
		h.ext.actions = []extension.CustomAction{{Name: "check", Title: "Run checks"}}

		actions, err := h.svc.CustomActions(h.ctx, rev.ID, editorID)
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if len(actions) != 1 || actions[0].Name != "check" {
			t.Errorf("Expected the check action, got %+v", actions)
		}
	})

	t.Run("reset", func(t *testing.T) {
		h, e, rev := accepted(t)
		h.ext.custom = &extension.CustomActionResponse{Reset: true, Redirect: "https://service.example.com/done"}

		result, err := h.svc.TriggerCustomAction(h.ctx, rev.ID, editorID, "reopen")
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if result.Reset == nil || result.Redirect != "https://service.example.com/done" {
			t.Errorf("Expected a reset and a redirect, got %+v", result)
		}
		if state := h.state(t, e.ID); state != model.StateReadyForReview {
			t.Errorf("Expected state %q, got %q", model.StateReadyForReview, state)
		}
		if h.editable(t, e.ID).IsPublished() {
			t.Error("Expected the reset to unpublish")
		}
	})

	t.Run("unpublish", func(t *testing.T) {
		h, e, rev := accepted(t)
		publish := false
		h.ext.custom = &extension.CustomActionResponse{Publish: &publish}

		if _, err := h.svc.TriggerCustomAction(h.ctx, rev.ID, editorID, "hold"); err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if h.editable(t, e.ID).IsPublished() {
			t.Error("Expected the editable to be unpublished")
		}
	})

	t.Run("failure", func(t *testing.T) {
		h, _, rev := accepted(t)
		h.ext.customErr = &extension.RequestFailedError{Op: "custom action", Message: "nope", StatusCode: 400}

		if _, err := h.svc.TriggerCustomAction(h.ctx, rev.ID, editorID, "check"); !errors.Is(err, extension.ErrRequestFailed) {
			t.Errorf(errExpectedErr, extension.ErrRequestFailed, err)
		}
	})
}

func TestConnectService(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		h := newHarness(t)
		for _, u := range []string{"", "ftp://service", "not a url", "https://"} {
			if _, err := h.svc.ConnectService(h.ctx, testEvent, u); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("%q: "+errExpectedErr, u, ErrInvalidInput, err)
			}
		}
	})

	t.Run("connect and disconnect", func(t *testing.T) {
		h := newHarness(t)
		settings, err := h.svc.ConnectService(h.ctx, testEvent, "https://service.example.com")
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if settings.ServiceToken == "" || settings.ServiceIdentifier != "editorial-ev1" {
			t.Errorf("Unexpected settings %+v", settings)
		}
		if !h.svc.Authenticate(h.ctx, testEvent, settings.ServiceToken) {
			t.Error("Expected the service token to authenticate")
		}
		if h.svc.Authenticate(h.ctx, testEvent, "wrong") {
			t.Error("Expected a wrong token to be refused")
		}

		if _, err := h.svc.ConnectService(h.ctx, testEvent, "https://other.example.com"); !errors.Is(err, ErrServiceAlreadyConnected) {
			t.Errorf(errExpectedErr, ErrServiceAlreadyConnected, err)
		}

		status, err := h.svc.ServiceStatus(h.ctx, testEvent)
		if err != nil || status.Status != "ok" {
			t.Errorf("Expected status ok, got %+v (err %v)", status, err)
		}

		if err := h.svc.DisconnectService(h.ctx, testEvent); err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if h.svc.Authenticate(h.ctx, testEvent, settings.ServiceToken) {
			t.Error("Expected the token to stop working after disconnecting")
		}
		if err := h.svc.DisconnectService(h.ctx, testEvent); !errors.Is(err, ErrServiceNotConnected) {
			t.Errorf(errExpectedErr, ErrServiceNotConnected, err)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		h := newHarness(t)
		h.ext.enabledErr = &extension.RequestFailedError{Op: "enable", Message: "unauthorized", StatusCode: 401}

		if _, err := h.svc.ConnectService(h.ctx, testEvent, "https://service.example.com"); !errors.Is(err, extension.ErrRequestFailed) {
			t.Fatalf(errExpectedErr, extension.ErrRequestFailed, err)
		}
		settings, err := h.repo.Settings(h.ctx, testEvent)
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if settings.ServiceConnected() || settings.ServiceToken != "" {
			t.Errorf("Expected settings to be cleared, got %+v", settings)
		}
	})
}

func TestComments(t *testing.T) {
	h := newHarness(t)
	e, first := h.create(t, "c1", h.sourceOnly(t))
	if err := h.svc.AssignEditor(h.ctx, e.ID, editorID); err != nil {
		t.Fatalf(errUnexpected, err)
	}

	if _, err := h.svc.CreateComment(h.ctx, first.ID, submitterID, "   ", false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf(errExpectedErr, ErrInvalidInput, err)
	}

	c, err := h.svc.CreateComment(h.ctx, first.ID, submitterID, "Please check page 3", false)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if last := h.sink.last(); last.kind != "comment_added" || !slices.Equal(last.recipients, []model.UserID{editorID}) {
		t.Errorf("Expected the editor to be notified, got %+v", last)
	}

	if _, err := h.svc.CreateComment(h.ctx, first.ID, editorID, "note to self", true); err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if last := h.sink.last(); len(last.recipients) != 0 {
		t.Errorf("Expected nobody else to see an internal comment, got %v", last.recipients)
	}

	text := "Please check page 4"
	if _, err := h.svc.UpdateComment(h.ctx, c.ID, editorID, &text, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf(errExpectedErr, ErrForbidden, err)
	}
	updated, err := h.svc.UpdateComment(h.ctx, c.ID, submitterID, &text, nil)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if updated.Text != text || updated.ModifiedAt == nil {
		t.Errorf("Expected an edited comment, got %+v", updated)
	}

	if err := h.svc.DeleteComment(h.ctx, c.ID, submitterID); err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if _, err := h.svc.UpdateComment(h.ctx, c.ID, submitterID, &text, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf(errExpectedErr, ErrInvalidInput, err)
	}
	if n := len(h.latest(t, e.ID).Comments); n != 1 {
		t.Errorf("Expected 1 visible comment, got %d", n)
	}

	t.Run("system comments are immutable", func(t *testing.T) {
		system := &model.Comment{ID: "sys", RevisionID: first.ID, Text: "Automated check", System: true}
		if err := h.repo.AddComment(h.ctx, system); err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if err := h.svc.DeleteComment(h.ctx, system.ID, editorID); !errors.Is(err, ErrInvalidState) {
			t.Errorf(errExpectedErr, ErrInvalidState, err)
		}
	})
}

func TestFiles(t *testing.T) {
	h := newHarness(t)

	if _, err := h.svc.UploadFile(h.ctx, testEvent, submitterID, "empty.pdf", "application/pdf", nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf(errExpectedErr, ErrInvalidInput, err)
	}

	f, err := h.svc.UploadFile(h.ctx, testEvent, submitterID, `C:\Users\alice\paper.pdf`, "application/pdf", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if f.Filename != "paper.pdf" {
		t.Errorf("Expected file name paper.pdf, got %q", f.Filename)
	}

	got, data, err := h.svc.DownloadFile(h.ctx, testEvent, f.ID)
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if got.Hash != f.Hash || string(data) != "%PDF-1.7" {
		t.Errorf("Unexpected download %+v %q", got, data)
	}

	if _, _, err := h.svc.DownloadFile(h.ctx, testEvent, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf(errExpectedErr, repository.ErrNotFound, err)
	}

	t.Run("Files stay within their event", func(t *testing.T) {
		if _, _, err := h.svc.DownloadFile(h.ctx, "ev2", f.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf(errExpectedErr, repository.ErrNotFound, err)
		}

		other, err := h.svc.UploadFile(h.ctx, "ev2", submitterID, "source.zip", "application/zip", []byte("zip"))
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		sel := FileSelection{h.source.ID: {other.ID}}
		if _, err := h.svc.CreateEditable(h.ctx, testEvent, "c-other", model.EditableTypePaper, submitterID, sel); !errors.Is(err, ErrInvalidInput) {
			t.Errorf(errExpectedErr, ErrInvalidInput, err)
		}
	})
}

func TestExportRevision(t *testing.T) {
	h := newHarness(t)
	_, first := h.create(t, "c1", h.withPDF(t))

	var buf bytes.Buffer
	if err := h.svc.ExportRevision(h.ctx, first.ID, &buf); err != nil {
		t.Fatalf(errUnexpected, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	expected := []string{"PDF/paper.pdf", "Source/source.zip"}
	if !slices.Equal(names, expected) {
		t.Errorf("Expected entries %v, got %v", expected, names)
	}
}

func TestDeleteEditable(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.ext.deleteErr = errors.New("service down")
	e, _ := h.create(t, "c1", h.sourceOnly(t))

	if err := h.svc.DeleteEditable(h.ctx, e.ID); err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if !slices.Contains(h.ext.calls, "delete") {
		t.Errorf("Expected the service to be told, got %v", h.ext.calls)
	}
	if _, err := h.svc.FindEditable(h.ctx, testEvent, "c1", model.EditableTypePaper); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf(errExpectedErr, repository.ErrNotFound, err)
	}

	// The contribution can be submitted again.
	h.create(t, "c1", h.sourceOnly(t))
	editables, err := h.svc.ListEditables(h.ctx, testEvent)
	if err != nil || len(editables) != 1 {
		t.Errorf("Expected 1 editable, got %d (err %v)", len(editables), err)
	}
}

func TestAssignEditor(t *testing.T) {
	h := newHarness(t)
	e, _ := h.create(t, "c1", h.sourceOnly(t))

	if err := h.svc.AssignEditor(h.ctx, e.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf(errExpectedErr, ErrInvalidInput, err)
	}
	if err := h.svc.AssignEditor(h.ctx, e.ID, editorID); err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if got := h.editable(t, e.ID).EditorID; got != editorID {
		t.Errorf("Expected editor %q, got %q", editorID, got)
	}
	if last := h.sink.last(); last.kind != "editor_assigned" {
		t.Errorf("Expected an editor_assigned notification, got %q", last.kind)
	}

	if err := h.svc.UnassignEditor(h.ctx, e.ID); err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if h.editable(t, e.ID).HasEditor() {
		t.Error("Expected no editor")
	}
}
