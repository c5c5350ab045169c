package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/debemdeboas/editorial/internal/model"
)

// MemoryRepository keeps everything in process. Values are copied on the way
// in and out so callers never share state with the store.
type MemoryRepository struct { // implements Repository
	mu sync.RWMutex

	editables     map[model.EditableID]*model.Editable
	revisions     map[model.EditableID][]*model.Revision
	revisionOwner map[model.RevisionID]model.EditableID
	comments      map[model.RevisionID][]*model.Comment
	commentIndex  map[model.CommentID]*model.Comment

	tags      map[model.EventID][]model.Tag
	fileTypes map[model.EventID][]model.FileType
	files     map[model.FileID]*model.File
	settings  map[model.EventID]*model.EditingSettings

	nextTagID      model.TagID
	nextFileTypeID model.FileTypeID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		editables:     make(map[model.EditableID]*model.Editable),
		revisions:     make(map[model.EditableID][]*model.Revision),
		revisionOwner: make(map[model.RevisionID]model.EditableID),
		comments:      make(map[model.RevisionID][]*model.Comment),
		commentIndex:  make(map[model.CommentID]*model.Comment),
		tags:          make(map[model.EventID][]model.Tag),
		fileTypes:     make(map[model.EventID][]model.FileType),
		files:         make(map[model.FileID]*model.File),
		settings:      make(map[model.EventID]*model.EditingSettings),
	}
}

func (m *MemoryRepository) CreateEditable(_ context.Context, e *model.Editable, first *model.Revision) error {
	if err := first.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.editables {
		if !other.IsDeleted && other.EventID == e.EventID &&
			other.ContributionID == e.ContributionID && other.Type == e.Type {
			return ErrDuplicateEditable
		}
	}

	stored := *e
	m.editables[e.ID] = &stored

	rev := first.Clone()
	rev.EditableID = e.ID
	rev.Seq = 1
	rev.Comments = nil
	m.revisions[e.ID] = []*model.Revision{rev}
	m.revisionOwner[rev.ID] = e.ID

	first.EditableID = e.ID
	first.Seq = 1
	return nil
}

func (m *MemoryRepository) GetEditable(_ context.Context, id model.EditableID) (*model.Editable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.editables[id]
	if !ok || e.IsDeleted {
		return nil, fmt.Errorf("editable %s: %w", id, ErrNotFound)
	}
	c := *e
	return &c, nil
}

func (m *MemoryRepository) FindEditable(_ context.Context, event model.EventID, contrib model.ContributionID, typ model.EditableType) (*model.Editable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.editables {
		if !e.IsDeleted && e.EventID == event && e.ContributionID == contrib && e.Type == typ {
			c := *e
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%s editable of contribution %s: %w", typ, contrib, ErrNotFound)
}

func (m *MemoryRepository) ListEditables(_ context.Context, event model.EventID) ([]*model.Editable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]*model.Editable, 0)
	for _, e := range m.editables {
		if !e.IsDeleted && e.EventID == event {
			c := *e
			res = append(res, &c)
		}
	}
	slices.SortFunc(res, func(a, b *model.Editable) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return res, nil
}

func (m *MemoryRepository) updateEditable(id model.EditableID, fn func(e *model.Editable)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.editables[id]
	if !ok || e.IsDeleted {
		return fmt.Errorf("editable %s: %w", id, ErrNotFound)
	}
	fn(e)
	return nil
}

func (m *MemoryRepository) SetEditor(_ context.Context, id model.EditableID, editor model.UserID) error {
	return m.updateEditable(id, func(e *model.Editable) { e.EditorID = editor })
}

func (m *MemoryRepository) SetPublishedRevision(_ context.Context, id model.EditableID, rev model.RevisionID) error {
	return m.updateEditable(id, func(e *model.Editable) { e.PublishedRevisionID = rev })
}

func (m *MemoryRepository) DeleteEditable(_ context.Context, id model.EditableID) error {
	return m.updateEditable(id, func(e *model.Editable) { e.IsDeleted = true })
}

// withComments returns a copy of rev carrying its live comments. Callers hold mu.
func (m *MemoryRepository) withComments(rev *model.Revision) *model.Revision {
	c := rev.Clone()
	c.Comments = nil
	for _, comment := range m.comments[rev.ID] {
		if !comment.IsDeleted {
			c.Comments = append(c.Comments, *comment)
		}
	}
	return c
}

func (m *MemoryRepository) Revisions(_ context.Context, editable model.EditableID) ([]*model.Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	revs, ok := m.revisions[editable]
	if !ok {
		return nil, fmt.Errorf("revisions of editable %s: %w", editable, ErrNotFound)
	}

	res := make([]*model.Revision, 0, len(revs))
	for _, r := range revs {
		res = append(res, m.withComments(r))
	}
	return res, nil
}

func (m *MemoryRepository) Latest(_ context.Context, editable model.EditableID) (*model.Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := model.LatestRevision(m.revisions[editable])
	if latest == nil {
		return nil, fmt.Errorf("latest revision of editable %s: %w", editable, ErrNotFound)
	}
	return m.withComments(latest), nil
}

func (m *MemoryRepository) findRevision(id model.RevisionID) (*model.Revision, bool) {
	owner, ok := m.revisionOwner[id]
	if !ok {
		return nil, false
	}
	for _, r := range m.revisions[owner] {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (m *MemoryRepository) GetRevision(_ context.Context, id model.RevisionID) (*model.Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.findRevision(id)
	if !ok {
		return nil, fmt.Errorf("revision %s: %w", id, ErrNotFound)
	}
	return m.withComments(r), nil
}

func (m *MemoryRepository) AppendRevision(_ context.Context, predecessor model.RevisionID, rev *model.Revision) error {
	if err := rev.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	revs, ok := m.revisions[rev.EditableID]
	if !ok {
		return fmt.Errorf("editable %s: %w", rev.EditableID, ErrNotFound)
	}

	latest := model.LatestRevision(revs)
	if latest == nil || latest.ID != predecessor {
		return ErrConcurrency
	}

	rev.Seq = len(revs) + 1
	stored := rev.Clone()
	stored.Comments = nil
	m.revisions[rev.EditableID] = append(revs, stored)
	m.revisionOwner[rev.ID] = rev.EditableID
	return nil
}

func (m *MemoryRepository) UpdateRevision(_ context.Context, rev *model.Revision) error {
	if err := rev.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.findRevision(rev.ID)
	if !ok {
		return fmt.Errorf("revision %s: %w", rev.ID, ErrNotFound)
	}
	updateStored(stored, rev)
	return nil
}

func (m *MemoryRepository) UpdateLatestRevision(_ context.Context, rev *model.Revision) error {
	if err := rev.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.findRevision(rev.ID)
	if !ok {
		return fmt.Errorf("revision %s: %w", rev.ID, ErrNotFound)
	}
	if latest := model.LatestRevision(m.revisions[m.revisionOwner[rev.ID]]); latest == nil || latest.ID != rev.ID {
		return ErrConcurrency
	}
	updateStored(stored, rev)
	return nil
}

func updateStored(stored, rev *model.Revision) {
	stored.Type = rev.Type
	stored.Comment = rev.Comment
	stored.Tags = rev.CloneTags()
	stored.IsUndone = rev.IsUndone
}

func (m *MemoryRepository) AddComment(_ context.Context, c *model.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.revisionOwner[c.RevisionID]; !ok {
		return fmt.Errorf("revision %s: %w", c.RevisionID, ErrNotFound)
	}

	stored := *c
	m.comments[c.RevisionID] = append(m.comments[c.RevisionID], &stored)
	m.commentIndex[c.ID] = &stored
	return nil
}

func (m *MemoryRepository) GetComment(_ context.Context, id model.CommentID) (*model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.commentIndex[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	cc := *c
	return &cc, nil
}

func (m *MemoryRepository) UpdateComment(_ context.Context, c *model.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.commentIndex[c.ID]
	if !ok {
		return fmt.Errorf("comment %s: %w", c.ID, ErrNotFound)
	}
	stored.Text = c.Text
	stored.Internal = c.Internal
	stored.IsDeleted = c.IsDeleted
	stored.ModifiedAt = c.ModifiedAt
	return nil
}

func (m *MemoryRepository) Tags(_ context.Context, event model.EventID) ([]model.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.tags[event]), nil
}

func (m *MemoryRepository) SaveTag(_ context.Context, tag *model.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := m.tags[tag.EventID]
	for i := range tags {
		if tags[i].Code == tag.Code {
			tag.ID = tags[i].ID
			tags[i] = *tag
			return nil
		}
	}

	m.nextTagID++
	tag.ID = m.nextTagID
	m.tags[tag.EventID] = append(tags, *tag)
	return nil
}

func (m *MemoryRepository) FileTypes(_ context.Context, event model.EventID) ([]model.FileType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.fileTypes[event]), nil
}

func (m *MemoryRepository) SaveFileType(_ context.Context, ft *model.FileType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fts := m.fileTypes[ft.EventID]
	for i := range fts {
		if fts[i].Name == ft.Name {
			ft.ID = fts[i].ID
			fts[i] = *ft
			return nil
		}
	}

	m.nextFileTypeID++
	ft.ID = m.nextFileTypeID
	m.fileTypes[ft.EventID] = append(fts, *ft)
	return nil
}

func (m *MemoryRepository) SaveFile(_ context.Context, f *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *f
	m.files[f.ID] = &stored
	return nil
}

func (m *MemoryRepository) GetFile(_ context.Context, id model.FileID) (*model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	c := *f
	return &c, nil
}

func (m *MemoryRepository) Settings(_ context.Context, event model.EventID) (*model.EditingSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.settings[event]; ok {
		c := *s
		return &c, nil
	}
	return &model.EditingSettings{EventID: event}, nil
}

func (m *MemoryRepository) SaveSettings(_ context.Context, s *model.EditingSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *s
	m.settings[s.EventID] = &c
	return nil
}
