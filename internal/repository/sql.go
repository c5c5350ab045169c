package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/debemdeboas/editorial/internal/cache"
	"github.com/debemdeboas/editorial/internal/db"
	"github.com/debemdeboas/editorial/internal/model"
)

// queryer is satisfied by both db.DB and *db.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

type DBRepository struct { // implements Repository
	db db.DB

	// Latest non-undone revision per editable. Dropped on every write that
	// could change it.
	latestCache *cache.Cache[model.EditableID, *model.Revision]
}

func NewDBRepository(database db.DB) *DBRepository {
	return &DBRepository{
		db:          database,
		latestCache: cache.NewCache[model.EditableID, *model.Revision](),
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const editableColumns = `id, event_id, contribution_id, type, editor_id, published_revision_id, created_at, is_deleted`

func scanEditable(row interface{ Scan(...any) error }) (*model.Editable, error) {
	var e model.Editable
	var editor, published sql.NullString

	err := row.Scan(&e.ID, &e.EventID, &e.ContributionID, &e.Type, &editor, &published, &e.CreatedAt, &e.IsDeleted)
	if err != nil {
		return nil, err
	}
	e.EditorID = model.UserID(editor.String)
	e.PublishedRevisionID = model.RevisionID(published.String)
	return &e, nil
}

func (r *DBRepository) CreateEditable(ctx context.Context, e *model.Editable, first *model.Revision) error {
	if err := first.Validate(); err != nil {
		return err
	}

	first.EditableID = e.ID
	first.Seq = 1

	return r.db.WithTx(ctx, func(tx *db.Tx) error {
		var existing int
		err := tx.QueryRow(
			`SELECT COUNT(*) FROM editables WHERE event_id = ? AND contribution_id = ? AND type = ? AND NOT is_deleted`,
			e.EventID, e.ContributionID, e.Type,
		).Scan(&existing)
		if err != nil {
			return fmt.Errorf("error checking for existing editable: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateEditable
		}

		_, err = tx.Exec(
			`INSERT INTO editables (`+editableColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.EventID, e.ContributionID, e.Type, nullString(string(e.EditorID)),
			nullString(string(e.PublishedRevisionID)), e.CreatedAt, false,
		)
		if err != nil {
			return fmt.Errorf("error inserting editable: %w", err)
		}

		return insertRevision(tx, first)
	})
}

func (r *DBRepository) GetEditable(_ context.Context, id model.EditableID) (*model.Editable, error) {
	e, err := scanEditable(r.db.QueryRow(`SELECT `+editableColumns+` FROM editables WHERE id = ? AND NOT is_deleted`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("editable %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading editable %s: %w", id, err)
	}
	return e, nil
}

func (r *DBRepository) FindEditable(_ context.Context, event model.EventID, contrib model.ContributionID, typ model.EditableType) (*model.Editable, error) {
	e, err := scanEditable(r.db.QueryRow(
		`SELECT `+editableColumns+` FROM editables WHERE event_id = ? AND contribution_id = ? AND type = ? AND NOT is_deleted`,
		event, contrib, typ,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s editable of contribution %s: %w", typ, contrib, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding editable: %w", err)
	}
	return e, nil
}

func (r *DBRepository) ListEditables(_ context.Context, event model.EventID) ([]*model.Editable, error) {
	rows, err := r.db.Query(`SELECT `+editableColumns+` FROM editables WHERE event_id = ? AND NOT is_deleted ORDER BY created_at`, event)
	if err != nil {
		return nil, fmt.Errorf("error querying editables: %w", err)
	}
	defer rows.Close()

	res := make([]*model.Editable, 0)
	for rows.Next() {
		e, err := scanEditable(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning editable: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *DBRepository) updateEditable(id model.EditableID, query string, args ...any) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("error updating editable %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("editable %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *DBRepository) SetEditor(_ context.Context, id model.EditableID, editor model.UserID) error {
	return r.updateEditable(id, `UPDATE editables SET editor_id = ? WHERE id = ? AND NOT is_deleted`, nullString(string(editor)), id)
}

func (r *DBRepository) SetPublishedRevision(_ context.Context, id model.EditableID, rev model.RevisionID) error {
	return r.updateEditable(id, `UPDATE editables SET published_revision_id = ? WHERE id = ? AND NOT is_deleted`, nullString(string(rev)), id)
}

func (r *DBRepository) DeleteEditable(_ context.Context, id model.EditableID) error {
	r.latestCache.Delete(id)
	return r.updateEditable(id, `UPDATE editables SET is_deleted = ? WHERE id = ? AND NOT is_deleted`, true, id)
}

func insertRevision(tx *db.Tx, rev *model.Revision) error {
	_, err := tx.Exec(
		`INSERT INTO revisions (id, editable_id, seq, user_id, created_at, type, replaced_state, comment, is_undone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.EditableID, rev.Seq, rev.UserID, rev.CreatedAt, rev.Type,
		rev.ReplacedState, rev.Comment, rev.IsUndone,
	)
	if err != nil {
		return fmt.Errorf("error inserting revision: %w", err)
	}

	for _, f := range rev.Files {
		_, err := tx.Exec(
			`INSERT INTO revision_files (revision_id, file_id, file_type_id) VALUES (?, ?, ?)`,
			rev.ID, f.File.ID, f.FileType.ID,
		)
		if err != nil {
			return fmt.Errorf("error attaching file %s: %w", f.File.ID, err)
		}
	}

	return insertRevisionTags(tx, rev)
}

func insertRevisionTags(tx *db.Tx, rev *model.Revision) error {
	for _, id := range rev.TagIDs() {
		if _, err := tx.Exec(`INSERT INTO revision_tags (revision_id, tag_id) VALUES (?, ?)`, rev.ID, id); err != nil {
			return fmt.Errorf("error attaching tag %d: %w", id, err)
		}
	}
	return nil
}

// loadRevisions reads the history of editable with files, tags and live
// comments attached. Each result set is drained before the next query.
func loadRevisions(q queryer, editable model.EditableID) ([]*model.Revision, error) {
	rows, err := q.Query(
		`SELECT id, editable_id, seq, user_id, created_at, type, replaced_state, comment, is_undone
		FROM revisions WHERE editable_id = ? ORDER BY seq`,
		editable,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying revisions: %w", err)
	}

	revs := make([]*model.Revision, 0)
	byID := make(map[model.RevisionID]*model.Revision)
	for rows.Next() {
		var rev model.Revision
		err := rows.Scan(&rev.ID, &rev.EditableID, &rev.Seq, &rev.UserID, &rev.CreatedAt,
			&rev.Type, &rev.ReplacedState, &rev.Comment, &rev.IsUndone)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning revision: %w", err)
		}
		revs = append(revs, &rev)
		byID[rev.ID] = &rev
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadRevisionFiles(q, editable, byID); err != nil {
		return nil, err
	}
	if err := loadRevisionTags(q, editable, byID); err != nil {
		return nil, err
	}
	if err := loadRevisionComments(q, editable, byID); err != nil {
		return nil, err
	}

	return revs, nil
}

func loadRevisionFiles(q queryer, editable model.EditableID, byID map[model.RevisionID]*model.Revision) error {
	rows, err := q.Query(
		`SELECT rf.revision_id, f.id, f.event_id, f.filename, f.content_type, f.size, f.hash, f.user_id, f.created_at,
			ft.id, ft.event_id, ft.name, ft.extensions, ft.allow_multiple, ft.required, ft.publishable
		FROM revision_files rf
		JOIN revisions r ON r.id = rf.revision_id
		JOIN files f ON f.id = rf.file_id
		JOIN file_types ft ON ft.id = rf.file_type_id
		WHERE r.editable_id = ?
		ORDER BY ft.name, f.filename`,
		editable,
	)
	if err != nil {
		return fmt.Errorf("error querying revision files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var revID model.RevisionID
		var rf model.RevisionFile
		var extensions string

		err := rows.Scan(&revID, &rf.File.ID, &rf.File.EventID, &rf.File.Filename, &rf.File.ContentType, &rf.File.Size,
			&rf.File.Hash, &rf.File.UserID, &rf.File.CreatedAt,
			&rf.FileType.ID, &rf.FileType.EventID, &rf.FileType.Name, &extensions,
			&rf.FileType.AllowMultiple, &rf.FileType.Required, &rf.FileType.Publishable)
		if err != nil {
			return fmt.Errorf("error scanning revision file: %w", err)
		}
		rf.FileType.Extensions = splitExtensions(extensions)

		if rev, ok := byID[revID]; ok {
			rev.Files = append(rev.Files, rf)
		}
	}
	return rows.Err()
}

func loadRevisionTags(q queryer, editable model.EditableID, byID map[model.RevisionID]*model.Revision) error {
	rows, err := q.Query(
		`SELECT rt.revision_id, t.id, t.event_id, t.code, t.title, t.color, t.system
		FROM revision_tags rt
		JOIN revisions r ON r.id = rt.revision_id
		JOIN tags t ON t.id = rt.tag_id
		WHERE r.editable_id = ?
		ORDER BY t.code`,
		editable,
	)
	if err != nil {
		return fmt.Errorf("error querying revision tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var revID model.RevisionID
		var tag model.Tag
		if err := rows.Scan(&revID, &tag.ID, &tag.EventID, &tag.Code, &tag.Title, &tag.Color, &tag.System); err != nil {
			return fmt.Errorf("error scanning revision tag: %w", err)
		}
		if rev, ok := byID[revID]; ok {
			rev.Tags = append(rev.Tags, tag)
		}
	}
	return rows.Err()
}

const commentColumns = `c.id, c.revision_id, c.user_id, c.text, c.internal, c.system, c.is_deleted, c.created_at, c.modified_at`

func scanComment(row interface{ Scan(...any) error }) (*model.Comment, error) {
	var c model.Comment
	var user sql.NullString
	var modified sql.NullTime

	err := row.Scan(&c.ID, &c.RevisionID, &user, &c.Text, &c.Internal, &c.System, &c.IsDeleted, &c.CreatedAt, &modified)
	if err != nil {
		return nil, err
	}
	c.UserID = model.UserID(user.String)
	if modified.Valid {
		t := modified.Time
		c.ModifiedAt = &t
	}
	return &c, nil
}

func loadRevisionComments(q queryer, editable model.EditableID, byID map[model.RevisionID]*model.Revision) error {
	rows, err := q.Query(
		`SELECT `+commentColumns+`
		FROM comments c
		JOIN revisions r ON r.id = c.revision_id
		WHERE r.editable_id = ? AND NOT c.is_deleted
		ORDER BY c.created_at`,
		editable,
	)
	if err != nil {
		return fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return fmt.Errorf("error scanning comment: %w", err)
		}
		if rev, ok := byID[c.RevisionID]; ok {
			rev.Comments = append(rev.Comments, *c)
		}
	}
	return rows.Err()
}

func (r *DBRepository) Revisions(_ context.Context, editable model.EditableID) ([]*model.Revision, error) {
	revs, err := loadRevisions(r.db, editable)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("revisions of editable %s: %w", editable, ErrNotFound)
	}
	return revs, nil
}

func (r *DBRepository) Latest(ctx context.Context, editable model.EditableID) (*model.Revision, error) {
	rev, err := r.latestCache.GetOrLoad(editable, func(id model.EditableID) (*model.Revision, error) {
		revs, err := r.Revisions(ctx, id)
		if err != nil {
			return nil, err
		}
		latest := model.LatestRevision(revs)
		if latest == nil {
			return nil, fmt.Errorf("latest revision of editable %s: %w", id, ErrNotFound)
		}
		return latest, nil
	})
	if err != nil {
		return nil, err
	}
	return rev.Clone(), nil
}

func (r *DBRepository) revisionOwner(id model.RevisionID) (model.EditableID, error) {
	var editable model.EditableID
	err := r.db.QueryRow(`SELECT editable_id FROM revisions WHERE id = ?`, id).Scan(&editable)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("revision %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("error loading revision %s: %w", id, err)
	}
	return editable, nil
}

func (r *DBRepository) GetRevision(ctx context.Context, id model.RevisionID) (*model.Revision, error) {
	editable, err := r.revisionOwner(id)
	if err != nil {
		return nil, err
	}

	revs, err := r.Revisions(ctx, editable)
	if err != nil {
		return nil, err
	}
	for _, rev := range revs {
		if rev.ID == id {
			return rev, nil
		}
	}
	return nil, fmt.Errorf("revision %s: %w", id, ErrNotFound)
}

func (r *DBRepository) AppendRevision(ctx context.Context, predecessor model.RevisionID, rev *model.Revision) error {
	if err := rev.Validate(); err != nil {
		return err
	}
	defer r.latestCache.Delete(rev.EditableID)

	return r.db.WithTx(ctx, func(tx *db.Tx) error {
		var latest model.RevisionID
		err := tx.QueryRow(
			`SELECT id FROM revisions WHERE editable_id = ? AND NOT is_undone ORDER BY seq DESC LIMIT 1`,
			rev.EditableID,
		).Scan(&latest)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("editable %s: %w", rev.EditableID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("error loading latest revision: %w", err)
		}
		if latest != predecessor {
			return ErrConcurrency
		}

		var seq int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM revisions WHERE editable_id = ?`, rev.EditableID).Scan(&seq); err != nil {
			return fmt.Errorf("error loading revision sequence: %w", err)
		}
		rev.Seq = seq + 1

		return insertRevision(tx, rev)
	})
}

func (r *DBRepository) UpdateRevision(ctx context.Context, rev *model.Revision) error {
	if err := rev.Validate(); err != nil {
		return err
	}
	defer r.latestCache.Delete(rev.EditableID)

	return r.db.WithTx(ctx, func(tx *db.Tx) error {
		return updateRevision(tx, rev)
	})
}

func (r *DBRepository) UpdateLatestRevision(ctx context.Context, rev *model.Revision) error {
	if err := rev.Validate(); err != nil {
		return err
	}

	var editable model.EditableID
	defer func() {
		if editable != "" {
			r.latestCache.Delete(editable)
		}
	}()

	return r.db.WithTx(ctx, func(tx *db.Tx) error {
		err := tx.QueryRow(`SELECT editable_id FROM revisions WHERE id = ?`, rev.ID).Scan(&editable)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("revision %s: %w", rev.ID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("error loading revision %s: %w", rev.ID, err)
		}

		var latest model.RevisionID
		err = tx.QueryRow(
			`SELECT id FROM revisions WHERE editable_id = ? AND NOT is_undone ORDER BY seq DESC LIMIT 1`,
			editable,
		).Scan(&latest)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("error loading latest revision: %w", err)
		}
		if latest != rev.ID {
			return ErrConcurrency
		}

		return updateRevision(tx, rev)
	})
}

func updateRevision(tx *db.Tx, rev *model.Revision) error {
	res, err := tx.Exec(
		`UPDATE revisions SET type = ?, comment = ?, is_undone = ? WHERE id = ?`,
		rev.Type, rev.Comment, rev.IsUndone, rev.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating revision %s: %w", rev.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("revision %s: %w", rev.ID, ErrNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM revision_tags WHERE revision_id = ?`, rev.ID); err != nil {
		return fmt.Errorf("error clearing tags of revision %s: %w", rev.ID, err)
	}
	return insertRevisionTags(tx, rev)
}

func (r *DBRepository) invalidateForRevision(id model.RevisionID) {
	if editable, err := r.revisionOwner(id); err == nil {
		r.latestCache.Delete(editable)
	}
}

func (r *DBRepository) AddComment(_ context.Context, c *model.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	defer r.invalidateForRevision(c.RevisionID)

	_, err := r.db.Exec(
		`INSERT INTO comments (id, revision_id, user_id, text, internal, system, is_deleted, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RevisionID, nullString(string(c.UserID)), c.Text, c.Internal, c.System, c.IsDeleted, c.CreatedAt, c.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting comment: %w", err)
	}
	return nil
}

func (r *DBRepository) GetComment(_ context.Context, id model.CommentID) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRow(`SELECT `+commentColumns+` FROM comments c WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading comment %s: %w", id, err)
	}
	return c, nil
}

func (r *DBRepository) UpdateComment(_ context.Context, c *model.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	defer r.invalidateForRevision(c.RevisionID)

	res, err := r.db.Exec(
		`UPDATE comments SET text = ?, internal = ?, is_deleted = ?, modified_at = ? WHERE id = ?`,
		c.Text, c.Internal, c.IsDeleted, c.ModifiedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating comment %s: %w", c.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("comment %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (r *DBRepository) Tags(_ context.Context, event model.EventID) ([]model.Tag, error) {
	rows, err := r.db.Query(`SELECT id, event_id, code, title, color, system FROM tags WHERE event_id = ? ORDER BY code`, event)
	if err != nil {
		return nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.EventID, &t.Code, &t.Title, &t.Color, &t.System); err != nil {
			return nil, fmt.Errorf("error scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *DBRepository) SaveTag(_ context.Context, tag *model.Tag) error {
	err := r.db.QueryRow(
		`INSERT INTO tags (event_id, code, title, color, system) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (event_id, code) DO UPDATE SET title = excluded.title, color = excluded.color, system = excluded.system
		RETURNING id`,
		tag.EventID, tag.Code, tag.Title, tag.Color, tag.System,
	).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("error saving tag %s: %w", tag.Code, err)
	}
	return nil
}

func splitExtensions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (r *DBRepository) FileTypes(_ context.Context, event model.EventID) ([]model.FileType, error) {
	rows, err := r.db.Query(
		`SELECT id, event_id, name, extensions, allow_multiple, required, publishable FROM file_types WHERE event_id = ? ORDER BY name`,
		event,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying file types: %w", err)
	}
	defer rows.Close()

	fts := make([]model.FileType, 0)
	for rows.Next() {
		var ft model.FileType
		var extensions string
		if err := rows.Scan(&ft.ID, &ft.EventID, &ft.Name, &extensions, &ft.AllowMultiple, &ft.Required, &ft.Publishable); err != nil {
			return nil, fmt.Errorf("error scanning file type: %w", err)
		}
		ft.Extensions = splitExtensions(extensions)
		fts = append(fts, ft)
	}
	return fts, rows.Err()
}

func (r *DBRepository) SaveFileType(_ context.Context, ft *model.FileType) error {
	err := r.db.QueryRow(
		`INSERT INTO file_types (event_id, name, extensions, allow_multiple, required, publishable) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id, name) DO UPDATE SET extensions = excluded.extensions,
			allow_multiple = excluded.allow_multiple, required = excluded.required, publishable = excluded.publishable
		RETURNING id`,
		ft.EventID, ft.Name, strings.Join(ft.Extensions, ","), ft.AllowMultiple, ft.Required, ft.Publishable,
	).Scan(&ft.ID)
	if err != nil {
		return fmt.Errorf("error saving file type %s: %w", ft.Name, err)
	}
	return nil
}

func (r *DBRepository) SaveFile(_ context.Context, f *model.File) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO files (id, event_id, filename, content_type, size, hash, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.EventID, f.Filename, f.ContentType, f.Size, f.Hash, f.UserID, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving file %s: %w", f.ID, err)
	}
	return nil
}

func (r *DBRepository) GetFile(_ context.Context, id model.FileID) (*model.File, error) {
	var f model.File
	err := r.db.QueryRow(
		`SELECT id, event_id, filename, content_type, size, hash, user_id, created_at FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.EventID, &f.Filename, &f.ContentType, &f.Size, &f.Hash, &f.UserID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading file %s: %w", id, err)
	}
	return &f, nil
}

func (r *DBRepository) Settings(_ context.Context, event model.EventID) (*model.EditingSettings, error) {
	s := model.EditingSettings{EventID: event}
	err := r.db.QueryRow(
		`SELECT service_url, service_token, service_identifier FROM editing_settings WHERE event_id = ?`, event,
	).Scan(&s.ServiceURL, &s.ServiceToken, &s.ServiceIdentifier)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error loading editing settings: %w", err)
	}
	return &s, nil
}

func (r *DBRepository) SaveSettings(_ context.Context, s *model.EditingSettings) error {
	_, err := r.db.Exec(
		`INSERT INTO editing_settings (event_id, service_url, service_token, service_identifier) VALUES (?, ?, ?, ?)
		ON CONFLICT (event_id) DO UPDATE SET service_url = excluded.service_url,
			service_token = excluded.service_token, service_identifier = excluded.service_identifier`,
		s.EventID, s.ServiceURL, s.ServiceToken, s.ServiceIdentifier,
	)
	if err != nil {
		return fmt.Errorf("error saving editing settings: %w", err)
	}
	return nil
}
