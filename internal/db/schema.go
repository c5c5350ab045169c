package db

import "strings"

// Dialect specific column types are filled in by schemaFor.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS file_types (
    id {{serial}},
    event_id TEXT NOT NULL,
    name TEXT NOT NULL,
    extensions TEXT NOT NULL DEFAULT '',
    allow_multiple BOOLEAN NOT NULL DEFAULT FALSE,
    required BOOLEAN NOT NULL DEFAULT FALSE,
    publishable BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (event_id, name)
);

CREATE TABLE IF NOT EXISTS tags (
    id {{serial}},
    event_id TEXT NOT NULL,
    code TEXT NOT NULL,
    title TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '',
    system BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (event_id, code)
);

CREATE TABLE IF NOT EXISTS editables (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    contribution_id TEXT NOT NULL,
    type TEXT NOT NULL,
    editor_id TEXT,
    published_revision_id TEXT,
    created_at {{timestamp}} NOT NULL,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE UNIQUE INDEX IF NOT EXISTS ix_uq_editables_contribution_type
    ON editables (event_id, contribution_id, type) WHERE NOT is_deleted;

CREATE TABLE IF NOT EXISTS revisions (
    id TEXT PRIMARY KEY,
    editable_id TEXT NOT NULL REFERENCES editables(id),
    seq INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    created_at {{timestamp}} NOT NULL,
    type TEXT NOT NULL,
    replaced_state TEXT NOT NULL DEFAULT '',
    comment TEXT NOT NULL DEFAULT '',
    is_undone BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (editable_id, seq),
    CONSTRAINT new_revision_not_undone CHECK (NOT (type = 'new' AND is_undone))
);

CREATE TABLE IF NOT EXISTS files (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    filename TEXT NOT NULL,
    content_type TEXT NOT NULL,
    size BIGINT NOT NULL,
    hash TEXT NOT NULL,
    user_id TEXT NOT NULL,
    created_at {{timestamp}} NOT NULL
);

CREATE TABLE IF NOT EXISTS revision_files (
    revision_id TEXT NOT NULL REFERENCES revisions(id),
    file_id TEXT NOT NULL REFERENCES files(id),
    file_type_id BIGINT NOT NULL REFERENCES file_types(id),
    PRIMARY KEY (revision_id, file_id)
);

CREATE TABLE IF NOT EXISTS revision_tags (
    revision_id TEXT NOT NULL REFERENCES revisions(id),
    tag_id BIGINT NOT NULL REFERENCES tags(id),
    PRIMARY KEY (revision_id, tag_id)
);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    revision_id TEXT NOT NULL REFERENCES revisions(id),
    user_id TEXT,
    text TEXT NOT NULL,
    internal BOOLEAN NOT NULL DEFAULT FALSE,
    system BOOLEAN NOT NULL DEFAULT FALSE,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at {{timestamp}} NOT NULL,
    modified_at {{timestamp}},
    CONSTRAINT system_comment_user CHECK ((user_id IS NULL) = system)
);

CREATE TABLE IF NOT EXISTS editing_settings (
    event_id TEXT PRIMARY KEY,
    service_url TEXT NOT NULL DEFAULT '',
    service_token TEXT NOT NULL DEFAULT '',
    service_identifier TEXT NOT NULL DEFAULT ''
);
`

func schemaFor(driver string) string {
	var r *strings.Replacer
	switch driver {
	case "postgres":
		r = strings.NewReplacer("{{serial}}", "BIGSERIAL PRIMARY KEY", "{{timestamp}}", "TIMESTAMPTZ")
	default:
		r = strings.NewReplacer("{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{timestamp}}", "DATETIME")
	}
	return r.Replace(schemaTemplate)
}
