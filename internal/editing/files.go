package editing

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/debemdeboas/editorial/internal/model"
	"github.com/debemdeboas/editorial/internal/repository"
	"github.com/debemdeboas/editorial/internal/util"
	"github.com/klauspost/compress/zip"
)

// UploadFile stores the bytes of a file that can then be selected for a
// revision of an editable in event.
func (s *Service) UploadFile(ctx context.Context, event model.EventID, user model.UserID, filename, contentType string, data []byte) (*model.File, error) {
	filename = path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if filename == "" || filename == "." || filename == "/" {
		return nil, invalidInput("missing file name")
	}
	if len(data) == 0 {
		return nil, invalidInput("file %s is empty", filename)
	}

	f := &model.File{
		ID:          model.FileID(s.newID()),
		EventID:     event,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        util.ContentHash(data),
		UserID:      user,
		CreatedAt:   s.now(),
	}

	if err := s.blobs.Put(ctx, string(f.ID), data); err != nil {
		return nil, fmt.Errorf("error storing file: %w", err)
	}
	if err := s.repo.SaveFile(ctx, f); err != nil {
		return nil, err
	}

	editingLogger.Debug().Str("file_id", string(f.ID)).Str("filename", filename).Int64("size", f.Size).Msg("File uploaded")
	return f, nil
}

// DownloadFile returns a file uploaded for event. Files of other events are
// reported as not found.
func (s *Service) DownloadFile(ctx context.Context, event model.EventID, id model.FileID) (*model.File, []byte, error) {
	f, err := s.repo.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.EventID != event {
		return nil, nil, fmt.Errorf("file %s: %w", id, repository.ErrNotFound)
	}

	data, err := s.blobs.Get(ctx, string(f.ID))
	if err != nil {
		return nil, nil, err
	}
	if util.ContentHash(data) != f.Hash {
		return nil, nil, fmt.Errorf("file %s is corrupted", f.ID)
	}
	return f, data, nil
}

// ExportRevision writes a ZIP archive of the revision's files with one
// folder per file type.
func (s *Service) ExportRevision(ctx context.Context, revID model.RevisionID, w io.Writer) error {
	rev, err := s.repo.GetRevision(ctx, revID)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, rf := range rev.Files {
		data, err := s.blobs.Get(ctx, string(rf.File.ID))
		if err != nil {
			return fmt.Errorf("error reading %s: %w", rf.File.Filename, err)
		}

		header := &zip.FileHeader{
			Name:     path.Join(rf.FileType.Name, rf.File.Filename),
			Method:   zip.Deflate,
			Modified: rf.File.CreatedAt,
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}
