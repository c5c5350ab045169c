package routes

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/rs/zerolog"
)

// uploadFile stores the "file" part of a multipart form. The stored file can
// then be selected for a revision of the editable.
func (a *API) uploadFile(w http.ResponseWriter, r *http.Request) {
	l := zerolog.Ctx(r.Context())

	user, ok := a.user(w, r)
	if !ok {
		return
	}
	e, ok := a.editable(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		l.Debug().Err(err).Msg("Error parsing upload")
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: config.ErrInvalidBody})
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: config.ErrInvalidBody, Reason: "missing file"})
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		l.Error().Err(err).Msg("Error reading upload")
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: config.ErrInvalidBody})
		return
	}

	contentType := header.Header.Get(config.HCType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	f, err := a.svc.UploadFile(r.Context(), e.EventID, user, header.Filename, contentType, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newFileView(f, 0))
}

func (a *API) downloadFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(w, r); !ok {
		return
	}

	f, data, err := a.svc.DownloadFile(r.Context(), model.EventID(r.PathValue("event")), model.FileID(r.PathValue("file")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = config.CTypeOctetStream
	}
	w.Header().Set(config.HCType, contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(int64(len(data)), 10))
	w.Header().Set(config.HETag, strconv.Quote(f.Hash))
	w.Header().Set(config.HContentDispose, fmt.Sprintf("attachment; filename=%q", f.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
