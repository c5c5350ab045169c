package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/debemdeboas/editorial/internal/util/compression"
	"github.com/rs/zerolog"
)

const errUnexpected = "Unexpected error: %v"

func init() {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
}

// fakeS3 answers path style object requests for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Write(data)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func storageRoundTrip(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	content := bytes.Repeat([]byte("revision file content "), 64)

	if err := s.Put(ctx, "abcdef", content); err != nil {
		t.Fatalf(errUnexpected, err)
	}

	got, err := s.Get(ctx, "abcdef")
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Expected stored content back, got %d bytes", len(got))
	}

	if err := s.Delete(ctx, "abcdef"); err != nil {
		t.Fatalf(errUnexpected, err)
	}
	if _, err := s.Get(ctx, "abcdef"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestFSStorage(t *testing.T) {
	s, err := NewFSStorage(t.TempDir())
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}

	storageRoundTrip(t, s)

	t.Run("Rejects path traversal", func(t *testing.T) {
		for _, key := range []string{"", "..", "../etc", "a/b"} {
			if err := s.Put(context.Background(), key, []byte("x")); err == nil {
				t.Errorf("Expected key %q to be rejected", key)
			}
		}
	})

	t.Run("Deleting a missing blob is not an error", func(t *testing.T) {
		if err := s.Delete(context.Background(), "missing"); err != nil {
			t.Errorf(errUnexpected, err)
		}
	})
}

func TestMemoryStorage(t *testing.T) {
	storageRoundTrip(t, NewMemoryStorage())
}

func TestCompressedStorage(t *testing.T) {
	fs, err := NewFSStorage(t.TempDir())
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}

	for _, name := range []string{"zstd", "gzip", "none"} {
		t.Run(name, func(t *testing.T) {
			storageRoundTrip(t, NewCompressed(fs, compression.New(name)))
		})
	}

	t.Run("Stored bytes are compressed", func(t *testing.T) {
		ctx := context.Background()
		content := bytes.Repeat([]byte("a"), 4096)

		s := NewCompressed(fs, compression.ZstdCompressor{})
		if err := s.Put(ctx, "zz-compressed", content); err != nil {
			t.Fatalf(errUnexpected, err)
		}
		raw, err := fs.Get(ctx, "zz-compressed")
		if err != nil {
			t.Fatalf(errUnexpected, err)
		}
		if len(raw) >= len(content) {
			t.Errorf("Expected compressed blob smaller than %d bytes, got %d", len(content), len(raw))
		}
	})
}

func TestS3Storage(t *testing.T) {
	server := httptest.NewServer(&fakeS3{objects: make(map[string][]byte)})
	defer server.Close()

	s, err := NewS3Storage(context.Background(), "key", "secret", server.URL, "revisions")
	if err != nil {
		t.Fatalf(errUnexpected, err)
	}

	storageRoundTrip(t, s)
}
