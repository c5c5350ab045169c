// Package storage keeps the bytes of uploaded revision files.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/debemdeboas/editorial/internal/util/compression"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("blob not found")

var storageLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storageLogger = l
}

type Storage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Compressed stores blobs through a Compressor.
type Compressed struct {
	Storage
	Compressor compression.Compressor
}

func NewCompressed(s Storage, c compression.Compressor) *Compressed {
	return &Compressed{Storage: s, Compressor: c}
}

func (c *Compressed) Put(ctx context.Context, key string, data []byte) error {
	compressed, err := c.Compressor.Compress(data)
	if err != nil {
		return fmt.Errorf("error compressing %s: %w", key, err)
	}

	storageLogger.Debug().
		Str("key", key).
		Int("size", len(data)).
		Int("stored_size", len(compressed)).
		Msg("Storing blob")

	return c.Storage.Put(ctx, key, compressed)
}

func (c *Compressed) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.Storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	content, err := c.Compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("error decompressing %s: %w", key, err)
	}
	return content, nil
}
