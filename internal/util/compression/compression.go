// Package compression wraps the codecs used for stored file blobs.
package compression

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NoopCompressor stores data as-is.
type NoopCompressor struct{}

func (NoopCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (NoopCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// New returns the compressor registered under name. Unknown names fall back
// to no compression.
func New(name string) Compressor {
	switch name {
	case "zstd":
		return ZstdCompressor{}
	case "gzip":
		return GzipCompressor{}
	default:
		return NoopCompressor{}
	}
}
