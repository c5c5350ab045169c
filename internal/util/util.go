// Package util provides content hashing and identifier helpers.
package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

func NewID() string {
	return uuid.New().String()
}

// NewToken returns a random bearer token.
func NewToken() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}

// HasExtension reports whether filename ends in one of extensions, compared
// case-insensitively. An empty list accepts any file.
func HasExtension(filename string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range extensions {
		if strings.TrimPrefix(strings.ToLower(strings.TrimSpace(allowed)), ".") == ext {
			return true
		}
	}
	return false
}

func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
