// Package storage writes uploaded files to local disk and serves them back
// by /uploads URLs.
package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mirin-backend/internal/platform/apierr"
)

type Stored struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type Store struct {
	dir string
}

func New(dir string) *Store { return &Store{dir: dir} }

var extByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// PutBase64 decodes a base64 payload (raw or data URL) and stores it under
// folder with a generated key.
func (s *Store) PutBase64(data, folder string) (*Stored, error) {
	contentType := "application/octet-stream"
	content := data

	if strings.HasPrefix(data, "data:") {
		rest := strings.TrimPrefix(data, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, apierr.ErrInvalid("malformed data url")
		}
		contentType = rest[:semi]
		content = rest[semi+len(";base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, apierr.ErrInvalid("invalid base64 payload")
	}

	ext, ok := extByContentType[contentType]
	if !ok {
		ext = ".bin"
	}

	folder = sanitize(folder)
	name := uuid.NewString() + ext

	dir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	key := name
	if folder != "" {
		key = folder + "/" + name
	}
	return &Stored{Key: key, URL: "/uploads/" + key}, nil
}

func (s *Store) Delete(key string) error {
	key = strings.TrimLeft(key, "/")
	path := filepath.Join(s.dir, filepath.FromSlash(sanitizePath(key)))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func sanitizePath(s string) string {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		if p == ".." || p == "." {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, "/")
}
