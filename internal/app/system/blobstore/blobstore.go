// Package blobstore stores binary assets (images, documents) addressed by
// slash-separated paths and resolves them to download URLs.
package blobstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/limits"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/google/uuid"
)

// ErrNotFound is returned (possibly wrapped) when an object does not exist.
var ErrNotFound = errors.New("blob not found")

// MaxDataURIBytes bounds the decoded size of inline images.
const MaxDataURIBytes = limits.MaxDataURIBytes

// Store is a remote or local object store.
type Store interface {
	// Put writes the object at p, replacing any existing object.
	Put(ctx context.Context, p string, r io.Reader, contentType string) error
	// Open returns a reader for the object at p.
	Open(ctx context.Context, p string) (io.ReadCloser, error)
	// Delete removes the object at p. A missing object yields ErrNotFound.
	Delete(ctx context.Context, p string) error
	// URL resolves the download URL of the object at p.
	URL(ctx context.Context, p string) (string, error)
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// PermanentPath builds the storage path of a file promoted into a
// collection: <collection>/<unix-millis>_<sanitized name>.
func PermanentPath(collection, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s", collection, now.UnixMilli(), SanitizeFilename(filename))
}

// TempPath builds a unique temporary upload path.
func TempPath(filename string) string {
	return schema.TempPrefix + uuid.NewString() + "/" + SanitizeFilename(filename)
}

// Promote copies the temporary upload at tmp into the collection namespace,
// deletes the temporary object and returns the new path and its URL.
func Promote(ctx context.Context, s Store, tmp, collection string, now time.Time) (string, string, error) {
	if !schema.IsTempPath(tmp) {
		return "", "", fmt.Errorf("not a temporary upload path: %q", tmp)
	}
	src, err := s.Open(ctx, tmp)
	if err != nil {
		return "", "", fmt.Errorf("open temporary upload: %w", err)
	}
	defer src.Close()

	dst := PermanentPath(collection, path.Base(tmp), now)
	if err := s.Put(ctx, dst, src, mime.TypeByExtension(path.Ext(tmp))); err != nil {
		return "", "", fmt.Errorf("store promoted upload: %w", err)
	}
	if err := s.Delete(ctx, tmp); err != nil && !IsNotFound(err) {
		return "", "", fmt.Errorf("delete temporary upload: %w", err)
	}
	u, err := s.URL(ctx, dst)
	if err != nil {
		return "", "", err
	}
	return dst, u, nil
}

// IngestDataURI decodes an inline base64 image, stores it in the collection
// namespace and returns the new path and its URL.
func IngestDataURI(ctx context.Context, s Store, dataURI, collection string, now time.Time) (string, string, error) {
	contentType, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", "", err
	}
	ext := ".bin"
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	dst := PermanentPath(collection, "inline-"+uuid.NewString()[:8]+ext, now)
	if err := s.Put(ctx, dst, bytes.NewReader(data), contentType); err != nil {
		return "", "", fmt.Errorf("store inline image: %w", err)
	}
	u, err := s.URL(ctx, dst)
	if err != nil {
		return "", "", err
	}
	return dst, u, nil
}

// DecodeDataURI splits a data:<type>;base64,<payload> URI.
func DecodeDataURI(s string) (string, []byte, error) {
	if !schema.IsImageDataURI(s) {
		return "", nil, errors.New("not a base64 image data URI")
	}
	meta, payload, _ := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	contentType := strings.TrimSuffix(meta, ";base64")
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxDataURIBytes {
		return "", nil, fmt.Errorf("inline image exceeds %d bytes", MaxDataURIBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode inline image: %w", err)
	}
	return contentType, data, nil
}

// SanitizeFilename keeps the base name and replaces characters outside
// [A-Za-z0-9._-] with underscores.
func SanitizeFilename(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == "/" {
		return "file"
	}
	if len(result) > 100 {
		ext := path.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
