package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Local stores objects on an afero filesystem rooted at a directory and
// serves them under a URL prefix. Tests use an in-memory filesystem.
type Local struct {
	fs      afero.Fs
	baseURL string
}

// NewLocal returns a Local store rooted at dir on the OS filesystem.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{fs: afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// NewMemory returns a Local store backed by memory.
func NewMemory(baseURL string) *Local {
	return &Local{fs: afero.NewMemMapFs(), baseURL: strings.TrimRight(baseURL, "/")}
}

// FS exposes the underlying filesystem (for serving files over HTTP).
func (l *Local) FS() afero.Fs { return l.fs }

func (l *Local) Put(_ context.Context, p string, r io.Reader, _ string) error {
	p, err := clean(p)
	if err != nil {
		return err
	}
	if err := l.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := l.fs.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (l *Local) Open(_ context.Context, p string) (io.ReadCloser, error) {
	p, err := clean(p)
	if err != nil {
		return nil, err
	}
	f, err := l.fs.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return f, err
}

func (l *Local) Delete(_ context.Context, p string) error {
	p, err := clean(p)
	if err != nil {
		return err
	}
	if _, err := l.fs.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return l.fs.Remove(p)
}

func (l *Local) URL(_ context.Context, p string) (string, error) {
	p, err := clean(p)
	if err != nil {
		return "", err
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return l.baseURL + "/" + strings.Join(segs, "/"), nil
}

func clean(p string) (string, error) {
	c := path.Clean("/" + p)[1:]
	if c == "" || c != strings.TrimPrefix(p, "/") {
		return "", fmt.Errorf("invalid blob path %q", p)
	}
	return c, nil
}
