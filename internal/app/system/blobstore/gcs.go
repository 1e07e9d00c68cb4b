package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket. Objects are served
// from publicURL (a CDN or https://storage.googleapis.com/<bucket>).
type GCS struct {
	client    *storage.Client
	bucket    *storage.BucketHandle
	publicURL string
}

// NewGCS opens a client for bucket. credentialsFile may be empty to use
// application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile, publicURL string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCS{
		client:    client,
		bucket:    client.Bucket(bucket),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) Put(ctx context.Context, p string, r io.Reader, contentType string) error {
	w := g.bucket.Object(p).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (g *GCS) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	rc, err := g.bucket.Object(p).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return rc, err
}

func (g *GCS) Delete(ctx context.Context, p string) error {
	err := g.bucket.Object(p).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return err
}

func (g *GCS) URL(_ context.Context, p string) (string, error) {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return g.publicURL + "/" + strings.Join(segs, "/"), nil
}
