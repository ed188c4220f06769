// Package gcs stores documents as Google Cloud Storage objects.
package gcs

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	docstorage "github.com/bcnelson/pairstore/internal/storage"
)

var _ docstorage.Document = &Bucket{}

// Bucket stores each document as an object named by its locator.
type Bucket struct {
	client *storage.Client
	name   string
}

// NewBucket connects with application default credentials.
func NewBucket(ctx context.Context, name string) (*Bucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return &Bucket{client: client, name: name}, nil
}

// Close releases the storage client.
func (b *Bucket) Close() error {
	return b.client.Close()
}

// ReadRaw fetches the object. A missing object reads as empty.
func (b *Bucket) ReadRaw(ctx context.Context, locator string) ([]byte, error) {
	r, err := b.client.Bucket(b.name).Object(locator).NewReader(ctx)
	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("new reader: %w", err)
	}
	defer func() { _ = r.Close() }()

	byt, err := docstorage.ReadLimited(r)
	if err != nil {
		return nil, fmt.Errorf("read all: %w", err)
	}
	return byt, nil
}

// WriteRaw replaces the object.
func (b *Bucket) WriteRaw(ctx context.Context, locator string, data []byte) error {
	w := b.client.Bucket(b.name).Object(locator).NewWriter(ctx)
	w.ContentType = "application/json"

	var closed bool
	defer func() {
		if !closed {
			_ = w.Close()
		}
	}()
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	closed = true
	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
