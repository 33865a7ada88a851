package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSStore keeps images in a Google Cloud Storage bucket. References are
// object names under images/.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	name := fmt.Sprintf("images/%s.%s", uuid.NewString(), ExtensionFor(contentType))
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func (s *GCSStore) Get(ctx context.Context, ref string) ([]byte, string, error) {
	r, err := s.client.Bucket(s.bucket).Object(ref).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	return data, r.Attrs.ContentType, nil
}

func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	err := s.client.Bucket(s.bucket).Object(ref).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
