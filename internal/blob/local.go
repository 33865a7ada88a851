package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore keeps images as files under a directory. References are bare
// file names so the directory can move without invalidating stored rows.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Put(_ context.Context, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("img_%s.%s", uuid.NewString(), ExtensionFor(contentType))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (s *LocalStore) Get(_ context.Context, ref string) ([]byte, string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	contentType := DetectImageType(data)
	if contentType == "" {
		return nil, "", ErrUnsupportedFormat
	}
	return data, contentType, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}
