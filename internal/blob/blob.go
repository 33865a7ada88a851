// Package blob stores uploaded images behind an opaque reference. The
// database only ever sees the reference; listings read the bytes back to
// serve them as data URIs.
package blob

import (
	"context"
	"errors"
)

var (
	ErrInvalidData       = errors.New("invalid base64 data")
	ErrUnsupportedFormat = errors.New("invalid file format")
	ErrTooLarge          = errors.New("file too large")
	ErrNotFound          = errors.New("blob not found")
)

// Store holds image bytes addressed by reference. Two uploads of identical
// bytes produce two distinct references.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, string, error)
	Delete(ctx context.Context, ref string) error
}
