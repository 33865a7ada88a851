package blob

import (
	"bytes"
	"encoding/base64"
	"strings"
)

// MaxImageBytes caps the decoded upload size at 5 MiB.
const MaxImageBytes = 5 * 1024 * 1024

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ParseImage decodes an uploaded image, either a data:<mime>;base64,<payload>
// URI or raw base64. Raw payloads get their type sniffed from magic bytes.
// Only JPEG, PNG, and WebP are accepted.
func ParseImage(input string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	if strings.HasPrefix(input, "data:") {
		rest := strings.TrimPrefix(input, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", ErrInvalidData
		}
		contentType = rest[:semi]
		data, err = base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
		if err != nil {
			return nil, "", ErrInvalidData
		}
	} else {
		data, err = base64.StdEncoding.DecodeString(input)
		if err != nil {
			return nil, "", ErrInvalidData
		}
		contentType = DetectImageType(data)
		if contentType == "" {
			return nil, "", ErrUnsupportedFormat
		}
	}
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, "", ErrUnsupportedFormat
	}
	if len(data) > MaxImageBytes {
		return nil, "", ErrTooLarge
	}
	return data, contentType, nil
}

// DetectImageType sniffs the content type from magic bytes. Returns "" when
// the data is not one of the accepted formats.
func DetectImageType(data []byte) string {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return "image/png"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	}
	return ""
}

// ExtensionFor maps an accepted content type to its file extension.
func ExtensionFor(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	return "bin"
}

// DataURI re-encodes stored bytes for the wire.
func DataURI(data []byte, contentType string) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
