package util

import (
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMimeType sniffs the content type from the stream's leading bytes,
// restoring the read position afterwards.
func DetectMimeType(r io.ReadSeeker) (string, error) {
	current, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", err
	}
	restore := func() error {
		if _, err2 := r.Seek(current, io.SeekStart); err2 != nil {
			return err2
		}
		return nil
	}

	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	kind, err := mimetype.DetectReader(r)
	if err != nil {
		_ = restore()
		return "", err
	}

	contentType := strings.Split(kind.String(), ";")[0]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return contentType, restore()
}
