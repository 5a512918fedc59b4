package pipeline_ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Candidate is one file queued for ingestion. Content must support seeking:
// the stream is read more than once (sniffing, hashing, upload, backup).
type Candidate struct {
	FileName     string
	DeclaredType string
	Size         int64
	Content      io.ReadSeeker
}

func (c *Candidate) Key() string {
	return CandidateKey(c.FileName, c.Size)
}

// sha256Of fingerprints the stream and rewinds it for the next consumer.
func sha256Of(content io.ReadSeeker) (string, error) {
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	hasher := sha256.New()
	if _, err := io.Copy(hasher, content); err != nil {
		return "", err
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
