package readers

import (
	"bytes"
	"io"
	"testing"

	"github.com/gatherpics/media-ingest/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitReaderUnderLimit(t *testing.T) {
	src := io.NopCloser(bytes.NewReader(bytes.Repeat([]byte{1}, 100)))
	limited := LimitReaderWithOverrunError(src, 200)

	b, err := io.ReadAll(limited)
	require.NoError(t, err)
	assert.Len(t, b, 100)
}

func TestLimitReaderExactLimit(t *testing.T) {
	src := io.NopCloser(bytes.NewReader(bytes.Repeat([]byte{1}, 200)))
	limited := LimitReaderWithOverrunError(src, 200)

	b, err := io.ReadAll(limited)
	require.NoError(t, err)
	assert.Len(t, b, 200)
}

func TestLimitReaderOverrun(t *testing.T) {
	src := io.NopCloser(bytes.NewReader(bytes.Repeat([]byte{1}, 300)))
	limited := LimitReaderWithOverrunError(src, 200)

	_, err := io.ReadAll(limited)
	assert.ErrorIs(t, err, common.ErrMediaTooLarge)
}
