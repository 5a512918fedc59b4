package validate

import (
	"bytes"
	"context"
	"testing"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testContext(conf config.MainConfig) rcontext.RequestContext {
	return rcontext.RequestContext{
		Context: context.Background(),
		Log:     logrus.WithField("test", "validate"),
		Config:  &conf,
	}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestCheckAcceptsDeclaredType(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())

	result := Check(ctx, "photo.jpg", "image/jpeg", 5000, nil)
	assert.True(t, result.Valid)
	assert.Equal(t, "image/jpeg", result.ContentType)
	assert.False(t, result.IsVideo)
	assert.Empty(t, result.Warnings)
}

func TestCheckResolvesUnreliableTypeFromExtension(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())

	// Mobile browsers routinely send octet-stream for camera roll files
	result := Check(ctx, "IMG_1234.HEIC", "application/octet-stream", 5000, nil)
	assert.True(t, result.Valid)
	assert.Equal(t, "image/heic", result.ContentType)

	result = Check(ctx, "VID_20240101_120000.mp4", "", 5000, nil)
	assert.True(t, result.Valid)
	assert.Equal(t, "video/mp4", result.ContentType)
	assert.True(t, result.IsVideo)
}

func TestCheckSniffsWhenDeclarationAndExtensionFail(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())

	content := bytes.NewReader(append(pngHeader, make([]byte, 200)...))
	result := Check(ctx, "download", "application/octet-stream", 5000, content)
	assert.True(t, result.Valid)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Len(t, result.Warnings, 1)
}

func TestCheckRejectsUnsupportedType(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())

	content := bytes.NewReader([]byte("just some text, definitely not media"))
	result := Check(ctx, "notes.txt", "text/plain", 5000, content)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestCheckRejectsTooSmallFile(t *testing.T) {
	conf := config.NewDefaultMainConfig()
	conf.Uploads.MinSizeBytes = 100
	ctx := testContext(conf)

	result := Check(ctx, "photo.jpg", "image/jpeg", 12, nil)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}
