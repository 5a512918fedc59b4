package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForExtension(t *testing.T) {
	assert.Equal(t, "image/jpeg", TypeForExtension("IMG_1234.JPG"))
	assert.Equal(t, "image/jpeg", TypeForExtension("photo.jpeg"))
	assert.Equal(t, "video/quicktime", TypeForExtension("IMG_5678.MOV"))
	assert.Equal(t, "video/mp4", TypeForExtension("clip.m4v"))
	assert.Equal(t, "image/heic", TypeForExtension("IMG_0001.HEIC"))
	assert.Equal(t, "", TypeForExtension("document.pdf"))
	assert.Equal(t, "", TypeForExtension("noextension"))
}

func TestIsUnreliableContentType(t *testing.T) {
	assert.True(t, IsUnreliableContentType(""))
	assert.True(t, IsUnreliableContentType("application/octet-stream"))
	assert.True(t, IsUnreliableContentType("binary/octet-stream"))
	assert.True(t, IsUnreliableContentType("video/quicktime"))
	assert.True(t, IsUnreliableContentType("Application/Octet-Stream"))
	assert.False(t, IsUnreliableContentType("image/jpeg"))
	assert.False(t, IsUnreliableContentType("video/mp4"))
}

func TestCorrectContentType(t *testing.T) {
	// Reliable declared types are kept
	assert.Equal(t, "image/png", CorrectContentType("image/png", "shot.jpg"))

	// Unreliable declared types defer to the extension
	assert.Equal(t, "image/jpeg", CorrectContentType("application/octet-stream", "IMG_1234.jpg"))
	assert.Equal(t, "video/mp4", CorrectContentType("", "VID_20240101_120000.mp4"))

	// video/quicktime from a browser is only trusted when the extension agrees
	assert.Equal(t, "video/quicktime", CorrectContentType("video/quicktime", "IMG_5678.MOV"))
	assert.Equal(t, "video/mp4", CorrectContentType("video/quicktime", "clip.mp4"))

	// Unknown extension falls back to the declared type, normalized
	assert.Equal(t, "application/octet-stream", CorrectContentType("application/octet-stream", "mystery.bin"))
	assert.Equal(t, "image/jpeg", CorrectContentType("Image/JPEG; charset=utf-8", "x.unknown"))
}

func TestImageVideoClassification(t *testing.T) {
	assert.True(t, IsImageType("image/jpeg"))
	assert.True(t, IsVideoType("video/x-matroska"))
	assert.False(t, IsImageType("video/mp4"))
	assert.False(t, IsVideoType("image/png"))
}
