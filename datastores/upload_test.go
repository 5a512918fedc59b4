package datastores

import (
	"testing"
	"time"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/stretchr/testify/assert"
)

func TestDirectUploadTimeoutFloor(t *testing.T) {
	conf := config.DirectTimeoutConfig{FloorSeconds: 30, BytesPerSecond: 131072}

	// Tiny files get the floor
	assert.Equal(t, 30*time.Second, DirectUploadTimeout(conf, 1024))

	// Big files get a deadline that scales with their size
	assert.Equal(t, 800*time.Second, DirectUploadTimeout(conf, 131072*800))
}

func TestDirectUploadTimeoutDefaults(t *testing.T) {
	// Zero config still yields a sane floor
	assert.Equal(t, 30*time.Second, DirectUploadTimeout(config.DirectTimeoutConfig{}, 10485760))
}

func TestHasListedKind(t *testing.T) {
	assert.True(t, HasListedKind([]string{"gallery_media"}, GalleryMediaKind))
	assert.True(t, HasListedKind([]string{"all"}, BackupsKind))
	assert.False(t, HasListedKind([]string{"gallery_media"}, BackupsKind))
	assert.False(t, HasListedKind([]string{}, GalleryMediaKind))
}
