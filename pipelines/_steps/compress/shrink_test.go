package compress

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(conf config.MainConfig) rcontext.RequestContext {
	return rcontext.RequestContext{
		Context: context.Background(),
		Log:     logrus.WithField("test", "compress"),
		Config:  &conf,
	}
}

// noisyPng builds an incompressible-ish PNG so the size numbers are honest.
func noisyPng(t *testing.T, width int, height int) []byte {
	rng := rand.New(rand.NewSource(42))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestShrinkReencodesOversizedImage(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())
	original := noisyPng(t, 400, 300)

	shrunk, newType, err := Shrink(ctx, original, "image/png", int64(len(original)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", newType)
	assert.Less(t, len(shrunk), len(original))
}

func TestShrinkDownscalesPastPixelBound(t *testing.T) {
	conf := config.NewDefaultMainConfig()
	conf.Compression.MaxPixels = 10000 // force a downscale of the 400x300 input
	ctx := testContext(conf)
	original := noisyPng(t, 400, 300)

	shrunk, _, err := Shrink(ctx, original, "image/png", int64(len(original)))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(shrunk))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx()*img.Bounds().Dy(), 10000)
}

func TestShrinkRefusesVideos(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())

	_, _, err := Shrink(ctx, []byte("not an image"), "video/mp4", 1000)
	assert.Error(t, err)
}

func TestShrinkReturnsBestEffortWhenTargetUnreachable(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())
	original := noisyPng(t, 400, 300)

	// 10 bytes is unreachable - callers still get the best attempt back and
	// are expected to re-check the size themselves
	shrunk, newType, err := Shrink(ctx, original, "image/png", 10)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", newType)
	assert.Greater(t, len(shrunk), 10)
	assert.Less(t, len(shrunk), len(original))
}

func TestShrinkErrorsOnGarbageInput(t *testing.T) {
	ctx := testContext(config.NewDefaultMainConfig())

	_, _, err := Shrink(ctx, []byte{0x00, 0x01, 0x02}, "image/png", 1000)
	assert.Error(t, err)
}
