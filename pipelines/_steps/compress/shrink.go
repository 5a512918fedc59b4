package compress

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/util"
)

// Shrink attempts to bring an image under targetBytes by downscaling past a
// pixel bound and re-encoding as JPEG at stepped-down quality. It is strictly
// best-effort: callers fall back to the original bytes on any error, and must
// re-check the size of whatever comes back - success here does not guarantee
// the result is under the target.
func Shrink(ctx rcontext.RequestContext, data []byte, contentType string, targetBytes int64) ([]byte, string, error) {
	if !util.IsImageType(contentType) {
		return nil, "", errors.New("only images can be compressed")
	}
	if targetBytes <= 0 {
		return nil, "", errors.New("invalid compression target")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}

	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if maxPixels := ctx.Config.Compression.MaxPixels; maxPixels > 0 && pixels > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(pixels))
		newWidth := int(float64(bounds.Dx()) * scale)
		ctx.Log.Debugf("Downscaling %dx%d image to width %d", bounds.Dx(), bounds.Dy(), newWidth)
		img = imaging.Resize(img, newWidth, 0, imaging.Lanczos)
	}

	minQuality := ctx.Config.Compression.MinQuality
	if minQuality <= 0 {
		minQuality = 55
	}
	step := ctx.Config.Compression.StepQuality
	if step <= 0 {
		step = 10
	}

	var buf bytes.Buffer
	for quality := 85; quality >= minQuality; quality -= step {
		buf.Reset()
		if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, "", err
		}
		if int64(buf.Len()) <= targetBytes {
			ctx.Log.Debugf("Compressed %d bytes to %d at quality %d", len(data), buf.Len(), quality)
			return buf.Bytes(), "image/jpeg", nil
		}
	}

	// The floor-quality encode is still our best attempt; hand it back if it
	// at least improved on the original
	if int64(buf.Len()) > 0 && buf.Len() < len(data) {
		return buf.Bytes(), "image/jpeg", nil
	}

	return nil, "", fmt.Errorf("unable to compress below %d bytes", targetBytes)
}
