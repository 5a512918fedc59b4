package validate

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gatherpics/media-ingest/common/rcontext"
	"github.com/gatherpics/media-ingest/util"
)

// allowedTypes is the explicit allow-list of ingestable categories. Anything
// that can't be resolved to one of these through the declared type, the
// extension, or content sniffing is rejected.
var allowedTypes = map[string]bool{
	"image/jpeg":       true,
	"image/png":        true,
	"image/gif":        true,
	"image/webp":       true,
	"image/heic":       true,
	"image/heif":       true,
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-matroska": true,
	"video/3gpp":       true,
	"video/x-msvideo":  true,
}

type Result struct {
	Valid       bool
	ContentType string
	IsVideo     bool
	Errors      []string
	Warnings    []string
}

// Check classifies a candidate file against the allow-list. The extension is
// authoritative whenever the declared type is empty or known-unreliable
// (mobile browsers misreport container formats); content sniffing is the last
// resort before rejection.
func Check(ctx rcontext.RequestContext, fileName string, declaredType string, size int64, content io.ReadSeeker) Result {
	result := Result{Errors: make([]string, 0), Warnings: make([]string, 0)}

	contentType := util.CorrectContentType(declaredType, fileName)
	if !allowedTypes[contentType] {
		// The declared type and extension both failed us - sniff the stream
		if content != nil {
			sniffed, err := util.DetectMimeType(content)
			if err != nil {
				ctx.Log.Warn("Error sniffing content type: ", err)
			} else if allowedTypes[sniffed] {
				result.Warnings = append(result.Warnings, fmt.Sprintf("type %q resolved by content sniffing (declared %q)", sniffed, declaredType))
				contentType = sniffed
			}
		}
	}

	if !allowedTypes[contentType] {
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported file type %q for %q - only photos and videos can be uploaded", declaredType, fileName))
		return result
	}

	if minSize := ctx.Config.Uploads.MinSizeBytes; minSize > 0 && size < minSize {
		result.Errors = append(result.Errors, fmt.Sprintf("file is too small (%s) - it may be corrupted", humanize.Bytes(uint64(size))))
		return result
	}

	result.Valid = true
	result.ContentType = contentType
	result.IsVideo = util.IsVideoType(contentType)
	return result
}
