package limits

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gatherpics/media-ingest/common/rcontext"
)

type Status string

const (
	StatusAccepted Status = "accepted"
	StatusWarning  Status = "warning"
	StatusRejected Status = "rejected"
)

// Decision is the per-file size policy, computed fresh for every candidate
// and never persisted. Two ceilings exist at once: the recommended ceiling
// marks where we start warning, and the allowed ceiling is where the upload
// must not proceed. Both are clamped by the global hard ceiling.
type Decision struct {
	AllowedMaxBytes     int64
	RecommendedMaxBytes int64
	Reason              string
}

func (d Decision) StatusFor(actualBytes int64) Status {
	if actualBytes > d.AllowedMaxBytes {
		return StatusRejected
	}
	if actualBytes > d.RecommendedMaxBytes {
		return StatusWarning
	}
	return StatusAccepted
}

// phoneNamePattern matches the default camera-roll naming of the major mobile
// platforms (IMG_1234.MOV, VID_20240101_120000.mp4, PXL_..., etc).
var phoneNamePattern = regexp.MustCompile(`(?i)^(img|vid|mov|pxl|mvimg)[_-]\d`)

// LooksPhoneRecorded guesses whether a video came straight off a smartphone
// camera. Phone clips legitimately run long, so they earn a wider recommended
// ceiling than an arbitrary (possibly re-encoded or professional) file.
func LooksPhoneRecorded(fileName string, contentType string) bool {
	if phoneNamePattern.MatchString(fileName) {
		return true
	}
	switch strings.ToLower(contentType) {
	case "video/quicktime", "video/3gpp":
		// Containers essentially only produced by phone cameras in this context
		return true
	}
	return false
}

// Decide derives the size ceilings for one candidate from its category and
// origin heuristics.
func Decide(ctx rcontext.RequestContext, fileName string, contentType string, isVideo bool) Decision {
	conf := ctx.Config.Uploads

	var allowed, recommended int64
	var reason string
	if isVideo {
		allowed = conf.Videos.AllowedMaxBytes
		recommended = conf.Videos.RecommendedMaxBytes
		reason = "video upload"
		if LooksPhoneRecorded(fileName, contentType) && conf.Videos.PhoneRecommendedMaxBytes > recommended {
			recommended = conf.Videos.PhoneRecommendedMaxBytes
			reason = "phone-recorded video upload"
		}
	} else {
		allowed = conf.Images.AllowedMaxBytes
		recommended = conf.Images.RecommendedMaxBytes
		reason = "photo upload"
	}

	// The global hard ceiling binds regardless of category
	if conf.MaxSizeBytes > 0 && allowed > conf.MaxSizeBytes {
		allowed = conf.MaxSizeBytes
	}
	if recommended > allowed {
		recommended = allowed
	}

	return Decision{
		AllowedMaxBytes:     allowed,
		RecommendedMaxBytes: recommended,
		Reason: fmt.Sprintf("%s: up to %s accepted, %s recommended",
			reason, humanize.Bytes(uint64(allowed)), humanize.Bytes(uint64(recommended))),
	}
}
