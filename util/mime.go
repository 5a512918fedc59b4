package util

import (
	"path/filepath"
	"strings"
)

// extensionTypes is the single authoritative extension-to-content-type
// mapping. Both the pre-upload content-type assignment and the persisted
// media record go through it so the two can never disagree.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".qt":   "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".3gp":  "video/3gpp",
	".avi":  "video/x-msvideo",
}

// TypeForExtension returns the canonical content type for a filename's
// extension, or an empty string when the extension is unknown.
func TypeForExtension(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return extensionTypes[ext]
}

func IsImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func IsVideoType(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}

// IsUnreliableContentType flags declared types that mobile browsers are known
// to misreport. Some clients send video/quicktime for every video container,
// and others send nothing or a generic octet-stream - in all of these cases
// the filename extension is the better signal.
func IsUnreliableContentType(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "", "application/octet-stream", "binary/octet-stream", "video/quicktime":
		return true
	}
	return false
}

// CorrectContentType resolves the content type to record for a file. The
// extension wins whenever the declared type is unreliable; otherwise the
// declared type is kept as-is.
func CorrectContentType(declared string, fileName string) string {
	if IsUnreliableContentType(declared) {
		if byExt := TypeForExtension(fileName); byExt != "" {
			return byExt
		}
	}
	declared = strings.Split(declared, ";")[0]
	return strings.ToLower(strings.TrimSpace(declared))
}
