package scanning

import (
	"path/filepath"
	"strings"
)

// InferMIME maps a file name or path to a media type by extension,
// case-insensitively. It is a best-effort hint, not a validator: unknown
// extensions get the generic binary type.
func InferMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func makeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}
