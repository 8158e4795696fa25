package common

import (
	"path/filepath"
	"strings"
)

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// IsImageFormat tells still images apart from capture devices.
func IsImageFormat(path string) bool {
	return ImageMIMEType(path) != ""
}

// ImageMIMEType guesses the MIME type of an image by its file extension. Returns an empty string for anything
// which doesn't look like an image.
func ImageMIMEType(path string) string {
	return imageMIMETypes[strings.ToLower(filepath.Ext(path))]
}
