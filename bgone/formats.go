package bgone

import (
	"path/filepath"
	"strings"
)

// OutputExt is the only format ever written; outputs always carry an
// alpha channel.
const OutputExt = ".png"

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// SupportedFormat reports whether path has one of the accepted input
// extensions (jpg, jpeg, png, webp), case-insensitively.
func SupportedFormat(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions lists the accepted extensions for user-facing
// messages.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".webp"}
}
