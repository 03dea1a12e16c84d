// Package downloadfmt holds the filename-sanitization and naming
// helpers used by the download_from_link executor (the workflow
// assembler does not use them), grounded on the toolbox package's
// sanitizeSelector shape and the original implementation's
// make_safe_filename.
package downloadfmt

import (
	"regexp"
	"strconv"
	"strings"
)

var invalidFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeFilename replaces characters illegal on common filesystems
// with underscores.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	return invalidFilenameChars.ReplaceAllString(name, "_")
}

// BuildFilename constructs "{sanitized title}_{index}.{ext}".
func BuildFilename(title string, index int, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return SanitizeFilename(title) + "_" + strconv.Itoa(index) + "." + ext
}
