package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// blueprintIDPattern matches store identifiers (UUIDs and short slugs).
var blueprintIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// maxFilename is the longest upload filename accepted.
const maxFilename = 255

// ValidateBlueprintID rejects identifiers that could escape a storage
// namespace or a URL path segment.
func ValidateBlueprintID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "blueprint id cannot be empty")
	}
	if !blueprintIDPattern.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid blueprint id: %q", id)
	}
	return nil
}

// ValidateFilename checks an upload filename: a visible basename without
// separators or control characters.
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	case len(name) > maxFilename:
		return New(ErrCodeInvalidPath, "filename too long (max %d characters)", maxFilename)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "filename contains control characters")
	case strings.ContainsAny(name, `/\`):
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	case strings.HasPrefix(name, "."):
		return New(ErrCodeInvalidPath, "filename cannot be a hidden file")
	}
	return nil
}

// ValidateURL checks a backend base URL: http or https with a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", raw)
	}
	return nil
}
