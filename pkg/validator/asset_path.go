package validator

import (
	"errors"
	"regexp"
	"strings"
)

// MaxAssetPathLength bounds paths accepted from callers.
const MaxAssetPathLength = 512

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrPathTooLong = errors.New("path too long")
	ErrInvalidPath = errors.New("path contains invalid characters")
	ErrPathEscapes = errors.New("path leaves the public directory")
)

// assetPathRegexp allows letters, digits and the punctuation common in
// asset file names.
var assetPathRegexp = regexp.MustCompile(`^[A-Za-z0-9._~@+=,() /-]+$`)

// ValidateAssetPath checks a public-directory relative path received from
// a caller. A leading slash is allowed; ".." segments are not.
func ValidateAssetPath(p string) error {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return ErrEmptyPath
	}
	if len(trimmed) > MaxAssetPathLength {
		return ErrPathTooLong
	}
	if !assetPathRegexp.MatchString(trimmed) {
		return ErrInvalidPath
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return ErrPathEscapes
		}
	}
	return nil
}

// SanitizeAssetPath trims whitespace and validates the path.
// Returns the sanitized path and a boolean indicating if it's valid.
func SanitizeAssetPath(p string) (string, bool) {
	trimmed := strings.TrimSpace(p)
	return trimmed, ValidateAssetPath(trimmed) == nil
}
