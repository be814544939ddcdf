package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// instanceRegex matches bare hostnames such as "eu.leanix.net" or
// "demo-eu-1.leanix.net:8443".
var instanceRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)*(:[0-9]{1,5})?$`)

// ValidateInstance validates a workspace instance hostname.
// The instance is interpolated into request URLs, so schemes, paths and
// credentials are rejected.
func ValidateInstance(instance string) error {
	if instance == "" {
		return New(ErrCodeInvalidInstance, "instance cannot be empty")
	}
	if len(instance) > 253 {
		return New(ErrCodeInvalidInstance, "instance too long (max 253 characters)")
	}
	if strings.Contains(instance, "://") {
		return New(ErrCodeInvalidInstance, "instance must be a hostname, not a URL: %q", instance)
	}
	if !instanceRegex.MatchString(instance) {
		return New(ErrCodeInvalidInstance, "invalid instance hostname: %q", instance)
	}
	return nil
}

// ValidateBookmarkName validates a bookmark name before it is sent to the API.
//
// Validation rules:
//   - Name cannot be empty or whitespace only
//   - Maximum length of 256 characters
//   - No control characters
func ValidateBookmarkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "bookmark name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "bookmark name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "bookmark name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
