package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateDraftName validates a draft name before it is used as a storage key.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateDraftName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "draft name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "draft name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "draft name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "draft name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "draft name cannot start with a dot")
	}

	return nil
}

// imageNameRegex matches OS image names such as "cirros", "ubuntu-22.04" or
// "debian_12:latest".
var imageNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateImageName validates a symbolic OS image name. The set of images is
// owned by the provisioning side, so only the shape is checked here.
func ValidateImageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "image name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "image name too long (max 64 characters)")
	}
	if !imageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid image name: %q", name)
	}
	return nil
}

// ValidateURL validates a Slice Manager endpoint URL.
// It ensures the URL parses and uses a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}
