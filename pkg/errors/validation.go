package errors

import (
	"strings"
	"unicode"
)

// maxSignatureLength bounds signature strings accepted from users.
const maxSignatureLength = 64

// ValidateSignatureString rejects empty or overlong signature strings and any
// character other than digits, '+', '/' and spaces. Grammar and denominator
// checks are left to the meter parser.
func ValidateSignatureString(s string) error {
	if strings.TrimSpace(s) == "" {
		return New(ErrCodeInvalidSignature, "time signature cannot be empty")
	}

	if len(s) > maxSignatureLength {
		return New(ErrCodeInvalidSignature, "time signature too long (max %d characters)", maxSignatureLength)
	}

	for _, r := range s {
		switch {
		case unicode.IsDigit(r), r == '+', r == '/', r == ' ':
		default:
			return New(ErrCodeInvalidSignature, "time signature contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateLevels checks a level-index selection against the depth cap.
// Negative indices and indices above maxIndex are rejected.
func ValidateLevels(levels []int, maxIndex int) error {
	for _, l := range levels {
		if l < 0 {
			return New(ErrCodeMalformedHierarchy, "level index %d is negative", l)
		}
		if l > maxIndex {
			return New(ErrCodeMalformedHierarchy, "%d is the maximum level depth supported, got %d", maxIndex, l)
		}
	}
	return nil
}

// ValidatePath validates a file path supplied for hierarchy or span input.
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
