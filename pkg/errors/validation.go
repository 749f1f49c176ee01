package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// idRegex matches catalog identifiers: lowercase letters, digits, and hyphens.
var idRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// componentIDRegex matches component identifiers such as "base" or "step1".
var componentIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// validateIdentifier applies the checks shared by every catalog identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 128 characters
//
// Identifiers end up in file names (file store) and URL paths (API), so they
// must never be able to escape their directory.
func validateIdentifier(code Code, kind, id string) error {
	if id == "" {
		return New(code, "%s id is required", kind)
	}
	if len(id) > 128 {
		return New(code, "%s id too long (max 128 characters)", kind)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(code, "%s id contains invalid control characters", kind)
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(code, "%s id contains invalid characters: %q", kind, pattern)
		}
	}
	return nil
}

// ValidateModelID validates a model identifier.
func ValidateModelID(id string) error {
	if err := validateIdentifier(ErrCodeInvalidModel, "model", id); err != nil {
		return err
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidModel, "model id must contain only lowercase letters, numbers, and hyphens: %q", id)
	}
	return nil
}

// ValidateCategoryID validates a category identifier.
func ValidateCategoryID(id string) error {
	if err := validateIdentifier(ErrCodeInvalidCategory, "category", id); err != nil {
		return err
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidCategory, "Category ID must contain only lowercase letters, numbers, and hyphens")
	}
	return nil
}

// ValidateTextureID validates a texture identifier.
func ValidateTextureID(id string) error {
	if err := validateIdentifier(ErrCodeInvalidTexture, "texture", id); err != nil {
		return err
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidTexture, "invalid texture id: %q", id)
	}
	return nil
}

// ValidateComponentID validates a component identifier within a model.
func ValidateComponentID(id string) error {
	if err := validateIdentifier(ErrCodeInvalidSettings, "component", id); err != nil {
		return err
	}
	if !componentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidSettings, "invalid component id: %q", id)
	}
	return nil
}

// ValidateMultiplier validates the global array multiplier entered by a user.
// The layout engine itself never validates; this is the caller-side check.
func ValidateMultiplier(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return New(ErrCodeInvalidSettings, "array multiplier must be a finite number")
	}
	if m <= 0 {
		return New(ErrCodeInvalidSettings, "array multiplier must be greater than zero, got %g", m)
	}
	return nil
}

// ValidateCount validates a component repeat count entered by a user.
func ValidateCount(component string, count int) error {
	if count < 1 {
		return New(ErrCodeInvalidSettings, "count for %q must be at least 1, got %d", component, count)
	}
	return nil
}
