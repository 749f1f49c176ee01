package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nonSlugRun  = regexp.MustCompile(`[^a-z0-9]+`)
	nonSlugChar = regexp.MustCompile(`[^a-z0-9]`)
	hyphenRun   = regexp.MustCompile(`-+`)
)

// slug lowercases name and collapses every run of other characters into a
// single hyphen, trimming hyphens at both ends.
func slug(name string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// GenerateModelID derives a unique model id from a display name, e.g.
// "Oak Stair" at t → "oak-stair-1700000000000".
func GenerateModelID(name string, now time.Time) string {
	return fmt.Sprintf("%s-%d", slug(name), now.UnixMilli())
}

// GenerateCategoryID derives a category id from a display name.
func GenerateCategoryID(name string) string {
	s := nonSlugChar.ReplaceAllString(strings.ToLower(name), "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.TrimSuffix(strings.TrimPrefix(s, "-"), "-")
}

// GenerateTextureID derives a custom texture id, e.g.
// "custom-wood-white-oak-1700000000000".
func GenerateTextureID(name string, category TextureCategory, now time.Time) string {
	return fmt.Sprintf("custom-%s-%s-%d", category, GenerateCategoryID(name), now.UnixMilli())
}
