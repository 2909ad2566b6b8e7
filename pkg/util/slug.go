package util

import "regexp"

// Slugs are human-readable business keys used in public URLs: lowercase
// letters, digits and hyphens only.
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsValidSlug reports whether s is an acceptable business slug
func IsValidSlug(s string) bool {
	return s != "" && slugPattern.MatchString(s)
}
