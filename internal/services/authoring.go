package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a display name into a URL-safe slug: lowercase ASCII
// letters and digits separated by single hyphens, with no hyphen at either
// end. Accents are stripped before the non-alphanumeric runs collapse.
func Slugify(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}
	stripped = strings.ReplaceAll(strings.ToLower(stripped), "@", " at ")

	var b strings.Builder
	b.Grow(len(stripped))
	pendingHyphen := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// IsSlug reports whether s is already in slug form.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}

// SuggestVisibility is the authoring form's rule for the visibility toggle
// when stock changes: a product with nothing in stock is hidden. The store
// never applies it on its own.
func SuggestVisibility(stock int) bool {
	return stock > 0
}
