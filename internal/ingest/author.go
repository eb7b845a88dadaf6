package ingest

import (
	"net/url"
	"strings"
	"time"
	"unicode"

	"inkboard/internal/models"
)

// SourceAuthor synthesizes the deterministic pseudo-account attributed to
// content from an external provider. It is a pure function of the display
// name and is never stored in any user-account subsystem.
func SourceAuthor(displayName string) models.User {
	slug := slugify(displayName)
	if slug == "" {
		slug = "unknown"
	}
	id := "source-" + slug

	return models.User{
		ID:          id,
		Email:       id + "@inkboard.eu",
		Username:    id,
		DisplayName: displayName,
		AvatarURL:   "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(displayName),
		Role:        "USER",
		IsVerified:  true,
		IsSuspended: false,
		CreatedAt:   time.Now().UTC(),
	}
}

// slugify lowercases the name and collapses every run of non-alphanumerics
// into a single hyphen, trimming leading and trailing hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) && r <= unicode.MaxASCII || unicode.IsDigit(r) && r <= unicode.MaxASCII {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
