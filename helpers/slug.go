package helpers

import (
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"
)

const DefaultSlugMaxLen = 80

// GenerateSlug lower-cases s and collapses every run of non-alphanumerics into one "-".
func GenerateSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return cutToLen(strings.Trim(b.String(), "-"), DefaultSlugMaxLen)
}

func cutToLen(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.Trim(s[:n], "-")
}

// GenerateUniqueSlug slugifies base and appends -2, -3, ... until no row in table uses it.
// excludeID skips the row being renamed (0 on create).
func GenerateUniqueSlug(db *gorm.DB, table, column, base, fallback string, excludeID uint) (string, error) {
	slug := GenerateSlug(base)
	if slug == "" {
		slug = fallback
	}

	candidate := slug
	for i := 2; ; i++ {
		var count int64
		q := db.Table(table).Where(column+" = ?", candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if count == 0 {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		candidate = cutToLen(slug, DefaultSlugMaxLen-len(suffix)) + suffix
	}
}
