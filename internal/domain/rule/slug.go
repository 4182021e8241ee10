package rule

import "strings"

// NormalizeSlug converts a display name or loosely formatted identifier into
// the slug convention used across rules, ledger entries and order items:
// lowercase, words joined by single hyphens. The mapping is deterministic so
// that order lines and catalog rules always agree on the join key.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // swallow leading separators
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
