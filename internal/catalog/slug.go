package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/karadag/storefront/internal/domain"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe alias: Turkish-aware lowercasing, diacritics
// stripped (ğ→g, ş→s, ç→c ...), runs of other characters collapsed to "-".
func Slugify(s string) string {
	s = domain.FoldText(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
