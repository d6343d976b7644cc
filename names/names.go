package names

import (
	"strings"
	"unicode"

	"github.com/trailimage/trailmap/conceptual"
)

// Slug normalizes a post title or slug to lower case words joined by
// hyphens. Anything other than letters and digits separates words.
func Slug(s string) conceptual.PostSlug {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return conceptual.PostSlug(b.String())
}
