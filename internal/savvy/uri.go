package savvy

import (
	"regexp"
	"strings"
)

var trailingDigits = regexp.MustCompile(`\d+$`)

// WordIDFromURI extracts the trailing numeric id of a sign uri, e.g.
// "sign/HELLO/42" -> "42". The second return is false when the uri carries
// no trailing digits; such entries cannot be deduplicated and are skipped.
func WordIDFromURI(uri string) (string, bool) {
	id := trailingDigits.FindString(uri)
	if id == "" {
		return "", false
	}
	return id, true
}

// SentenceURI strips the listing prefix from a sentence uri so it can be
// appended to the detail path.
func SentenceURI(uri string) string {
	return strings.ReplaceAll(uri, "sentences/", "")
}
