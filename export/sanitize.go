package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxEntryNameLen = 20

// foldDiacritics strips combining marks so accented personalization values
// keep their letters instead of degenerating to underscores.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// entryName derives a zip entry stem from a personalization value: fold
// diacritics, replace anything outside [a-zA-Z0-9] with '_' and truncate.
func entryName(value string) string {
	folded, _, err := transform.String(foldDiacritics, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	name := b.String()
	if len(name) > maxEntryNameLen {
		name = name[:maxEntryNameLen]
	}
	return name
}

// archiveName derives the zip filename from a campaign title: whitespace
// becomes underscores, everything else is kept as-is.
func archiveName(title string) string {
	return strings.Join(strings.Fields(title), "_") + "_batch.zip"
}
