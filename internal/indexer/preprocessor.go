package indexer

import (
	"strings"
	"unicode"
)

// TidyLabel cleans a short metadata string such as a title or tag: control and
// format characters (zero-width joiners, stray escapes from exports) are removed and
// whitespace runs collapse to one space. Message bodies are never tidied.
func TidyLabel(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		default:
			return r
		}
	}, text)
	return strings.Join(strings.Fields(cleaned), " ")
}
