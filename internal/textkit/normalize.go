package textkit

import (
	"strings"
	"unicode"
)

// Placeholder is the canonical rune every punctuation mark maps to during
// normalization. It is not a letter and not in the punctuation set, so
// normalization is idempotent and divergent punctuation between transcript
// and script still compares equal.
const Placeholder = '#'

// Normalize produces the comparable form of a text: whitespace runs collapse
// to sep (the language's canonical word separator), letters lowercase, and
// punctuation maps to Placeholder. Leading and trailing whitespace is
// dropped. The same function must be applied to both sides of a diff or the
// character offsets will not line up.
func Normalize(text, sep string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSep := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			// Embedded newlines and carriage returns land here too.
			if b.Len() > 0 {
				pendingSep = true
			}
			continue
		}
		if pendingSep {
			b.WriteString(sep)
			pendingSep = false
		}
		if IsPunctuation(r) {
			b.WriteRune(Placeholder)
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}
