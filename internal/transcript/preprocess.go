package transcript

import (
	"strings"
	"unicode/utf8"
)

// cjkMergePunctuation is the set of standalone CJK punctuation tokens that
// should be folded into the preceding word during preprocessing.
var cjkMergePunctuation = map[rune]struct{}{
	'。': {}, // 。
	'？': {}, // ？
	'！': {}, // ！
	'」': {}, // 」
	'「': {}, // 「
	'、': {}, // 、
	'・': {}, // ・
	'，': {}, // ，
}

// Clean normalizes provider quirks in place: empty and whitespace-only
// tokens disappear, and standalone CJK punctuation tokens merge into the
// preceding word so that every remaining Word carries speech content.
func Clean(t *Transcript) {
	for i := range t.Utterances {
		t.Utterances[i].Words = cleanWords(t.Utterances[i].Words)
	}
}

func cleanWords(raw []Word) []Word {
	var words []Word

	for _, w := range raw {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}

		runes := []rune(w.Word)
		if len(runes) == 1 {
			if _, ok := cjkMergePunctuation[runes[0]]; ok && len(words) > 0 {
				prev := &words[len(words)-1]
				lastRune, _ := utf8.DecodeLastRuneInString(prev.Word)
				if _, isCJKPunct := cjkMergePunctuation[lastRune]; !isCJKPunct {
					prev.Word += w.Word
					if w.End > prev.End {
						prev.End = w.End
					}
					continue
				}
			}
		}

		words = append(words, w)
	}

	return words
}
