package textkit

import (
	"strings"
	"unicode/utf8"
)

// Punctuation priority levels.
const (
	PriorityHigh   = 0
	PriorityMedium = 1
	PriorityLow    = 2
	PriorityNone   = -1
)

var highPriority = map[rune]struct{}{
	'.': {}, '!': {}, '?': {},
	'。': {}, '！': {}, '？': {}, // 。！？
}

var mediumPriority = map[rune]struct{}{
	';': {}, ':': {}, ')': {}, ']': {}, '}': {},
	'；': {}, '：': {}, '》': {}, '」': {}, '】': {}, '）': {}, // ；：》」】）
}

var lowPriority = map[rune]struct{}{
	',': {}, '(': {}, '[': {}, '{': {}, '-': {},
	'，': {}, '、': {}, '《': {}, '「': {}, '【': {}, '（': {}, // ，、《「【（
}

// allPunctuation is the union of all priority sets plus quote marks and the
// ellipsis rune. It doubles as the normalization set: every member maps to
// the canonical placeholder before diffing.
var allPunctuation map[rune]struct{}

func init() {
	allPunctuation = make(map[rune]struct{}, len(highPriority)+len(mediumPriority)+len(lowPriority)+12)
	for r := range highPriority {
		allPunctuation[r] = struct{}{}
	}
	for r := range mediumPriority {
		allPunctuation[r] = struct{}{}
	}
	for r := range lowPriority {
		allPunctuation[r] = struct{}{}
	}
	for _, r := range []rune{
		'…', // …
		'"', '\'',
		'“', '”', '‘', '’', // “”‘’
		'・', // ・
		'~', '～',
	} {
		allPunctuation[r] = struct{}{}
	}
}

// Priority returns the split priority of a punctuation rune.
func Priority(r rune) int {
	if _, ok := highPriority[r]; ok {
		return PriorityHigh
	}
	if _, ok := mediumPriority[r]; ok {
		return PriorityMedium
	}
	if _, ok := lowPriority[r]; ok {
		return PriorityLow
	}
	if r == '…' { // …
		return PriorityLow
	}
	return PriorityNone
}

// IsPunctuation checks whether a rune is in the punctuation set.
func IsPunctuation(r rune) bool {
	_, ok := allPunctuation[r]
	return ok
}

// EndsWithPunctuation checks if the text ends with a punctuation character.
// Returns (hasPunct, punctRune, priority).
func EndsWithPunctuation(text string) (bool, rune, int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, 0, PriorityNone
	}

	lastRune, _ := utf8.DecodeLastRuneInString(text)
	if lastRune == utf8.RuneError {
		return false, 0, PriorityNone
	}

	priority := Priority(lastRune)
	if priority >= 0 {
		return true, lastRune, priority
	}
	return false, 0, PriorityNone
}

// FindSplitPosition finds the best position to split text at or before maxLen
// (in runes). Returns a rune-index for the split point.
func FindSplitPosition(text string, maxLen int) int {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return len(runes)
	}

	searchEnd := min(maxLen+1, len(runes))

	bestPos := -1
	for i := searchEnd - 1; i > 0; i-- {
		r := runes[i]
		if r == ' ' {
			bestPos = i
			break
		}
		if IsPunctuation(r) {
			bestPos = i + 1
			break
		}
	}

	if bestPos <= 0 {
		bestPos = maxLen
	}
	return bestPos
}

// joinPunctuation contains punctuation characters that suppress space
// insertion when joining two subtitle texts.
var joinPunctuation = map[rune]struct{}{
	'。': {}, '？': {}, '！': {}, '、': {}, '，': {},
	'；': {}, '：': {},
	'“': {}, '”': {}, '‘': {}, '’': {},
	'（': {}, '）': {}, '《': {}, '》': {},
	'「': {}, '」': {},
	'.': {}, '?': {}, '!': {}, ',': {}, ';': {}, ':': {},
	'(': {}, ')': {}, '"': {}, '\'': {}, '-': {},
}

// EndsWithJoinPunctuation reports whether text ends with a punctuation
// character that suppresses space insertion when joining subtitles.
func EndsWithJoinPunctuation(text string) bool {
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	_, ok := joinPunctuation[r]
	return ok
}
