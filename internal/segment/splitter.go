// Package segment builds subtitle cues straight from a transcript when no
// reference script is available: sentences split on punctuation priority and
// utterance boundaries, then short fragments merge back together under
// duration and reading-speed limits.
package segment

import (
	"strings"
	"unicode/utf8"

	"scriptcue/internal/config"
	"scriptcue/internal/textkit"
	"scriptcue/internal/transcript"
)

// entry is an intermediate cue candidate.
type entry struct {
	Text      string
	Start     float64
	End       float64
	WordCount int
	CharCount int
}

// splitter performs stage 1: sentence grouping within an utterance.
type splitter struct {
	isCJK bool
	sep   string
}

func newSplitter(langCode string) *splitter {
	return &splitter{
		isCJK: config.IsCJK(langCode),
		sep:   config.Separator(langCode),
	}
}

// shouldSplitAfter decides whether to end the group after the current word.
func (s *splitter) shouldSplitAfter(w transcript.Word, accumulated []transcript.Word) bool {
	hasPunct, _, priority := textkit.EndsWithPunctuation(w.Word)
	if !hasPunct {
		return false
	}

	// Sentence-final punctuation always splits.
	if priority == textkit.PriorityHigh {
		return true
	}

	if priority == textkit.PriorityMedium {
		return len(accumulated) >= 3
	}

	if priority == textkit.PriorityLow {
		if len(accumulated) >= 5 {
			totalChars := 0
			for _, aw := range accumulated {
				totalChars += utf8.RuneCountInString(aw.Word)
			}
			return totalChars >= 15
		}
	}

	return false
}

// splitUtterance splits one utterance's words into sentence groups.
func (s *splitter) splitUtterance(words []transcript.Word) [][]transcript.Word {
	if len(words) == 0 {
		return nil
	}

	var groups [][]transcript.Word
	var current []transcript.Word

	for i, word := range words {
		current = append(current, word)

		accumulated := current[:len(current)-1]
		if s.shouldSplitAfter(word, accumulated) || i == len(words)-1 {
			groups = append(groups, current)
			current = nil
		}
	}

	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// groupEntry converts a sentence group into an entry, joining words with the
// language separator.
func (s *splitter) groupEntry(group []transcript.Word) (entry, bool) {
	if len(group) == 0 {
		return entry{}, false
	}

	parts := make([]string, 0, len(group))
	for _, w := range group {
		t := strings.TrimSpace(w.Word)
		if t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.Join(parts, s.sep)
	if text == "" {
		return entry{}, false
	}

	return entry{
		Text:      text,
		Start:     group[0].Start,
		End:       group[len(group)-1].End,
		WordCount: len(group),
		CharCount: strippedCount(text),
	}, true
}

func strippedCount(text string) int {
	return utf8.RuneCountInString(strings.ReplaceAll(text, " ", ""))
}
