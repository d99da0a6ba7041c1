package segment

import (
	"math"
	"strings"
	"unicode"

	"scriptcue/internal/config"
	"scriptcue/internal/textkit"
)

// merger performs stage 2: greedy forward merging of short entries, then a
// constraint pass for duration and reading speed.
type merger struct {
	isCJK           bool
	minDuration     float64
	maxDuration     float64
	minGap          float64
	maxCPS          float64
	maxCharsPerLine int
}

func newMerger(langCode string, set config.SegmentSettings, charsPerLine int) *merger {
	isCJK := config.IsCJK(langCode)
	cps := set.LatinCPS
	if isCJK {
		cps = set.CJKCPS
	}
	return &merger{
		isCJK:           isCJK,
		minDuration:     set.MinSubtitleDuration,
		maxDuration:     set.MaxSubtitleDuration,
		minGap:          set.MinSubtitleGap,
		maxCPS:          cps,
		maxCharsPerLine: charsPerLine,
	}
}

func nonSpaceCount(text string) int {
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}

func (m *merger) cps(text string, duration float64) float64 {
	if duration <= 0 {
		return math.Inf(1)
	}
	return float64(nonSpaceCount(text)) / duration
}

// cpsLimit relaxes the reading-speed ceiling for very short texts, which
// flash by regardless.
func (m *merger) cpsLimit(text string) float64 {
	switch n := nonSpaceCount(text); {
	case n <= 3:
		return m.maxCPS * 3.0
	case n <= 5:
		return m.maxCPS * 2.0
	case n <= 10:
		return m.maxCPS * 1.5
	default:
		return m.maxCPS
	}
}

func (m *merger) displayLines(text string) int {
	remaining := strings.TrimSpace(text)
	lines := 0
	for remaining != "" {
		lines++
		runes := []rune(remaining)
		if len(runes) <= m.maxCharsPerLine {
			break
		}
		splitPos := textkit.FindSplitPosition(remaining, m.maxCharsPerLine)
		remaining = strings.TrimSpace(string(runes[splitPos:]))
	}
	return lines
}

func (m *merger) canMerge(e1, e2 entry) bool {
	gap := e2.Start - e1.End
	if gap < m.minGap || gap > 2.0 {
		return false
	}

	mergedText := m.joinTexts(e1.Text, e2.Text)
	mergedDuration := e2.End - e1.Start

	if mergedDuration > math.Min(m.maxDuration, 6.0) {
		return false
	}
	if m.cps(mergedText, mergedDuration) > m.cpsLimit(mergedText) {
		return false
	}
	if m.displayLines(mergedText) > 2 {
		return false
	}
	return true
}

// mergeBenefit scores how much two entries want to be one: short durations,
// tight gaps, and tiny texts all push toward merging.
func (m *merger) mergeBenefit(e1, e2 entry) float64 {
	benefit := 0.0

	if d := e1.End - e1.Start; d < m.minDuration {
		benefit += (m.minDuration - d) * 20
	}
	if d := e2.End - e2.Start; d < m.minDuration {
		benefit += (m.minDuration - d) * 20
	}

	gap := e2.Start - e1.End
	if gap < 0.3 {
		benefit += (0.3 - gap) * 10
	} else if gap < 0.5 {
		benefit += (0.5 - gap) * 5
	}

	for _, cc := range []int{e1.CharCount, e2.CharCount} {
		if cc < 3 {
			benefit += float64(3-cc) * 5
		} else if cc < 8 {
			benefit += float64(8-cc) * 2
		}
	}

	return benefit
}

func (m *merger) joinTexts(t1, t2 string) string {
	t1 = strings.TrimSpace(t1)
	t2 = strings.TrimSpace(t2)
	if t1 != "" && textkit.EndsWithJoinPunctuation(t1) {
		return t1 + t2
	}
	if m.isCJK {
		return t1 + t2
	}
	return t1 + " " + t2
}

func (m *merger) mergeTwo(e1, e2 entry) entry {
	text := m.joinTexts(e1.Text, e2.Text)
	return entry{
		Text:      text,
		Start:     e1.Start,
		End:       e2.End,
		WordCount: e1.WordCount + e2.WordCount,
		CharCount: nonSpaceCount(text),
	}
}

// merge performs greedy forward merging.
func (m *merger) merge(entries []entry) []entry {
	if len(entries) == 0 {
		return nil
	}

	var merged []entry
	i := 0

	for i < len(entries) {
		current := entries[i]

		for i+1 < len(entries) {
			next := entries[i+1]
			if !m.canMerge(current, next) {
				break
			}
			if m.mergeBenefit(current, next) <= 5.0 {
				break
			}
			current = m.mergeTwo(current, next)
			i++
		}

		merged = append(merged, current)
		i++
	}

	return merged
}

// constrain enforces min/max duration, reading speed, and inter-cue gaps.
func (m *merger) constrain(entries []entry) []entry {
	out := make([]entry, 0, len(entries))

	for i, e := range entries {
		duration := e.End - e.Start

		if duration > m.maxDuration {
			e.End = e.Start + m.maxDuration
			duration = m.maxDuration
		}
		if duration < m.minDuration {
			e.End = e.Start + m.minDuration
			duration = m.minDuration
		}

		if m.cps(e.Text, duration) > m.cpsLimit(e.Text) {
			required := float64(nonSpaceCount(e.Text)) / m.cpsLimit(e.Text)
			e.End = e.Start + math.Min(required, m.maxDuration)
		}

		if i+1 < len(entries) {
			if gap := entries[i+1].Start - e.End; gap < m.minGap {
				e.End = entries[i+1].Start - m.minGap
				if minEnd := e.Start + m.minDuration; e.End < minEnd {
					e.End = minEnd
				}
			}
		}

		out = append(out, e)
	}

	return out
}
