package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"scriptcue/internal/align"
	"scriptcue/internal/textkit"
)

// formatSRTTime converts seconds to SRT time format HH:MM:SS,mmm. Rounding
// happens once on the total millisecond count so millisecond-precision cue
// times render losslessly and the carry propagates into the seconds field.
func formatSRTTime(seconds float64) string {
	ms := int64(math.Round(math.Abs(seconds) * 1000))
	hours := ms / 3600000
	ms -= hours * 3600000
	minutes := ms / 60000
	ms -= minutes * 60000
	secs := ms / 1000
	ms -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, ms)
}

// optimizeTextDisplay returns text on a single line if it fits within maxCPL,
// otherwise splits it into at most two lines at a punctuation- or
// space-friendly break point. Text that already carries newlines (stacked
// script lines) is left as authored.
func optimizeTextDisplay(text string, maxCPL int) string {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "\n") {
		return text
	}
	if utf8.RuneCountInString(text) <= maxCPL {
		return text
	}

	runes := []rune(text)
	splitPos := textkit.FindSplitPosition(text, maxCPL)

	firstLine := strings.TrimSpace(string(runes[:splitPos]))
	remaining := strings.TrimSpace(string(runes[splitPos:]))

	if remaining == "" {
		return firstLine
	}
	return firstLine + "\n" + remaining
}

// SRT renders numbered cue blocks for the source lane.
func SRT(cues []align.Cue, maxCPL int) string {
	texts := make([]string, len(cues))
	for i, c := range cues {
		texts[i] = c.Text
	}
	return blocks(cues, texts, maxCPL)
}

// SRTLane renders a sibling subtitle file for one translation lane, reusing
// the source cue timing.
func SRTLane(cues []align.Cue, texts []string, maxCPL int) string {
	return blocks(cues, texts, maxCPL)
}

// SRTMerged renders a bilingual file interleaving source and translation
// text inside each cue, source first or translation first.
func SRTMerged(cues []align.Cue, texts []string, sourceFirst bool, maxCPL int) string {
	merged := make([]string, len(cues))
	for i, c := range cues {
		a, b := c.Text, texts[i]
		if !sourceFirst {
			a, b = b, a
		}
		switch {
		case a == "":
			merged[i] = b
		case b == "":
			merged[i] = a
		default:
			merged[i] = a + "\n" + b
		}
	}
	return blocks(cues, merged, maxCPL)
}

func blocks(cues []align.Cue, texts []string, maxCPL int) string {
	if len(cues) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, cue := range cues {
		startStr := formatSRTTime(cue.Start)
		endStr := formatSRTTime(cue.End)
		text := optimizeTextDisplay(texts[i], maxCPL)

		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", i+1, startStr, endStr, text)
		if i < len(cues)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
