package align

import (
	"fmt"
	"math"
	"strings"

	"scriptcue/internal/script"
	"scriptcue/internal/textkit"
)

// paraSpan is one paragraph's slice of the normalized reference space.
// Separator characters between paragraphs belong to no span.
type paraSpan struct {
	start int
	n     int
}

// buildReferenceSpace constructs the normalized reference text from the
// script document: normalized paragraph contents joined by the language
// separator, with each paragraph's character range recorded.
func buildReferenceSpace(doc *script.Document, sep string) ([]rune, []paraSpan) {
	var norm []rune
	spans := make([]paraSpan, 0, len(doc.Paragraphs))
	sepRunes := []rune(sep)

	for _, p := range doc.Paragraphs {
		np := []rune(textkit.Normalize(p.Content, sep))
		if len(np) == 0 {
			spans = append(spans, paraSpan{start: len(norm), n: 0})
			continue
		}
		if len(norm) > 0 {
			norm = append(norm, sepRunes...)
		}
		spans = append(spans, paraSpan{start: len(norm), n: len(np)})
		norm = append(norm, np...)
	}

	return norm, spans
}

// resolveCues maps resolved character intervals back onto paragraph
// boundaries: one cue per terminator paragraph, mid-paragraph lines stacking
// into the following terminator's text. The first cue is always anchored to
// the recording start. Times round to milliseconds here and nowhere earlier.
func resolveCues(doc *script.Document, spans []paraSpan, times []charInterval, normLen int) ([]Cue, error) {
	if expected := lastCharIndex(spans); expected != normLen {
		return nil, fmt.Errorf("%w: paragraphs cover %d chars, normalized reference has %d",
			ErrParagraphDrift, expected, normLen)
	}

	var cues []Cue
	var groupLines []string
	groupFirst, groupLast := -1, -1

	for i, p := range doc.Paragraphs {
		sp := spans[i]
		if strings.TrimSpace(p.Content) != "" {
			groupLines = append(groupLines, strings.TrimSpace(p.Content))
		}
		if sp.n > 0 {
			if groupFirst < 0 {
				groupFirst = sp.start
			}
			groupLast = sp.start + sp.n - 1
		}

		if p.Type != script.TypeEnd {
			continue
		}

		if len(groupLines) > 0 && groupFirst >= 0 {
			start := times[groupFirst].Start
			end := times[groupLast].End
			if len(cues) == 0 {
				// Documents begin at the recording start no matter what
				// timing the first character resolved to.
				start = 0
			}
			cues = append(cues, Cue{
				Index: len(cues) + 1,
				Start: roundMillis(start),
				End:   roundMillis(end),
				Text:  strings.Join(groupLines, "\n"),
			})
		}
		groupLines = nil
		groupFirst, groupLast = -1, -1
	}

	return cues, nil
}

func lastCharIndex(spans []paraSpan) int {
	end := 0
	for _, sp := range spans {
		if sp.start+sp.n > end {
			end = sp.start + sp.n
		}
	}
	return end
}

// laneTexts groups a translation document's paragraphs into per-cue texts
// the same way resolveCues groups the source script.
func laneTexts(doc *script.Document) []string {
	var texts []string
	var group []string

	for _, p := range doc.Paragraphs {
		if strings.TrimSpace(p.Content) != "" {
			group = append(group, strings.TrimSpace(p.Content))
		}
		if p.Type != script.TypeEnd {
			continue
		}
		if len(group) > 0 {
			texts = append(texts, strings.Join(group, "\n"))
		}
		group = nil
	}

	return texts
}

func roundMillis(x float64) float64 {
	return math.Round(x*1000) / 1000
}
