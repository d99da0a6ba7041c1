package segment

import (
	"math"

	"scriptcue/internal/align"
	"scriptcue/internal/config"
	"scriptcue/internal/transcript"
)

// Cues runs the two-stage pipeline over a cleaned transcript and returns
// numbered cues. Utterance boundaries always end a sentence group; within an
// utterance, punctuation decides.
func Cues(t *transcript.Transcript, langCode string, set config.SegmentSettings, charsPerLine int) []align.Cue {
	sp := newSplitter(langCode)

	var entries []entry
	for _, u := range t.Utterances {
		for _, group := range sp.splitUtterance(u.Words) {
			if e, ok := sp.groupEntry(group); ok {
				entries = append(entries, e)
			}
		}
	}
	if len(entries) == 0 {
		return nil
	}

	m := newMerger(langCode, set, charsPerLine)
	entries = m.constrain(m.merge(entries))

	cues := make([]align.Cue, 0, len(entries))
	for i, e := range entries {
		cues = append(cues, align.Cue{
			Index: i + 1,
			Start: math.Round(e.Start*1000) / 1000,
			End:   math.Round(e.End*1000) / 1000,
			Text:  e.Text,
		})
	}
	return cues
}
