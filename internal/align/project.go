package align

import (
	"fmt"
	"unicode/utf8"

	"scriptcue/internal/config"
	"scriptcue/internal/textkit"
	"scriptcue/internal/transcript"
)

// wordSpan ties one transcript word to its slice of the normalized
// transcript character space.
type wordSpan struct {
	word   transcript.Word
	sepLen int // leading separator runes; 0 for the document-initial word
	n      int // normalized rune count of the word itself
}

// buildTranscriptSpace constructs the normalized transcript text from the
// word stream: normalized words joined by the language separator. Words that
// normalize to nothing contribute no characters and no separator.
func buildTranscriptSpace(t *transcript.Transcript, sep string) ([]rune, []wordSpan) {
	var norm []rune
	var spans []wordSpan
	sepRunes := []rune(sep)

	for _, u := range t.Utterances {
		for _, w := range u.Words {
			nw := []rune(textkit.Normalize(w.Word, sep))
			if len(nw) == 0 {
				continue
			}
			sepLen := 0
			if len(norm) > 0 {
				sepLen = len(sepRunes)
				norm = append(norm, sepRunes...)
			}
			norm = append(norm, nw...)
			spans = append(spans, wordSpan{word: w, sepLen: sepLen, n: len(nw)})
		}
	}

	return norm, spans
}

// projectTranscript is pass 1: assign an interval to every character of the
// normalized transcript by walking the word stream. Each word's duration is
// spread evenly over its characters; a leading separator is pinned
// zero-width to the word's start. Words without provider timing get
// zero-width intervals at the running cursor and an anomaly note.
func projectTranscript(norm []rune, spans []wordSpan, set config.AlignSettings) ([]charInterval, []Anomaly, error) {
	times := make([]charInterval, len(norm))
	var anomalies []Anomaly

	idx := 0
	lastTime := 0.0

	for _, sp := range spans {
		w := sp.word
		noTiming := w.Start == 0 && w.End == 0 && lastTime > 0

		if noTiming {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyNoTiming, Word: w.Word})
			for k := 0; k < sp.sepLen; k++ {
				times[idx] = charInterval{Start: lastTime, End: lastTime, Flags: FlagSeparator | FlagNoTiming, Assigned: true}
				idx++
			}
			for k := 0; k < sp.n; k++ {
				times[idx] = charInterval{Start: lastTime, End: lastTime, Flags: FlagNoTiming, Assigned: true}
				idx++
			}
			continue
		}

		for k := 0; k < sp.sepLen; k++ {
			times[idx] = charInterval{Start: w.Start, End: w.Start, Flags: FlagSeparator, Assigned: true}
			idx++
		}

		avg := 0.0
		if sp.n > 0 {
			avg = (w.End - w.Start) / float64(sp.n)
		}

		flags := FlagWordTiming
		if avg > set.MaxCharDuration {
			flags |= FlagSlowWord
			anomalies = append(anomalies, Anomaly{Kind: AnomalySlowWord, Word: w.Word, Start: w.Start, End: w.End})
		}

		t := w.Start
		for k := 0; k < sp.n; k++ {
			times[idx] = charInterval{Start: t, End: t + avg, Flags: flags, Assigned: true}
			t += avg
			idx++
		}

		if w.End > lastTime {
			lastTime = w.End
		}
	}

	if idx != len(norm) {
		return nil, nil, fmt.Errorf("%w: pass 1 timed %d transcript chars, text has %d",
			ErrReconstruction, idx, len(norm))
	}
	return times, anomalies, nil
}

// projectReference is pass 2: walk the edit script and carry transcript-side
// intervals onto the reference character space. Equal runs copy their
// timings; delete runs are skipped but remembered; insert runs (reference
// text the transcript lacks) are interpolated from surrounding context and
// subdivided evenly — a deliberate approximation that trades word-boundary
// precision for guaranteed monotone coverage.
func projectReference(ops []EditOp, tTimes []charInterval, refLen int, recordingEnd float64, set config.AlignSettings) ([]charInterval, error) {
	times := make([]charInterval, refLen)

	tIdx := 0 // cursor into the transcript character space
	rIdx := 0 // cursor into the reference character space

	prevKind := OpKind(-1)
	lastEqualEnd := 0.0
	lastDeleteStart, lastDeleteEnd := 0.0, 0.0

	for i, op := range ops {
		n := utf8.RuneCountInString(op.Text)

		switch op.Kind {
		case OpEqual:
			for k := 0; k < n; k++ {
				times[rIdx+k] = tTimes[tIdx+k]
			}
			lastEqualEnd = times[rIdx+n-1].End
			tIdx += n
			rIdx += n

		case OpDelete:
			lastDeleteStart = tTimes[tIdx].Start
			lastDeleteEnd = tTimes[tIdx+n-1].End
			tIdx += n

		case OpInsert:
			nextStart, haveNext := nextResolvedStart(ops, i, tIdx, tTimes)

			var start, end float64
			var flags IntervalFlag = FlagInterpolated

			switch {
			case i == 0 && n >= refLen:
				// The reference as a whole has no transcript anchor:
				// stretch the run over the entire recording.
				start, end = 0, recordingEnd
				flags |= FlagFromDocStart
			case i == 0:
				start = 0
				if haveNext {
					end = nextStart - set.InsertPad
				} else {
					end = recordingEnd
				}
				flags |= FlagFromDocStart
			case prevKind == OpEqual || prevKind == OpInsert:
				start = lastEqualEnd
				if haveNext {
					end = nextStart - set.InsertPad
				} else {
					end = recordingEnd
				}
				flags |= FlagFromEqualRun
			default:
				// Follows stray transcript text: the reference text that
				// should have been spoken shares that audio window.
				start, end = lastDeleteStart, lastDeleteEnd
				flags |= FlagFromDeleteRun
			}

			if end < start {
				end = start
			}

			step := (end - start) / float64(n)
			t := start
			for k := 0; k < n; k++ {
				times[rIdx+k] = charInterval{Start: t, End: t + step, Flags: flags, Assigned: true}
				t += step
			}
			if prevKind == OpEqual || i == 0 {
				// Keep the insert's end as equal-run context so a
				// following insert cannot fall back before it.
				lastEqualEnd = end
			}
			rIdx += n
		}

		prevKind = op.Kind
	}

	for i := range times {
		if !times[i].Assigned {
			return nil, fmt.Errorf("%w: reference index %d (of %d) never timed; dump indices for diagnosis",
				ErrUnassignedIndex, i, refLen)
		}
	}
	return times, nil
}

// nextResolvedStart finds the start time of the first transcript-anchored
// character after the insert run at ops[i]. Delete runs in between consume
// transcript characters without providing an anchor.
func nextResolvedStart(ops []EditOp, i, tIdx int, tTimes []charInterval) (float64, bool) {
	ahead := tIdx
	for j := i + 1; j < len(ops); j++ {
		n := utf8.RuneCountInString(ops[j].Text)
		switch ops[j].Kind {
		case OpDelete:
			ahead += n
		case OpEqual:
			if ahead < len(tTimes) {
				return tTimes[ahead].Start, true
			}
			return 0, false
		}
	}
	return 0, false
}

// shrinkGaps pulls in both sides of any inter-character silence at or above
// the threshold, so cues neither linger long past their speech nor lead it,
// while ordinary word gaps stay untouched.
func shrinkGaps(times []charInterval, set config.AlignSettings) {
	for i := 0; i+1 < len(times); i++ {
		gap := times[i+1].Start - times[i].End
		if gap >= set.GapShrinkThreshold {
			times[i].End += set.GapShrinkAmount
			times[i+1].Start -= set.GapShrinkAmount
		}
	}
}
