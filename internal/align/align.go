package align

import (
	"scriptcue/internal/config"
	"scriptcue/internal/script"
	"scriptcue/internal/transcript"
)

// Input carries everything one alignment invocation needs. All fields are
// read-only to the engine; nothing escapes the call except the Result.
type Input struct {
	Script       *script.Document
	Translations []*script.Document
	Transcript   *transcript.Transcript
	Duration     float64 // probed recording length in seconds; 0 if unknown
	Language     string  // language code, decides the word separator
	Settings     config.AlignSettings
	Observer     Observer
}

// Run aligns the transcript against the reference script and resolves timed
// cues. Hard failures come back as wrapped sentinel errors; an empty script
// short-circuits with StatusEmptyScript and no cues.
func Run(in Input) (*Result, error) {
	if in.Script == nil || in.Script.Empty() {
		return &Result{Status: StatusEmptyScript}, nil
	}

	sep := config.Separator(in.Language)

	normT, wordSpans := buildTranscriptSpace(in.Transcript, sep)
	normR, paraSpans := buildReferenceSpace(in.Script, sep)
	in.notify(StageNormalized)

	ops, err := Diff(string(normT), string(normR))
	if err != nil {
		return nil, err
	}
	in.notify(StageDiffed)

	tTimes, anomalies, err := projectTranscript(normT, wordSpans, in.Settings)
	if err != nil {
		return nil, err
	}

	recordingEnd := in.Transcript.End()
	if in.Duration > recordingEnd {
		recordingEnd = in.Duration
	}

	rTimes, err := projectReference(ops, tTimes, len(normR), recordingEnd, in.Settings)
	if err != nil {
		return nil, err
	}
	shrinkGaps(rTimes, in.Settings)
	in.notify(StageProjected)

	cues, err := resolveCues(in.Script, paraSpans, rTimes, len(normR))
	if err != nil {
		return nil, err
	}

	result := &Result{
		Status:    StatusAligned,
		Cues:      cues,
		Anomalies: anomalies,
	}

	for _, tr := range in.Translations {
		texts := laneTexts(tr)
		if len(texts) != len(cues) {
			result.SkippedLanes = append(result.SkippedLanes, tr.Lane)
			continue
		}
		result.Lanes = append(result.Lanes, Lane{Tag: tr.Lane, Texts: texts})
	}
	in.notify(StageResolved)

	return result, nil
}

func (in Input) notify(s Stage) {
	if in.Observer != nil {
		in.Observer.OnStage(s)
	}
}
