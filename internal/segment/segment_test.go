package segment

import (
	"testing"

	"scriptcue/internal/config"
	"scriptcue/internal/transcript"
)

func TestCues(t *testing.T) {
	tr := &transcript.Transcript{
		LanguageCode: "en",
		Utterances: []transcript.Utterance{
			{Words: []transcript.Word{
				{Word: "Hello", Start: 0.2, End: 0.7},
				{Word: "there", Start: 0.8, End: 1.2},
				{Word: "friend.", Start: 1.3, End: 1.8},
			}},
			{Words: []transcript.Word{
				{Word: "Goodbye", Start: 5.0, End: 5.6},
				{Word: "now.", Start: 5.7, End: 6.1},
			}},
		},
	}

	cues := Cues(tr, "en", config.Default().Segment, 42)
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}

	if cues[0].Text != "Hello there friend." {
		t.Errorf("cue 1 text = %q", cues[0].Text)
	}
	if cues[1].Text != "Goodbye now." {
		t.Errorf("cue 2 text = %q", cues[1].Text)
	}
	if cues[0].Index != 1 || cues[1].Index != 2 {
		t.Errorf("cue indices = %d, %d, want 1, 2", cues[0].Index, cues[1].Index)
	}
	if cues[0].Start != 0.2 {
		t.Errorf("cue 1 start = %f, want 0.2", cues[0].Start)
	}
	for _, c := range cues {
		if c.End <= c.Start {
			t.Errorf("cue %d has non-positive extent", c.Index)
		}
	}
}

func TestCuesEmptyTranscript(t *testing.T) {
	cues := Cues(&transcript.Transcript{}, "en", config.Default().Segment, 42)
	if cues != nil {
		t.Errorf("expected nil for an empty transcript, got %v", cues)
	}
}
