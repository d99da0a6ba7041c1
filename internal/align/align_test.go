package align

import (
	"testing"

	"scriptcue/internal/script"
	"scriptcue/internal/transcript"
)

func TestRunEmptyScript(t *testing.T) {
	res, err := Run(Input{
		Script:     testDoc(script.Paragraph{Number: 1, Type: script.TypeEnd, Content: "   "}),
		Transcript: makeTranscript(transcript.Word{Word: "hi", Start: 0, End: 0.5}),
		Language:   "en",
		Settings:   testSettings(),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Status != StatusEmptyScript {
		t.Errorf("status = %q, want %q", res.Status, StatusEmptyScript)
	}
	if len(res.Cues) != 0 {
		t.Errorf("got %d cues for an empty script", len(res.Cues))
	}
}

func TestRunPerfectMatch(t *testing.T) {
	doc := testDoc(
		script.Paragraph{Number: 1, Type: script.TypeEnd, Content: "Hello world."},
		script.Paragraph{Number: 2, Type: script.TypeEnd, Content: "Goodbye now."},
	)
	tr := makeTranscript(
		transcript.Word{Word: "Hello", Start: 0.5, End: 1.0},
		transcript.Word{Word: "world.", Start: 1.1, End: 1.6},
		transcript.Word{Word: "Goodbye", Start: 2.5, End: 3.0},
		transcript.Word{Word: "now.", Start: 3.1, End: 3.5},
	)

	var stages []Stage
	res, err := Run(Input{
		Script:     doc,
		Transcript: tr,
		Duration:   4.0,
		Language:   "en",
		Settings:   testSettings(),
		Observer:   ObserverFunc(func(s Stage) { stages = append(stages, s) }),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Status != StatusAligned {
		t.Fatalf("status = %q, want %q", res.Status, StatusAligned)
	}
	if len(res.Cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(res.Cues))
	}

	c1, c2 := res.Cues[0], res.Cues[1]
	if c1.Text != "Hello world." || c2.Text != "Goodbye now." {
		t.Errorf("cue texts = %q, %q", c1.Text, c2.Text)
	}
	if c1.Start != 0 {
		t.Errorf("first cue start = %f, want 0", c1.Start)
	}
	if c1.End <= c1.Start || c2.End <= c2.Start {
		t.Error("cues must have positive extent")
	}
	if c2.Start < c1.End {
		t.Errorf("cues overlap: cue 1 ends %f, cue 2 starts %f", c1.End, c2.Start)
	}
	// Cue 2 begins where "Goodbye" is spoken.
	if c2.Start != 2.5 {
		t.Errorf("cue 2 start = %f, want 2.5", c2.Start)
	}

	wantStages := []Stage{StageNormalized, StageDiffed, StageProjected, StageResolved}
	if len(stages) != len(wantStages) {
		t.Fatalf("observer saw stages %v, want %v", stages, wantStages)
	}
	for i := range stages {
		if stages[i] != wantStages[i] {
			t.Fatalf("observer saw stages %v, want %v", stages, wantStages)
		}
	}
}

func TestRunDivergentWording(t *testing.T) {
	// The speaker ad-libs ("um, yeah") and skips a scripted word; the cues
	// must still come out monotone and covering every paragraph.
	doc := testDoc(
		script.Paragraph{Number: 1, Type: script.TypeEnd, Content: "Welcome back to the show."},
		script.Paragraph{Number: 2, Type: script.TypeEnd, Content: "Today we talk about alignment."},
	)
	tr := makeTranscript(
		transcript.Word{Word: "Welcome", Start: 0.2, End: 0.7},
		transcript.Word{Word: "um", Start: 0.8, End: 1.0},
		transcript.Word{Word: "back", Start: 1.1, End: 1.4},
		transcript.Word{Word: "to", Start: 1.5, End: 1.6},
		transcript.Word{Word: "show", Start: 1.7, End: 2.1},
		transcript.Word{Word: "today", Start: 3.0, End: 3.4},
		transcript.Word{Word: "we", Start: 3.5, End: 3.6},
		transcript.Word{Word: "talk", Start: 3.7, End: 4.0},
		transcript.Word{Word: "about", Start: 4.1, End: 4.4},
		transcript.Word{Word: "alignment", Start: 4.5, End: 5.2},
	)

	res, err := Run(Input{
		Script:     doc,
		Transcript: tr,
		Duration:   6.0,
		Language:   "en",
		Settings:   testSettings(),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(res.Cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(res.Cues))
	}
	if res.Cues[0].Start != 0 {
		t.Errorf("first cue start = %f, want 0", res.Cues[0].Start)
	}
	for i := 0; i+1 < len(res.Cues); i++ {
		if res.Cues[i+1].Start < res.Cues[i].Start {
			t.Errorf("cue %d starts before cue %d", i+2, i+1)
		}
	}
	if res.Cues[1].Text != "Today we talk about alignment." {
		t.Errorf("cue 2 text = %q", res.Cues[1].Text)
	}
}

func TestRunCJK(t *testing.T) {
	doc := testDoc(
		script.Paragraph{Number: 1, Type: script.TypeEnd, Content: "こんにちは。"}, // こんにちは。
	)
	tr := makeTranscript(
		transcript.Word{Word: "こんにちは", Start: 0.2, End: 1.2}, // こんにちは
	)

	res, err := Run(Input{
		Script:     doc,
		Transcript: tr,
		Language:   "ja",
		Settings:   testSettings(),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(res.Cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(res.Cues))
	}
	cue := res.Cues[0]
	if cue.Text != "こんにちは。" {
		t.Errorf("cue text = %q", cue.Text)
	}
	if cue.Start != 0 {
		t.Errorf("cue start = %f, want 0", cue.Start)
	}
	// Trailing punctuation has no transcript anchor: the cue runs out to the
	// transcript end.
	if cue.End != 1.2 {
		t.Errorf("cue end = %f, want 1.2", cue.End)
	}
}

func TestRunTranslationLanes(t *testing.T) {
	doc := testDoc(
		script.Paragraph{Number: 1, Type: script.TypeEnd, Content: "Hello."},
		script.Paragraph{Number: 2, Type: script.TypeEnd, Content: "Goodbye."},
	)
	good := &script.Document{Lane: "ja", Paragraphs: []script.Paragraph{
		{Number: 1, Type: script.TypeEnd, Content: "こんにちは。"},
		{Number: 2, Type: script.TypeEnd, Content: "さよなら。"},
	}}
	bad := &script.Document{Lane: "fr", Paragraphs: []script.Paragraph{
		{Number: 1, Type: script.TypeEnd, Content: "Bonjour."},
	}}

	tr := makeTranscript(
		transcript.Word{Word: "Hello", Start: 0.1, End: 0.6},
		transcript.Word{Word: "Goodbye", Start: 1.5, End: 2.2},
	)

	res, err := Run(Input{
		Script:       doc,
		Translations: []*script.Document{good, bad},
		Transcript:   tr,
		Language:     "en",
		Settings:     testSettings(),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(res.Lanes) != 1 || res.Lanes[0].Tag != "ja" {
		t.Fatalf("lanes = %+v, want one ja lane", res.Lanes)
	}
	if len(res.Lanes[0].Texts) != len(res.Cues) {
		t.Errorf("lane has %d texts for %d cues", len(res.Lanes[0].Texts), len(res.Cues))
	}
	if len(res.SkippedLanes) != 1 || res.SkippedLanes[0] != "fr" {
		t.Errorf("skipped lanes = %v, want [fr]", res.SkippedLanes)
	}
}
