package transcript

import (
	"testing"
)

func TestCleanWords_Empty(t *testing.T) {
	result := cleanWords(nil)
	if len(result) != 0 {
		t.Errorf("expected 0 words, got %d", len(result))
	}
}

func TestCleanWords_DropsWhitespaceTokens(t *testing.T) {
	raw := []Word{
		{Word: "Hello", Start: 0, End: 1},
		{Word: " ", Start: 1, End: 1},
		{Word: "\t\n", Start: 1, End: 1},
		{Word: "world", Start: 1, End: 2},
	}
	result := cleanWords(raw)

	if len(result) != 2 {
		t.Fatalf("expected 2 words, got %d", len(result))
	}
	if result[0].Word != "Hello" || result[1].Word != "world" {
		t.Errorf("got words %q, %q", result[0].Word, result[1].Word)
	}
}

func TestCleanWords_MergesCJKPunctuation(t *testing.T) {
	raw := []Word{
		{Word: "hello", Start: 0, End: 1},
		{Word: "。", Start: 1, End: 1.1}, // 。
	}
	result := cleanWords(raw)

	if len(result) != 1 {
		t.Fatalf("expected 1 word after CJK punct merge, got %d", len(result))
	}
	if result[0].Word != "hello。" {
		t.Errorf("expected 'hello。', got %q", result[0].Word)
	}
	if result[0].End != 1.1 {
		t.Errorf("expected end time 1.1, got %f", result[0].End)
	}
}

func TestCleanWords_NoDoubleCJKPunctMerge(t *testing.T) {
	// If the previous word already ends with CJK punctuation, don't merge
	// another one.
	raw := []Word{
		{Word: "hello。", Start: 0, End: 1}, // hello。
		{Word: "？", Start: 1, End: 1.1},    // ？
	}
	result := cleanWords(raw)

	if len(result) != 2 {
		t.Fatalf("expected 2 words (no double-punct merge), got %d", len(result))
	}
}

func TestCleanWords_LeadingPunctuationKept(t *testing.T) {
	// A standalone punctuation token with no preceding word stays a word.
	raw := []Word{
		{Word: "。", Start: 0, End: 0.1}, // 。
		{Word: "hello", Start: 0.2, End: 1},
	}
	result := cleanWords(raw)

	if len(result) != 2 {
		t.Fatalf("expected 2 words, got %d", len(result))
	}
}

func TestClean(t *testing.T) {
	tr := &Transcript{
		Utterances: []Utterance{
			{Words: []Word{
				{Word: "Hello", Start: 0, End: 1},
				{Word: "  ", Start: 1, End: 1},
			}},
			{Words: []Word{
				{Word: "世界", Start: 2, End: 2.5}, // 世界
				{Word: "。", Start: 2.5, End: 2.6},     // 。
			}},
		},
	}
	Clean(tr)

	if len(tr.Utterances[0].Words) != 1 {
		t.Errorf("utterance 0 has %d words, want 1", len(tr.Utterances[0].Words))
	}
	if len(tr.Utterances[1].Words) != 1 {
		t.Fatalf("utterance 1 has %d words, want 1", len(tr.Utterances[1].Words))
	}
	if tr.Utterances[1].Words[0].Word != "世界。" {
		t.Errorf("merged word = %q", tr.Utterances[1].Words[0].Word)
	}
}

func TestTranscriptEnd(t *testing.T) {
	tr := &Transcript{
		Utterances: []Utterance{
			{AudioEnd: 2.0, Words: []Word{{Word: "a", Start: 0, End: 1}}},
			{AudioEnd: 3.0, Words: []Word{{Word: "b", Start: 2.5, End: 3.4}}},
		},
	}
	if got := tr.End(); got != 3.4 {
		t.Errorf("End() = %f, want 3.4", got)
	}
}

func TestTranscriptEmpty(t *testing.T) {
	if !(&Transcript{}).Empty() {
		t.Error("zero transcript should be empty")
	}
	if !(&Transcript{Utterances: []Utterance{{}}}).Empty() {
		t.Error("transcript with wordless utterance should be empty")
	}
	tr := &Transcript{Utterances: []Utterance{{Words: []Word{{Word: "hi"}}}}}
	if tr.Empty() {
		t.Error("transcript with a word should not be empty")
	}
}
