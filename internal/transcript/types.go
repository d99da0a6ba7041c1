package transcript

// Word is a single token from the speech-to-text provider, with its audio
// interval in seconds and the provider's confidence score.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// Utterance is an ordered run of words spanning one provider-detected span
// of speech.
type Utterance struct {
	AudioStart float64 `json:"audio_start"`
	AudioEnd   float64 `json:"audio_end"`
	Words      []Word  `json:"words"`
}

// Transcript is the top-level provider response.
type Transcript struct {
	LanguageCode string      `json:"language_code"`
	Text         string      `json:"text"`
	Utterances   []Utterance `json:"utterances"`
}

// Words returns all words across utterances in document order.
func (t *Transcript) AllWords() []Word {
	var words []Word
	for _, u := range t.Utterances {
		words = append(words, u.Words...)
	}
	return words
}

// End returns the last known audio time in the transcript, preferring the
// final utterance's audio_end over its last word's end.
func (t *Transcript) End() float64 {
	end := 0.0
	for _, u := range t.Utterances {
		if u.AudioEnd > end {
			end = u.AudioEnd
		}
		for _, w := range u.Words {
			if w.End > end {
				end = w.End
			}
		}
	}
	return end
}

// Empty reports whether the transcript carries no usable words.
func (t *Transcript) Empty() bool {
	for _, u := range t.Utterances {
		if len(u.Words) > 0 {
			return false
		}
	}
	return true
}
