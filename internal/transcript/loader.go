package transcript

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a transcript JSON file (the provider response shape, also
// what SaveFile writes).
func LoadFile(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript JSON: %w", err)
	}

	for i, u := range t.Utterances {
		for j, w := range u.Words {
			if w.End < w.Start {
				return nil, fmt.Errorf("transcript utterance %d word %d: end %.3f before start %.3f",
					i, j, w.End, w.Start)
			}
		}
	}

	return &t, nil
}

// SaveFile persists a transcript as indented JSON next to the outputs.
func SaveFile(path string, t *Transcript) error {
	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
