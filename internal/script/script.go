// Package script loads hand-authored reference documents: ordered paragraph
// lines where blank lines close a paragraph. A closed paragraph becomes one
// subtitle cue; its interior lines stack as additional display lines.
package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParagraphType distinguishes a mid-paragraph line from the line that
// terminates (and thereby emits) a paragraph.
type ParagraphType string

const (
	TypeText ParagraphType = "text"
	TypeEnd  ParagraphType = "end"
)

// Paragraph is one line of the reference document.
type Paragraph struct {
	Number  int           `json:"paragraph"`
	Type    ParagraphType `json:"type"`
	Content string        `json:"content"`
}

// Document is an ordered reference or translation script.
type Document struct {
	Lane       string // "" for the source script, a language tag for translations
	Paragraphs []Paragraph
}

// Empty reports whether the document has no content at all.
func (d *Document) Empty() bool {
	for _, p := range d.Paragraphs {
		if strings.TrimSpace(p.Content) != "" {
			return false
		}
	}
	return true
}

// CueCount returns the number of terminator paragraphs, which is the number
// of cues the document will produce.
func (d *Document) CueCount() int {
	n := 0
	for _, p := range d.Paragraphs {
		if p.Type == TypeEnd {
			n++
		}
	}
	return n
}

// LoadFile reads a script document. JSON files must hold the paragraph array
// shape; anything else is treated as plain text with blank-line paragraph
// separation.
func LoadFile(path, lane string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var doc *Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err = parseJSON(data)
	} else {
		doc, err = parseText(string(data)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", filepath.Base(path), err)
	}

	doc.Lane = lane
	if err := validate(doc); err != nil {
		return nil, fmt.Errorf("script %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func parseJSON(data []byte) (*Document, error) {
	var paragraphs []Paragraph
	if err := json.Unmarshal(data, &paragraphs); err != nil {
		return nil, err
	}
	return &Document{Paragraphs: paragraphs}, nil
}

// parseText turns plain text into paragraphs: every non-empty line is one
// Paragraph, and a blank line (or EOF) marks the preceding line as the
// paragraph terminator.
func parseText(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var paragraphs []Paragraph
	num := 1
	open := false // a paragraph is accumulating

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if open {
				paragraphs[len(paragraphs)-1].Type = TypeEnd
				num++
				open = false
			}
			continue
		}
		paragraphs = append(paragraphs, Paragraph{
			Number:  num,
			Type:    TypeText,
			Content: trimmed,
		})
		open = true
	}

	if open {
		paragraphs[len(paragraphs)-1].Type = TypeEnd
	}

	return &Document{Paragraphs: paragraphs}
}

func validate(d *Document) error {
	prev := 0
	for i, p := range d.Paragraphs {
		switch p.Type {
		case TypeText, TypeEnd:
		default:
			return fmt.Errorf("paragraph %d: unknown type %q", i, p.Type)
		}
		if p.Number < prev {
			return fmt.Errorf("paragraph numbers decrease at entry %d (%d after %d)", i, p.Number, prev)
		}
		prev = p.Number
	}
	return nil
}
