package render

import (
	"fmt"

	"github.com/gomutex/godocx"

	"scriptcue/internal/align"
)

const (
	docxFont      = "Times New Roman"
	docxFontSize  = 13
	docxTitleSize = 16
)

// Docx writes the aligned cue texts as a clean transcript document: a bold
// title, then one paragraph per cue with its timecode, source text, and any
// translation lines.
func Docx(title string, cues []align.Cue, lanes []align.Lane, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	doc.AddParagraph("").AddText(title).Font(docxFont).Size(docxTitleSize).Color("000000").Bold(true)
	doc.AddParagraph("")

	for i, cue := range cues {
		header := fmt.Sprintf("%d  %s --> %s", cue.Index, formatSRTTime(cue.Start), formatSRTTime(cue.End))
		doc.AddParagraph("").AddText(header).Font(docxFont).Size(docxFontSize).Color("808080")

		doc.AddParagraph("").AddText(cue.Text).Font(docxFont).Size(docxFontSize).Color("000000")
		for _, lane := range lanes {
			if lane.Texts[i] == "" {
				continue
			}
			doc.AddParagraph("").AddText(lane.Texts[i]).Font(docxFont).Size(docxFontSize).Color("404040")
		}
	}

	return doc.SaveTo(outputPath)
}
