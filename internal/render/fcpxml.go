package render

import (
	"fmt"
	"math"
	"strings"

	"scriptcue/internal/align"
	"scriptcue/internal/config"
)

// TimelineOptions configures the FCPXML renderer.
type TimelineOptions struct {
	ProjectName string
	// Seamless stretches every cue to meet the next cue's start, removing
	// blank frames between consecutive titles.
	Seamless bool
	// Duration is the recording length in seconds; the spine gap covers it.
	Duration float64
	Settings config.RenderSettings
}

// seamlessLag is applied as a negative offset to every title in seamless
// mode, compensating for the authoring tool's rendering lag. Value is in
// timescale units, conventional, not derived.
func seamlessLag(set config.RenderSettings) int64 {
	return int64(set.SeamlessLagUnits)
}

// toUnits converts seconds to frame-aligned timescale units.
func toUnits(sec float64, set config.RenderSettings) int64 {
	units := int64(math.Round(sec * float64(set.Timescale)))
	f := int64(set.FrameDuration)
	// Round to the nearest frame boundary; the target format requires exact
	// frame arithmetic to avoid cumulative drift over a long timeline.
	return (units + f/2) / f * f
}

// rational renders timescale units as an exact rational-seconds string,
// reduced to lowest terms.
func rational(units int64, set config.RenderSettings) string {
	if units == 0 {
		return "0s"
	}
	num, den := units, int64(set.Timescale)
	neg := num < 0
	if neg {
		num = -num
	}
	g := gcd(num, den)
	num /= g
	den /= g
	s := ""
	if neg {
		s = "-"
	}
	if den == 1 {
		return fmt.Sprintf("%s%ds", s, num)
	}
	return fmt.Sprintf("%s%d/%ds", s, num, den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// titleTiming is the resolved offset/duration of one title element, in
// timescale units.
type titleTiming struct {
	offset   int64
	duration int64
}

// resolveTimings converts cue times to title timings. In seamless mode every
// offset shifts back by the lag constant (clamped at zero) and each cue's
// duration is then recomputed from the final offsets, so adjacent titles abut
// exactly even where the first offset clamps.
func resolveTimings(cues []align.Cue, opts TimelineOptions) []titleTiming {
	set := opts.Settings
	timings := make([]titleTiming, len(cues))

	for i, c := range cues {
		start := toUnits(c.Start, set)
		end := toUnits(c.End, set)
		if end < start {
			end = start
		}

		offset := start
		if opts.Seamless {
			offset -= seamlessLag(set)
			if offset < 0 {
				offset = 0
			}
		}

		timings[i] = titleTiming{offset: offset, duration: end - start}
	}

	if opts.Seamless {
		for i := range timings {
			if i+1 < len(timings) {
				timings[i].duration = timings[i+1].offset - timings[i].offset
			}
			if timings[i].duration < 0 {
				timings[i].duration = 0
			}
		}
	}

	return timings
}

// FCPXML renders the cue stream (plus translation lanes) as an FCPXML
// timeline document. Pure function; the whole document builds in memory.
func FCPXML(cues []align.Cue, lanes []align.Lane, opts TimelineOptions) string {
	set := opts.Settings
	name := opts.ProjectName
	if name == "" {
		name = "Aligned Subtitles"
	}

	total := toUnits(opts.Duration, set)
	if len(cues) > 0 {
		if last := toUnits(cues[len(cues)-1].End, set); last > total {
			total = last
		}
	}

	timings := resolveTimings(cues, opts)

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<!DOCTYPE fcpxml>\n")
	sb.WriteString("<fcpxml version=\"1.10\">\n")

	// Resource table: one format, one text effect.
	sb.WriteString("    <resources>\n")
	fmt.Fprintf(&sb, "        <format id=\"r1\" name=\"FFVideoFormat1080p30\" frameDuration=\"%s\" width=\"1920\" height=\"1080\"/>\n",
		rational(int64(set.FrameDuration), set))
	sb.WriteString("        <effect id=\"r2\" name=\"Custom\" uid=\".../Titles.localized/Build In:Out.localized/Custom.localized/Custom.moti\"/>\n")
	sb.WriteString("    </resources>\n")

	sb.WriteString("    <library>\n")
	fmt.Fprintf(&sb, "        <event name=\"%s\">\n", xmlEscaper.Replace(name))
	fmt.Fprintf(&sb, "            <project name=\"%s\">\n", xmlEscaper.Replace(name))
	fmt.Fprintf(&sb, "                <sequence format=\"r1\" duration=\"%s\" tcStart=\"0s\" tcFormat=\"NDF\">\n",
		rational(total, set))
	sb.WriteString("                    <spine>\n")
	fmt.Fprintf(&sb, "                        <gap name=\"Gap\" offset=\"0s\" start=\"0s\" duration=\"%s\">\n",
		rational(total, set))

	styleID := 0
	for i, cue := range cues {
		writeTitle(&sb, cue.Text, 1, timings[i], &styleID, sourceStyle(set), set)
		for li, lane := range lanes {
			writeTitle(&sb, lane.Texts[i], li+2, timings[i], &styleID, translationStyle(set), set)
		}
	}

	sb.WriteString("                        </gap>\n")
	sb.WriteString("                    </spine>\n")
	sb.WriteString("                </sequence>\n")
	sb.WriteString("            </project>\n")
	sb.WriteString("        </event>\n")
	sb.WriteString("    </library>\n")
	sb.WriteString("</fcpxml>\n")
	return sb.String()
}

// titleStyle is one lane's text styling, enumerated once instead of passed
// around as a loose option bag.
type titleStyle struct {
	font      string
	fontSize  int
	fontColor string
	bold      bool
	alignment string
}

func sourceStyle(set config.RenderSettings) titleStyle {
	return titleStyle{
		font:      set.SourceFont,
		fontSize:  set.SourceFontSize,
		fontColor: set.SourceFontColor,
		bold:      set.SourceBold,
		alignment: set.SourceAlignment,
	}
}

func translationStyle(set config.RenderSettings) titleStyle {
	return titleStyle{
		font:      set.TranslationFont,
		fontSize:  set.TranslationFontSize,
		fontColor: set.TranslationFontColor,
		bold:      set.TranslationBold,
		alignment: set.TranslationAlignment,
	}
}

func writeTitle(sb *strings.Builder, text string, lane int, t titleTiming, styleID *int, style titleStyle, set config.RenderSettings) {
	if strings.TrimSpace(text) == "" {
		return
	}
	*styleID++
	id := fmt.Sprintf("ts%d", *styleID)
	display := strings.ReplaceAll(text, "\n", " ")

	fmt.Fprintf(sb, "                            <title ref=\"r2\" lane=\"%d\" offset=\"%s\" start=\"%s\" duration=\"%s\" name=\"%s\">\n",
		lane, rational(t.offset, set), rational(t.offset, set), rational(t.duration, set), xmlEscaper.Replace(display))
	fmt.Fprintf(sb, "                                <text>\n")
	fmt.Fprintf(sb, "                                    <text-style ref=\"%s\">%s</text-style>\n", id, xmlEscaper.Replace(display))
	fmt.Fprintf(sb, "                                </text>\n")
	fmt.Fprintf(sb, "                                <text-style-def id=\"%s\">\n", id)
	bold := "0"
	if style.bold {
		bold = "1"
	}
	fmt.Fprintf(sb, "                                    <text-style font=\"%s\" fontSize=\"%d\" fontColor=\"%s\" bold=\"%s\" alignment=\"%s\"/>\n",
		xmlEscaper.Replace(style.font), style.fontSize, xmlEscaper.Replace(style.fontColor), bold, xmlEscaper.Replace(style.alignment))
	fmt.Fprintf(sb, "                                </text-style-def>\n")
	fmt.Fprintf(sb, "                            </title>\n")
}
